package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"timberprices.msstate.edu/internal/logging"
	"timberprices.msstate.edu/internal/stumpage"
)

// SnapshotsToKeep is how many snapshots are retained per source.
const SnapshotsToKeep = 3

// ErrNoSnapshot is returned when no snapshot exists for a source.
var ErrNoSnapshot = errors.New("no stored snapshot")

// SnapshotInfo describes a stored snapshot without its records.
type SnapshotInfo struct {
	ID          string    `json:"id"`
	Source      string    `json:"source"`
	FetchedAt   time.Time `json:"fetchedAt"`
	RecordCount int       `json:"recordCount"`
}

// SaveSnapshot stores dataset as the newest snapshot of source and prunes
// older snapshots beyond SnapshotsToKeep.
func (c *Client) SaveSnapshot(ctx context.Context, source string, dataset stumpage.Dataset) (err error) {
	c.writeMutex.Lock()
	defer c.writeMutex.Unlock()

	start := time.Now()
	tx, err := c.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer logging.SafeRollbackWithLogging(tx, c.logger, "save_snapshot")

	id := uuid.NewString()
	_, err = tx.ExecContext(ctx,
		"INSERT INTO snapshots (id, source, fetched_at, record_count) VALUES (?, ?, ?, ?)",
		id, source, start.UnixNano(), len(dataset))
	if err != nil {
		return fmt.Errorf("error inserting snapshot: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO snapshot_records (snapshot_id, position, year, quarter, type, minimum, average, maximum)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("error preparing record insert: %w", err)
	}
	defer logging.HandleDeferredError(&err, stmt.Close, c.logger, "close_snapshot_statement")

	for i, r := range dataset {
		_, err = stmt.ExecContext(ctx, id, i, r.Year, string(r.Quarter), r.Type, r.Minimum, r.Average, r.Maximum)
		if err != nil {
			return fmt.Errorf("error inserting snapshot record %d: %w", i, err)
		}
	}

	if err = pruneSnapshots(ctx, tx, source); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("error committing snapshot: %w", err)
	}

	logging.LogOperation(c.logger, "snapshot_saved",
		slog.String("snapshot_id", id),
		slog.String("source", source),
		slog.Int("records", len(dataset)),
		slog.Duration("duration", time.Since(start)))
	return nil
}

// staleSnapshots selects every snapshot of a source except the newest ones.
const staleSnapshots = `
	SELECT id FROM snapshots WHERE source = ?
	ORDER BY fetched_at DESC, rowid DESC
	LIMIT -1 OFFSET ?`

func pruneSnapshots(ctx context.Context, tx *sql.Tx, source string) error {
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM snapshot_records WHERE snapshot_id IN ("+staleSnapshots+")",
		source, SnapshotsToKeep); err != nil {
		return fmt.Errorf("error pruning snapshot records: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM snapshots WHERE id IN ("+staleSnapshots+")",
		source, SnapshotsToKeep); err != nil {
		return fmt.Errorf("error pruning snapshots: %w", err)
	}
	return nil
}

// LatestSnapshot returns the newest stored dataset for source and the time it
// was saved, or ErrNoSnapshot.
func (c *Client) LatestSnapshot(ctx context.Context, source string) (stumpage.Dataset, time.Time, error) {
	var (
		id        string
		fetchedAt int64
	)
	err := c.DB.QueryRowContext(ctx, `
		SELECT id, fetched_at FROM snapshots WHERE source = ?
		ORDER BY fetched_at DESC, rowid DESC
		LIMIT 1`, source).Scan(&id, &fetchedAt)
	if isNoRows(err) {
		return nil, time.Time{}, ErrNoSnapshot
	}
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("error finding snapshot: %w", err)
	}

	dataset, err := c.snapshotRecords(ctx, id)
	if err != nil {
		return nil, time.Time{}, err
	}
	return dataset, time.Unix(0, fetchedAt), nil
}

func (c *Client) snapshotRecords(ctx context.Context, id string) (stumpage.Dataset, error) {
	rows, err := c.DB.QueryContext(ctx, `
		SELECT year, quarter, type, minimum, average, maximum
		FROM snapshot_records WHERE snapshot_id = ?
		ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("error querying snapshot records: %w", err)
	}
	defer logging.SafeCloseWithLogging(rows, c.logger, "snapshot_records_rows")

	dataset := stumpage.Dataset{}
	for rows.Next() {
		var (
			r       stumpage.Record
			quarter string
			minimum decimal.NullDecimal
			average decimal.NullDecimal
			maximum decimal.NullDecimal
		)
		if err := rows.Scan(&r.Year, &quarter, &r.Type, &minimum, &average, &maximum); err != nil {
			return nil, fmt.Errorf("error scanning snapshot record: %w", err)
		}
		r.Quarter = stumpage.Quarter(quarter)
		r.Minimum, r.Average, r.Maximum = minimum, average, maximum
		dataset = append(dataset, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error reading snapshot records: %w", err)
	}
	return dataset, nil
}

// ListSnapshots returns the stored snapshots of source, newest first.
func (c *Client) ListSnapshots(ctx context.Context, source string) ([]SnapshotInfo, error) {
	rows, err := c.DB.QueryContext(ctx, `
		SELECT id, source, fetched_at, record_count FROM snapshots WHERE source = ?
		ORDER BY fetched_at DESC, rowid DESC`, source)
	if err != nil {
		return nil, fmt.Errorf("error listing snapshots: %w", err)
	}
	defer logging.SafeCloseWithLogging(rows, c.logger, "list_snapshots_rows")

	snapshots := []SnapshotInfo{}
	for rows.Next() {
		var (
			info      SnapshotInfo
			fetchedAt int64
		)
		if err := rows.Scan(&info.ID, &info.Source, &fetchedAt, &info.RecordCount); err != nil {
			return nil, fmt.Errorf("error scanning snapshot: %w", err)
		}
		info.FetchedAt = time.Unix(0, fetchedAt)
		snapshots = append(snapshots, info)
	}
	return snapshots, rows.Err()
}
