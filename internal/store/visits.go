package store

import (
	"context"
	"fmt"

	"timberprices.msstate.edu/internal/logging"
)

// IncrementVisits atomically adds one to the site visit counter and returns
// the new total.
func (c *Client) IncrementVisits(ctx context.Context) (int64, error) {
	c.writeMutex.Lock()
	defer c.writeMutex.Unlock()

	tx, err := c.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("error starting transaction: %w", err)
	}
	defer logging.SafeRollbackWithLogging(tx, c.logger, "increment_visits")

	var count int64
	err = tx.QueryRowContext(ctx, "UPDATE visits SET count = count + 1 WHERE id = 1 RETURNING count").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("error incrementing visits: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("error committing visit count: %w", err)
	}
	return count, nil
}

// Visits returns the current visit total.
func (c *Client) Visits(ctx context.Context) (int64, error) {
	var count int64
	if err := c.DB.QueryRowContext(ctx, "SELECT count FROM visits WHERE id = 1").Scan(&count); err != nil {
		return 0, fmt.Errorf("error reading visits: %w", err)
	}
	return count, nil
}
