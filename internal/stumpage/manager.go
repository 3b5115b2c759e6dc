package stumpage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"timberprices.msstate.edu/internal/logging"
)

// SnapshotStore persists the last good copy of a dataset so that a source
// outage degrades to stale data instead of no data.
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, source string, dataset Dataset) error
	LatestSnapshot(ctx context.Context, source string) (Dataset, time.Time, error)
}

// Status describes the dataset currently being served.
type Status struct {
	Source       string    `json:"source"`
	Records      int       `json:"records"`
	LastUpdated  time.Time `json:"lastUpdated"`
	FromSnapshot bool      `json:"fromSnapshot"`
	IsLocalFile  bool      `json:"isLocalFile"`
}

// Manager owns the loaded dataset and keeps it fresh.
type Manager struct {
	config       Config
	store        SnapshotStore
	logger       *slog.Logger
	isLocalFile  bool
	dataset      Dataset
	lastUpdated  time.Time
	fromSnapshot bool
	mutex        sync.RWMutex
	refreshMutex sync.Mutex
	scheduler    *cron.Cron
	shutdownOnce sync.Once
}

// InitManager loads the dataset from config.SourceURL. When the source cannot
// be retrieved, the most recent snapshot in store is served instead; a
// SchemaError is always returned as is. store may be nil.
func InitManager(ctx context.Context, config Config, store SnapshotStore, logger *slog.Logger) (*Manager, error) {
	if logger == nil {
		logger = slog.Default()
	}

	manager := &Manager{
		config:      config,
		store:       store,
		logger:      logger.With(slog.String("component", "stumpage_manager")),
		isLocalFile: !IsRemoteSource(config.SourceURL),
	}

	if err := manager.Refresh(ctx); err != nil {
		var retrievalErr *RetrievalError
		if !errors.As(err, &retrievalErr) || store == nil {
			return nil, err
		}

		dataset, fetchedAt, snapErr := store.LatestSnapshot(ctx, config.SourceURL)
		if snapErr != nil {
			return nil, fmt.Errorf("%w (no snapshot to fall back to: %v)", err, snapErr)
		}

		logging.LogError(manager.logger, "serving stored snapshot after failed load", err,
			slog.Time("snapshot_time", fetchedAt),
			slog.Int("records", len(dataset)))
		manager.setDataset(dataset, fetchedAt, true)
	}

	if config.refreshEnabled() {
		if err := manager.startScheduler(); err != nil {
			return nil, err
		}
	}

	return manager, nil
}

// NewStaticManager serves a fixed dataset with no source or scheduler.
func NewStaticManager(source string, dataset Dataset) *Manager {
	manager := &Manager{
		config:      Config{SourceURL: source},
		logger:      slog.Default(),
		isLocalFile: !IsRemoteSource(source),
	}
	manager.setDataset(dataset, time.Now(), false)
	return manager
}

// Refresh re-reads the source. On failure the current dataset is kept.
func (manager *Manager) Refresh(ctx context.Context) error {
	manager.refreshMutex.Lock()
	defer manager.refreshMutex.Unlock()

	ctx, cancel := context.WithTimeout(ctx, manager.config.fetchTimeout())
	defer cancel()
	ctx = logging.WithLogger(ctx, manager.logger)

	start := time.Now()
	dataset, err := Load(ctx, manager.config.HTTPClient, manager.config.SourceURL)
	if err != nil {
		return err
	}
	manager.setDataset(dataset, time.Now(), false)

	logging.LogOperation(manager.logger, "stumpage_data_loaded",
		slog.String("source", manager.config.SourceURL),
		slog.Int("records", len(dataset)),
		slog.Int("types", len(dataset.Types())),
		slog.Duration("duration", time.Since(start)))

	if manager.store != nil {
		if err := manager.store.SaveSnapshot(ctx, manager.config.SourceURL, dataset); err != nil {
			// the fresh dataset is still served
			logging.LogError(manager.logger, "failed to save dataset snapshot", err,
				slog.String("source", manager.config.SourceURL))
		}
	}

	return nil
}

func (manager *Manager) startScheduler() error {
	cronLogger := cron.PrintfLogger(slog.NewLogLogger(manager.logger.Handler(), slog.LevelWarn))
	manager.scheduler = cron.New(
		cron.WithLogger(cronLogger),
		cron.WithChain(cron.SkipIfStillRunning(cronLogger), cron.Recover(cronLogger)),
	)

	_, err := manager.scheduler.AddFunc(manager.config.RefreshCron, func() {
		if err := manager.Refresh(context.Background()); err != nil {
			logging.LogError(manager.logger, "scheduled refresh failed, keeping current dataset", err,
				slog.String("source", manager.config.SourceURL))
		}
	})
	if err != nil {
		return fmt.Errorf("invalid refresh schedule %q: %w", manager.config.RefreshCron, err)
	}

	manager.scheduler.Start()
	logging.LogOperation(manager.logger, "stumpage_refresh_scheduled",
		slog.String("spec", manager.config.RefreshCron))
	return nil
}

// Shutdown stops scheduled refreshes and waits for a running one to finish.
// It is safe to call more than once.
func (manager *Manager) Shutdown() {
	manager.shutdownOnce.Do(func() {
		if manager.scheduler != nil {
			<-manager.scheduler.Stop().Done()
		}
	})
}

func (manager *Manager) setDataset(dataset Dataset, updated time.Time, fromSnapshot bool) {
	manager.mutex.Lock()
	defer manager.mutex.Unlock()

	manager.dataset = dataset
	manager.lastUpdated = updated
	manager.fromSnapshot = fromSnapshot
}

// Dataset returns the dataset currently being served. Callers must treat it
// as read-only; refreshes replace it rather than modify it.
func (manager *Manager) Dataset() Dataset {
	manager.mutex.RLock()
	defer manager.mutex.RUnlock()
	return manager.dataset
}

func (manager *Manager) LastUpdated() time.Time {
	manager.mutex.RLock()
	defer manager.mutex.RUnlock()
	return manager.lastUpdated
}

func (manager *Manager) Source() string {
	return manager.config.SourceURL
}

func (manager *Manager) Status() Status {
	manager.mutex.RLock()
	defer manager.mutex.RUnlock()

	return Status{
		Source:       manager.config.SourceURL,
		Records:      len(manager.dataset),
		LastUpdated:  manager.lastUpdated,
		FromSnapshot: manager.fromSnapshot,
		IsLocalFile:  manager.isLocalFile,
	}
}

// Query applies c, normalized against the current dataset, and returns the
// criteria actually used together with the result.
func (manager *Manager) Query(c Criteria) (Criteria, Result) {
	dataset := manager.Dataset()
	c = c.Normalize(dataset)
	return c, Apply(dataset, c)
}
