package app

import (
	"context"
	"log/slog"

	"timberprices.msstate.edu/internal/appconf"
	"timberprices.msstate.edu/internal/stumpage"
)

// VisitCounter counts dashboard page views.
type VisitCounter interface {
	IncrementVisits(ctx context.Context) (int64, error)
	Visits(ctx context.Context) (int64, error)
}

// Application holds the dependencies for our HTTP handlers, helpers,
// and middleware.
type Application struct {
	Config   appconf.Config
	Logger   *slog.Logger
	Manager  *stumpage.Manager
	Visits   VisitCounter
	Debugger Debugger
}

// Debugger exposes store internals on the debug page. It may be nil.
type Debugger interface {
	TableCounts(ctx context.Context) (map[string]int, error)
}
