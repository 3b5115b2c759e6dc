package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"timberprices.msstate.edu/internal/app"
	"timberprices.msstate.edu/internal/appconf"
	"timberprices.msstate.edu/internal/logging"
	"timberprices.msstate.edu/internal/restapi"
	"timberprices.msstate.edu/internal/store"
	"timberprices.msstate.edu/internal/stumpage"
	"timberprices.msstate.edu/internal/webui"
)

const shutdownTimeout = 15 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dashboard and API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		if port, _ := cmd.Flags().GetInt("port"); port != 0 {
			cfg.Server.Port = port
		}
		if env, _ := cmd.Flags().GetString("env"); env != "" {
			cfg.Server.Env = env
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		logger := logging.NewLogger(os.Stdout, cfg.LogLevel(), cfg.Logging.Format)
		slog.SetDefault(logger)
		return serve(ctx, *cfg, logger)
	},
}

func init() {
	serveCmd.Flags().Int("port", 0, "API server port (overrides server.port)")
	serveCmd.Flags().String("env", "", "Environment (development|test|production)")
}

// serve runs the server until ctx is cancelled, then shuts everything down.
func serve(ctx context.Context, config appconf.Config, logger *slog.Logger) error {
	db, err := store.NewClient(store.NewConfig(config.Storage.SQLitePath, config.Environment(), logger))
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer logging.SafeCloseWithLogging(db, logger, "store")

	manager, err := stumpage.InitManager(ctx, stumpage.Config{
		SourceURL:    config.Data.SourceURL,
		RefreshCron:  config.Data.RefreshCron,
		FetchTimeout: config.Data.FetchTimeout,
		HTTPClient:   &http.Client{Timeout: config.Data.FetchTimeout},
	}, db, logger)
	if err != nil {
		return fmt.Errorf("failed to load stumpage data: %w", err)
	}
	defer manager.Shutdown()

	application := &app.Application{
		Config:   config,
		Logger:   logger,
		Manager:  manager,
		Visits:   db,
		Debugger: db,
	}

	api := restapi.NewRestAPI(application)
	defer api.Shutdown()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", config.Server.Port),
		Handler:      newHandler(application, api),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: writeTimeout(config.Data.FetchTimeout),
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting server", "addr", srv.Addr, "env", config.Environment().String())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	logger.Info("server stopped")
	return nil
}

// writeTimeout leaves room for POST /api/refresh.json, which fetches the
// source before it responds.
func writeTimeout(fetchTimeout time.Duration) time.Duration {
	const base = 10 * time.Second
	if fetchTimeout+base > base {
		return fetchTimeout + base
	}
	return base
}

// newHandler mounts the API and the web UI on one router behind the
// middleware chain.
func newHandler(application *app.Application, api *restapi.RestAPI) http.Handler {
	router := httprouter.New()
	api.SetRoutes(router)
	webui.NewWebUI(application).SetWebUIRoutes(router)
	return api.WithMiddleware(router)
}
