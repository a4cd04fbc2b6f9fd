package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"github.com/sportsreg/sportsreg/internal/app"
	"github.com/sportsreg/sportsreg/internal/observability"
	"github.com/sportsreg/sportsreg/internal/platform/cache"
	"github.com/sportsreg/sportsreg/internal/store"
	"github.com/sportsreg/sportsreg/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping server startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}
	logger := app.NewLogger(cfg)
	slog.SetDefault(logger)

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server exited", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *app.Config, logger *slog.Logger) error {
	st, err := store.Open(ctx, store.Config{
		Backend:       cfg.StoreBackend,
		DSN:           cfg.PGDSN,
		MaxConns:      cfg.PGMaxConns,
		RunMigrations: cfg.PGRunMigrations,
	}, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	metrics := observability.NewMetrics()
	deps := app.APIDeps{
		Config:  cfg,
		Logger:  logger,
		Store:   st,
		Metrics: metrics,
	}

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, running without cache and queue", slog.Any("error", err))
	} else {
		defer closeWith(logger, "redis", redisClient.Close)
		redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr}
		queue := jobs.NewClient(redisOpts, logger, metrics.Jobs())
		defer closeWith(logger, "queue client", queue.Close)
		inspector := asynq.NewInspector(redisOpts)
		defer closeWith(logger, "inspector", inspector.Close)
		deps.Redis = redisClient
		deps.Notifier = queue
		deps.Inspector = inspector
	}

	api, err := app.NewAPI(deps)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      api.Handler,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr), slog.String("store", cfg.StoreBackend))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return group.Wait()
}

func closeWith(logger *slog.Logger, name string, closeFn func() error) {
	if err := closeFn(); err != nil {
		logger.Warn(name+" close", slog.Any("error", err))
	}
}
