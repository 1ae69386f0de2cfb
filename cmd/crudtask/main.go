package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"crudtask/internal/api"
	"crudtask/internal/config"
	"crudtask/internal/server"
	"crudtask/internal/storage/sqlite"
	"crudtask/internal/util"
)

func main() {
	configFlag := flag.String("config", util.EnvOrDefault("CRUDTASK_CONFIG", ""), "Path to YAML config file")
	addrFlag := flag.String("addr", "", "HTTP listen address (env CRUDTASK_ADDR)")
	apiFlag := flag.String("api", "", "Backend base URL (env CRUDTASK_API_URL)")
	dbFlag := flag.String("db", "", "Path to sqlite browser state file (env CRUDTASK_DB_PATH)")
	levelFlag := flag.String("log-level", "", "Log level: debug, info, warn, error (env CRUDTASK_LOG_LEVEL)")
	flag.Parse()

	cfg, err := config.Load(*configFlag)
	if err != nil {
		slog.Error("unable to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	cfg.ApplyEnv()
	cfg.Apply(config.Overrides{Addr: *addrFlag, APIURL: *apiFlag, DBPath: *dbFlag, LogLevel: *levelFlag})
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	level, _ := cfg.Log.SlogLevel()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	logger.Info("CRUDTASK task manager", slog.String("backend", cfg.Backend.URL))

	store, err := sqlite.Open(cfg.Storage.Path, logger)
	if err != nil {
		logger.Error("unable to open database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer store.Close()

	client, err := api.New(cfg.Backend.URL, cfg.Backend.Timeout, logger)
	if err != nil {
		logger.Error("unable to create backend client", slog.String("error", err.Error()))
		os.Exit(1)
	}

	srv := server.New(client, store, logger, server.Options{
		RegisterRedirectDelay: cfg.UI.RegisterRedirectDelay,
		NoticeDuration:        cfg.UI.NoticeDuration,
		CookieMaxAge:          cfg.Storage.SessionTTL,
	})

	httpServer := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           srv.Engine(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go sweepStaleState(sweepCtx, store, cfg.Storage, logger)

	go func() {
		logger.Info("starting server", slog.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped unexpectedly", slog.String("error", err.Error()))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	stopSweep()
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("failed to shutdown server", slog.String("error", err.Error()))
	}

	logger.Info("server stopped")
}

// sweepStaleState drops browser state idle for longer than the session TTL.
func sweepStaleState(ctx context.Context, store *sqlite.Store, cfg config.StorageConfig, logger *slog.Logger) {
	interval := cfg.SweepInterval
	if interval <= 0 {
		interval = time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if _, err := store.DeleteStale(ctx, now.Add(-cfg.SessionTTL)); err != nil && ctx.Err() == nil {
				logger.Warn("sweeping browser state failed", slog.String("error", err.Error()))
			}
		}
	}
}
