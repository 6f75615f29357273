package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"luna-guard/internal/analytics"
	"luna-guard/internal/bot"
	"luna-guard/internal/config"
	"luna-guard/internal/dispatch"
	"luna-guard/internal/metrics"
	"luna-guard/internal/modules/audit"
	"luna-guard/internal/storage"
	"luna-guard/internal/violation"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger, err := config.BuildLogger(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	store, err := storage.New(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		logger.Fatal("storage init failed", zap.Error(err))
	}
	defer store.Close()
	if err := store.Migrate(); err != nil {
		logger.Fatal("migrations failed", zap.Error(err))
	}

	auditLogger := audit.NewLogger(store, logger)
	analyticsEngine := analytics.New(store)

	var violations violation.Store
	opts := violation.OptionsFrom(cfg.Escalation)
	if cfg.Redis.URL != "" {
		redisStore, err := violation.NewRedisStore(cfg.Redis.URL, opts)
		if err != nil {
			logger.Fatal("redis init failed", zap.Error(err))
		}
		defer redisStore.Close()
		violations = redisStore
		logger.Info("violation counts shared through redis")
	} else {
		violations = violation.NewMemStore(opts, cfg.Automod.TrackerCapacity)
	}

	dispatcher := dispatch.New(cfg.Workers.Concurrency, 15*time.Second, logger)

	botSvc, err := bot.New(cfg, logger, store, violations, dispatcher, auditLogger, analyticsEngine)
	if err != nil {
		logger.Fatal("bot init failed", zap.Error(err))
	}

	if err := botSvc.Start(); err != nil {
		logger.Fatal("bot start failed", zap.Error(err))
	}
	logger.Info("bot started")

	var server *http.Server
	if cfg.Health.Enabled {
		mux := http.NewServeMux()
		mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			if err := store.Ping(r.Context()); err != nil || !botSvc.Ready() {
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte("unavailable"))
				return
			}
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
		})
		mux.Handle("/metrics", metrics.Handler())
		server = &http.Server{Addr: cfg.Health.Addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			logger.Info("health endpoint enabled", zap.String("addr", cfg.Health.Addr))
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("health server error", zap.Error(err))
			}
		}()
	}

	scheduler := cron.New()
	if cfg.RetentionDays > 0 {
		cleanup := func() { runRetention(context.Background(), store, cfg.RetentionDays, logger) }
		if _, err := scheduler.AddFunc(cfg.RetentionCron, cleanup); err != nil {
			logger.Fatal("invalid retention schedule", zap.String("schedule", cfg.RetentionCron), zap.Error(err))
		}
		go cleanup()
		scheduler.Start()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	logger.Info("shutdown requested")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if server != nil {
		_ = server.Shutdown(ctx)
	}
	select {
	case <-scheduler.Stop().Done():
	case <-ctx.Done():
	}
	dispatcher.Close(ctx)
	botSvc.Close(ctx)
}

func runRetention(ctx context.Context, store *storage.Store, days int, logger *zap.Logger) {
	if err := store.CleanupAuditLogs(ctx, days); err != nil {
		logger.Warn("audit cleanup failed", zap.Error(err))
	}
	if err := store.CleanupViolations(ctx, days); err != nil {
		logger.Warn("violation cleanup failed", zap.Error(err))
	}
}
