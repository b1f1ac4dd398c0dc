package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/nemuzard/notesys/internal/api"
	"github.com/nemuzard/notesys/internal/config"
	"github.com/nemuzard/notesys/internal/db"
	"github.com/nemuzard/notesys/internal/hub"
	"github.com/nemuzard/notesys/internal/mailer"
	"github.com/nemuzard/notesys/internal/metrics"
	"github.com/nemuzard/notesys/internal/queue"
	"github.com/nemuzard/notesys/internal/ranking"
	"github.com/nemuzard/notesys/internal/ratelimiter"
	"github.com/nemuzard/notesys/internal/repository"
	"github.com/nemuzard/notesys/internal/service"
	"github.com/nemuzard/notesys/internal/verification"
	"github.com/nemuzard/notesys/internal/worker"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync() //nolint:errcheck

	// ---- configuration ----
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	// ---- database ----
	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	if err := db.Migrate(cfg.DatabaseURL); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}
	logger.Info("database migrations applied")

	// ---- redis: durable queue, verification records, snapshot mirror ----
	rdb, err := db.ConnectRedis(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()

	// ---- core dependencies ----
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	taskQueue := queue.NewRedisQueue(rdb)
	codes := verification.NewRedisStore(rdb)
	mail := mailer.NewHTTPMailer(cfg.MailAPIURL, cfg.MailAPITimeout)
	limiter := ratelimiter.New(cfg.MailRatePerSec)

	notificationRepo := repository.NewPgNotificationRepository(pool)
	activityRepo := repository.NewPgActivityRepository(pool)

	pushHub := hub.New(logger)
	pushHub.SetHooks(
		func() { m.PushesDelivered.Inc() },
		func() { m.PushesDropped.Inc() },
	)

	holder := ranking.NewHolder()
	// Serve the last published snapshot while waiting for the first run.
	if snapshot, err := ranking.LoadSnapshot(ctx, rdb); err != nil {
		logger.Warn("could not restore ranking snapshot", zap.Error(err))
	} else if snapshot != nil {
		holder.Publish(snapshot)
		logger.Info("restored ranking snapshot",
			zap.Time("generated_at", snapshot.GeneratedAt),
			zap.Int("entries", len(snapshot.Entries)))
	}

	notificationSvc := service.NewNotificationService(notificationRepo, activityRepo, pushHub, logger)
	verificationSvc := service.NewVerificationService(taskQueue, codes, logger)

	// ---- background workers ----
	// Context for all background goroutines; cancelled on shutdown signal.
	workerCtx, cancelWorkers := context.WithCancel(ctx)
	defer cancelWorkers()

	var workersDone sync.WaitGroup

	consumer := worker.NewEmailConsumer(
		taskQueue, mail, codes, limiter,
		cfg.EmailPollInterval, cfg.VerificationTTL, cfg.MailFrom,
		logger, worker.ConsumerHooks{
			OnSent:      func() { m.EmailsSent.Inc() },
			OnFailed:    func() { m.EmailsFailed.Inc() },
			OnMalformed: func() { m.TasksMalformed.Inc() },
			QueueDepth:  func(n int64) { m.EmailQueueDepth.Set(float64(n)) },
		},
	)
	workersDone.Add(1)
	go func() {
		defer workersDone.Done()
		consumer.Run(workerCtx)
	}()

	aggregator := ranking.NewAggregator(
		activityRepo, holder, cfg.RankingWindow, cfg.RankingLimit,
		func(ctx context.Context, s *ranking.Snapshot) error {
			return ranking.SaveSnapshot(ctx, rdb, s)
		},
		logger,
	)
	scheduler := worker.NewRankingScheduler(aggregator, cfg.RankingCron, logger)
	scheduler.OnRun = m.RecordRankingRun
	if err := scheduler.Start(workerCtx); err != nil {
		logger.Fatal("failed to start ranking scheduler", zap.Error(err))
	}

	// ---- HTTP server ----
	router := api.NewRouter(api.Deps{
		Notifications:  notificationSvc,
		Verification:   verificationSvc,
		Rankings:       holder,
		Queue:          taskQueue,
		PushHub:        pushHub,
		Registry:       reg,
		Config:         cfg,
		Logger:         logger,
		OnWSConnect:    func() { m.LiveConnections.Inc() },
		OnWSDisconnect: func() { m.LiveConnections.Dec() },
	})
	srv := &http.Server{
		Addr:        ":" + cfg.HTTPPort,
		Handler:     router,
		ReadTimeout: cfg.ReadTimeout,
		// No WriteTimeout: it would sever long-lived websocket connections.
		// Per-message write deadlines are enforced in the WS handler.
	}

	// Start server in a goroutine so it does not block the shutdown listener.
	go func() {
		logger.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	// ---- graceful shutdown ----
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutdown signal received")

	// 1. Stop accepting new HTTP requests.
	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", zap.Error(err))
	}

	// 2. Signal the background loops to stop and halt the cron schedule.
	cancelWorkers()
	scheduler.Stop()

	// 3. Wait for the consumer to finish its in-flight item, then drop
	//    all live connections.
	workersDone.Wait()
	pushHub.Close()

	logger.Info("server stopped cleanly")
}
