package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"go.opentelemetry.io/otel"

	"github.com/ghuser/brigade/pkg/app"
	"github.com/ghuser/brigade/pkg/cache"
	"github.com/ghuser/brigade/pkg/config"
	"github.com/ghuser/brigade/pkg/database"
	"github.com/ghuser/brigade/pkg/events"
	"github.com/ghuser/brigade/pkg/logger"
	"github.com/ghuser/brigade/pkg/telemetry"
	"github.com/ghuser/brigade/pkg/workflows"
	appsvcs "github.com/ghuser/brigade/services/inventory/application/services"
	"github.com/ghuser/brigade/services/inventory/application/subscribers"
	invworkflows "github.com/ghuser/brigade/services/inventory/application/workflows"
)

const consumerGroup = "inventory-worker"

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if err := config.ValidateForProduction(cfg); err != nil {
		slog.Error("production config validation failed", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	otelShutdown, _, err := telemetry.Setup(ctx, cfg)
	if err != nil {
		log.Error("failed to setup otel", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	defer otelShutdown(context.WithoutCancel(ctx)) //nolint:errcheck

	if err := telemetry.SetupSentry(cfg); err != nil {
		log.Warn("failed to setup sentry, continuing without crash reporting", "error", err)
	}
	defer telemetry.SentryFlush()

	db, err := database.NewPool(ctx, cfg.DatabaseURL, log)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	defer db.Close()
	log.Info("database pool connected")

	eventBus, err := events.NewEventBus(cfg, log, events.Options{ConsumerGroup: consumerGroup})
	if err != nil {
		log.Error("failed to setup event bus", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	defer eventBus.Close() //nolint:errcheck

	redisClient, err := cache.NewRedisClient(ctx, cfg)
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	defer redisClient.Close() //nolint:errcheck
	log.Info("redis connected")

	temporalClient, err := workflows.NewTemporalClient(ctx, cfg, log)
	if err != nil {
		log.Error("failed to initialize temporal client", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	if temporalClient != nil {
		defer temporalClient.Close()
	}

	a := &app.Application{
		Config:         cfg,
		Db:             db,
		Logger:         log,
		EventBus:       eventBus,
		Redis:          redisClient,
		TemporalClient: temporalClient,
	}
	svcs := appsvcs.New(a)

	subs := subscribers.New(svcs.Catalog, log, otel.Meter("brigade/inventory/subscribers"))
	if err := subs.Register(ctx, eventBus); err != nil {
		log.Error("failed to register subscribers", "error", err)
		os.Exit(1) //nolint:gocritic
	}

	if temporalClient != nil {
		if err := startExpiryAudit(ctx, a, svcs); err != nil {
			log.Error("failed to start temporal worker", "error", err)
			os.Exit(1) //nolint:gocritic
		}
	}

	<-ctx.Done()
	// EventBus.Close (deferred) waits for in-flight handlers.
	log.Info("shutting down worker...")
}

// startExpiryAudit runs the Temporal worker and schedules the PPE expiry cron.
// The worker stops when ctx is cancelled.
func startExpiryAudit(ctx context.Context, a *app.Application, svcs *appsvcs.Services) error {
	w := a.TemporalClient.NewWorker()
	invworkflows.Register(w, invworkflows.NewActivities(svcs.Catalog, a.Logger))
	if err := w.Start(); err != nil {
		return err
	}
	go func() {
		<-ctx.Done()
		w.Stop()
	}()

	run, err := invworkflows.ScheduleExpiryAudit(ctx, a.TemporalClient.Client, a.TemporalClient.TaskQueue,
		invworkflows.ExpiryAuditInput{WithinDays: a.Config.ExpiryWarningDays})
	if err != nil {
		return err
	}
	a.Logger.Info("ppe expiry audit scheduled",
		"workflow_id", run.GetID(), "run_id", run.GetRunID(), "cron", invworkflows.ExpiryAuditCron)
	return nil
}
