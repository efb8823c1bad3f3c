package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	appAudit "github.com/estate-hub/estate-hub/internal/application/audit"
	appContract "github.com/estate-hub/estate-hub/internal/application/contract"
	appNotify "github.com/estate-hub/estate-hub/internal/application/notify"
	appSweep "github.com/estate-hub/estate-hub/internal/application/sweep"
	"github.com/estate-hub/estate-hub/internal/clock"
	"github.com/estate-hub/estate-hub/internal/config"
	"github.com/estate-hub/estate-hub/internal/domain/notification"
	"github.com/estate-hub/estate-hub/internal/infrastructure/mailer"
	"github.com/estate-hub/estate-hub/internal/infrastructure/postgres"
	"github.com/estate-hub/estate-hub/internal/infrastructure/redislock"
	"github.com/estate-hub/estate-hub/internal/migrations"
)

// Standalone sweeper. Runs the reconciliation sweep on a cron schedule so the
// API servers can be deployed with SWEEP_ENABLED=false.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	level, err := zerolog.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger := zerolog.New(os.Stdout).Level(level).With().Timestamp().Str("app", "sweeper").Logger()

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.Database.URL, cfg.Database.MaxConns)
	if err != nil {
		log.Fatalf("db error: %v", err)
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool, migrations.FS); err != nil {
		log.Fatalf("migration error: %v", err)
	}

	isnadRepo := postgres.NewIsnadRepository(pool)
	contractRepo := postgres.NewContractRepository(pool)
	auditRepo := postgres.NewAuditRepository(pool)
	notificationRepo := postgres.NewNotificationRepository(pool)
	ruleRepo := postgres.NewRuleRepository(pool)
	txRunner := postgres.NewTxManager(pool)

	var investorMailer notification.Mailer
	if cfg.SMTP.Host != "" {
		investorMailer = mailer.NewSMTPMailer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.User, cfg.SMTP.Pass, cfg.SMTP.From, logger)
	}
	var locker appSweep.Locker
	if cfg.Redis.Addr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
		locker = redislock.New(redisClient, logger)
	}
	clk := clock.Real{}

	auditSvc := appAudit.NewService(auditRepo, logger)
	notifySvc := appNotify.NewService(notificationRepo, ruleRepo, investorMailer, logger)
	contractSvc := appContract.NewService(contractRepo, txRunner, auditSvc, notifySvc, clk, logger)
	sweepSvc := appSweep.NewService(contractSvc, isnadRepo, txRunner, auditSvc, notifySvc, locker, clk, logger)

	c := cron.New()
	if _, err := c.AddFunc(cfg.Sweep.Schedule, func() {
		sweepSvc.Run(context.Background())
	}); err != nil {
		log.Fatalf("invalid SWEEP_SCHEDULE: %v", err)
	}
	c.Start()
	logger.Info().Str("schedule", cfg.Sweep.Schedule).Msg("sweeper started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	<-c.Stop().Done()
	logger.Info().Msg("sweeper stopped")
}
