package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	httpapi "github.com/estate-hub/estate-hub/internal/api/http"
	appAsset "github.com/estate-hub/estate-hub/internal/application/asset"
	appAudit "github.com/estate-hub/estate-hub/internal/application/audit"
	appContract "github.com/estate-hub/estate-hub/internal/application/contract"
	appIsnad "github.com/estate-hub/estate-hub/internal/application/isnad"
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

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := newLogger(cfg)

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.Database.URL, cfg.Database.MaxConns)
	if err != nil {
		log.Fatalf("db error: %v", err)
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool, migrations.FS); err != nil {
		log.Fatalf("migration error: %v", err)
	}

	// repositories
	assetRepo := postgres.NewAssetRepository(pool)
	isnadRepo := postgres.NewIsnadRepository(pool)
	contractRepo := postgres.NewContractRepository(pool)
	auditRepo := postgres.NewAuditRepository(pool)
	notificationRepo := postgres.NewNotificationRepository(pool)
	ruleRepo := postgres.NewRuleRepository(pool)
	txRunner := postgres.NewTxManager(pool)

	// infrastructure
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

	// services
	auditSvc := appAudit.NewService(auditRepo, logger)
	notifySvc := appNotify.NewService(notificationRepo, ruleRepo, investorMailer, logger)
	assetSvc := appAsset.NewService(assetRepo, txRunner, auditSvc, notifySvc, clk, logger)
	isnadSvc := appIsnad.NewService(isnadRepo, txRunner, auditSvc, notifySvc, clk, logger)
	contractSvc := appContract.NewService(contractRepo, txRunner, auditSvc, notifySvc, clk, logger)
	sweepSvc := appSweep.NewService(contractSvc, isnadRepo, txRunner, auditSvc, notifySvc, locker, clk, logger)

	// API server
	apiServer := httpapi.NewServer(assetSvc, isnadSvc, contractSvc, auditSvc, notifySvc, sweepSvc)

	httpServer := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      apiServer.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// background sweep loop
	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	if cfg.Sweep.Enabled {
		go sweepSvc.RunLoop(sweepCtx, cfg.SweepInterval())
	}

	// start server
	go func() {
		logger.Info().Str("addr", cfg.Server.Addr).Msg("http server started")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	// graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	stopSweep()
	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = httpServer.Shutdown(ctxShutdown)
}

func newLogger(cfg *config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger := zerolog.New(os.Stdout).Level(level).With().Timestamp().Logger()
	if cfg.Logging.Format == "console" {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stdout})
	}
	return logger
}
