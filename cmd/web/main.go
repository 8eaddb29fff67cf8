package main

import (
	"context"
	"log"
	"os"

	"log/slog"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/4csolutions/razorpay-payments/internal/config"
	apphttp "github.com/4csolutions/razorpay-payments/internal/http"
	"github.com/4csolutions/razorpay-payments/internal/http/handlers"
	"github.com/4csolutions/razorpay-payments/internal/jobqueue"
	"github.com/4csolutions/razorpay-payments/internal/modules/accounts"
	"github.com/4csolutions/razorpay-payments/internal/modules/payments"
	"github.com/4csolutions/razorpay-payments/internal/shared/logging"
)

func main() {
	// Load .env file (ignore error if not found - prod uses real env vars)
	_ = godotenv.Load()

	logger := slog.New(logging.NewHandler(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db, err := gorm.Open(mysql.Open(cfg.DBDSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	store := payments.NewStore(db)
	resolver := accounts.NewResolver(db, payments.ModeOfPayment)

	queue := jobqueue.NewQueue(rdb, cfg.Queue.Workers, cfg.Queue.MaxRetries, logger)
	applySvc := payments.NewApplyService(store, store, resolver, cfg.Razorpay.CapAllocation, logger)
	queue.Register(jobqueue.JobTypeApplyPayment, jobqueue.ApplyHandler(applySvc))
	queue.Start()
	defer queue.Stop()

	reconciler := payments.NewReconciler(
		cfg.Razorpay.WebhookSecret, store, store, jobqueue.NewApplyEnqueuer(queue), logger)

	client := payments.NewClient(cfg.Razorpay.KeyID, cfg.Razorpay.KeySecret, cfg.Razorpay.BaseURL)
	linkSvc := payments.NewLinkService(store, store, client, logger)

	setup := accounts.NewSetup(db, payments.ModeOfPayment, logger)
	if err := setup.EnsureCompany(context.Background(), ""); err != nil {
		logger.Warn("account provisioning skipped", "err", err)
	}

	r := apphttp.NewRouter(logger,
		handlers.NewWebhookHandler(logger, reconciler),
		handlers.NewLinkHandler(logger, linkSvc))
	if err := r.Run(cfg.Addr); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
