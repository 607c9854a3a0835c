package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tair/fashion-checkout/internal/payment/usecase/command"
	"github.com/tair/fashion-checkout/internal/store/gormstore"
	"github.com/tair/fashion-checkout/kafka"
	"github.com/tair/fashion-checkout/pkg/config"
	"github.com/tair/fashion-checkout/pkg/database"
	"github.com/tair/fashion-checkout/pkg/logger"
	"github.com/tair/fashion-checkout/pkg/tracing"
)

const consumerGroup = "payment-reconciler"

func main() {
	follow := flag.Bool("follow", false, "after the sweep, keep repairing orders on payment events")
	flag.Parse()

	cfg, err := config.Load("payment-reconciler")
	if err != nil {
		panic(err)
	}
	logger.Init(cfg.ServiceName, cfg.IsDevelopment())
	logger.SetLevel(cfg.LogLevel)

	tp, err := tracing.InitTracer(cfg.Tracing())
	if err != nil {
		logger.Logger.Error().Err(err).Msg("Failed to initialize tracer")
	} else {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tracing.Shutdown(ctx, tp); err != nil {
				logger.Logger.Error().Err(err).Msg("Failed to shutdown tracer")
			}
		}()
	}

	db, err := database.NewGormConnection(cfg.Database)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to connect to database")
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to get database instance")
	}
	defer sqlDB.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sync := command.NewSyncStatusHandler(gormstore.New(db))
	summary, err := sync.HandleAll(ctx)
	if err != nil {
		logger.Logger.Error().Err(err).Msg("Payment sync aborted")
	}
	if summary != nil {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(summary); err != nil {
			logger.Logger.Error().Err(err).Msg("Failed to write sync summary")
		}
	}
	if err != nil {
		return
	}

	if !*follow {
		return
	}
	if !cfg.KafkaEnabled {
		logger.Logger.Fatal().Msg("-follow requires KAFKA_ENABLED=true")
	}

	consumer, err := kafka.NewConsumer(cfg.KafkaBrokers, consumerGroup, []string{kafka.TopicPaymentEvents})
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to create Kafka consumer")
	}
	defer consumer.Close()

	consumer.RegisterPaymentHandler(kafka.EventTypePaymentStatusChanged, func(ctx context.Context, event kafka.PaymentEvent) error {
		changed, err := sync.HandleOrder(ctx, event.OrderID)
		if err != nil {
			return err
		}
		if changed {
			logger.Info(ctx).
				Uint("order_id", event.OrderID).
				Uint("payment_id", event.PaymentID).
				Msg("Order payment status repaired from event")
		}
		return nil
	})
	if err := consumer.Start(ctx); err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to start Kafka consumer")
	}

	<-ctx.Done()
	logger.Logger.Info().Msg("Reconciler stopped")
}
