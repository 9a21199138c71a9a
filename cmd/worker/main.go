package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/travelbook/config"
	"github.com/Domenick1991/travelbook/internal/domain"
	"github.com/Domenick1991/travelbook/internal/email"
	"github.com/Domenick1991/travelbook/internal/kafka"
	"github.com/Domenick1991/travelbook/internal/logger"
	"github.com/Domenick1991/travelbook/internal/repository"
	"github.com/jackc/pgx/v5/pgxpool"
	kafkaGo "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	zapLogger := logger.New(cfg.Env)
	defer zapLogger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	if err := repository.RunMigrations(ctx, pool, cfg.Worker.MigrationsDir); err != nil {
		log.Fatalf("run migrations: %v", err)
	}

	auditRepo := repository.NewAuditRepository(pool)
	emailSender := email.NewSender(zapLogger)

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic)
	defer consumer.Close()

	zapLogger.Info("worker started", zap.String("topic", cfg.Kafka.NotificationsTopic))

	err = consumer.Consume(ctx, func(ctx context.Context, msg kafkaGo.Message) error {
		var event domain.BookingEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			zapLogger.Warn("decode event", zap.Error(err))
			return nil
		}

		if err := auditRepo.Append(ctx, event); err != nil {
			zapLogger.Error("archive event",
				zap.String("booking_id", event.BookingID),
				zap.String("event_type", event.Type),
				zap.Error(err))
		}
		if err := emailSender.Send(ctx, event); err != nil {
			zapLogger.Error("send notification",
				zap.String("booking_id", event.BookingID),
				zap.Error(err))
		}
		return nil
	})
	if err != nil && ctx.Err() == nil {
		zapLogger.Error("consumer stopped", zap.Error(err))
	}
}
