package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/travelbook/api"
	"github.com/Domenick1991/travelbook/config"
	"github.com/Domenick1991/travelbook/internal/bootstrap"
	"github.com/Domenick1991/travelbook/internal/cache"
	"github.com/Domenick1991/travelbook/internal/events"
	"github.com/Domenick1991/travelbook/internal/kafka"
	"github.com/Domenick1991/travelbook/internal/logger"
	"github.com/Domenick1991/travelbook/internal/service/booking"
	"github.com/Domenick1991/travelbook/internal/service/query"
	"github.com/Domenick1991/travelbook/internal/store"
	"github.com/gin-gonic/gin"
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

	bookingStore := store.NewBookingStore()
	redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Query.CacheTTLSeconds)*time.Second)
	defer redisCache.Close()

	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	dispatcher := events.NewDispatcher()

	bookingService := booking.NewBookingService(
		bookingStore,
		producer,
		cfg.Kafka.BookingsTopic,
		booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
		booking.WithDispatcher(dispatcher),
		booking.WithCache(redisCache),
		booking.WithLogger(zapLogger),
	)
	queryService := query.NewQueryService(bookingStore, redisCache)

	router := gin.Default()
	handler := api.NewBookingHandler(bookingService, queryService)
	handler.Register(router.Group("/bookings"))

	zapLogger.Info("starting http server", zap.String("address", cfg.HTTP.Address))
	if err := bootstrap.Run(ctx, cfg, router); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
