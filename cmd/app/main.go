package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/nkiryanov/officebook/config"
	"github.com/nkiryanov/officebook/internal/bootstrap"
	"github.com/nkiryanov/officebook/internal/cache"
	"github.com/nkiryanov/officebook/internal/kafka"
	"github.com/nkiryanov/officebook/internal/repository"
	"github.com/nkiryanov/officebook/internal/service/booking"
	"github.com/nkiryanov/officebook/internal/service/resources"
	"github.com/nkiryanov/officebook/internal/service/schedule"
)

func main() {
	_ = godotenv.Load()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Booking.ResourcesCacheTTLSecond)*time.Second)
	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	resourceRepo := repository.NewResourceRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool)
	workflowRepo := repository.NewWorkflowRepository(pool)

	resourceService := resources.NewResourceService(resourceRepo, redisCache)
	bookingService := booking.NewBookingService(
		bookingRepo,
		resourceRepo,
		workflowRepo,
		redisCache,
		producer,
		cfg.Kafka.BookingEventsTopic,
		time.Duration(cfg.Booking.AdmissionLockSeconds)*time.Second,
		booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
	)
	suggester := schedule.NewSuggester(
		bookingRepo,
		cfg.Schedule.OpeningHour,
		cfg.Schedule.CutoffHour,
		time.Duration(cfg.Schedule.SlotStepMinutes)*time.Minute,
	)

	deps := bootstrap.Deps{
		Bookings:  bookingService,
		Resources: resourceService,
		Workflows: workflowRepo,
		Suggester: suggester,
	}
	if err := bootstrap.Run(ctx, cfg, deps); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
