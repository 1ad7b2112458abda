package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	orderapp "tms/application/shipmentorder"
	"tms/cmd"
	"tms/config"
	"tms/domain/company"
	"tms/infrastructure/consumer"
	"tms/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// The consumer keeps the shipment order module's local company projection
// in sync by applying company integration events. Delivery is at-least-once;
// a Redis guard suppresses duplicates and the handlers are idempotent
// upserts for the ones that slip through.
func main() {
	if err := run(); err != nil {
		fmt.Printf("Consumer startup failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := parseConfigPath()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(&cfg.Log, cfg.App.Env); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync()

	container, err := cmd.NewContainer(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Consumer.RedisAddr,
		Password: cfg.Consumer.RedisPassword,
		DB:       cfg.Consumer.RedisDB,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}

	guard := consumer.NewRedisIdempotencyGuard(redisClient, cfg.Consumer.DedupTTL)
	eventConsumer, err := consumer.NewConsumer(cfg.Broker.Brokers, cfg.Consumer.GroupID, cfg.Consumer.Topic, guard)
	if err != nil {
		return fmt.Errorf("failed to create consumer: %w", err)
	}
	defer eventConsumer.Close()

	registerHandlers(eventConsumer, container.ShipmentOrderService)

	logger.Info("Consumer starting",
		zap.String("topic", cfg.Consumer.Topic),
		zap.String("group_id", cfg.Consumer.GroupID),
	)

	if err := eventConsumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("consumer exited with error: %w", err)
	}

	logger.Info("Consumer stopped")
	return nil
}

func registerHandlers(eventConsumer *consumer.Consumer, orderService *orderapp.ApplicationService) {
	eventConsumer.Handle(company.EventCompanyCreated, func(ctx context.Context, payload []byte) error {
		var event company.CompanyCreated
		if err := json.Unmarshal(payload, &event); err != nil {
			return fmt.Errorf("decoding %s: %w", company.EventCompanyCreated, err)
		}
		return orderService.SynchronizeCompany(ctx, orderapp.SynchronizeCompanyRequest{
			CompanyID: event.CompanyID.String(),
			Name:      event.Name,
			Active:    true,
		})
	})
}

func parseConfigPath() string {
	var configPath string
	flag.StringVar(&configPath, "config", "", "Path to config file")
	flag.Parse()
	return configPath
}
