package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"tms/cmd"
	"tms/config"
	"tms/infrastructure/gateway"
	"tms/infrastructure/outbox"
	"tms/pkg/logger"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// The worker drains every module's outbox table to the broker. One process
// runs one dispatcher per module; running several worker replicas is safe
// because dispatchers claim records under a lease before publishing.
func main() {
	if err := run(); err != nil {
		fmt.Printf("Worker startup failed: %v\n", err)
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

	if !cfg.Outbox.Enabled {
		logger.Info("Outbox dispatcher is disabled by config; exiting")
		return nil
	}

	container, err := cmd.NewContainer(cfg)
	if err != nil {
		return err
	}

	tracker := outbox.NewTracker(cfg.Outbox.AckTimeout)
	kafkaGateway, err := gateway.NewKafkaGateway(
		cfg.Broker.Brokers,
		cfg.Broker.Router,
		cfg.Broker.WriteTimeout,
		cfg.Broker.MaxAttempts,
		tracker,
	)
	if err != nil {
		return fmt.Errorf("failed to create kafka gateway: %w", err)
	}
	defer kafkaGateway.Close()

	stores := []outbox.Store{container.CompanyOutbox, container.ShipmentOrderOutbox}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	group, groupCtx := errgroup.WithContext(ctx)
	for _, store := range stores {
		dispatcher, err := outbox.NewDispatcher(store, kafkaGateway, tracker, cfg.Outbox.PollInterval, cfg.Outbox.BatchSize)
		if err != nil {
			return fmt.Errorf("failed to create dispatcher for %s: %w", store.Table(), err)
		}
		group.Go(func() error {
			return dispatcher.Run(groupCtx)
		})
	}

	logger.Info("Outbox worker started",
		zap.Int("dispatchers", len(stores)),
		zap.Duration("poll_interval", cfg.Outbox.PollInterval),
		zap.Int("batch_size", cfg.Outbox.BatchSize),
	)

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("outbox worker exited with error: %w", err)
	}

	logger.Info("Outbox worker stopped")
	return nil
}

func parseConfigPath() string {
	var configPath string
	flag.StringVar(&configPath, "config", "", "Path to config file")
	flag.Parse()
	return configPath
}
