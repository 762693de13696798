package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/shubham-shewale/crypto-ticker/cmd/generator/internal/generator"
	"github.com/shubham-shewale/crypto-ticker/pkg/config"
)

func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	// 2. Initialize Zap Logger
	logger, err := config.NewLogger(cfg.Logger)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	// 3. Build the simulator from the configured instrument set
	sim, err := cfg.Ticker.NewSimulator()
	if err != nil {
		logger.Fatal("Invalid ticker config", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 4. Create Topic (Ensure it exists)
	creator := generator.NewTopicCreator(logger, &generator.RealKafkaDialer{Dialer: kafka.DefaultDialer}, generator.RealClock{}, 4)
	if err := creator.Create(ctx, cfg.Kafka.Brokers, cfg.Kafka.Topic); err != nil {
		logger.Warn("Topic setup incomplete", zap.Error(err))
	}

	// 5. Setup Kafka Writer
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Kafka.Brokers...),
		Topic:        cfg.Kafka.Topic,
		Balancer:     &kafka.Hash{}, // same symbol, same partition
		BatchSize:    len(cfg.Ticker.Instruments),
		BatchTimeout: 10 * time.Millisecond,
		Async:        true,
		Completion:   generator.DeliveryReport(logger),
	}

	// 6. Tick on the configured interval until a shutdown signal arrives
	gen := generator.NewFeedGenerator(logger, writer, sim, generator.RealClock{})
	if err := gen.Run(ctx, generator.NewCronScheduler(logger), cfg.Ticker.Interval); err != nil {
		logger.Error("Generator exited with error", zap.Error(err))
	}

	// 7. Flush Kafka Buffer
	if err := writer.Close(); err != nil {
		logger.Error("Error closing Kafka writer", zap.Error(err))
	} else {
		logger.Info("Kafka writer closed cleanly")
	}
}
