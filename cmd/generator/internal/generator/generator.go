package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/shubham-shewale/crypto-ticker/pkg/models"
	"github.com/shubham-shewale/crypto-ticker/pkg/pricefeed"
)

// FeedGenerator hosts the price simulator: it owns the recurring tick and
// publishes every instrument of each new snapshot to Kafka.
type FeedGenerator struct {
	logger      *zap.Logger
	writer      KafkaWriter
	sim         *pricefeed.Simulator
	clock       Clock
	seqCounters map[string]int64
}

func NewFeedGenerator(
	logger *zap.Logger,
	writer KafkaWriter,
	sim *pricefeed.Simulator,
	clock Clock,
) *FeedGenerator {
	return &FeedGenerator{
		logger:      logger,
		writer:      writer,
		sim:         sim,
		clock:       clock,
		seqCounters: make(map[string]int64),
	}
}

// Run publishes the initial snapshot, then ticks and publishes every interval
// until ctx is cancelled. The scheduler is stopped before Run returns.
func (fg *FeedGenerator) Run(ctx context.Context, sched Scheduler, interval time.Duration) error {
	state := fg.sim.CurrentState()
	fg.logger.Info("Generator Started",
		zap.Strings("symbols", state.Symbols()),
		zap.Duration("interval", interval),
	)

	if err := fg.publish(ctx, state); err != nil {
		fg.logger.Error("Initial publish failed", zap.Error(err))
	}

	err := sched.Every(interval, func() {
		if err := fg.Publish(ctx); err != nil {
			fg.logger.Error("Kafka Write Error", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("schedule tick: %w", err)
	}
	sched.Start()

	<-ctx.Done()
	<-sched.Stop().Done()
	fg.logger.Info("Generator stopped")
	return nil
}

// Publish advances the simulator by one tick and writes the new snapshot.
// Ticking itself never fails; only the write can.
func (fg *FeedGenerator) Publish(ctx context.Context) error {
	return fg.publish(ctx, fg.sim.Tick())
}

func (fg *FeedGenerator) publish(ctx context.Context, state pricefeed.FeedState) error {
	now := fg.clock.Now()
	msgs := make([]kafka.Message, 0, len(state))

	for _, inst := range state {
		fg.seqCounters[inst.Symbol]++
		update := models.NewTickerUpdate(inst, now, fg.seqCounters[inst.Symbol])

		payload, err := json.Marshal(update)
		if err != nil {
			return fmt.Errorf("marshal %s: %w", inst.Symbol, err)
		}

		msgs = append(msgs, kafka.Message{
			Key:   []byte(inst.Symbol), // Key ensures partition ordering
			Value: payload,
		})
	}

	if err := fg.writer.WriteMessages(ctx, msgs...); err != nil {
		return err
	}

	fg.logger.Debug("Published snapshot", zap.Int("instruments", len(msgs)))
	return nil
}

// DeliveryReport logs the outcome of an async batch. WriteMessages on an
// async writer returns before the broker answers, so delivery errors only
// surface here.
func DeliveryReport(logger *zap.Logger) func(messages []kafka.Message, err error) {
	return func(messages []kafka.Message, err error) {
		if err != nil {
			keys := make([]string, len(messages))
			for i, m := range messages {
				keys[i] = string(m.Key)
			}
			logger.Error("Kafka Write Error", zap.Strings("symbols", keys), zap.Error(err))
			return
		}
		logger.Debug("Batch delivered", zap.Int("messages", len(messages)))
	}
}
