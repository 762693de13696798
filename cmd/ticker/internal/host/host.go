package host

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/shubham-shewale/crypto-ticker/pkg/pricefeed"
)

// Host drives a simulator from a single time.Ticker, so ticks are always serial.
type Host struct {
	sim      *pricefeed.Simulator
	interval time.Duration
	logger   *zap.Logger
	onState  func(pricefeed.FeedState)
}

func New(sim *pricefeed.Simulator, interval time.Duration, logger *zap.Logger, onState func(pricefeed.FeedState)) *Host {
	return &Host{sim: sim, interval: interval, logger: logger, onState: onState}
}

// Run hands the current state to onState, then ticks every interval. It stops
// after maxTicks ticks (0 means no limit) or when ctx is done.
func (h *Host) Run(ctx context.Context, maxTicks int) error {
	h.onState(h.sim.CurrentState())

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for n := 0; maxTicks == 0 || n < maxTicks; n++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			state := h.sim.Tick()
			h.logger.Debug("tick", zap.Int("n", n+1))
			h.onState(state)
		}
	}
	return nil
}
