package repository

import (
	"context"

	"github.com/shubham-shewale/crypto-ticker/pkg/models"
)

// PriceStore is the gateway's view of the processed ticker feed.
type PriceStore interface {
	// GetSnapshots returns the raw stored updates for symbols, skipping missing ones, in request order.
	GetSnapshots(ctx context.Context, symbols []string) ([]string, error)
	// GetUpdates is GetSnapshots decoded.
	GetUpdates(ctx context.Context, symbols []string) ([]models.TickerUpdate, error)
	SubscribeToFeed(ctx context.Context, symbol string) error
	UnsubscribeFromFeed(ctx context.Context, symbol string) error
	RunPubSub(ctx context.Context, onMessage func(symbol string, payload string))
	Close() error
}
