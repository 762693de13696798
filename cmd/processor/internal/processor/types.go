package processor

import (
	"context"

	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
)

// UpdateSource yields published ticker updates keyed by symbol.
type UpdateSource interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// SnapshotStore holds the latest update per symbol and fans it out on the
// symbol's price channel. Both writes go through one pipeline.
type SnapshotStore interface {
	Ping(ctx context.Context) *redis.StatusCmd
	Pipeline() redis.Pipeliner
	Close() error
}

var (
	_ UpdateSource  = (*kafka.Reader)(nil)
	_ SnapshotStore = (*redis.Client)(nil)
)
