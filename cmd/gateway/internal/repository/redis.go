package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/shubham-shewale/crypto-ticker/pkg/models"
)

// Compile-time check to ensure RedisStore implements PriceStore
var _ PriceStore = (*RedisStore)(nil)

type RedisStore struct {
	client *redis.Client
	pubsub *redis.PubSub
	mu     sync.Mutex // serializes channel (un)subscribe calls
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{
		client: client,
		pubsub: client.Subscribe(context.Background()),
	}
}

// GetSnapshots fetches the latest stored update for each symbol with one MGET
func (r *RedisStore) GetSnapshots(ctx context.Context, symbols []string) ([]string, error) {
	if len(symbols) == 0 {
		return nil, nil
	}

	keys := make([]string, len(symbols))
	for i, sym := range symbols {
		keys[i] = models.SnapshotKey(sym)
	}

	results, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("mget snapshots: %w", err)
	}

	var snapshots []string
	for _, val := range results {
		if payload, ok := val.(string); ok && payload != "" {
			snapshots = append(snapshots, payload)
		}
	}
	return snapshots, nil
}

func (r *RedisStore) GetUpdates(ctx context.Context, symbols []string) ([]models.TickerUpdate, error) {
	raw, err := r.GetSnapshots(ctx, symbols)
	if err != nil {
		return nil, err
	}

	updates := make([]models.TickerUpdate, 0, len(raw))
	for _, payload := range raw {
		var u models.TickerUpdate
		if err := json.Unmarshal([]byte(payload), &u); err != nil {
			return nil, fmt.Errorf("decode snapshot: %w", err)
		}
		updates = append(updates, u)
	}
	return updates, nil
}

func (r *RedisStore) SubscribeToFeed(ctx context.Context, symbol string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pubsub.Subscribe(ctx, models.PriceChannel(symbol))
}

func (r *RedisStore) UnsubscribeFromFeed(ctx context.Context, symbol string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pubsub.Unsubscribe(ctx, models.PriceChannel(symbol))
}

// RunPubSub blocks, handing every channel message to onMessage with the symbol
// taken from the channel name. It returns when ctx is done or the store is closed.
func (r *RedisStore) RunPubSub(ctx context.Context, onMessage func(symbol string, payload string)) {
	ch := r.pubsub.Channel()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			symbol := strings.TrimPrefix(msg.Channel, models.PriceChannelPrefix)
			if symbol == msg.Channel || symbol == "" {
				continue
			}
			onMessage(symbol, msg.Payload)
		}
	}
}

func (r *RedisStore) Close() error {
	if err := r.pubsub.Close(); err != nil {
		return err
	}
	return r.client.Close()
}
