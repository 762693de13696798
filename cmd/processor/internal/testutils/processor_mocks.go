package testutils

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"

	"github.com/shubham-shewale/crypto-ticker/pkg/models"
)

// TickSource replays a fixed script of ticker messages, then blocks until
// the context ends, like a caught-up consumer.
type TickSource struct {
	mu     sync.Mutex
	msgs   []kafka.Message
	next   int
	closed bool
}

func NewTickSource(updates ...models.TickerUpdate) *TickSource {
	s := &TickSource{}
	for _, u := range updates {
		val, _ := json.Marshal(u)
		s.AddRaw(u.Symbol, val)
	}
	return s
}

// AddRaw appends a message with an arbitrary payload, e.g. broken JSON.
func (s *TickSource) AddRaw(symbol string, payload []byte) *TickSource {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msgs = append(s.msgs, kafka.Message{Key: []byte(symbol), Value: payload})
	return s
}

func (s *TickSource) ReadMessage(ctx context.Context) (kafka.Message, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return kafka.Message{}, io.EOF
	}
	if s.next < len(s.msgs) {
		m := s.msgs[s.next]
		s.next++
		s.mu.Unlock()
		return m, nil
	}
	s.mu.Unlock()

	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (s *TickSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// RedisCmd is one command queued on a RecordingPipeline.
type RedisCmd struct {
	Op  string // SET or PUBLISH
	Key string // key or channel
	TTL time.Duration
}

// RecordingPipeline captures queued commands instead of talking to Redis.
// The first FailExecs executions return ExecErr.
type RecordingPipeline struct {
	redis.Pipeliner // methods the processor never calls stay nil

	FailExecs int
	ExecErr   error

	mu    sync.Mutex
	cmds  []RedisCmd
	execs int
}

func (p *RecordingPipeline) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cmds = append(p.cmds, RedisCmd{Op: "SET", Key: key, TTL: expiration})
	return redis.NewStatusCmd(ctx)
}

func (p *RecordingPipeline) Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cmds = append(p.cmds, RedisCmd{Op: "PUBLISH", Key: channel})
	return redis.NewIntCmd(ctx)
}

func (p *RecordingPipeline) Exec(ctx context.Context) ([]redis.Cmder, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.execs++
	if p.execs <= p.FailExecs {
		return nil, p.ExecErr
	}
	return nil, nil
}

// Execs counts every Exec call, failed ones included.
func (p *RecordingPipeline) Execs() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.execs
}

func (p *RecordingPipeline) Commands() []RedisCmd {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]RedisCmd(nil), p.cmds...)
}

// SnapshotStoreSpy hands out one shared RecordingPipeline.
type SnapshotStoreSpy struct {
	Pipe *RecordingPipeline
}

func NewSnapshotStoreSpy() *SnapshotStoreSpy {
	return &SnapshotStoreSpy{Pipe: &RecordingPipeline{}}
}

func (s *SnapshotStoreSpy) Pipeline() redis.Pipeliner { return s.Pipe }

func (s *SnapshotStoreSpy) Ping(ctx context.Context) *redis.StatusCmd {
	return redis.NewStatusCmd(ctx)
}

func (s *SnapshotStoreSpy) Close() error { return nil }
