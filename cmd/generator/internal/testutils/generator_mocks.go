package testutils

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/shubham-shewale/crypto-ticker/cmd/generator/internal/generator"
)

type MockKafkaWriter struct {
	Messages   []kafka.Message
	Batches    int
	Mu         sync.Mutex
	ShouldFail bool
}

func (m *MockKafkaWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	if m.ShouldFail {
		return errors.New("kafka error")
	}
	m.Batches++
	m.Messages = append(m.Messages, msgs...)
	return nil
}

func (m *MockKafkaWriter) Close() error { return nil }

type MockClock struct {
	CurrentTime time.Time
}

func (m *MockClock) Now() time.Time        { return m.CurrentTime }
func (m *MockClock) Sleep(d time.Duration) { m.CurrentTime = m.CurrentTime.Add(d) }

// MockRand always returns ValFloat; 0.5 means "no movement" for the simulator.
type MockRand struct {
	ValFloat float64
}

func (m *MockRand) Float64() float64 { return m.ValFloat }

// MockScheduler fires the registered func Fires times, synchronously, on Start.
type MockScheduler struct {
	Fires    int
	Interval time.Duration
	Stopped  bool
	fn       func()
}

var _ generator.Scheduler = (*MockScheduler)(nil)

func (m *MockScheduler) Every(interval time.Duration, fn func()) error {
	m.Interval = interval
	m.fn = fn
	return nil
}

func (m *MockScheduler) Start() {
	for i := 0; i < m.Fires; i++ {
		m.fn()
	}
}

func (m *MockScheduler) Stop() context.Context {
	m.Stopped = true
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	return ctx
}

type MockKafkaConn struct {
	CreatedTopics []string
	CreateErr     error
	NotReady      bool
}

func (m *MockKafkaConn) Controller() (kafka.Broker, error) {
	return kafka.Broker{Host: "localhost", Port: 9092}, nil
}
func (m *MockKafkaConn) Close() error { return nil }
func (m *MockKafkaConn) CreateTopics(topics ...kafka.TopicConfig) error {
	for _, t := range topics {
		m.CreatedTopics = append(m.CreatedTopics, t.Topic)
	}
	return m.CreateErr
}
func (m *MockKafkaConn) ReadPartitions(topics ...string) ([]kafka.Partition, error) {
	if m.NotReady {
		return nil, nil
	}
	return []kafka.Partition{{ID: 0}}, nil
}

type MockKafkaDialer struct {
	ConnSpy *MockKafkaConn
	Dials   []string
	FailAll bool
}

func (m *MockKafkaDialer) DialContext(ctx context.Context, network, address string) (generator.KafkaConn, error) {
	m.Dials = append(m.Dials, address)
	if m.FailAll {
		return nil, errors.New("connection refused")
	}
	if m.ConnSpy == nil {
		m.ConnSpy = &MockKafkaConn{}
	}
	return m.ConnSpy, nil
}
