package testutils

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/shubham-shewale/crypto-ticker/cmd/gateway/internal/protocol"
	"github.com/shubham-shewale/crypto-ticker/pkg/models"
)

// MockClient simulates a connected websocket client
type MockClient struct {
	IDVal    string
	Messages []protocol.WSResponse // Stores structured responses
	RawBytes []string              // Stores raw bytes
	Closed   bool
	Mu       sync.Mutex
}

func NewMockClient(id string) *MockClient {
	return &MockClient{IDVal: id, Messages: make([]protocol.WSResponse, 0)}
}

func (m *MockClient) ID() string { return m.IDVal }

func (m *MockClient) Close() {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	m.Closed = true
}

func (m *MockClient) SendJSON(v interface{}) {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	if resp, ok := v.(protocol.WSResponse); ok {
		m.Messages = append(m.Messages, resp)
	}
}

func (m *MockClient) SendBytes(b []byte) {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	m.RawBytes = append(m.RawBytes, string(b))
}

func (m *MockClient) LastMsg() protocol.WSResponse {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	if len(m.Messages) == 0 {
		return protocol.WSResponse{}
	}
	return m.Messages[len(m.Messages)-1]
}

func (m *MockClient) RawCount() int {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	return len(m.RawBytes)
}

// MockPriceStore simulates Redis
type MockPriceStore struct {
	SubscribedChannels map[string]int // symbol -> count
	Snapshots          map[string]models.TickerUpdate
	Mu                 sync.Mutex
}

func NewMockStore() *MockPriceStore {
	return &MockPriceStore{
		SubscribedChannels: make(map[string]int),
		Snapshots:          make(map[string]models.TickerUpdate),
	}
}

func (m *MockPriceStore) GetSnapshots(ctx context.Context, symbols []string) ([]string, error) {
	updates, _ := m.GetUpdates(ctx, symbols)
	var out []string
	for _, u := range updates {
		b, _ := json.Marshal(u)
		out = append(out, string(b))
	}
	return out, nil
}

func (m *MockPriceStore) GetUpdates(ctx context.Context, symbols []string) ([]models.TickerUpdate, error) {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	var out []models.TickerUpdate
	for _, s := range symbols {
		if u, ok := m.Snapshots[s]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (m *MockPriceStore) SubscribeToFeed(ctx context.Context, symbol string) error {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	m.SubscribedChannels[symbol]++
	return nil
}

func (m *MockPriceStore) UnsubscribeFromFeed(ctx context.Context, symbol string) error {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	m.SubscribedChannels[symbol]--
	if m.SubscribedChannels[symbol] <= 0 {
		delete(m.SubscribedChannels, symbol)
	}
	return nil
}

func (m *MockPriceStore) RunPubSub(ctx context.Context, onMessage func(symbol string, payload string)) {
	// No-op for unit tests
}

func (m *MockPriceStore) Close() error { return nil }

func (m *MockPriceStore) SubCount(symbol string) int {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	return m.SubscribedChannels[symbol]
}
