package hub_test

import (
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/shubham-shewale/crypto-ticker/cmd/gateway/internal/hub"
	"github.com/shubham-shewale/crypto-ticker/cmd/gateway/internal/protocol"
	"github.com/shubham-shewale/crypto-ticker/cmd/gateway/internal/testutils"
	"github.com/shubham-shewale/crypto-ticker/pkg/models"
)

var symbols = []string{"BTC", "ETH", "SOL"}

func setup() (*hub.Hub, *testutils.MockPriceStore) {
	store := testutils.NewMockStore()
	return hub.NewHub(store, zap.NewNop(), symbols), store
}

func subscribe(syms ...string) protocol.WSRequest {
	return protocol.WSRequest{Action: protocol.ActionSubscribe, Payload: protocol.RequestPayload{Symbols: syms}}
}

func TestHub_Subscribe_Success(t *testing.T) {
	h, store := setup()
	client := testutils.NewMockClient("c1")

	req := subscribe("BTC")
	req.ID = "req-1"
	h.HandleCommand(client, req)

	last := client.LastMsg()
	if last.Type != protocol.TypeAck || last.ID != "req-1" {
		t.Errorf("Expected ack for req-1, got %+v", last)
	}
	if store.SubCount("BTC") != 1 {
		t.Errorf("Expected Redis subscription to BTC")
	}
}

func TestHub_Subscribe_NormalizesSymbols(t *testing.T) {
	h, store := setup()
	client := testutils.NewMockClient("c1")

	h.HandleCommand(client, subscribe("  btc ", "eth"))

	if store.SubCount("BTC") != 1 || store.SubCount("ETH") != 1 {
		t.Errorf("Expected normalized subscriptions, got %v", store.SubscribedChannels)
	}
}

func TestHub_Subscribe_MixedValidity(t *testing.T) {
	h, _ := setup()
	client := testutils.NewMockClient("c1")

	h.HandleCommand(client, subscribe("BTC", "DOGE"))

	lastMsg := client.LastMsg()
	if lastMsg.Status != protocol.StatusSuccess {
		t.Errorf("Expected success for partial valid subscription")
	}
	if !strings.Contains(lastMsg.Message, "BTC") {
		t.Errorf("Response should contain accepted symbol BTC")
	}
	if strings.Contains(lastMsg.Message, "DOGE") {
		t.Errorf("Response should NOT contain unknown symbol")
	}
}

func TestHub_Subscribe_NoValidSymbols(t *testing.T) {
	h, store := setup()
	client := testutils.NewMockClient("c1")

	h.HandleCommand(client, subscribe("DOGE"))

	if client.LastMsg().Type != protocol.TypeError {
		t.Errorf("Expected error for unknown symbol")
	}
	if len(store.SubscribedChannels) != 0 {
		t.Errorf("No upstream subscription expected")
	}
}

func TestHub_Subscribe_Idempotency(t *testing.T) {
	h, store := setup()
	client := testutils.NewMockClient("c1")

	h.HandleCommand(client, subscribe("BTC"))
	h.HandleCommand(client, subscribe("BTC"))

	// Redis should still have count 1, not 2
	if store.SubCount("BTC") != 1 {
		t.Errorf("Redis should only subscribe once per unique symbol")
	}
}

func TestHub_Subscribe_RepeatedSymbolInOneRequest(t *testing.T) {
	h, store := setup()
	client := testutils.NewMockClient("c1")

	h.HandleCommand(client, subscribe("BTC", "btc"))

	if last := client.LastMsg(); last.Message != "Subscribed to [BTC]" {
		t.Errorf("Expected a single BTC in ack, got %q", last.Message)
	}

	h.HandleCommand(client, protocol.WSRequest{
		Action: protocol.ActionUnsubscribe, Payload: protocol.RequestPayload{Symbols: []string{"BTC"}},
	})
	if store.SubCount("BTC") != 0 {
		t.Errorf("Upstream BTC should be released after unsubscribe, count %d", store.SubCount("BTC"))
	}

	h.HandleCommand(client, subscribe("ETH", " eth", "ETH"))
	h.Unregister(client)
	if store.SubCount("ETH") != 0 {
		t.Errorf("Upstream ETH should be released after unregister, count %d", store.SubCount("ETH"))
	}
}

func TestHub_ConfiguredSymbolsAreNormalized(t *testing.T) {
	store := testutils.NewMockStore()
	h := hub.NewHub(store, zap.NewNop(), []string{"btc", " Eth", "BTC"})
	client := testutils.NewMockClient("c1")

	if got := h.Symbols(); len(got) != 2 || got[0] != "BTC" || got[1] != "ETH" {
		t.Fatalf("Expected [BTC ETH], got %v", got)
	}

	h.HandleCommand(client, subscribe("BTC", "eth"))

	if last := client.LastMsg(); last.Type != protocol.TypeAck {
		t.Fatalf("Expected ack, got %+v", last)
	}
	if store.SubCount("BTC") != 1 || store.SubCount("ETH") != 1 {
		t.Errorf("Expected upstream subscriptions, got %v", store.SubscribedChannels)
	}
}

func TestHub_Subscribe_SendsSnapshot(t *testing.T) {
	h, store := setup()
	store.Snapshots["ETH"] = models.TickerUpdate{Symbol: "ETH", Price: 3521.87, SeqID: 3}
	client := testutils.NewMockClient("c1")

	h.HandleCommand(client, subscribe("ETH"))

	deadline := time.Now().Add(time.Second)
	for client.RawCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	client.Mu.Lock()
	defer client.Mu.Unlock()
	if len(client.RawBytes) != 1 || !strings.Contains(client.RawBytes[0], "3521.87") {
		t.Errorf("Expected ETH snapshot, got %v", client.RawBytes)
	}
}

func TestHub_SharedSubscriptionRefCount(t *testing.T) {
	h, store := setup()
	c1 := testutils.NewMockClient("c1")
	c2 := testutils.NewMockClient("c2")

	h.HandleCommand(c1, subscribe("SOL"))
	h.HandleCommand(c2, subscribe("SOL"))

	if store.SubCount("SOL") != 1 {
		t.Fatalf("Expected a single upstream subscription, got %d", store.SubCount("SOL"))
	}

	h.Unregister(c1)
	if store.SubCount("SOL") != 1 {
		t.Errorf("Upstream dropped while c2 still watching")
	}

	h.Broadcast("SOL", `{"symbol":"SOL"}`)
	if c2.RawCount() != 1 {
		t.Errorf("Expected broadcast to c2")
	}
	if c1.RawCount() != 0 {
		t.Errorf("Unregistered client should get nothing")
	}
	if !c1.Closed {
		t.Errorf("Unregister should close the client")
	}

	h.Unregister(c2)
	if store.SubCount("SOL") != 0 {
		t.Errorf("Expected upstream unsubscribe after last watcher left")
	}
}

func TestHub_Unsubscribe_Logic(t *testing.T) {
	h, store := setup()
	client := testutils.NewMockClient("c1")

	h.HandleCommand(client, subscribe("BTC", "ETH"))
	h.HandleCommand(client, protocol.WSRequest{
		Action: protocol.ActionUnsubscribe, Payload: protocol.RequestPayload{Symbols: []string{"BTC"}},
	})

	if store.SubCount("BTC") != 0 {
		t.Errorf("Redis should be unsubscribed from BTC")
	}
	if store.SubCount("ETH") != 1 {
		t.Errorf("Redis should still be subscribed to ETH")
	}
}

func TestHub_Unsubscribe_NotSubscribed(t *testing.T) {
	h, _ := setup()
	client := testutils.NewMockClient("c1")

	h.HandleCommand(client, protocol.WSRequest{
		Action: protocol.ActionUnsubscribe, Payload: protocol.RequestPayload{Symbols: []string{"SOL"}},
		ID: "err-check",
	})

	if client.LastMsg().Type != protocol.TypeError {
		t.Errorf("Expected error response for unsubscribing non-watched symbol")
	}
}

func TestHub_UnsubscribeAll(t *testing.T) {
	h, store := setup()
	client := testutils.NewMockClient("c1")

	h.HandleCommand(client, subscribe("BTC", "ETH"))
	h.HandleCommand(client, protocol.WSRequest{Action: protocol.ActionUnsubscribeAll})

	if len(store.SubscribedChannels) != 0 {
		t.Errorf("Store should be empty after unsubscribe_all")
	}

	// still registered, can subscribe again
	h.HandleCommand(client, subscribe("BTC"))
	if store.SubCount("BTC") != 1 {
		t.Errorf("Expected resubscribe to work")
	}
}

func TestHub_Snapshot(t *testing.T) {
	h, store := setup()
	store.Snapshots["SOL"] = models.TickerUpdate{Symbol: "SOL", Price: 142.56}
	store.Snapshots["BTC"] = models.TickerUpdate{Symbol: "BTC", Price: 68423.12}
	client := testutils.NewMockClient("c1")

	h.HandleCommand(client, protocol.WSRequest{Action: protocol.ActionSnapshot, ID: "s1"})

	last := client.LastMsg()
	if last.Type != protocol.TypeSnapshot || last.ID != "s1" {
		t.Fatalf("Expected snapshot reply, got %+v", last)
	}
	updates, ok := last.Data.([]models.TickerUpdate)
	if !ok || len(updates) != 2 {
		t.Fatalf("Expected 2 updates, got %#v", last.Data)
	}
	if updates[0].Symbol != "BTC" || updates[1].Symbol != "SOL" {
		t.Errorf("Expected display order BTC, SOL; got %s, %s", updates[0].Symbol, updates[1].Symbol)
	}
	if len(store.SubscribedChannels) != 0 {
		t.Errorf("Snapshot must not subscribe")
	}

	h.HandleCommand(client, protocol.WSRequest{Action: protocol.ActionSnapshot, Payload: protocol.RequestPayload{Symbols: []string{"DOGE"}}})
	if client.LastMsg().Type != protocol.TypeError {
		t.Errorf("Expected error for unknown snapshot symbol")
	}
}

func TestHub_UnknownAction(t *testing.T) {
	h, _ := setup()
	client := testutils.NewMockClient("c1")

	h.HandleCommand(client, protocol.WSRequest{Action: "buy", ID: "x"})

	if last := client.LastMsg(); last.Type != protocol.TypeError || !strings.Contains(last.Message, "buy") {
		t.Errorf("Expected unknown action error, got %+v", last)
	}
}

func TestHub_RaceCondition(t *testing.T) {
	// Run with `go test -race ./...`
	h, _ := setup()
	client := testutils.NewMockClient("c1")

	var wg sync.WaitGroup
	wg.Add(4)
	go func() {
		defer wg.Done()
		h.HandleCommand(client, subscribe("BTC"))
	}()
	go func() {
		defer wg.Done()
		h.HandleCommand(client, protocol.WSRequest{Action: protocol.ActionUnsubscribe, Payload: protocol.RequestPayload{Symbols: []string{"BTC"}}})
	}()
	go func() {
		defer wg.Done()
		h.Broadcast("BTC", "{}")
	}()
	go func() {
		defer wg.Done()
		h.Unregister(client)
	}()
	wg.Wait()
}
