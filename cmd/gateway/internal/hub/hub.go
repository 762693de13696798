package hub

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/shubham-shewale/crypto-ticker/cmd/gateway/internal/protocol"
	"github.com/shubham-shewale/crypto-ticker/cmd/gateway/internal/repository"
)

// Subscriber is one connected watcher of the ticker.
type Subscriber interface {
	ID() string
	SendJSON(v interface{})
	SendBytes(b []byte)
	Close()
}

// Hub fans ticker updates out to subscribers. Upstream channels are
// ref-counted: the first watcher of a symbol subscribes, the last one leaving
// unsubscribes.
type Hub struct {
	subscribers map[string]map[Subscriber]bool
	clientSubs  map[Subscriber]map[string]bool
	refCount    map[string]int

	symbols map[string]bool
	order   []string

	store  repository.PriceStore
	logger *zap.Logger
	mu     sync.RWMutex
}

// NewHub accepts subscriptions only for symbols, which also fixes the order
// of snapshot replies. Symbols are matched case-insensitively.
func NewHub(store repository.PriceStore, logger *zap.Logger, symbols []string) *Hub {
	known := make(map[string]bool, len(symbols))
	order := make([]string, 0, len(symbols))
	for _, s := range symbols {
		s = normalize(s)
		if known[s] {
			continue
		}
		known[s] = true
		order = append(order, s)
	}
	return &Hub{
		subscribers: make(map[string]map[Subscriber]bool),
		clientSubs:  make(map[Subscriber]map[string]bool),
		refCount:    make(map[string]int),
		symbols:     known,
		order:       order,
		store:       store,
		logger:      logger,
	}
}

// Start pumps upstream updates into Broadcast until ctx is done.
func (h *Hub) Start(ctx context.Context) {
	go h.store.RunPubSub(ctx, h.Broadcast)
}

// Symbols returns the tradable symbols in display order.
func (h *Hub) Symbols() []string {
	return append([]string(nil), h.order...)
}

func (h *Hub) HandleCommand(client Subscriber, req protocol.WSRequest) {
	for i, s := range req.Payload.Symbols {
		req.Payload.Symbols[i] = normalize(s)
	}

	switch req.Action {
	case protocol.ActionSubscribe:
		h.handleSubscribe(client, req)
	case protocol.ActionUnsubscribe:
		h.handleUnsubscribe(client, req)
	case protocol.ActionUnsubscribeAll:
		h.handleUnsubscribeAll(client, req)
	case protocol.ActionSnapshot:
		h.handleSnapshot(client, req)
	default:
		h.sendError(client, req.ID, "Unknown action: "+req.Action)
	}
}

func (h *Hub) handleSubscribe(client Subscriber, req protocol.WSRequest) {
	h.mu.Lock()
	defer h.mu.Unlock()

	var valid []string
	seen := make(map[string]bool, len(req.Payload.Symbols))
	for _, s := range req.Payload.Symbols {
		if !h.symbols[s] || seen[s] {
			continue
		}
		seen[s] = true
		// Idempotency: Ignore if already subscribed
		if h.clientSubs[client][s] {
			continue
		}
		valid = append(valid, s)
	}

	if len(valid) == 0 {
		h.sendError(client, req.ID, "No valid/new symbols provided")
		return
	}

	if h.clientSubs[client] == nil {
		h.clientSubs[client] = make(map[string]bool)
	}

	for _, sym := range valid {
		h.clientSubs[client][sym] = true
		if h.subscribers[sym] == nil {
			h.subscribers[sym] = make(map[Subscriber]bool)
		}
		h.subscribers[sym][client] = true

		h.refCount[sym]++
		if h.refCount[sym] == 1 {
			if err := h.store.SubscribeToFeed(context.Background(), sym); err != nil {
				h.logger.Error("Failed to subscribe upstream", zap.String("symbol", sym), zap.Error(err))
			}
		}
	}

	h.sendAck(client, req.ID, fmt.Sprintf("Subscribed to %v", valid))

	// Current prices first, so the ticker is not blank until the next tick
	go func(targets []string) {
		snapshots, err := h.store.GetSnapshots(context.Background(), targets)
		if err != nil {
			h.logger.Warn("Snapshot fetch failed", zap.Strings("symbols", targets), zap.Error(err))
			return
		}
		for _, snap := range snapshots {
			client.SendBytes([]byte(snap))
		}
	}(valid)
}

func (h *Hub) handleUnsubscribe(client Subscriber, req protocol.WSRequest) {
	h.mu.Lock()
	defer h.mu.Unlock()

	var removed []string
	if subs, ok := h.clientSubs[client]; ok {
		for _, sym := range req.Payload.Symbols {
			if subs[sym] {
				delete(subs, sym)
				delete(h.subscribers[sym], client)
				removed = append(removed, sym)
				h.decreaseRefCount(sym)
			}
		}
	}

	if len(removed) > 0 {
		h.sendAck(client, req.ID, fmt.Sprintf("Unsubscribed from %v", removed))
	} else {
		h.sendError(client, req.ID, fmt.Sprintf("Not subscribed to: %v", req.Payload.Symbols))
	}
}

func (h *Hub) handleUnsubscribeAll(client Subscriber, req protocol.WSRequest) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.dropAll(client)
	if _, ok := h.clientSubs[client]; ok {
		h.clientSubs[client] = make(map[string]bool)
	}
	h.sendAck(client, req.ID, "Unsubscribed from all symbols")
}

// handleSnapshot replies with the stored updates for the requested symbols,
// or for every known symbol when none are given.
func (h *Hub) handleSnapshot(client Subscriber, req protocol.WSRequest) {
	targets := h.order
	if len(req.Payload.Symbols) > 0 {
		targets = nil
		for _, s := range req.Payload.Symbols {
			if h.symbols[s] {
				targets = append(targets, s)
			}
		}
		if len(targets) == 0 {
			h.sendError(client, req.ID, "No valid symbols provided")
			return
		}
	}

	updates, err := h.store.GetUpdates(context.Background(), targets)
	if err != nil {
		h.logger.Error("Snapshot fetch failed", zap.Error(err))
		h.sendError(client, req.ID, "Snapshot unavailable")
		return
	}
	client.SendJSON(protocol.WSResponse{Type: protocol.TypeSnapshot, ID: req.ID, Status: protocol.StatusSuccess, Data: updates})
}

func (h *Hub) Unregister(client Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.dropAll(client)
	delete(h.clientSubs, client)
	client.Close()
}

func (h *Hub) Broadcast(symbol string, payload string) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if clients, ok := h.subscribers[symbol]; ok {
		msgBytes := []byte(payload)
		for client := range clients {
			client.SendBytes(msgBytes)
		}
	}
}

// dropAll removes every subscription of client. Caller holds h.mu.
func (h *Hub) dropAll(client Subscriber) {
	for sym := range h.clientSubs[client] {
		delete(h.subscribers[sym], client)
		h.decreaseRefCount(sym)
	}
}

func (h *Hub) decreaseRefCount(symbol string) {
	h.refCount[symbol]--
	if h.refCount[symbol] <= 0 {
		if err := h.store.UnsubscribeFromFeed(context.Background(), symbol); err != nil {
			h.logger.Error("Failed to unsubscribe upstream", zap.String("symbol", symbol), zap.Error(err))
		}
		delete(h.refCount, symbol)
		delete(h.subscribers, symbol)
	}
}

func (h *Hub) sendAck(c Subscriber, id, msg string) {
	c.SendJSON(protocol.WSResponse{Type: protocol.TypeAck, ID: id, Status: protocol.StatusSuccess, Message: msg})
}

func (h *Hub) sendError(c Subscriber, id, msg string) {
	c.SendJSON(protocol.WSResponse{Type: protocol.TypeError, ID: id, Message: msg})
}

func normalize(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}
