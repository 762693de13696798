package models

import (
	"time"

	"github.com/shubham-shewale/crypto-ticker/pkg/pricefeed"
)

// TickerUpdate is one instrument's state after a tick, as published on the wire
type TickerUpdate struct {
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name,omitempty"`
	Price         float64 `json:"price"`
	ChangePercent float64 `json:"change_percent"`
	DisplayPrice  string  `json:"display_price"`   // e.g. "68,423.12"
	DisplayChange string  `json:"display_change"`  // e.g. "+2.4%"
	Direction     string  `json:"direction"`       // "up" or "down"
	Timestamp     int64   `json:"timestamp"`       // unix micro
	SeqID         int64   `json:"seq_id"`          // monotonic counter per symbol
	Color         string  `json:"color,omitempty"` // accent color name
}

// NewTickerUpdate renders inst with the display formatting rules.
func NewTickerUpdate(inst pricefeed.Instrument, at time.Time, seq int64) TickerUpdate {
	return TickerUpdate{
		Symbol:        inst.Symbol,
		Name:          inst.Name,
		Price:         inst.Price,
		ChangePercent: inst.ChangePercent,
		DisplayPrice:  pricefeed.FormatPrice(inst.Price),
		DisplayChange: pricefeed.FormatChange(inst.ChangePercent),
		Direction:     pricefeed.ChangeDirection(inst.ChangePercent).String(),
		Timestamp:     at.UnixMicro(),
		SeqID:         seq,
		Color:         inst.Color,
	}
}

const (
	SnapshotKeyPrefix  = "ticker:"
	PriceChannelPrefix = "prices."
)

// SnapshotKey is the Redis key holding the latest update for symbol.
func SnapshotKey(symbol string) string { return SnapshotKeyPrefix + symbol }

// PriceChannel is the Redis pub/sub channel carrying updates for symbol.
func PriceChannel(symbol string) string { return PriceChannelPrefix + symbol }
