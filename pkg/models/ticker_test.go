package models

import (
	"testing"
	"time"

	"github.com/shubham-shewale/crypto-ticker/pkg/pricefeed"
)

func TestNewTickerUpdate(t *testing.T) {
	at := time.Unix(10, 0)
	u := NewTickerUpdate(pricefeed.Instrument{Symbol: "ETH", Name: "Ethereum", Price: 3521.87, ChangePercent: -1.2, Color: "purple"}, at, 7)

	if u.DisplayPrice != "3,521.87" {
		t.Errorf("Expected 3,521.87, got %s", u.DisplayPrice)
	}
	if u.DisplayChange != "-1.2%" {
		t.Errorf("Expected -1.2%%, got %s", u.DisplayChange)
	}
	if u.Direction != "down" {
		t.Errorf("Expected down, got %s", u.Direction)
	}
	if u.Timestamp != 10_000_000 {
		t.Errorf("Expected unix micro timestamp, got %d", u.Timestamp)
	}
	if u.SeqID != 7 || u.Symbol != "ETH" || u.Name != "Ethereum" || u.Color != "purple" {
		t.Errorf("Unexpected update: %+v", u)
	}
}
