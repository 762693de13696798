package pricefeed

// Instrument is one simulated asset tracked by the feed.
type Instrument struct {
	Symbol        string  `json:"symbol" mapstructure:"symbol"`
	Name          string  `json:"name,omitempty" mapstructure:"name"`
	Price         float64 `json:"price" mapstructure:"price"`
	ChangePercent float64 `json:"change_percent" mapstructure:"change_percent"`
	Color         string  `json:"color,omitempty" mapstructure:"color"` // accent color name, e.g. "orange"
}

// FeedState is an ordered snapshot of every instrument at one point in time.
// Order is display order and never changes for the lifetime of a Simulator.
type FeedState []Instrument

// Symbols returns the symbols in display order.
func (s FeedState) Symbols() []string {
	out := make([]string, len(s))
	for i, inst := range s {
		out[i] = inst.Symbol
	}
	return out
}

// Lookup returns the instrument with the given symbol.
func (s FeedState) Lookup(symbol string) (Instrument, bool) {
	for _, inst := range s {
		if inst.Symbol == symbol {
			return inst, true
		}
	}
	return Instrument{}, false
}

func (s FeedState) clone() FeedState {
	out := make(FeedState, len(s))
	copy(out, s)
	return out
}

// DefaultInstruments is the built-in ticker set shown when nothing is configured.
func DefaultInstruments() []Instrument {
	return []Instrument{
		{Symbol: "BTC", Name: "Bitcoin", Price: 68423.12, ChangePercent: 2.4, Color: "orange"},
		{Symbol: "ETH", Name: "Ethereum", Price: 3521.87, ChangePercent: -1.2, Color: "purple"},
		{Symbol: "SOL", Name: "Solana", Price: 142.56, ChangePercent: 5.7, Color: "purple"},
		{Symbol: "ADA", Name: "Cardano", Price: 0.58, ChangePercent: 0.8, Color: "blue"},
		{Symbol: "DOT", Name: "Polkadot", Price: 7.23, ChangePercent: -0.5, Color: "pink"},
	}
}
