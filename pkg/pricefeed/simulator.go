package pricefeed

import (
	"math"
	"math/rand"
	"time"
)

const (
	DefaultMaxPriceFraction = 0.01 // ±1% per tick
	DefaultChangeJitter     = 0.4  // percentage points, spread evenly around zero

	// MinPrice is the floor applied when a perturbation would push a price to
	// zero or below. Only reachable with a max price fraction >= 1.
	MinPrice = 1e-8
)

// Rand is the random source the simulator draws from. *rand.Rand satisfies it.
type Rand interface {
	Float64() float64
}

// Config holds the perturbation bounds applied on every tick.
type Config struct {
	MaxPriceFraction float64
	ChangeJitter     float64
}

func DefaultConfig() Config {
	return Config{
		MaxPriceFraction: DefaultMaxPriceFraction,
		ChangeJitter:     DefaultChangeJitter,
	}
}

func (c Config) validate() error {
	if math.IsNaN(c.MaxPriceFraction) || math.IsInf(c.MaxPriceFraction, 0) || c.MaxPriceFraction < 0 {
		return &InvalidConfigError{Field: "max price fraction", Reason: "must be a finite value >= 0"}
	}
	if math.IsNaN(c.ChangeJitter) || math.IsInf(c.ChangeJitter, 0) || c.ChangeJitter < 0 {
		return &InvalidConfigError{Field: "change jitter", Reason: "must be a finite value >= 0"}
	}
	return nil
}

// Option customizes a Simulator.
type Option func(*Simulator)

func WithMaxPriceFraction(f float64) Option {
	return func(s *Simulator) { s.cfg.MaxPriceFraction = f }
}

func WithChangeJitter(j float64) Option {
	return func(s *Simulator) { s.cfg.ChangeJitter = j }
}

func WithConfig(cfg Config) Option {
	return func(s *Simulator) { s.cfg = cfg }
}

// WithRand replaces the default time-seeded source, typically with a seeded
// or scripted one in tests.
func WithRand(r Rand) Option {
	return func(s *Simulator) { s.rand = r }
}

// Simulator owns the current FeedState and computes the next one on demand.
//
// Tick is not reentrant. Hosts drive it from a single serial schedule.
type Simulator struct {
	cfg   Config
	rand  Rand
	state FeedState
}

// NewSimulator validates the initial set and options. Symbols must be non-empty
// and unique, prices strictly positive and finite.
func NewSimulator(initial []Instrument, opts ...Option) (*Simulator, error) {
	s := &Simulator{cfg: DefaultConfig()}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.cfg.validate(); err != nil {
		return nil, err
	}
	if s.rand == nil {
		s.rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	if len(initial) == 0 {
		return nil, &InvalidConfigError{Field: "instruments", Reason: "at least one instrument is required"}
	}

	seen := make(map[string]bool, len(initial))
	for _, inst := range initial {
		if inst.Symbol == "" {
			return nil, &InvalidConfigError{Field: "symbol", Reason: "must not be empty"}
		}
		if seen[inst.Symbol] {
			return nil, &InvalidConfigError{Field: "symbol", Symbol: inst.Symbol, Reason: "duplicated"}
		}
		seen[inst.Symbol] = true

		if math.IsNaN(inst.Price) || math.IsInf(inst.Price, 0) || inst.Price <= 0 {
			return nil, &InvalidConfigError{Field: "price", Symbol: inst.Symbol, Reason: "must be a finite value > 0"}
		}
		if math.IsNaN(inst.ChangePercent) || math.IsInf(inst.ChangePercent, 0) {
			return nil, &InvalidConfigError{Field: "change percent", Symbol: inst.Symbol, Reason: "must be finite"}
		}
	}

	s.state = FeedState(initial).clone()
	return s, nil
}

// Tick perturbs every instrument once and replaces the current state.
func (s *Simulator) Tick() FeedState {
	s.state = Next(s.state, s.rand, s.cfg)
	return s.state.clone()
}

// CurrentState returns a copy of the latest snapshot.
func (s *Simulator) CurrentState() FeedState {
	return s.state.clone()
}

func (s *Simulator) Config() Config {
	return s.cfg
}

// Next is the pure step function behind Tick. state is not modified.
//
// Each instrument draws its own price delta in [-MaxPriceFraction, +MaxPriceFraction]
// and change delta in [-ChangeJitter/2, +ChangeJitter/2]. Change percent
// accumulates without bound.
func Next(state FeedState, rnd Rand, cfg Config) FeedState {
	next := make(FeedState, len(state))
	for i, inst := range state {
		priceDelta := uniform(rnd, cfg.MaxPriceFraction)
		changeDelta := uniform(rnd, cfg.ChangeJitter/2)

		price := inst.Price * (1 + priceDelta)
		if !(price > 0) {
			price = MinPrice
		}

		inst.Price = price
		inst.ChangePercent += changeDelta
		next[i] = inst
	}
	return next
}

// uniform draws from [-bound, +bound). It consumes one value from rnd even
// when bound is 0.
func uniform(rnd Rand, bound float64) float64 {
	return (rnd.Float64()*2 - 1) * bound
}
