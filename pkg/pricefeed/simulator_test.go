package pricefeed_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shubham-shewale/crypto-ticker/pkg/pricefeed"
)

// scriptedRand cycles through fixed values.
type scriptedRand struct {
	vals []float64
	i    int
}

func (r *scriptedRand) Float64() float64 {
	v := r.vals[r.i%len(r.vals)]
	r.i++
	return v
}

func seeded() pricefeed.Option {
	return pricefeed.WithRand(rand.New(rand.NewSource(42)))
}

func TestNewSimulator_Validation(t *testing.T) {
	cases := []struct {
		name    string
		initial []pricefeed.Instrument
		opts    []pricefeed.Option
	}{
		{"empty set", nil, nil},
		{"duplicate symbol", []pricefeed.Instrument{
			{Symbol: "BTC", Price: 68423.12},
			{Symbol: "BTC", Price: 1},
		}, nil},
		{"zero price", []pricefeed.Instrument{{Symbol: "BTC", Price: 0}}, nil},
		{"negative price", []pricefeed.Instrument{{Symbol: "BTC", Price: -5}}, nil},
		{"nan price", []pricefeed.Instrument{{Symbol: "BTC", Price: math.NaN()}}, nil},
		{"empty symbol", []pricefeed.Instrument{{Symbol: "", Price: 1}}, nil},
		{"negative fraction", []pricefeed.Instrument{{Symbol: "BTC", Price: 1}},
			[]pricefeed.Option{pricefeed.WithMaxPriceFraction(-0.1)}},
		{"infinite jitter", []pricefeed.Instrument{{Symbol: "BTC", Price: 1}},
			[]pricefeed.Option{pricefeed.WithChangeJitter(math.Inf(1))}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sim, err := pricefeed.NewSimulator(tc.initial, tc.opts...)
			require.Error(t, err)
			assert.Nil(t, sim)

			var cfgErr *pricefeed.InvalidConfigError
			assert.ErrorAs(t, err, &cfgErr)
			assert.ErrorIs(t, err, pricefeed.ErrInvalidConfig)
		})
	}
}

func TestNewSimulator_DuplicateNamesSymbol(t *testing.T) {
	_, err := pricefeed.NewSimulator([]pricefeed.Instrument{
		{Symbol: "BTC", Price: 1},
		{Symbol: "ETH", Price: 1},
		{Symbol: "BTC", Price: 2},
	})

	var cfgErr *pricefeed.InvalidConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "BTC", cfgErr.Symbol)
	assert.Contains(t, err.Error(), "BTC")
}

func TestNewSimulator_CopiesInitial(t *testing.T) {
	initial := pricefeed.DefaultInstruments()
	sim, err := pricefeed.NewSimulator(initial, seeded())
	require.NoError(t, err)

	initial[0].Price = 1
	assert.Equal(t, 68423.12, sim.CurrentState()[0].Price)
}

func TestTick_Positivity(t *testing.T) {
	sim, err := pricefeed.NewSimulator(pricefeed.DefaultInstruments(), seeded())
	require.NoError(t, err)

	for i := 0; i < 5000; i++ {
		for _, inst := range sim.Tick() {
			require.Greater(t, inst.Price, 0.0, "tick %d %s", i, inst.Symbol)
		}
	}
}

func TestTick_ClampsLargeFraction(t *testing.T) {
	// 0 maps to a delta of -MaxPriceFraction, i.e. price * (1 - 3).
	sim, err := pricefeed.NewSimulator(
		[]pricefeed.Instrument{{Symbol: "ADA", Price: 0.58}},
		pricefeed.WithMaxPriceFraction(3),
		pricefeed.WithRand(&scriptedRand{vals: []float64{0}}),
	)
	require.NoError(t, err)

	state := sim.Tick()
	assert.Equal(t, pricefeed.MinPrice, state[0].Price)

	state = sim.Tick()
	assert.Equal(t, pricefeed.MinPrice, state[0].Price)
}

func TestTick_SymbolSetStable(t *testing.T) {
	initial := pricefeed.DefaultInstruments()
	sim, err := pricefeed.NewSimulator(initial, seeded())
	require.NoError(t, err)

	want := pricefeed.FeedState(initial).Symbols()
	for i := 0; i < 100; i++ {
		require.Equal(t, want, sim.Tick().Symbols())
	}
	assert.Equal(t, want, sim.CurrentState().Symbols())
}

func TestTick_BoundedPriceMove(t *testing.T) {
	sim, err := pricefeed.NewSimulator(pricefeed.DefaultInstruments(), seeded())
	require.NoError(t, err)

	prev := sim.CurrentState()
	for i := 0; i < 1000; i++ {
		next := sim.Tick()
		for j := range next {
			move := math.Abs(next[j].Price/prev[j].Price - 1)
			require.LessOrEqual(t, move, pricefeed.DefaultMaxPriceFraction+1e-12)

			drift := math.Abs(next[j].ChangePercent - prev[j].ChangePercent)
			require.LessOrEqual(t, drift, pricefeed.DefaultChangeJitter/2+1e-12)
		}
		prev = next
	}
}

func TestTick_ZeroJitterIsFixedPoint(t *testing.T) {
	sim, err := pricefeed.NewSimulator(
		[]pricefeed.Instrument{{Symbol: "BTC", Price: 68423.12, ChangePercent: 2.4}},
		pricefeed.WithMaxPriceFraction(0),
		pricefeed.WithChangeJitter(0),
		seeded(),
	)
	require.NoError(t, err)

	for i := 0; i < 50; i++ {
		state := sim.Tick()
		require.Equal(t, 68423.12, state[0].Price)
		require.Equal(t, 2.4, state[0].ChangePercent)
	}
}

func TestTick_ScriptedDraws(t *testing.T) {
	// Draw order per instrument: price delta, then change delta.
	// 1.0 -> +bound, 0.5 -> 0, 0.0 -> -bound.
	rnd := &scriptedRand{vals: []float64{1.0, 0.0, 0.5, 1.0}}
	sim, err := pricefeed.NewSimulator([]pricefeed.Instrument{
		{Symbol: "BTC", Price: 100, ChangePercent: 1},
		{Symbol: "ETH", Price: 50, ChangePercent: -1},
	}, pricefeed.WithRand(rnd))
	require.NoError(t, err)

	state := sim.Tick()
	assert.InDelta(t, 101.0, state[0].Price, 1e-9)
	assert.InDelta(t, 0.8, state[0].ChangePercent, 1e-9)
	assert.InDelta(t, 50.0, state[1].Price, 1e-9)
	assert.InDelta(t, -0.8, state[1].ChangePercent, 1e-9)
}

func TestTick_ChangePercentIsUnbounded(t *testing.T) {
	// Always draws the upper bound, so change drifts by +0.2 each tick.
	sim, err := pricefeed.NewSimulator(
		[]pricefeed.Instrument{{Symbol: "DOT", Price: 7.23, ChangePercent: 0}},
		pricefeed.WithMaxPriceFraction(0),
		pricefeed.WithRand(&scriptedRand{vals: []float64{1.0}}),
	)
	require.NoError(t, err)

	for i := 0; i < 1000; i++ {
		sim.Tick()
	}
	assert.InDelta(t, 200.0, sim.CurrentState()[0].ChangePercent, 1e-6)
}

func TestSnapshotsAreIsolated(t *testing.T) {
	sim, err := pricefeed.NewSimulator(pricefeed.DefaultInstruments(), seeded())
	require.NoError(t, err)

	snap := sim.CurrentState()
	snap[0].Price = -1
	snap[0].Symbol = "XXX"

	state := sim.CurrentState()
	assert.Equal(t, "BTC", state[0].Symbol)
	assert.Greater(t, state[0].Price, 0.0)

	ticked := sim.Tick()
	ticked[1].Price = 0
	assert.Greater(t, sim.CurrentState()[1].Price, 0.0)
}

func TestNext_DoesNotMutateInput(t *testing.T) {
	state := pricefeed.FeedState(pricefeed.DefaultInstruments())
	before := append(pricefeed.FeedState(nil), state...)

	next := pricefeed.Next(state, rand.New(rand.NewSource(7)), pricefeed.DefaultConfig())

	assert.Equal(t, before, state)
	assert.Len(t, next, len(state))
	assert.Equal(t, state[0].Name, next[0].Name)
	assert.Equal(t, state[0].Color, next[0].Color)
}

func TestNext_SameSeedSameResult(t *testing.T) {
	state := pricefeed.FeedState(pricefeed.DefaultInstruments())
	a := pricefeed.Next(state, rand.New(rand.NewSource(99)), pricefeed.DefaultConfig())
	b := pricefeed.Next(state, rand.New(rand.NewSource(99)), pricefeed.DefaultConfig())
	assert.Equal(t, a, b)
}

func TestFeedState_Lookup(t *testing.T) {
	state := pricefeed.FeedState(pricefeed.DefaultInstruments())

	inst, ok := state.Lookup("SOL")
	require.True(t, ok)
	assert.Equal(t, "Solana", inst.Name)

	_, ok = state.Lookup("DOGE")
	assert.False(t, ok)
}
