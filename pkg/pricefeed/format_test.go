package pricefeed_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shubham-shewale/crypto-ticker/pkg/pricefeed"
)

func TestFormatPrice(t *testing.T) {
	cases := map[float64]string{
		68423.12:    "68,423.12",
		3521.87:     "3,521.87",
		142.56:      "142.56",
		0.58:        "0.58",
		7.2:         "7.20",
		1234567.891: "1,234,567.89",
	}
	for in, want := range cases {
		assert.Equal(t, want, pricefeed.FormatPrice(in), "price %v", in)
	}
}

func TestFormatChange(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{2.4, "+2.4%"},
		{-1.2, "-1.2%"},
		{0, "+0.0%"},
		{5.75, "+5.8%"},
		{-0.04, "-0.0%"},
		{123.45, "+123.5%"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, pricefeed.FormatChange(tc.in), "change %v", tc.in)
	}
}

func TestChangeDirection(t *testing.T) {
	assert.Equal(t, pricefeed.Up, pricefeed.ChangeDirection(2.4))
	assert.Equal(t, pricefeed.Up, pricefeed.ChangeDirection(0))
	assert.Equal(t, pricefeed.Down, pricefeed.ChangeDirection(-0.01))

	assert.Equal(t, "up", pricefeed.Up.String())
	assert.Equal(t, "down", pricefeed.Down.String())
	assert.Equal(t, "▲", pricefeed.Up.Arrow())
	assert.Equal(t, "▼", pricefeed.Down.Arrow())
}
