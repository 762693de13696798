package pricefeed

import (
	"math"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Direction selects the up/down indicator shown next to a change value.
type Direction int

const (
	Up Direction = iota
	Down
)

func (d Direction) String() string {
	if d == Down {
		return "down"
	}
	return "up"
}

// Arrow is the glyph renderers put in front of the change value.
func (d Direction) Arrow() string {
	if d == Down {
		return "▼"
	}
	return "▲"
}

// ChangeDirection is Up for change >= 0, Down otherwise.
func ChangeDirection(change float64) Direction {
	if change >= 0 {
		return Up
	}
	return Down
}

// FormatPrice renders price with two decimals and English thousands grouping,
// e.g. 68423.12 -> "68,423.12".
func FormatPrice(price float64) string {
	return FormatPriceIn(language.English, price)
}

// FormatPriceIn is FormatPrice with the grouping convention of tag.
func FormatPriceIn(tag language.Tag, price float64) string {
	return message.NewPrinter(tag).Sprintf("%.2f", price)
}

// FormatChange renders the magnitude with one decimal and a percent suffix.
// The sign marker is decided on the raw value before rounding: "+" for >= 0,
// "-" otherwise. So 2.4 -> "+2.4%", -1.2 -> "-1.2%", 0 -> "+0.0%".
func FormatChange(change float64) string {
	sign := "+"
	if ChangeDirection(change) == Down {
		sign = "-"
	}
	return sign + strconv.FormatFloat(math.Abs(change), 'f', 1, 64) + "%"
}
