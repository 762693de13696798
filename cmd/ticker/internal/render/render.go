package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/shubham-shewale/crypto-ticker/pkg/pricefeed"
)

// Table writes one row per instrument in display order. When colored is set
// the symbol takes the instrument's accent and the change column is green or
// red by direction.
func Table(w io.Writer, state pricefeed.FeedState, colored bool) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Symbol", "Name", "Price", "24h"})
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	table.SetAutoFormatHeaders(false)
	table.SetBorder(false)
	table.SetColumnSeparator("")

	for _, inst := range state {
		row := []string{inst.Symbol, inst.Name, "$" + pricefeed.FormatPrice(inst.Price), Change(inst.ChangePercent)}
		if !colored {
			table.Append(row)
			continue
		}
		table.Rich(row, []tablewriter.Colors{Accent(inst.Color), {}, {}, directionColor(inst.ChangePercent)})
	}
	table.Render()
}

var accents = map[string]int{
	"red":     tablewriter.FgRedColor,
	"green":   tablewriter.FgGreenColor,
	"orange":  tablewriter.FgYellowColor,
	"yellow":  tablewriter.FgYellowColor,
	"blue":    tablewriter.FgBlueColor,
	"purple":  tablewriter.FgMagentaColor,
	"pink":    tablewriter.FgHiMagentaColor,
	"cyan":    tablewriter.FgCyanColor,
	"white":   tablewriter.FgWhiteColor,
	"gray":    tablewriter.FgHiBlackColor,
	"grey":    tablewriter.FgHiBlackColor,
	"magenta": tablewriter.FgMagentaColor,
}

// Accent maps an instrument color name to a terminal color. Unknown names
// render bold.
func Accent(name string) tablewriter.Colors {
	if c, ok := accents[strings.ToLower(name)]; ok {
		return tablewriter.Colors{tablewriter.Bold, c}
	}
	return tablewriter.Colors{tablewriter.Bold}
}

func directionColor(change float64) tablewriter.Colors {
	if pricefeed.ChangeDirection(change) == pricefeed.Up {
		return tablewriter.Colors{tablewriter.FgGreenColor}
	}
	return tablewriter.Colors{tablewriter.FgRedColor}
}

// Change is the arrow plus the formatted change, e.g. "▲ +2.4%".
func Change(change float64) string {
	return pricefeed.ChangeDirection(change).Arrow() + " " + pricefeed.FormatChange(change)
}

// Item renders one marquee entry, e.g. "BTC $68,423.12 ▲ +2.4%".
func Item(inst pricefeed.Instrument) string {
	return fmt.Sprintf("%s $%s %s", inst.Symbol, pricefeed.FormatPrice(inst.Price), Change(inst.ChangePercent))
}

// Marquee renders the scrolling strip: the whole set twice, so the loop
// wraps without a gap.
func Marquee(state pricefeed.FeedState) string {
	items := make([]string, 0, 2*len(state))
	for pass := 0; pass < 2; pass++ {
		for _, inst := range state {
			items = append(items, Item(inst))
		}
	}
	return strings.Join(items, "   ")
}
