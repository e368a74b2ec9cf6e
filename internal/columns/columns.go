// Package columns holds the canonical column order for each exportable
// table. CSV headers, JSON key order and the column picker all read from
// here; nothing derives column order from record shape at runtime.
package columns

import "coingecko-exporter/internal/types"

// Column pairs a record key with its display label.
type Column struct {
	Key   string
	Label string
}

// Spec is an ordered list of columns.
type Spec []Column

var Portfolio = Spec{
	{"coin", "Coin"},
	{"symbol", "Symbol"},
	{"price", "Price"},
	{"change1h", "1h Change"},
	{"change24h", "24h Change"},
	{"change7d", "7d Change"},
	{"volume", "24h Volume"},
	{"marketCap", "Market Cap"},
	{"holdingsValue", "Holdings Value"},
	{"totalHoldings", "Total Holdings"},
	{"pnlValue", "PNL Value"},
	{"pnlPercentage", "PNL Percentage"},
}

var Transactions = Spec{
	{"type", "Type"},
	{"price", "Price"},
	{"quantity", "Quantity"},
	{"dateTime", "Date & Time"},
	{"fees", "Fees"},
	{"cost", "Cost"},
	{"proceeds", "Proceeds"},
	{"pnl", "PNL"},
	{"notes", "Notes"},
}

// Default selections applied when no preference has been saved yet.
var (
	DefaultPortfolio    = []string{"coin", "symbol", "price", "holdingsValue", "totalHoldings", "pnlValue", "pnlPercentage"}
	DefaultTransactions = []string{"type", "price", "quantity", "dateTime", "cost", "pnl"}
)

// For returns the spec of a page type. Anything other than transactions
// gets the portfolio spec.
func For(t types.PageType) Spec {
	if t == types.PageTransactions {
		return Transactions
	}
	return Portfolio
}

// Defaults returns a copy of the default selection for a page type.
func Defaults(t types.PageType) []string {
	src := DefaultPortfolio
	if t == types.PageTransactions {
		src = DefaultTransactions
	}
	return append([]string(nil), src...)
}

func (s Spec) Keys() []string {
	keys := make([]string, len(s))
	for i, c := range s {
		keys[i] = c.Key
	}
	return keys
}

func (s Spec) Has(key string) bool {
	for _, c := range s {
		if c.Key == key {
			return true
		}
	}
	return false
}

// Label returns the display label of key, or key itself when unknown.
func (s Spec) Label(key string) string {
	for _, c := range s {
		if c.Key == key {
			return c.Label
		}
	}
	return key
}

// Resolve filters the spec down to the selected keys, in canonical order.
// An empty selection resolves to every column.
func (s Spec) Resolve(selected []string) Spec {
	if len(selected) == 0 {
		return s
	}
	want := make(map[string]struct{}, len(selected))
	for _, k := range selected {
		want[k] = struct{}{}
	}
	out := make(Spec, 0, len(selected))
	for _, c := range s {
		if _, ok := want[c.Key]; ok {
			out = append(out, c)
		}
	}
	return out
}
