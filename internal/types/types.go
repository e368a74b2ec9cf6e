package types

import (
	"encoding/json"
	"fmt"
)

// NA is the sentinel for a missing or unparsable field.
const NA = "N/A"

// PageType identifies which table shape a page carries.
// The zero value means no supported table was found.
type PageType string

const (
	PageNone         PageType = ""
	PagePortfolio    PageType = "portfolio"
	PageTransactions PageType = "transactions"
)

// MarshalJSON encodes PageNone as null.
func (p PageType) MarshalJSON() ([]byte, error) {
	if p == PageNone {
		return []byte("null"), nil
	}
	return json.Marshal(string(p))
}

func (p *PageType) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*p = PageNone
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	switch PageType(s) {
	case PageNone, PagePortfolio, PageTransactions:
		*p = PageType(s)
		return nil
	}
	return fmt.Errorf("unknown page type %q", s)
}

func (p PageType) String() string {
	if p == PageNone {
		return "none"
	}
	return string(p)
}

type PortfolioHolding struct {
	Coin          string `json:"coin"`
	Symbol        string `json:"symbol"`
	Price         string `json:"price"`
	Change1h      string `json:"change1h"`
	Change24h     string `json:"change24h"`
	Change7d      string `json:"change7d"`
	Volume        string `json:"volume"`
	MarketCap     string `json:"marketCap"`
	HoldingsValue string `json:"holdingsValue"`
	TotalHoldings string `json:"totalHoldings"`
	PNLValue      string `json:"pnlValue"`
	PNLPercentage string `json:"pnlPercentage"`
}

// Record returns the holding as a record in canonical column order.
func (h PortfolioHolding) Record() Record {
	return Record{
		{"coin", h.Coin},
		{"symbol", h.Symbol},
		{"price", h.Price},
		{"change1h", h.Change1h},
		{"change24h", h.Change24h},
		{"change7d", h.Change7d},
		{"volume", h.Volume},
		{"marketCap", h.MarketCap},
		{"holdingsValue", h.HoldingsValue},
		{"totalHoldings", h.TotalHoldings},
		{"pnlValue", h.PNLValue},
		{"pnlPercentage", h.PNLPercentage},
	}
}

type Transaction struct {
	Type     string `json:"type"`
	Price    string `json:"price"`
	Quantity string `json:"quantity"`
	DateTime string `json:"dateTime"`
	Fees     string `json:"fees"`
	Cost     string `json:"cost"`
	Proceeds string `json:"proceeds"`
	PNL      string `json:"pnl"`
	Notes    string `json:"notes"`
}

// Record returns the transaction as a record in canonical column order.
func (t Transaction) Record() Record {
	return Record{
		{"type", t.Type},
		{"price", t.Price},
		{"quantity", t.Quantity},
		{"dateTime", t.DateTime},
		{"fees", t.Fees},
		{"cost", t.Cost},
		{"proceeds", t.Proceeds},
		{"pnl", t.PNL},
		{"notes", t.Notes},
	}
}

// ExtractionResult holds the rows of exactly one table shape, selected by Type.
type ExtractionResult struct {
	Type         PageType
	Holdings     []PortfolioHolding
	Transactions []Transaction
}

func (r ExtractionResult) Len() int {
	if r.Type == PagePortfolio {
		return len(r.Holdings)
	}
	return len(r.Transactions)
}

// Records converts the rows to records, preserving row order.
func (r ExtractionResult) Records() []Record {
	out := make([]Record, 0, r.Len())
	switch r.Type {
	case PagePortfolio:
		for _, h := range r.Holdings {
			out = append(out, h.Record())
		}
	case PageTransactions:
		for _, t := range r.Transactions {
			out = append(out, t.Record())
		}
	}
	return out
}

// Format is an export file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// ExportConfig is the per-export snapshot of the user's choices.
type ExportConfig struct {
	Format          Format   `json:"format"`
	ShowPreview     bool     `json:"showPreview"`
	SelectedColumns []string `json:"selectedColumns"`
	CustomFilename  string   `json:"customFilename"`
}
