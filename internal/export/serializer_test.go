package export

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"coingecko-exporter/internal/columns"
	"coingecko-exporter/internal/types"
)

var fixedNow = time.Date(2024, 3, 5, 14, 7, 9, 123000000, time.UTC)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    types.Format
		wantErr bool
	}{
		{"", types.FormatCSV, false},
		{"csv", types.FormatCSV, false},
		{" JSON ", types.FormatJSON, false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrUnsupportedFormat) {
					t.Errorf("Expected ErrUnsupportedFormat, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestCSVAllNARecord(t *testing.T) {
	rec := types.PortfolioHolding{
		Coin: types.NA, Symbol: types.NA, Price: types.NA,
		Change1h: types.NA, Change24h: types.NA, Change7d: types.NA,
		Volume: types.NA, MarketCap: types.NA,
		HoldingsValue: types.NA, TotalHoldings: types.NA,
		PNLValue: types.NA, PNLPercentage: types.NA,
	}.Record()

	out := CSV([]types.Record{rec}, columns.Portfolio)
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("Expected 2 lines, got %d: %q", len(lines), out)
	}
	if !strings.HasPrefix(lines[0], "Coin,Symbol,Price,1h Change") {
		t.Errorf("Unexpected header: %s", lines[0])
	}
	if want := strings.TrimSuffix(strings.Repeat(`"N/A",`, 12), ","); lines[1] != want {
		t.Errorf("Expected row %s, got %s", want, lines[1])
	}
}

func TestCSVSelectedColumns(t *testing.T) {
	out, err := Serialize([]types.Record{sampleHolding()}, types.FormatCSV, types.PagePortfolio,
		columns.Portfolio, []string{"pnlValue", "coin"}, fixedNow)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	want := "Coin,PNL Value\n\"Bitcoin\",\"$12.34\"\n"
	if string(out) != want {
		t.Errorf("Expected %q, got %q", want, out)
	}
}

func TestCSVMissingAndEmptyValuesAreNA(t *testing.T) {
	rec := types.Record{{Key: "type", Value: ""}}
	out := CSV([]types.Record{rec}, columns.Transactions.Resolve([]string{"type", "price"}))
	if want := "Type,Price\n\"N/A\",\"N/A\"\n"; out != want {
		t.Errorf("Expected %q, got %q", want, out)
	}
}

func TestCSVDoesNotEscapeQuotes(t *testing.T) {
	rec := types.Record{{Key: "notes", Value: `say "hi"`}}
	out := CSV([]types.Record{rec}, columns.Transactions.Resolve([]string{"notes"}))
	if want := "Notes\n\"say \"hi\"\"\n"; out != want {
		t.Errorf("Expected %q, got %q", want, out)
	}
}

func TestJSONEnvelope(t *testing.T) {
	tx := types.Transaction{Type: "Buy", Price: "$100", Quantity: "1", DateTime: "Jan 1, 2024 10:00 AM",
		Fees: "$0", Cost: "$100", Proceeds: types.NA, PNL: "$5", Notes: types.NA}.Record()

	out, err := Serialize([]types.Record{tx}, types.FormatJSON, types.PageTransactions,
		columns.Transactions, []string{"pnl", "type"}, fixedNow)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	want := `{
  "exportType": "transactions",
  "exportDate": "2024-03-05T14:07:09.123Z",
  "totalRecords": 1,
  "data": [
    {
      "type": "Buy",
      "pnl": "$5"
    }
  ]
}`
	if string(out) != want {
		t.Errorf("Expected:\n%s\ngot:\n%s", want, out)
	}
}

func TestJSONEmptyData(t *testing.T) {
	out, err := JSON(nil, types.PagePortfolio, fixedNow)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	var env struct {
		TotalRecords int               `json:"totalRecords"`
		Data         []json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(out, &env); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}
	if env.TotalRecords != 0 || env.Data == nil {
		t.Errorf("Expected empty data array, got %s", out)
	}
}

func TestSerializeUnsupportedFormat(t *testing.T) {
	_, err := Serialize(nil, types.Format("xml"), types.PagePortfolio, columns.Portfolio, nil, fixedNow)
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Expected ErrUnsupportedFormat, got %v", err)
	}
}
