package export

import (
	"bytes"
	"strings"
	"testing"

	"coingecko-exporter/internal/types"
)

func TestNewPreviewLimitsRowsAndTruncates(t *testing.T) {
	long := types.Record{{Key: "coin", Value: "A very long coin name indeed"}, {Key: "price", Value: ""}}
	recs := []types.Record{long, sampleHolding(), sampleHolding()}

	p := NewPreview(recs, types.PagePortfolio, 3)
	if len(p.Rows) != PreviewRows {
		t.Fatalf("Expected %d rows, got %d", PreviewRows, len(p.Rows))
	}
	if len(p.Columns) != 2 || p.Columns[0].Label != "Coin" || p.Columns[1].Label != "Price" {
		t.Errorf("Unexpected columns %v", p.Columns)
	}
	if got := p.Rows[0][0].Display; got != "A very long coin nam..." {
		t.Errorf("Expected truncated cell, got %q", got)
	}
	if got := p.Rows[0][0].Full; got != "A very long coin name indeed" {
		t.Errorf("Expected full value kept, got %q", got)
	}
	if got := p.Rows[0][1].Display; got != types.NA {
		t.Errorf("Expected N/A for empty cell, got %q", got)
	}
}

func TestPreviewHTMLSanitizesCells(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		want    string
		notWant []string
	}{
		{"script dropped", `<script>alert(1)</script>`, `<td title=""></td>`, []string{"<script", "alert"}},
		{"markup stripped", `<b onclick="x()">BTC</b>`, `<td title="BTC">BTC`, []string{"<b", "onclick"}},
		{"text escaped", `AT&T "x"`, `&amp;T`, []string{`"x"`}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := types.Record{{Key: "coin", Value: tt.value}}
			out := NewPreview([]types.Record{rec}, types.PagePortfolio, 1).HTML()

			if !strings.Contains(out, "<th>Coin</th>") {
				t.Errorf("Expected header cell, got %s", out)
			}
			if !strings.Contains(out, tt.want) {
				t.Errorf("Expected %s in %s", tt.want, out)
			}
			for _, bad := range tt.notWant {
				if strings.Contains(out, bad) {
					t.Errorf("Expected %s to be removed, got %s", bad, out)
				}
			}
		})
	}
}

func TestPreviewEmpty(t *testing.T) {
	p := NewPreview(nil, types.PageTransactions, 0)
	if got := p.HTML(); got != "<p>No data to preview</p>" {
		t.Errorf("Unexpected empty html %q", got)
	}
	var buf bytes.Buffer
	if err := p.WriteText(&buf); err != nil {
		t.Fatalf("WriteText failed: %v", err)
	}
	if buf.String() != "No data to preview\n" {
		t.Errorf("Unexpected text %q", buf.String())
	}
}

func TestPreviewWriteText(t *testing.T) {
	p := NewPreview([]types.Record{sampleHolding()}, types.PagePortfolio, 1)
	var buf bytes.Buffer
	if err := p.WriteText(&buf); err != nil {
		t.Fatalf("WriteText failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("Expected header and one row, got %q", buf.String())
	}
	if !strings.HasPrefix(lines[0], "Coin") || !strings.HasPrefix(lines[1], "Bitcoin") {
		t.Errorf("Unexpected table %q", buf.String())
	}
}

func TestPreviewSummary(t *testing.T) {
	p := Preview{TotalRows: 5}
	if got := p.Summary(nil); !strings.Contains(got, "Found 5 rows") || !strings.Contains(got, "all available columns") {
		t.Errorf("Unexpected summary %q", got)
	}
	if got := p.Summary([]string{"coin", "price"}); !strings.Contains(got, "2 selected columns: coin, price") {
		t.Errorf("Unexpected summary %q", got)
	}
}
