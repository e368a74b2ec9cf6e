package popup

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"coingecko-exporter/internal/export"
	"coingecko-exporter/internal/types"
)

func TestTerminalConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
	}
	for _, tt := range tests {
		var out bytes.Buffer
		term := NewTerminal(strings.NewReader(tt.input), &out, false)
		got, err := term.Confirm(context.Background(), "Title", "Message", "Go", "Stop")
		if err != nil {
			t.Fatalf("Confirm(%q) failed: %v", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("Confirm(%q) = %v, want %v", tt.input, got, tt.want)
		}
		if !strings.Contains(out.String(), "Title\nMessage") {
			t.Errorf("Expected title and message in output, got %q", out.String())
		}
	}
}

func TestTerminalAssumeYes(t *testing.T) {
	var out bytes.Buffer
	term := NewTerminal(strings.NewReader(""), &out, true)

	rec := types.PortfolioHolding{Coin: "Bitcoin", Symbol: "BTC"}.Record()
	p := export.NewPreview([]types.Record{rec}, types.PagePortfolio, 4)
	ok, err := term.Preview(context.Background(), p, nil)
	if err != nil || !ok {
		t.Fatalf("Expected automatic yes, got %v %v", ok, err)
	}
	text := out.String()
	if !strings.Contains(text, "Preview portfolio Export") || !strings.Contains(text, "Found 4 rows") || !strings.Contains(text, "Bitcoin") {
		t.Errorf("Unexpected preview output %q", text)
	}
}

func TestTerminalStatus(t *testing.T) {
	var out bytes.Buffer
	term := NewTerminal(strings.NewReader(""), &out, false)
	term.Show("Export completed successfully!", StatusSuccess)
	term.UpdateProgress(25, "Processing data...")
	if err := term.Alert(context.Background(), "Export Failed", "boom"); err != nil {
		t.Fatal(err)
	}
	want := "[success] Export completed successfully!\n[ 25%] Processing data...\n\nExport Failed\nboom\n"
	if out.String() != want {
		t.Errorf("Expected %q, got %q", want, out.String())
	}
}
