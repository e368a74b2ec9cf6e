package export

import (
	"testing"

	"coingecko-exporter/internal/types"
)

func TestFilename(t *testing.T) {
	tests := []struct {
		name   string
		custom string
		page   types.PageType
		format types.Format
		want   string
	}{
		{"default portfolio", "", types.PagePortfolio, types.FormatCSV, "coingecko-portfolio-2024-03-05T14-07-09.csv"},
		{"default transactions", "", types.PageTransactions, types.FormatJSON, "coingecko-transactions-2024-03-05T14-07-09.json"},
		{"custom without extension", "my-export", types.PagePortfolio, types.FormatJSON, "my-export.json"},
		{"custom with extension", "report.txt", types.PagePortfolio, types.FormatCSV, "report.txt"},
		{"blank custom", "   ", types.PagePortfolio, types.FormatCSV, "coingecko-portfolio-2024-03-05T14-07-09.csv"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Filename(tt.custom, tt.page, tt.format, fixedNow); got != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestBaseName(t *testing.T) {
	tests := map[string]string{
		"export.csv":          "export.csv",
		"../../etc/passwd":    "passwd",
		`..\windows\file.csv`: "file.csv",
		"":                    "",
		"/":                   "",
	}
	for in, want := range tests {
		if got := BaseName(in); got != want {
			t.Errorf("BaseName(%q): expected %q, got %q", in, want, got)
		}
	}
}
