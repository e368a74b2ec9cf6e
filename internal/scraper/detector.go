package scraper

import (
	"coingecko-exporter/internal/types"
)

const (
	portfolioRowSelector   = "tbody tr[data-portfolio-coin-id]"
	transactionRowSelector = "tbody tr"
	dataCellSelector       = "tbody tr td"
)

// DetectPageType decides which table shape the page carries. Portfolio
// rows take precedence; any other table body with cells is treated as a
// transaction history. PageNone is not an error.
func DetectPageType(page *Page) types.PageType {
	if page == nil || page.Doc == nil {
		return types.PageNone
	}
	if page.Doc.Find(portfolioRowSelector).Length() > 0 {
		return types.PagePortfolio
	}
	if page.Doc.Find(dataCellSelector).Length() > 0 {
		return types.PageTransactions
	}
	return types.PageNone
}
