package scraper

import (
	"context"
	"errors"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"coingecko-exporter/internal/types"
)

var (
	// ErrNoTableDetected means the page carries neither a portfolio nor a
	// transactions table.
	ErrNoTableDetected = errors.New("no supported table found on this page")
	// ErrNoData means a table was detected but produced no rows.
	ErrNoData = errors.New("no rows extracted")
)

// noDataError carries the per-table message while matching ErrNoData.
type noDataError struct{ msg string }

func (e *noDataError) Error() string        { return e.msg }
func (e *noDataError) Is(target error) bool { return target == ErrNoData }

func noDataFor(t types.PageType) error {
	if t == types.PagePortfolio {
		return &noDataError{"no portfolio data found"}
	}
	return &noDataError{"no transactions found"}
}

// TableAdapter reads one table shape out of a page.
type TableAdapter interface {
	Type() types.PageType
	Read(page *Page) types.ExtractionResult
}

// AdapterFor returns the row reader for a page type, or nil for PageNone.
func AdapterFor(t types.PageType) TableAdapter {
	switch t {
	case types.PagePortfolio:
		return portfolioTable{}
	case types.PageTransactions:
		return transactionTable{}
	}
	return nil
}

// Extractor detects and reads the supported tables of a page snapshot.
type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

func (e *Extractor) Detect(_ context.Context, page *Page) types.PageType {
	return DetectPageType(page)
}

// Extract reads every row of the given table type in page order. A table
// that yields no rows is reported as ErrNoData rather than as an empty result.
func (e *Extractor) Extract(_ context.Context, page *Page, t types.PageType) (types.ExtractionResult, error) {
	adapter := AdapterFor(t)
	if adapter == nil || page == nil || page.Doc == nil {
		return types.ExtractionResult{}, ErrNoTableDetected
	}

	res := adapter.Read(page)
	if res.Len() == 0 {
		return types.ExtractionResult{}, noDataFor(t)
	}
	return res, nil
}

type portfolioTable struct{}

func (portfolioTable) Type() types.PageType { return types.PagePortfolio }

func (portfolioTable) Read(page *Page) types.ExtractionResult {
	res := types.ExtractionResult{Type: types.PagePortfolio}
	page.Doc.Find(portfolioRowSelector).Each(func(_ int, row *goquery.Selection) {
		res.Holdings = append(res.Holdings, readHolding(row.Find("td")))
	})
	return res
}

func readHolding(cells *goquery.Selection) types.PortfolioHolding {
	coinCell := cells.Eq(1)

	holdingsValue, totalHoldings := ParseHoldings(cellText(cells, 14))
	pnlValue, pnlPct := ParsePNL(cellText(cells, 15))

	return types.PortfolioHolding{
		Coin:          childText(coinCell, "a div div"),
		Symbol:        childText(coinCell, "a div div div"),
		Price:         childText(cells.Eq(3), "span"),
		Change1h:      childText(cells.Eq(4), "span"),
		Change24h:     childText(cells.Eq(5), "span"),
		Change7d:      childText(cells.Eq(6), "span"),
		Volume:        cellText(cells, 9),
		MarketCap:     cellText(cells, 10),
		HoldingsValue: holdingsValue,
		TotalHoldings: totalHoldings,
		PNLValue:      pnlValue,
		PNLPercentage: pnlPct,
	}
}

type transactionTable struct{}

func (transactionTable) Type() types.PageType { return types.PageTransactions }

func (transactionTable) Read(page *Page) types.ExtractionResult {
	res := types.ExtractionResult{Type: types.PageTransactions}
	page.Doc.Find(transactionRowSelector).Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() <= 1 {
			return
		}
		res.Transactions = append(res.Transactions, readTransaction(cells))
	})
	return res
}

func readTransaction(cells *goquery.Selection) types.Transaction {
	tx := types.Transaction{
		Type:     rawCell(cells, 0),
		Price:    rawCell(cells, 1),
		Quantity: rawCell(cells, 2),
		DateTime: rawCell(cells, 3),
		Fees:     rawCell(cells, 4),
		Cost:     rawCell(cells, 5),
		Proceeds: rawCell(cells, 6),
		PNL:      rawCell(cells, 7),
		Notes:    rawCell(cells, 8),
	}
	tx.Price = NormalizePrice(tx.Price)
	tx.DateTime = NormalizeDateTime(tx.DateTime)
	return tx
}

// childText is the rendered text of the first element matching selector
// inside cell, or N/A when there is none.
func childText(cell *goquery.Selection, selector string) string {
	el := cell.Find(selector).First()
	if el.Length() == 0 {
		return types.NA
	}
	return InnerText(el)
}

// cellText is the rendered text of cell i, N/A when missing or empty.
func cellText(cells *goquery.Selection, i int) string {
	return orNA(rawCell(cells, i))
}

// rawCell is the rendered text of cell i, N/A only when the cell is missing.
func rawCell(cells *goquery.Selection, i int) string {
	cell := cells.Eq(i)
	if cell.Length() == 0 {
		return types.NA
	}
	return strings.TrimSpace(InnerText(cell))
}
