package interfaces

import (
	"context"

	"coingecko-exporter/internal/scraper"
	"coingecko-exporter/internal/types"
)

// Extractor classifies a page and reads its table rows.
type Extractor interface {
	Detect(ctx context.Context, page *scraper.Page) types.PageType
	Extract(ctx context.Context, page *scraper.Page, t types.PageType) (types.ExtractionResult, error)
}
