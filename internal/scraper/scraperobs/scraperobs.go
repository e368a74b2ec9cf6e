package scraperobs

import (
	"context"
	"time"

	"coingecko-exporter/internal/interfaces"
	"coingecko-exporter/internal/logger"
	"coingecko-exporter/internal/scraper"
	"coingecko-exporter/internal/trace"
	"coingecko-exporter/internal/types"
)

// observableExtractor wraps an Extractor with observability (logging & tracing)
type observableExtractor struct {
	extractor interfaces.Extractor
}

// Compile-time interface check
var _ interfaces.Extractor = (*observableExtractor)(nil)

// Wrap wraps an extractor with observability middleware
func Wrap(extractor interfaces.Extractor) interfaces.Extractor {
	return &observableExtractor{
		extractor: extractor,
	}
}

// Detect classifies the page with observability
func (oe *observableExtractor) Detect(ctx context.Context, page *scraper.Page) types.PageType {
	ctx, span := trace.StartSpan(ctx, "scraper.Detect")
	defer span.End()

	pageType := oe.extractor.Detect(ctx, page)

	logger.DebugSkip(ctx, 1, "Page type detected", "url", pageURL(page), "page_type", pageType.String())
	return pageType
}

// Extract reads table rows with observability
func (oe *observableExtractor) Extract(ctx context.Context, page *scraper.Page, t types.PageType) (types.ExtractionResult, error) {
	ctx, span := trace.StartSpan(ctx, "scraper.Extract")
	defer span.End()

	start := time.Now()
	logger.DebugSkip(ctx, 1, "Extracting rows", "url", pageURL(page), "page_type", t.String())

	res, err := oe.extractor.Extract(ctx, page, t)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Extraction failed", err,
			"url", pageURL(page),
			"page_type", t.String(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return res, err
	}

	logger.InfoSkip(ctx, 1, "Rows extracted",
		"url", pageURL(page),
		"page_type", res.Type.String(),
		"rows", res.Len(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return res, nil
}

func pageURL(page *scraper.Page) string {
	if page == nil {
		return ""
	}
	return page.URL
}
