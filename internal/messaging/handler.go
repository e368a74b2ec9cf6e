// Package messaging answers the actions sent to a page: detection, preview,
// extraction with export, and stop. Every failure is turned into an
// unsuccessful Response here; nothing propagates past Handle.
package messaging

import (
	"context"
	"errors"
	"fmt"
	"time"

	"coingecko-exporter/internal/columns"
	"coingecko-exporter/internal/export"
	"coingecko-exporter/internal/exportlog"
	"coingecko-exporter/internal/interfaces"
	"coingecko-exporter/internal/logger"
	"coingecko-exporter/internal/scraper"
	"coingecko-exporter/internal/types"
)

// errPreviewNoTable is the preview counterpart of scraper.ErrNoTableDetected.
var errPreviewNoTable = errors.New("no supported table found")

type Handler struct {
	extractor interfaces.Extractor
	saver     interfaces.Saver
	logExport func(exportlog.Entry) error
	now       func() time.Time
}

type Option func(*Handler)

// WithClock overrides the time source used for filenames and export dates.
func WithClock(now func() time.Time) Option {
	return func(h *Handler) { h.now = now }
}

// WithExportLog overrides where completed exports are recorded. A nil
// function disables the export log.
func WithExportLog(fn func(exportlog.Entry) error) Option {
	return func(h *Handler) { h.logExport = fn }
}

func NewHandler(extractor interfaces.Extractor, saver interfaces.Saver, opts ...Option) *Handler {
	h := &Handler{
		extractor: extractor,
		saver:     saver,
		logExport: exportlog.Append,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Handle dispatches msg against page.
func (h *Handler) Handle(ctx context.Context, page *scraper.Page, msg types.Message) (resp types.Response) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("internal error handling %s: %v", msg.Action, r)
			logger.ErrorWithErr(ctx, "Message handler panicked", err, "action", msg.Action)
			resp = types.Failure(err)
		}
	}()

	switch msg.Action {
	case types.ActionDetectPageType:
		return h.detect(ctx, page)
	case types.ActionGetPreview:
		return h.preview(ctx, page)
	case types.ActionExtractData:
		return h.extract(ctx, page, msg.Config)
	case types.ActionStopExport:
		logger.Info(ctx, "Stop export requested")
		return types.Response{Success: true}
	}
	return types.Failure(fmt.Errorf("unknown action: %s", msg.Action))
}

func (h *Handler) detect(ctx context.Context, page *scraper.Page) types.Response {
	t := h.extractor.Detect(ctx, page)
	return types.Response{Success: true, PageType: &t}
}

func (h *Handler) preview(ctx context.Context, page *scraper.Page) types.Response {
	t := h.extractor.Detect(ctx, page)
	if t == types.PageNone {
		return types.Failure(errPreviewNoTable)
	}
	res, err := h.extractor.Extract(ctx, page, t)
	if err != nil {
		return types.Failure(err)
	}

	records := res.Records()
	if len(records) > export.PreviewRows {
		records = records[:export.PreviewRows]
	}
	return types.Response{Success: true, Type: t, Data: records, TotalRows: res.Len()}
}

func (h *Handler) extract(ctx context.Context, page *scraper.Page, cfg *types.ExportConfig) types.Response {
	op := logger.StartOperation(ctx, "messaging.extractData")
	resp := h.export(op.GetContext(), page, cfg)
	if !resp.Success {
		op.EndWithError(errors.New(resp.Error))
	} else {
		op.End("rows", resp.RowCount, "filename", resp.Filename)
	}
	return resp
}

func (h *Handler) export(ctx context.Context, page *scraper.Page, cfg *types.ExportConfig) types.Response {
	conf := types.ExportConfig{Format: types.FormatCSV}
	if cfg != nil {
		conf = *cfg
	}
	format, err := export.ParseFormat(string(conf.Format))
	if err != nil {
		return types.Failure(err)
	}

	t := h.extractor.Detect(ctx, page)
	if t == types.PageNone {
		return types.Failure(scraper.ErrNoTableDetected)
	}
	res, err := h.extractor.Extract(ctx, page, t)
	if err != nil {
		return types.Failure(err)
	}

	now := h.now()
	filename := export.BaseName(export.Filename(conf.CustomFilename, t, format, now))
	if filename == "" {
		return types.Failure(fmt.Errorf("invalid export filename %q", conf.CustomFilename))
	}
	content, err := export.Serialize(res.Records(), format, t, columns.For(t), conf.SelectedColumns, now)
	if err != nil {
		return types.Failure(err)
	}
	path, err := h.saver.Save(ctx, filename, content)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to save export", err, "filename", filename)
		return types.Failure(err)
	}

	logger.Export(ctx, t.String(), string(format), filename, res.Len(), "path", path)
	if h.logExport != nil {
		entry := exportlog.Entry{
			PageType: t.String(),
			Format:   string(format),
			Filename: filename,
			Path:     path,
			Rows:     res.Len(),
			Columns:  columns.For(t).Resolve(conf.SelectedColumns).Keys(),
		}
		if page != nil {
			entry.Source = page.URL
		}
		if err := h.logExport(entry); err != nil {
			logger.Warn(ctx, "Failed to append export log", "error", err)
		}
	}

	return types.Response{Success: true, Type: t, RowCount: res.Len(), Filename: filename}
}
