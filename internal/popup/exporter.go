// Package popup drives one export the way the extension popup does:
// confirm, locate the page, detect its table, optionally preview, then ask
// the page to extract and save.
package popup

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"coingecko-exporter/internal/columns"
	"coingecko-exporter/internal/export"
	"coingecko-exporter/internal/interfaces"
	"coingecko-exporter/internal/logger"
	"coingecko-exporter/internal/types"
)

var (
	ErrCanceled         = errors.New("export canceled")
	ErrExportInProgress = errors.New("an export is already running")
	ErrNoActiveTab      = errors.New("no active tab found")
	ErrWrongSite        = errors.New("please navigate to a CoinGecko page first")
	ErrNoTableDetected  = errors.New("no valid data table detected, make sure you are on a CoinGecko portfolio or transactions page")
)

// ExportFailedError carries the reason the page gave for a failed export.
type ExportFailedError struct {
	Reason string
}

func (e *ExportFailedError) Error() string {
	if e.Reason == "" {
		return "export failed"
	}
	return e.Reason
}

// StatusKind classifies a status line.
type StatusKind string

const (
	StatusInfo    StatusKind = "info"
	StatusSuccess StatusKind = "success"
	StatusError   StatusKind = "error"
)

// Status is the one-line status area.
type Status interface {
	Show(msg string, kind StatusKind)
	Hide()
}

// Dialogs are the modal prompts shown during an export.
type Dialogs interface {
	Confirm(ctx context.Context, title, message, confirmText, cancelText string) (bool, error)
	Preview(ctx context.Context, p export.Preview, selected []string) (bool, error)
	Progress(title, message string)
	UpdateProgress(percent int, message string)
	Hide()
	Alert(ctx context.Context, title, message string) error
}

// TabQuerier finds the page the user is looking at.
type TabQuerier interface {
	ActiveTab(ctx context.Context) (types.Tab, error)
}

// Result describes a finished export.
type Result struct {
	Type     types.PageType
	RowCount int
	Filename string
}

const (
	confirmTitle   = "Confirm Export"
	confirmMessage = "Confirm you are on your CoinGecko portfolio page or crypto transaction page. If you are not, the export will fail or contain irrelevant data."
)

type Exporter struct {
	channel  interfaces.Channel
	tabs     TabQuerier
	dialogs  Dialogs
	status   Status
	sel      *Selection
	siteHost string

	closeDelay    time.Duration
	progressDelay time.Duration

	busy atomic.Bool
}

type Option func(*Exporter)

// WithDelays sets the pause after closing a dialog and the pause before
// the progress dialog is updated.
func WithDelays(closeDelay, progressDelay time.Duration) Option {
	return func(e *Exporter) {
		e.closeDelay = closeDelay
		e.progressDelay = progressDelay
	}
}

func NewExporter(channel interfaces.Channel, tabs TabQuerier, dialogs Dialogs, status Status, sel *Selection, siteHost string, opts ...Option) *Exporter {
	e := &Exporter{
		channel:       channel,
		tabs:          tabs,
		dialogs:       dialogs,
		status:        status,
		sel:           sel,
		siteHost:      siteHost,
		closeDelay:    400 * time.Millisecond,
		progressDelay: 100 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Exporter) Selection() *Selection {
	return e.sel
}

// Init loads preferences and applies the column selection for the active
// page. Anything that prevents detection falls back to portfolio.
func (e *Exporter) Init(ctx context.Context) {
	e.sel.Load(ctx)

	t := e.detectQuietly(ctx)
	if t == types.PageNone {
		t = types.PagePortfolio
	}
	e.sel.SetDataType(t)
}

func (e *Exporter) detectQuietly(ctx context.Context) types.PageType {
	tab, err := e.tabs.ActiveTab(ctx)
	if err != nil || !e.onSite(tab.URL) {
		return types.PageNone
	}
	resp, err := e.channel.Send(ctx, tab.ID, types.Message{Action: types.ActionDetectPageType})
	if err != nil || resp.PageType == nil {
		logger.Debug(ctx, "Could not detect page type, using defaults", "error", err)
		return types.PageNone
	}
	return *resp.PageType
}

// Run performs one export. Only one may run at a time. A user declining
// a dialog yields ErrCanceled; any other failure is reported through the
// status line and an alert before being returned.
func (e *Exporter) Run(ctx context.Context) (Result, error) {
	if !e.busy.CompareAndSwap(false, true) {
		return Result{}, ErrExportInProgress
	}
	defer e.busy.Store(false)

	e.status.Show("Initializing export...", StatusInfo)

	res, err := e.run(ctx)
	if errors.Is(err, ErrCanceled) {
		e.status.Hide()
		return Result{}, err
	}
	if err != nil {
		logger.ErrorWithErr(ctx, "Export failed", err)
		e.fail(ctx, err)
		return Result{}, err
	}
	return res, nil
}

func (e *Exporter) run(ctx context.Context) (Result, error) {
	ok, err := e.dialogs.Confirm(ctx, confirmTitle, confirmMessage, "Start Export", "Cancel")
	if err != nil {
		return Result{}, err
	}
	if !ok {
		return Result{}, ErrCanceled
	}

	tab, err := e.tabs.ActiveTab(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrNoActiveTab, err)
	}
	if !e.onSite(tab.URL) {
		return Result{}, ErrWrongSite
	}

	detected, err := e.channel.Send(ctx, tab.ID, types.Message{Action: types.ActionDetectPageType})
	if err != nil || detected.PageType == nil || *detected.PageType == types.PageNone {
		return Result{}, ErrNoTableDetected
	}
	e.sel.SetDataType(*detected.PageType)

	if e.sel.ShowPreview() {
		if err := e.preview(ctx, tab.ID); err != nil {
			return Result{}, err
		}
	}

	e.dialogs.Progress("Exporting Data", "Generating export file...")
	if err := sleep(ctx, e.progressDelay); err != nil {
		return Result{}, err
	}
	e.dialogs.UpdateProgress(25, "Processing data...")

	cfg := e.sel.Config()
	resp, err := e.channel.Send(ctx, tab.ID, types.Message{Action: types.ActionExtractData, Config: &cfg})
	if err != nil {
		return Result{}, &ExportFailedError{Reason: err.Error()}
	}
	if !resp.Success {
		return Result{}, &ExportFailedError{Reason: resp.Error}
	}

	e.dialogs.UpdateProgress(100, "Export completed successfully!")
	e.dialogs.Hide()
	e.status.Show("Export completed successfully!", StatusSuccess)
	return Result{Type: resp.Type, RowCount: resp.RowCount, Filename: resp.Filename}, nil
}

// preview shows the first rows projected to the selection. A failed
// preview request is skipped rather than treated as an error.
func (e *Exporter) preview(ctx context.Context, tabID string) error {
	resp, err := e.channel.Send(ctx, tabID, types.Message{Action: types.ActionGetPreview})
	if err != nil || !resp.Success || resp.Data == nil {
		return nil
	}

	selected := e.sel.Columns()
	data := export.Project(resp.Data, selected, columns.For(resp.Type).Keys())
	total := resp.TotalRows
	if total == 0 {
		total = len(resp.Data)
	}

	ok, err := e.dialogs.Preview(ctx, export.NewPreview(data, resp.Type, total), selected)
	if err != nil {
		return err
	}
	if !ok {
		return ErrCanceled
	}
	return sleep(ctx, e.closeDelay)
}

func (e *Exporter) fail(ctx context.Context, err error) {
	e.dialogs.Hide()
	if sleep(ctx, e.closeDelay) != nil {
		return
	}
	e.status.Show("Export failed: "+err.Error(), StatusError)
	msg := fmt.Sprintf("An error occurred during export:\n\n%s\n\nPlease try again or contact support if the issue persists.", err)
	if aerr := e.dialogs.Alert(ctx, "Export Failed", msg); aerr != nil {
		logger.Warn(ctx, "Failed to show alert", "error", aerr)
	}
}

// onSite reports whether rawURL is on the configured site or one of its
// subdomains.
func (e *Exporter) onSite(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	site := strings.TrimPrefix(strings.ToLower(e.siteHost), "www.")
	return host != "" && (host == site || strings.HasSuffix(host, "."+site))
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
