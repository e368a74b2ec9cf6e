package popup

import (
	"context"
	"strings"
	"sync"

	"coingecko-exporter/internal/columns"
	"coingecko-exporter/internal/export"
	"coingecko-exporter/internal/interfaces"
	"coingecko-exporter/internal/logger"
	"coingecko-exporter/internal/prefs"
	"coingecko-exporter/internal/types"
)

// Preference keys.
const (
	KeyPortfolioColumns   = "columnPrefs_portfolio"
	KeyTransactionColumns = "columnPrefs_transactions"
	KeyExportFormat       = "exportFormat_pref"
	KeyShowPreview        = "showPreview_pref"
)

// Selection is the live export configuration a user edits before
// exporting. Every user change is written back to the preference store.
type Selection struct {
	store interfaces.PreferenceStore

	mu             sync.Mutex
	format         types.Format
	showPreview    bool
	customFilename string
	dataType       types.PageType
	selected       orderedSet

	savedPortfolio    []string
	savedTransactions []string
}

func NewSelection(store interfaces.PreferenceStore) *Selection {
	return &Selection{
		store:             store,
		format:            types.FormatCSV,
		showPreview:       true,
		savedPortfolio:    columns.Defaults(types.PagePortfolio),
		savedTransactions: columns.Defaults(types.PageTransactions),
	}
}

// Load reads saved preferences. Missing or unreadable values keep their
// defaults.
func (s *Selection) Load(ctx context.Context) {
	values, err := s.store.Get(ctx, KeyPortfolioColumns, KeyTransactionColumns, KeyExportFormat, KeyShowPreview)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.savedPortfolio = columns.Defaults(types.PagePortfolio)
	s.savedTransactions = columns.Defaults(types.PageTransactions)
	if err != nil {
		logger.Warn(ctx, "Failed to load preferences, using defaults", "error", err)
		return
	}

	if v, ok := values[KeyExportFormat].(string); ok && v != "" {
		if f, err := export.ParseFormat(v); err == nil {
			s.format = f
		}
	}
	if v, ok := values[KeyShowPreview].(bool); ok {
		s.showPreview = v
	}
	if cols, ok := prefs.Strings(values[KeyPortfolioColumns]); ok && len(cols) > 0 {
		s.savedPortfolio = cols
	}
	if cols, ok := prefs.Strings(values[KeyTransactionColumns]); ok && len(cols) > 0 {
		s.savedTransactions = cols
	}
}

// SetDataType switches to t and replaces the selection with the columns
// saved for it.
func (s *Selection) SetDataType(t types.PageType) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dataType = t
	s.selected.clear()
	switch t {
	case types.PagePortfolio:
		s.selected.add(s.savedPortfolio...)
	case types.PageTransactions:
		s.selected.add(s.savedTransactions...)
	}
}

func (s *Selection) DataType() types.PageType {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dataType
}

// Toggle checks or unchecks a single column.
func (s *Selection) Toggle(ctx context.Context, key string, on bool) {
	s.mu.Lock()
	if on {
		s.selected.add(key)
	} else {
		s.selected.remove(key)
	}
	s.mu.Unlock()
	s.save(ctx)
}

// SelectAll checks every column of the visible table.
func (s *Selection) SelectAll(ctx context.Context) {
	s.mu.Lock()
	s.selected.add(columns.For(s.dataType).Keys()...)
	s.mu.Unlock()
	s.save(ctx)
}

func (s *Selection) DeselectAll(ctx context.Context) {
	s.mu.Lock()
	s.selected.remove(columns.For(s.dataType).Keys()...)
	s.mu.Unlock()
	s.save(ctx)
}

func (s *Selection) ResetToDefault(ctx context.Context) {
	s.mu.Lock()
	s.selected.clear()
	s.selected.add(columns.Defaults(s.dataType)...)
	s.mu.Unlock()
	s.save(ctx)
}

func (s *Selection) SetFormat(ctx context.Context, format string) error {
	f, err := export.ParseFormat(format)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.format = f
	s.mu.Unlock()
	s.save(ctx)
	return nil
}

func (s *Selection) SetShowPreview(ctx context.Context, on bool) {
	s.mu.Lock()
	s.showPreview = on
	s.mu.Unlock()
	s.save(ctx)
}

// SetCustomFilename is not persisted.
func (s *Selection) SetCustomFilename(name string) {
	s.mu.Lock()
	s.customFilename = strings.TrimSpace(name)
	s.mu.Unlock()
}

func (s *Selection) ShowPreview() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.showPreview
}

// Columns returns the selected keys in the order they were selected.
func (s *Selection) Columns() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected.list()
}

// Config snapshots the selection for one export.
func (s *Selection) Config() types.ExportConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return types.ExportConfig{
		Format:          s.format,
		ShowPreview:     s.showPreview,
		SelectedColumns: s.selected.list(),
		CustomFilename:  s.customFilename,
	}
}

// save writes format, preview and, when non-empty, the column list of the
// current data type. Failures are logged and otherwise ignored.
func (s *Selection) save(ctx context.Context) {
	s.mu.Lock()
	values := map[string]any{
		KeyExportFormat: string(s.format),
		KeyShowPreview:  s.showPreview,
	}
	cols := s.selected.list()
	switch s.dataType {
	case types.PagePortfolio:
		if len(cols) > 0 {
			values[KeyPortfolioColumns] = cols
		}
		s.savedPortfolio = cols
	case types.PageTransactions:
		if len(cols) > 0 {
			values[KeyTransactionColumns] = cols
		}
		s.savedTransactions = cols
	}
	s.mu.Unlock()

	if err := s.store.Set(ctx, values); err != nil {
		logger.Warn(ctx, "Failed to save preferences", "error", err)
	}
}

// orderedSet keeps insertion order.
type orderedSet struct {
	keys []string
	has  map[string]bool
}

func (o *orderedSet) add(keys ...string) {
	if o.has == nil {
		o.has = map[string]bool{}
	}
	for _, k := range keys {
		if !o.has[k] {
			o.has[k] = true
			o.keys = append(o.keys, k)
		}
	}
}

func (o *orderedSet) remove(keys ...string) {
	for _, k := range keys {
		if !o.has[k] {
			continue
		}
		delete(o.has, k)
		for i, existing := range o.keys {
			if existing == k {
				o.keys = append(o.keys[:i], o.keys[i+1:]...)
				break
			}
		}
	}
}

func (o *orderedSet) clear() {
	o.keys = nil
	o.has = nil
}

func (o *orderedSet) list() []string {
	return append([]string{}, o.keys...)
}
