package api

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"coingecko-exporter/internal/interfaces"
	"coingecko-exporter/internal/messaging"
	"coingecko-exporter/internal/scraper"
	"coingecko-exporter/internal/types"
)

// Local keeps page snapshots in memory and answers messages in-process.
// Pages expire after ttl without access.
type Local struct {
	handler   *messaging.Handler
	extractor interfaces.Extractor
	pages     *cache.Cache

	mu     sync.Mutex
	active string
}

var _ interfaces.Channel = (*Local)(nil)

func NewLocal(handler *messaging.Handler, extractor interfaces.Extractor, ttl time.Duration) *Local {
	if ttl <= 0 {
		ttl = cache.NoExpiration
	}
	cleanup := ttl
	if cleanup < time.Minute {
		cleanup = time.Minute
	}
	return &Local{
		handler:   handler,
		extractor: extractor,
		pages:     cache.New(ttl, cleanup),
	}
}

// Open registers page under a new tab ID and makes it the active tab.
func (l *Local) Open(ctx context.Context, page *scraper.Page) types.Tab {
	id := uuid.NewString()
	l.pages.Set(id, page, cache.DefaultExpiration)

	l.mu.Lock()
	l.active = id
	l.mu.Unlock()

	return types.Tab{ID: id, URL: page.URL, PageType: l.extractor.Detect(ctx, page)}
}

// Page returns the snapshot held under tabID and refreshes its expiry.
func (l *Local) Page(tabID string) (*scraper.Page, error) {
	v, ok := l.pages.Get(tabID)
	if !ok {
		return nil, types.ErrPageNotFound
	}
	page := v.(*scraper.Page)
	l.pages.Set(tabID, page, cache.DefaultExpiration)
	return page, nil
}

func (l *Local) Tab(ctx context.Context, tabID string) (types.Tab, error) {
	page, err := l.Page(tabID)
	if err != nil {
		return types.Tab{}, err
	}
	return types.Tab{ID: tabID, URL: page.URL, PageType: l.extractor.Detect(ctx, page)}, nil
}

func (l *Local) Close(tabID string) error {
	if _, ok := l.pages.Get(tabID); !ok {
		return types.ErrPageNotFound
	}
	l.pages.Delete(tabID)
	return nil
}

func (l *Local) Send(ctx context.Context, tabID string, msg types.Message) (types.Response, error) {
	page, err := l.Page(tabID)
	if err != nil {
		return types.Response{}, err
	}
	return l.handler.Handle(ctx, page, msg), nil
}

// ActiveTab returns the most recently opened page that is still held.
func (l *Local) ActiveTab(ctx context.Context) (types.Tab, error) {
	l.mu.Lock()
	id := l.active
	l.mu.Unlock()
	if id == "" {
		return types.Tab{}, types.ErrPageNotFound
	}
	return l.Tab(ctx, id)
}

// Len reports how many pages are held.
func (l *Local) Len() int {
	return l.pages.ItemCount()
}
