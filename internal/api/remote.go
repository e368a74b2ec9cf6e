package api

import (
	"context"
	"errors"
	"net/url"
	"sync"

	"coingecko-exporter/internal/interfaces"
	"coingecko-exporter/internal/types"
)

// OpenRequest is the body of POST /api/pages. With HTML empty the server
// fetches URL itself.
type OpenRequest struct {
	URL  string `json:"url"`
	HTML string `json:"html,omitempty"`
}

// Remote drives pages held by an exporter server over HTTP.
type Remote struct {
	client *Client

	mu     sync.Mutex
	active types.Tab
}

var _ interfaces.Channel = (*Remote)(nil)

func NewRemote(client *Client) *Remote {
	return &Remote{client: client}
}

// Open registers a page on the server and makes it the active tab.
func (r *Remote) Open(ctx context.Context, req OpenRequest) (types.Tab, error) {
	resp, err := r.client.POST(ctx, "/api/pages", req)
	if err != nil {
		return types.Tab{}, err
	}
	var tab types.Tab
	if err := resp.ParseJSON(&tab); err != nil {
		return types.Tab{}, err
	}
	r.mu.Lock()
	r.active = tab
	r.mu.Unlock()
	return tab, nil
}

// Page looks up a page the server holds.
func (r *Remote) Page(ctx context.Context, tabID string) (types.Tab, error) {
	resp, err := r.client.GET(ctx, "/api/pages/"+url.PathEscape(tabID))
	if err != nil {
		return types.Tab{}, notFound(err)
	}
	var tab types.Tab
	err = resp.ParseJSON(&tab)
	return tab, err
}

func (r *Remote) Close(ctx context.Context, tabID string) error {
	_, err := r.client.DELETE(ctx, "/api/pages/"+url.PathEscape(tabID))
	return notFound(err)
}

func (r *Remote) Send(ctx context.Context, tabID string, msg types.Message) (types.Response, error) {
	resp, err := r.client.POST(ctx, "/api/pages/"+url.PathEscape(tabID)+"/messages", msg)
	if err != nil {
		return types.Response{}, notFound(err)
	}
	var out types.Response
	err = resp.ParseJSON(&out)
	return out, err
}

// ActiveTab returns the most recently opened page.
func (r *Remote) ActiveTab(context.Context) (types.Tab, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active.ID == "" {
		return types.Tab{}, types.ErrPageNotFound
	}
	return r.active, nil
}

// notFound collapses a 404 reply to types.ErrPageNotFound.
func notFound(err error) error {
	if errors.Is(err, types.ErrPageNotFound) {
		return types.ErrPageNotFound
	}
	return err
}
