package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"coingecko-exporter/internal/types"
)

func TestFetcherFetch(t *testing.T) {
	var gotCookie, gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCookie = r.Header.Get("Cookie")
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(transactionsHTML))
	}))
	defer srv.Close()

	f := NewFetcher(5*time.Second, WithCookie("session=abc"), WithUserAgent("exporter-test"))
	page, err := f.Fetch(context.Background(), srv.URL+"/en/portfolios/transactions")
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}

	if gotCookie != "session=abc" {
		t.Errorf("expected cookie to be sent, got %q", gotCookie)
	}
	if gotUA != "exporter-test" {
		t.Errorf("expected custom user agent, got %q", gotUA)
	}
	if DetectPageType(page) != types.PageTransactions {
		t.Error("expected fetched page to carry a transactions table")
	}
}

func TestFetcherErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	f := NewFetcher(5 * time.Second)
	if _, err := f.Fetch(context.Background(), srv.URL); err == nil {
		t.Error("expected error for 403 response")
	}
	if _, err := f.Fetch(context.Background(), "not a url"); err == nil {
		t.Error("expected error for invalid url")
	}
}
