package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"coingecko-exporter/internal/types"
)

func TestRemote(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/pages", func(w http.ResponseWriter, r *http.Request) {
		var req OpenRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("bad open body: %v", err)
		}
		json.NewEncoder(w).Encode(types.Tab{ID: "t1", URL: req.URL, PageType: types.PagePortfolio})
	})
	mux.HandleFunc("/api/pages/t1/messages", func(w http.ResponseWriter, r *http.Request) {
		var msg types.Message
		json.NewDecoder(r.Body).Decode(&msg)
		pt := types.PagePortfolio
		json.NewEncoder(w).Encode(types.Response{Success: msg.Action == types.ActionDetectPageType, PageType: &pt})
	})
	mux.HandleFunc("/api/pages/gone/messages", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"page not found"}`, http.StatusNotFound)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	ctx := context.Background()
	r := NewRemote(NewClient(WithBaseURL(srv.URL)))

	if _, err := r.ActiveTab(ctx); !errors.Is(err, types.ErrPageNotFound) {
		t.Errorf("Expected no active tab, got %v", err)
	}

	tab, err := r.Open(ctx, OpenRequest{URL: "https://www.coingecko.com/en/portfolios", HTML: "<p/>"})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if active, _ := r.ActiveTab(ctx); active.ID != "t1" || tab.PageType != types.PagePortfolio {
		t.Errorf("Unexpected tab %+v", active)
	}

	resp, err := r.Send(ctx, "t1", types.Message{Action: types.ActionDetectPageType})
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if !resp.Success || resp.PageType == nil || *resp.PageType != types.PagePortfolio {
		t.Errorf("Unexpected response %+v", resp)
	}

	if _, err := r.Send(ctx, "gone", types.Message{Action: types.ActionDetectPageType}); !errors.Is(err, types.ErrPageNotFound) {
		t.Errorf("Expected ErrPageNotFound, got %v", err)
	}
}
