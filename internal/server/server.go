// Package server exposes page snapshots and the message channel over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"coingecko-exporter/internal/api"
	"coingecko-exporter/internal/columns"
	"coingecko-exporter/internal/export"
	"coingecko-exporter/internal/logger"
	"coingecko-exporter/internal/scraper"
	"coingecko-exporter/internal/types"
)

const defaultMaxBody = 20 << 20

// PageFetcher downloads a page snapshot.
type PageFetcher interface {
	Fetch(ctx context.Context, pageURL string) (*scraper.Page, error)
}

type Server struct {
	pages      *api.Local
	fetcher    PageFetcher
	fetchHosts map[string]bool
	maxBody    int64
}

type Option func(*Server)

// WithFetcher enables POST /api/pages with a URL and no HTML.
func WithFetcher(f PageFetcher) Option {
	return func(s *Server) { s.fetcher = f }
}

// WithFetchHosts restricts server-side fetches to the given hosts.
func WithFetchHosts(hosts ...string) Option {
	return func(s *Server) {
		for _, h := range hosts {
			s.fetchHosts[strings.ToLower(h)] = true
		}
	}
}

func WithMaxBody(n int64) Option {
	return func(s *Server) { s.maxBody = n }
}

func New(pages *api.Local, opts ...Option) *Server {
	s := &Server{
		pages:      pages,
		fetchHosts: map[string]bool{},
		maxBody:    defaultMaxBody,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Post("/pages", s.handleOpenPage)
		r.Route("/pages/{tabId}", func(r chi.Router) {
			r.Get("/", s.handleGetPage)
			r.Delete("/", s.handleClosePage)
			r.Post("/messages", s.handleMessage)
			r.Get("/preview", s.handlePreview)
		})
	})
	return r
}

// ListenAndServe serves until ctx is canceled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info(ctx, "Server starting", "address", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logger.Info(ctx, "Server shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "pages": s.pages.Len()})
}

func (s *Server) handleOpenPage(w http.ResponseWriter, r *http.Request) {
	var req api.OpenRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.maxBody)).Decode(&req); err != nil {
		sendJSONError(w, r, "invalid request body", http.StatusBadRequest)
		return
	}

	var (
		page *scraper.Page
		err  error
	)
	switch {
	case req.HTML != "":
		page, err = scraper.NewPageFromString(req.URL, req.HTML)
	case req.URL != "":
		page, err = s.fetch(r.Context(), req.URL)
		if err != nil {
			sendJSONError(w, r, err.Error(), http.StatusBadGateway)
			return
		}
	default:
		sendJSONError(w, r, "url or html is required", http.StatusBadRequest)
		return
	}
	if err != nil {
		sendJSONError(w, r, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusCreated, s.pages.Open(r.Context(), page))
}

func (s *Server) fetch(ctx context.Context, rawURL string) (*scraper.Page, error) {
	if s.fetcher == nil {
		return nil, errors.New("fetching is disabled, send the page html")
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("invalid url %q", rawURL)
	}
	if len(s.fetchHosts) > 0 && !s.fetchHosts[strings.ToLower(u.Hostname())] {
		return nil, fmt.Errorf("fetching from %s is not allowed", u.Hostname())
	}
	return s.fetcher.Fetch(ctx, rawURL)
}

func (s *Server) handleGetPage(w http.ResponseWriter, r *http.Request) {
	tab, err := s.pages.Tab(r.Context(), chi.URLParam(r, "tabId"))
	if err != nil {
		sendPageError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tab)
}

func (s *Server) handleClosePage(w http.ResponseWriter, r *http.Request) {
	if err := s.pages.Close(chi.URLParam(r, "tabId")); err != nil {
		sendPageError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	var msg types.Message
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.maxBody)).Decode(&msg); err != nil {
		sendJSONError(w, r, "invalid message", http.StatusBadRequest)
		return
	}
	resp, err := s.pages.Send(r.Context(), chi.URLParam(r, "tabId"), msg)
	if err != nil {
		sendPageError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	resp, err := s.pages.Send(r.Context(), chi.URLParam(r, "tabId"), types.Message{Action: types.ActionGetPreview})
	if err != nil {
		sendPageError(w, r, err)
		return
	}
	if !resp.Success {
		sendJSONError(w, r, resp.Error, http.StatusUnprocessableEntity)
		return
	}

	selected := r.URL.Query()["column"]
	preview := export.NewPreview(export.Project(resp.Data, selected, columns.For(resp.Type).Keys()), resp.Type, resp.TotalRows)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, preview.HTML())
}

func sendPageError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, types.ErrPageNotFound) {
		sendJSONError(w, r, err.Error(), http.StatusNotFound)
		return
	}
	sendJSONError(w, r, err.Error(), http.StatusInternalServerError)
}

func sendJSONError(w http.ResponseWriter, r *http.Request, message string, statusCode int) {
	logger.Warn(r.Context(), "Sending JSON error to client",
		"message", message,
		"status", statusCode,
		"request_id", middleware.GetReqID(r.Context()))
	writeJSON(w, statusCode, map[string]string{"error": message})
}

func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(v)
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		logger.Debug(r.Context(), "HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()))
	})
}
