package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"coingecko-exporter/internal/api"
	"coingecko-exporter/internal/columns"
	"coingecko-exporter/internal/export"
	"coingecko-exporter/internal/exportlog"
	"coingecko-exporter/internal/interfaces"
	"coingecko-exporter/internal/logger"
	"coingecko-exporter/internal/messaging"
	"coingecko-exporter/internal/popup"
	"coingecko-exporter/internal/scraper"
	"coingecko-exporter/internal/scraper/scraperobs"
	"coingecko-exporter/internal/store"
	"coingecko-exporter/internal/trace"
)

// initializeSystem loads .env and sets up logging and tracing. Both write to
// stderr so stdout carries only the export result.
func initializeSystem() error {
	_ = godotenv.Load()

	logCfg := logger.LoadConfigFromEnv()
	logCfg.Output = os.Stderr
	if err := logger.InitWithConfig(logCfg); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if err := trace.Init(os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize tracer: %v\n", err)
	}
	return nil
}

// loadConfig reads the config file, falling back to defaults when the
// default path does not exist, then applies flag overrides.
func loadConfig(ctx context.Context, opts *options) (*store.Config, error) {
	cfg, err := store.LoadConfig(opts.configPath)
	if errors.Is(err, os.ErrNotExist) && !opts.set["config"] {
		logger.Debug(ctx, "No config file, using defaults", "path", opts.configPath)
		cfg, err = store.DefaultConfig(), nil
	}
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to load config", err)
		return nil, err
	}

	if opts.outDir != "" {
		cfg.OutputDir = opts.outDir
	}
	if opts.prefsPath != "" {
		cfg.Preferences.Path = opts.prefsPath
	}
	if opts.addr != "" {
		cfg.Server.Addr = opts.addr
	}
	return cfg, nil
}

// compressOldLogs gzips export logs past their retention.
func compressOldLogs(ctx context.Context, cfg *store.Config) {
	if err := exportlog.CompressOlder(exportlog.RetentionDays(cfg.ExportLog.RetentionDays)); err != nil {
		logger.Warn(ctx, "Failed to compress old logs", "error", err)
	}
}

func newFetcher(cfg *store.Config) *scraper.Fetcher {
	return scraper.NewFetcher(cfg.Fetch.Timeout,
		scraper.WithUserAgent(cfg.Fetch.UserAgent),
		scraper.WithCookie(cfg.Cookie()),
		scraper.WithDelay(cfg.Fetch.Delay),
	)
}

// newLocalChannel builds the in-process pipeline: an observed extractor,
// the disk saver and the message handler behind a page registry.
func newLocalChannel(cfg *store.Config) *api.Local {
	extractor := scraperobs.Wrap(scraper.NewExtractor())
	handler := messaging.NewHandler(extractor, export.NewDiskSaver(cfg.OutputDir))
	return api.NewLocal(handler, extractor, cfg.Server.PageTTL)
}

// pageChannel is a channel that also knows which page is active.
type pageChannel interface {
	interfaces.Channel
	popup.TabQuerier
}

// openPage makes the requested page the active tab, either in-process or
// on a remote exporter server.
func openPage(ctx context.Context, cfg *store.Config, opts *options) (pageChannel, error) {
	pageURL := opts.pageURL
	if pageURL == "" {
		pageURL = "https://" + cfg.SiteHost + "/"
	}

	if opts.remote != "" {
		remote := api.NewRemote(api.NewClient(
			api.WithBaseURL(strings.TrimRight(opts.remote, "/")),
			api.WithTimeout(0),
			api.WithLogging(true),
		))
		req := api.OpenRequest{URL: pageURL}
		if opts.file != "" {
			b, err := os.ReadFile(opts.file)
			if err != nil {
				return nil, err
			}
			req.HTML = string(b)
		}
		if _, err := remote.Open(ctx, req); err != nil {
			return nil, fmt.Errorf("failed to open page on %s: %w", opts.remote, err)
		}
		return remote, nil
	}

	var (
		page *scraper.Page
		err  error
	)
	if opts.file != "" {
		page, err = readPage(pageURL, opts.file)
	} else {
		page, err = newFetcher(cfg).Fetch(ctx, pageURL)
	}
	if err != nil {
		return nil, err
	}

	local := newLocalChannel(cfg)
	tab := local.Open(ctx, page)
	logger.Info(ctx, "Page opened", "tab_id", tab.ID, "url", tab.URL, "page_type", tab.PageType.String())
	return local, nil
}

func readPage(pageURL, path string) (*scraper.Page, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return scraper.NewPage(pageURL, f)
}

// applyFlags turns command-line choices into selection changes, the way a
// user would make them in the popup.
func applyFlags(ctx context.Context, sel *popup.Selection, opts *options) error {
	if opts.set["format"] {
		if err := sel.SetFormat(ctx, opts.format); err != nil {
			return err
		}
	}
	if opts.set["preview"] {
		sel.SetShowPreview(ctx, opts.preview)
	}
	if opts.set["name"] {
		sel.SetCustomFilename(opts.name)
	}
	if opts.set["columns"] {
		spec := columns.For(sel.DataType())
		var keys []string
		for _, k := range strings.Split(opts.columns, ",") {
			k = strings.TrimSpace(k)
			if k == "" {
				continue
			}
			if !spec.Has(k) {
				return fmt.Errorf("unknown column %q for %s table (have %s)", k, sel.DataType(), strings.Join(spec.Keys(), ", "))
			}
			keys = append(keys, k)
		}
		sel.DeselectAll(ctx)
		for _, k := range keys {
			sel.Toggle(ctx, k, true)
		}
	}
	return nil
}
