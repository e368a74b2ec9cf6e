package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"coingecko-exporter/internal/logger"
	"coingecko-exporter/internal/popup"
	"coingecko-exporter/internal/prefs"
	"coingecko-exporter/internal/server"
	"coingecko-exporter/internal/store"
	"coingecko-exporter/internal/trace"
)

const usage = `Usage:
  exporter [flags] <page.html>         one-shot export of a saved page
  exporter -url https://... [flags]     fetch then export
  exporter -serve [-addr :8080]         run the HTTP channel

Flags:
`

type options struct {
	configPath string
	format     string
	columns    string
	name       string
	outDir     string
	preview    bool
	yes        bool
	prefsPath  string
	pageURL    string
	remote     string
	serve      bool
	addr       string
	file       string
	set        map[string]bool
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	o := &options{set: map[string]bool{}}
	fs := flag.NewFlagSet("exporter", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}
	fs.StringVar(&o.configPath, "config", "config.yaml", "path to the YAML config")
	fs.StringVar(&o.format, "format", "", "export format: csv or json")
	fs.StringVar(&o.columns, "columns", "", "comma-separated column keys to export")
	fs.StringVar(&o.name, "name", "", "custom export filename")
	fs.StringVar(&o.outDir, "out", "", "output directory (overrides output_dir)")
	fs.BoolVar(&o.preview, "preview", true, "show a preview before exporting")
	fs.BoolVar(&o.yes, "yes", false, "answer yes to every prompt")
	fs.StringVar(&o.prefsPath, "prefs", "", "preferences file (overrides preferences.path)")
	fs.StringVar(&o.pageURL, "url", "", "page URL; fetched when no file is given")
	fs.StringVar(&o.remote, "remote", "", "drive an exporter server at this base URL instead of exporting in-process")
	fs.BoolVar(&o.serve, "serve", false, "run the HTTP channel")
	fs.StringVar(&o.addr, "addr", "", "listen address (overrides server.addr)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	fs.Visit(func(f *flag.Flag) { o.set[f.Name] = true })

	if fs.NArg() > 1 {
		return nil, errors.New("at most one page file may be given")
	}
	o.file = fs.Arg(0)
	if !o.serve && o.file == "" && o.pageURL == "" {
		fs.Usage()
		return nil, errors.New("a page file or -url is required")
	}
	return o, nil
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	opts, err := parseFlags(args, os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := initializeSystem(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer trace.Shutdown(context.Background())

	cfg, err := loadConfig(ctx, opts)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	compressOldLogs(ctx, cfg)

	if opts.serve {
		err = runServer(ctx, cfg)
	} else {
		err = runExport(ctx, cfg, opts)
	}
	switch {
	case err == nil:
		return 0
	case errors.Is(err, popup.ErrCanceled):
		fmt.Fprintln(os.Stderr, "Export canceled.")
		return 1
	default:
		logger.ErrorWithErr(ctx, "Exporter stopped", err)
		return 1
	}
}

func runServer(ctx context.Context, cfg *store.Config) error {
	local := newLocalChannel(cfg)
	site := strings.TrimPrefix(cfg.SiteHost, "www.")
	srv := server.New(local,
		server.WithFetcher(newFetcher(cfg)),
		server.WithFetchHosts(cfg.SiteHost, site),
	)
	return srv.ListenAndServe(ctx, cfg.Server.Addr)
}

func runExport(ctx context.Context, cfg *store.Config, opts *options) error {
	ch, err := openPage(ctx, cfg, opts)
	if err != nil {
		return err
	}

	sel := popup.NewSelection(prefs.NewFileStore(cfg.Preferences.Path))
	term := popup.NewTerminal(os.Stdin, os.Stderr, opts.yes)
	exp := popup.NewExporter(ch, ch, term, term, sel, cfg.SiteHost,
		popup.WithDelays(cfg.UI.DialogCloseDelay, cfg.UI.ProgressDelay))

	exp.Init(ctx)
	if err := applyFlags(ctx, sel, opts); err != nil {
		return err
	}

	res, err := exp.Run(ctx)
	if err != nil {
		return err
	}

	where := res.Filename
	if opts.remote == "" {
		where = filepath.Join(cfg.OutputDir, res.Filename)
	}
	fmt.Printf("Exported %d %s rows to %s\n", res.RowCount, res.Type, where)
	return nil
}
