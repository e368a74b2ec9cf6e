package exportlog

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"
)

var mu sync.Mutex

// Entry is one completed export.
type Entry struct {
	Time     string   `json:"time"`
	PageType string   `json:"pageType"`
	Format   string   `json:"format"`
	Filename string   `json:"filename"`
	Path     string   `json:"path,omitempty"`
	Rows     int      `json:"rows"`
	Columns  []string `json:"columns,omitempty"`
	Source   string   `json:"source,omitempty"`
}

func logDir() string {
	if v := os.Getenv("EXPORTER_LOG_DIR"); v != "" {
		return v
	}
	return "logs"
}

func dailyFilepath(t time.Time) string {
	return filepath.Join(logDir(), "exports", t.UTC().Format("2006-01-02")+".txt")
}

// RetentionDays reads EXPORTER_LOG_RETENTION_DAYS, falling back to def.
func RetentionDays(def int) int {
	if v := os.Getenv("EXPORTER_LOG_RETENTION_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

// Append writes e as one JSON line to today's export log.
func Append(e Entry) error {
	mu.Lock()
	defer mu.Unlock()
	now := time.Now().UTC()
	e.Time = now.Format(time.RFC3339)
	p := dailyFilepath(now)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(p, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(f, string(b))
	return err
}

// ReadDay returns the entries logged on the UTC day of t.
func ReadDay(t time.Time) ([]Entry, error) {
	mu.Lock()
	defer mu.Unlock()
	f, err := os.Open(dailyFilepath(t))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var out []Entry
	dec := json.NewDecoder(f)
	for {
		var e Entry
		if err := dec.Decode(&e); err == io.EOF {
			break
		} else if err != nil {
			return out, fmt.Errorf("corrupt export log: %w", err)
		}
		out = append(out, e)
	}
	return out, nil
}

// CompressOlder gzips log files last modified more than retentionDays ago.
func CompressOlder(retentionDays int) error {
	if retentionDays <= 0 {
		return nil
	}
	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	return filepath.WalkDir(logDir(), func(p string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() || filepath.Ext(p) != ".txt" {
			return nil
		}
		info, err := d.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			return nil
		}
		gz := p + ".gz"
		if _, err := os.Stat(gz); err == nil {
			_ = os.Remove(p)
			return nil
		}
		if err := compress(p, gz); err == nil {
			_ = os.Remove(p)
		}
		return nil
	})
}

func compress(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	gw := gzip.NewWriter(out)
	if _, err := io.Copy(gw, in); err != nil {
		_ = gw.Close()
		_ = out.Close()
		_ = os.Remove(dst)
		return err
	}
	if err := gw.Close(); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
