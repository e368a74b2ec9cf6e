package exportlog

import (
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestAppendAndReadDay(t *testing.T) {
	t.Setenv("EXPORTER_LOG_DIR", t.TempDir())

	entries := []Entry{
		{PageType: "portfolio", Format: "csv", Filename: "a.csv", Rows: 3, Columns: []string{"coin"}},
		{PageType: "transactions", Format: "json", Filename: "b.json", Rows: 1},
	}
	for _, e := range entries {
		if err := Append(e); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	got, err := ReadDay(time.Now())
	if err != nil {
		t.Fatalf("ReadDay failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(got))
	}
	if got[0].Filename != "a.csv" || got[1].Rows != 1 {
		t.Errorf("Unexpected entries %+v", got)
	}
	if got[0].Time == "" {
		t.Error("Expected Append to stamp the time")
	}
}

func TestReadDayMissing(t *testing.T) {
	t.Setenv("EXPORTER_LOG_DIR", t.TempDir())
	got, err := ReadDay(time.Now().AddDate(0, 0, -3))
	if err != nil || got != nil {
		t.Errorf("Expected no entries and no error, got %v, %v", got, err)
	}
}

func TestCompressOlder(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("EXPORTER_LOG_DIR", dir)

	old := filepath.Join(dir, "exports", "2020-01-01.txt")
	fresh := filepath.Join(dir, "exports", "today.txt")
	if err := os.MkdirAll(filepath.Dir(old), 0o755); err != nil {
		t.Fatal(err)
	}
	for _, p := range []string{old, fresh} {
		if err := os.WriteFile(p, []byte("{\"rows\":1}\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	past := time.Now().AddDate(0, 0, -10)
	if err := os.Chtimes(old, past, past); err != nil {
		t.Fatal(err)
	}

	if err := CompressOlder(7); err != nil {
		t.Fatalf("CompressOlder failed: %v", err)
	}

	if _, err := os.Stat(old); !os.IsNotExist(err) {
		t.Error("Expected old log to be removed")
	}
	if _, err := os.Stat(fresh); err != nil {
		t.Error("Expected fresh log to be kept")
	}

	f, err := os.Open(old + ".gz")
	if err != nil {
		t.Fatalf("Expected gzip file: %v", err)
	}
	defer f.Close()
	gr, err := gzip.NewReader(f)
	if err != nil {
		t.Fatal(err)
	}
	b, _ := io.ReadAll(gr)
	if string(b) != "{\"rows\":1}\n" {
		t.Errorf("Unexpected gzip content %q", b)
	}
}

func TestRetentionDays(t *testing.T) {
	t.Setenv("EXPORTER_LOG_RETENTION_DAYS", "")
	if got := RetentionDays(30); got != 30 {
		t.Errorf("Expected default 30, got %d", got)
	}
	t.Setenv("EXPORTER_LOG_RETENTION_DAYS", "5")
	if got := RetentionDays(30); got != 5 {
		t.Errorf("Expected 5, got %d", got)
	}
}
