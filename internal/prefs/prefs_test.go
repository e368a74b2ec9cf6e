package prefs

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"coingecko-exporter/internal/interfaces"
)

var (
	_ interfaces.PreferenceStore = (*FileStore)(nil)
	_ interfaces.PreferenceStore = (*Memory)(nil)
)

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "prefs.yaml")
	s := NewFileStore(path)

	got, err := s.Get(ctx, "exportFormat_pref")
	if err != nil {
		t.Fatalf("Get on missing file failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Expected no values, got %v", got)
	}

	if err := s.Set(ctx, map[string]any{"exportFormat_pref": "json", "columnPrefs_portfolio": []string{"coin", "price"}}); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := s.Set(ctx, map[string]any{"showPreview_pref": false}); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	reopened := NewFileStore(path)
	got, err = reopened.Get(ctx, "exportFormat_pref", "columnPrefs_portfolio", "showPreview_pref", "missing")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got["exportFormat_pref"] != "json" {
		t.Errorf("Expected json, got %v", got["exportFormat_pref"])
	}
	if got["showPreview_pref"] != false {
		t.Errorf("Expected false, got %v", got["showPreview_pref"])
	}
	cols, ok := Strings(got["columnPrefs_portfolio"])
	if !ok || !reflect.DeepEqual(cols, []string{"coin", "price"}) {
		t.Errorf("Unexpected columns %v", got["columnPrefs_portfolio"])
	}
	if _, ok := got["missing"]; ok {
		t.Error("Expected missing key to be absent")
	}
}

func TestFileStoreCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.yaml")
	if err := os.WriteFile(path, []byte("a: [1, 2\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewFileStore(path).Get(context.Background(), "x"); err == nil {
		t.Error("Expected parse error")
	}
}

func TestMemory(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	_ = m.Set(ctx, map[string]any{"a": 1})
	got, _ := m.Get(ctx, "a", "b")
	if len(got) != 1 || got["a"] != 1 {
		t.Errorf("Unexpected values %v", got)
	}
}

func TestStrings(t *testing.T) {
	tests := []struct {
		in   any
		want []string
		ok   bool
	}{
		{[]string{"a"}, []string{"a"}, true},
		{[]any{"a", "b"}, []string{"a", "b"}, true},
		{[]any{"a", 1}, nil, false},
		{"a", nil, false},
		{nil, nil, false},
	}
	for _, tt := range tests {
		got, ok := Strings(tt.in)
		if ok != tt.ok || !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Strings(%v) = %v, %v", tt.in, got, ok)
		}
	}
}
