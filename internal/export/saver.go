package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// DiskSaver writes export files into a single output directory.
type DiskSaver struct {
	Dir string
}

func NewDiskSaver(dir string) *DiskSaver {
	if dir == "" {
		dir = "exports"
	}
	return &DiskSaver{Dir: dir}
}

// Save writes content under the base name of filename. The file is written
// to a temporary name first so a failed save never leaves a partial export.
func (s *DiskSaver) Save(_ context.Context, filename string, content []byte) (string, error) {
	name := BaseName(filename)
	if name == "" {
		return "", fmt.Errorf("invalid export filename %q", filename)
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create export dir: %w", err)
	}

	path := filepath.Join(s.Dir, name)
	tmp, err := os.CreateTemp(s.Dir, "."+name+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("failed to create export file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to write export file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return "", fmt.Errorf("failed to save export file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("failed to save export file: %w", err)
	}
	return path, nil
}
