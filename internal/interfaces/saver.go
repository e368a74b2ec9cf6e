package interfaces

import "context"

// Saver persists an export file and returns where it was written.
type Saver interface {
	Save(ctx context.Context, filename string, content []byte) (string, error)
}
