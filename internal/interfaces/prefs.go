package interfaces

import "context"

// PreferenceStore is an opaque key-value store for user preferences.
// Get returns only the keys that are present.
type PreferenceStore interface {
	Get(ctx context.Context, keys ...string) (map[string]any, error)
	Set(ctx context.Context, values map[string]any) error
}
