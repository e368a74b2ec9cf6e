package interfaces

import (
	"context"

	"coingecko-exporter/internal/types"
)

// Channel delivers a message to the page open in a tab and returns its reply.
// A transport failure is an error; a handled failure is a Response with
// Success false.
type Channel interface {
	Send(ctx context.Context, tabID string, msg types.Message) (types.Response, error)
}
