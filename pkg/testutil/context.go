package testutil

import (
	"context"
	"time"

	"quire/pkg/requestcontext"
)

// ContextWithTime returns a context with the request clock pinned, so tests
// get deterministic createdAt values.
func ContextWithTime(t time.Time) context.Context {
	return requestcontext.WithTime(context.Background(), t)
}
