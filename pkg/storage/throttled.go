package storage

import (
	"context"
	"io"

	"github.com/sdejongh/dupnorris/pkg/ratelimit"
)

// Throttled limits the read rate of a backend. Stat is not throttled.
type Throttled struct {
	Backend
	limiter *ratelimit.Limiter
}

// NewThrottled wraps backend so all its readers share limiter. A nil
// limiter returns backend unchanged.
func NewThrottled(backend Backend, limiter *ratelimit.Limiter) Backend {
	if limiter == nil {
		return backend
	}
	return &Throttled{Backend: backend, limiter: limiter}
}

// Read opens a file whose reads are throttled
func (t *Throttled) Read(ctx context.Context, path string) (io.ReadCloser, error) {
	rc, err := t.Backend.Read(ctx, path)
	if err != nil {
		return nil, err
	}
	return ratelimit.NewReader(ctx, rc, t.limiter), nil
}
