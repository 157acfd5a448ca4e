// Package ratelimit throttles file reads to a shared byte rate.
package ratelimit

import (
	"context"
	"io"
	"sync"
	"time"
)

// minBurst keeps small limits from degrading into one tiny read per wakeup
const minBurst = 64 * 1024

// Limiter is a token bucket shared by every reader of one scan
type Limiter struct {
	bytesPerSecond int64
	burst          int64

	mu     sync.Mutex
	tokens int64
	last   time.Time
}

// NewLimiter returns a limiter for bytesPerSecond, or nil when the rate is
// not positive. A nil limiter does not throttle.
func NewLimiter(bytesPerSecond int64) *Limiter {
	if bytesPerSecond <= 0 {
		return nil
	}

	burst := bytesPerSecond
	if burst < minBurst {
		burst = minBurst
	}

	return &Limiter{
		bytesPerSecond: bytesPerSecond,
		burst:          burst,
		tokens:         burst,
		last:           time.Now(),
	}
}

// Rate returns the configured bytes per second
func (l *Limiter) Rate() int64 {
	if l == nil {
		return 0
	}
	return l.bytesPerSecond
}

// Wait blocks until n bytes may be read or ctx is done. n is capped to the
// burst size.
func (l *Limiter) Wait(ctx context.Context, n int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if l == nil {
		return nil
	}
	if n > l.burst {
		n = l.burst
	}

	for {
		l.mu.Lock()
		l.refill(time.Now())
		if l.tokens >= n {
			l.tokens -= n
			l.mu.Unlock()
			return nil
		}
		deficit := n - l.tokens
		l.mu.Unlock()

		delay := time.Duration(float64(deficit) / float64(l.bytesPerSecond) * float64(time.Second))
		if delay < time.Millisecond {
			delay = time.Millisecond
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// refund returns tokens reserved for bytes a short read did not use
func (l *Limiter) refund(n int64) {
	if n <= 0 {
		return
	}
	l.mu.Lock()
	l.tokens += n
	if l.tokens > l.burst {
		l.tokens = l.burst
	}
	l.mu.Unlock()
}

// refill must be called with the lock held
func (l *Limiter) refill(now time.Time) {
	elapsed := now.Sub(l.last)
	add := int64(elapsed.Seconds() * float64(l.bytesPerSecond))
	if add > 0 {
		l.tokens += add
		if l.tokens > l.burst {
			l.tokens = l.burst
		}
		l.last = now
	}
}

// Reader throttles reads from an underlying io.ReadCloser
type Reader struct {
	ctx     context.Context
	rc      io.ReadCloser
	limiter *Limiter
}

// NewReader wraps rc. With a nil limiter rc is returned unchanged.
func NewReader(ctx context.Context, rc io.ReadCloser, limiter *Limiter) io.ReadCloser {
	if limiter == nil {
		return rc
	}
	return &Reader{ctx: ctx, rc: rc, limiter: limiter}
}

// Read reserves tokens for len(p), capped to the burst, before reading
func (r *Reader) Read(p []byte) (int, error) {
	want := int64(len(p))
	if want > r.limiter.burst {
		want = r.limiter.burst
	}
	if err := r.limiter.Wait(r.ctx, want); err != nil {
		return 0, err
	}

	n, err := r.rc.Read(p[:want])
	r.limiter.refund(want - int64(n))
	return n, err
}

// Close closes the underlying reader
func (r *Reader) Close() error {
	return r.rc.Close()
}
