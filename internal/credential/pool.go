package credential

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"golang.org/x/sync/semaphore"
)

// Pool bounds how many digests are computed at once so that a burst of
// logins cannot occupy every CPU.
type Pool struct {
	sem     *semaphore.Weighted
	size    int
	logger  *slog.Logger
	observe func(time.Duration)
}

// NewPool creates a pool allowing size concurrent digests.
// A size below one defaults to GOMAXPROCS.
func NewPool(size int, logger *slog.Logger) *Pool {
	if size < 1 {
		size = runtime.GOMAXPROCS(0)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pool{
		sem:    semaphore.NewWeighted(int64(size)),
		size:   size,
		logger: logger.With("component", "credential"),
	}
}

// OnDigest registers fn to receive the duration of every digest.
// Call it before the pool is shared.
func (p *Pool) OnDigest(fn func(time.Duration)) {
	p.observe = fn
}

// Size returns the concurrency limit.
func (p *Pool) Size() int {
	return p.size
}

// Digest computes Digest(secret, email) once a slot is free.
// It fails only if ctx is done before a slot is acquired.
func (p *Pool) Digest(ctx context.Context, secret, email string) (string, error) {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer p.sem.Release(1)

	start := time.Now()
	d := Digest(secret, email)
	elapsed := time.Since(start)

	if p.observe != nil {
		p.observe(elapsed)
	}
	p.logger.DebugContext(ctx, "pbkdf2 digest computed",
		"iterations", Iterations,
		"elapsed_ms", float64(elapsed.Microseconds())/1000.0,
	)
	return d, nil
}

// Verify reports whether secret produces the stored digest for email.
func (p *Pool) Verify(ctx context.Context, secret, email, stored string) (bool, error) {
	d, err := p.Digest(ctx, secret, email)
	if err != nil {
		return false, err
	}
	return Equal(d, stored), nil
}
