// Package embedding holds the process-wide embedding capability handle.
package embedding

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/leadex-cloud/leadex/internal/domain"
)

// Lazy defers construction of the underlying embedder until first use.
// Exactly one initialization runs across concurrent first callers; all of
// them observe the same outcome. The handle lives for the process lifetime
// and is never reset -- an initialization failure is a configuration
// problem, not a transient one.
type Lazy struct {
	init        func() (domain.Embedder, error)
	once        sync.Once
	initialized atomic.Bool
	embedder    domain.Embedder
	err         error
}

// NewLazy creates a lazily initialized embedder handle.
func NewLazy(init func() (domain.Embedder, error)) *Lazy {
	return &Lazy{init: init}
}

// Embed initializes the underlying embedder on first call and delegates.
// Safe for concurrent use: sync.Once makes concurrent first callers wait
// for the single in-flight initialization instead of racing duplicates.
func (l *Lazy) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	l.once.Do(func() {
		l.embedder, l.err = l.init()
		l.initialized.Store(true)
	})
	if l.err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("init embedder: %w: %w", domain.ErrEmbedding, l.err)
	}
	return l.embedder.Embed(ctx, text)
}

// HealthCheck delegates when the underlying embedder supports it. It does
// not force initialization: an untouched handle reports healthy.
func (l *Lazy) HealthCheck(ctx context.Context) error {
	if !l.initialized.Load() || l.embedder == nil {
		return nil
	}
	if hc, ok := l.embedder.(domain.HealthChecker); ok {
		return hc.HealthCheck(ctx)
	}
	return nil
}
