package services

import (
	"context"
	"fmt"
	"math"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/sermonindex/internal/core/domain"
	"github.com/custodia-labs/sermonindex/internal/core/ports/driven"
	"github.com/custodia-labs/sermonindex/internal/logger"
)

// embedConcurrency bounds in-flight requests in EmbedMany.
const embedConcurrency = 4

// EmbeddingProvider is the process-wide handle on the embedding backend.
//
// The backend is checked once, lazily: concurrent first callers share a
// single in-flight Ping. A failed check is not remembered, so a backend
// that comes up later is picked up by the next call.
type EmbeddingProvider struct {
	svc      driven.EmbeddingService
	maxChars int
	limiter  *rate.Limiter

	init  singleflight.Group
	mu    sync.Mutex
	ready bool
}

// NewEmbeddingProvider wraps svc. A nil svc yields a provider that reports
// itself unavailable. requestsPerSecond bounds EmbedMany; zero or less
// means unlimited.
func NewEmbeddingProvider(svc driven.EmbeddingService, requestsPerSecond int) *EmbeddingProvider {
	limit := rate.Inf
	if requestsPerSecond > 0 {
		limit = rate.Limit(requestsPerSecond)
	}
	return &EmbeddingProvider{
		svc:      svc,
		maxChars: domain.DefaultEmbeddingMaxChars,
		limiter:  rate.NewLimiter(limit, max(requestsPerSecond, 1)),
	}
}

// Available reports whether an embedding backend is configured.
func (p *EmbeddingProvider) Available() bool {
	return p != nil && p.svc != nil
}

// Initialize checks the backend once. It is safe to call concurrently.
func (p *EmbeddingProvider) Initialize(ctx context.Context) error {
	if !p.Available() {
		return domain.ErrEmbeddingUnavailable
	}

	p.mu.Lock()
	ready := p.ready
	p.mu.Unlock()
	if ready {
		return nil
	}

	_, err, shared := p.init.Do("init", func() (any, error) {
		p.mu.Lock()
		ready := p.ready
		p.mu.Unlock()
		if ready {
			return nil, nil
		}

		logger.Debug("initialising embedding model %s", p.svc.ModelName())
		if err := p.svc.Ping(ctx); err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
		}
		p.mu.Lock()
		p.ready = true
		p.mu.Unlock()
		return nil, nil
	})
	if shared {
		logger.Debug("joined in-flight embedding initialisation")
	}
	return err
}

// Embed returns the unit-length embedding of text, truncated to the
// character budget first.
func (p *EmbeddingProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := p.Initialize(ctx); err != nil {
		return nil, err
	}
	vec, err := p.svc.Embed(ctx, truncateRunes(text, p.maxChars))
	if err != nil {
		return nil, err
	}
	return normalize(vec), nil
}

// EmbedMany embeds texts concurrently, rate limited, in input order.
// The first failure cancels the rest.
func (p *EmbeddingProvider) EmbedMany(ctx context.Context, texts []string) ([][]float32, error) {
	if err := p.Initialize(ctx); err != nil {
		return nil, err
	}

	out := make([][]float32, len(texts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(embedConcurrency)
	for i, text := range texts {
		g.Go(func() error {
			if err := p.limiter.Wait(gctx); err != nil {
				return err
			}
			vec, err := p.Embed(gctx, text)
			if err != nil {
				return fmt.Errorf("embed text %d: %w", i, err)
			}
			out[i] = vec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Dimensions returns the vector length of the backend, or 0.
func (p *EmbeddingProvider) Dimensions() int {
	if !p.Available() {
		return 0
	}
	return p.svc.Dimensions()
}

// ModelName returns the backend model name, or "".
func (p *EmbeddingProvider) ModelName() string {
	if !p.Available() {
		return ""
	}
	return p.svc.ModelName()
}

// Close releases the backend.
func (p *EmbeddingProvider) Close() error {
	if !p.Available() {
		return nil
	}
	return p.svc.Close()
}

// normalize scales vec to unit length. A zero vector is returned as is.
func normalize(vec []float32) []float32 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return vec
	}
	norm := math.Sqrt(sum)
	out := make([]float32, len(vec))
	for i, v := range vec {
		out[i] = float32(float64(v) / norm)
	}
	return out
}

// truncateRunes cuts s to at most n runes.
func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
