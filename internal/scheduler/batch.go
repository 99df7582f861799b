package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hamed0406/urlstatus/internal/domain"
	"github.com/hamed0406/urlstatus/internal/probe"
	"github.com/hamed0406/urlstatus/internal/repo"
	"github.com/hamed0406/urlstatus/internal/repo/memory"
)

// DefaultConcurrency is the worker count used when none is configured.
const DefaultConcurrency = 10

var (
	ErrNoResolver     = errors.New("scheduler: no resolver configured")
	ErrBadConcurrency = errors.New("scheduler: concurrency must be at least 1")
)

// ProgressFunc is told about every completion. It runs on the worker that
// completed, after the result has been stored.
type ProgressFunc func(completed, total int)

// Batch runs a Resolver over a URL set with at most Concurrency
// resolutions in flight.
type Batch struct {
	Logger      *zap.Logger
	Resolver    probe.Resolver
	Concurrency int
	Progress    ProgressFunc
}

func NewBatch(logger *zap.Logger, resolver probe.Resolver, concurrency int, progress ProgressFunc) *Batch {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Batch{
		Logger:      logger,
		Resolver:    resolver,
		Concurrency: concurrency,
		Progress:    progress,
	}
}

// Run resolves every URL exactly once and returns one result per URL in
// completion order. Per-URL failures are results, not errors; an error is
// returned only when the batch cannot start.
func (b *Batch) Run(ctx context.Context, urls []string, followRedirects bool) ([]domain.ProbeResult, error) {
	return b.RunInto(ctx, memory.New(len(urls)), urls, followRedirects)
}

// RunInto is Run with a caller-provided store.
func (b *Batch) RunInto(ctx context.Context, store repo.ResultStore, urls []string, followRedirects bool) ([]domain.ProbeResult, error) {
	if b.Resolver == nil {
		return nil, ErrNoResolver
	}
	if b.Concurrency < 1 {
		return nil, fmt.Errorf("%w, got %d", ErrBadConcurrency, b.Concurrency)
	}
	logger := b.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	total := len(urls)
	start := time.Now()
	logger.Info("batch_started",
		zap.Int("urls", total),
		zap.Int("workers", b.Concurrency),
		zap.Bool("follow_redirects", followRedirects),
	)

	// Go blocks once Concurrency goroutines are running, which is the
	// admission gate; Wait drains whatever is still in flight.
	var g errgroup.Group
	g.SetLimit(b.Concurrency)

	for _, raw := range urls {
		raw := raw
		g.Go(func() error {
			res := b.Resolver.Resolve(ctx, raw, followRedirects)

			completed, err := store.Append(ctx, res)
			if err != nil {
				logger.Warn("batch_append_error", zap.String("url", raw), zap.Error(err))
				return nil
			}
			fields := []zap.Field{
				zap.String("url", raw),
				zap.String("final_url", res.FinalURL),
				zap.String("status", string(res.Status)),
			}
			if res.HTTPStatusCode != nil {
				fields = append(fields, zap.Int("status_code", *res.HTTPStatusCode))
			}
			if res.ResponseTimeMillis != nil {
				fields = append(fields, zap.Float64("latency_ms", *res.ResponseTimeMillis))
			}
			logger.Debug("batch_checked", fields...)

			if b.Progress != nil {
				b.Progress(completed, total)
			}
			return nil
		})
	}
	_ = g.Wait()

	results, err := store.Results(ctx)
	if err != nil {
		return nil, fmt.Errorf("scheduler: collect results: %w", err)
	}
	logger.Info("batch_done",
		zap.Int("urls", total),
		zap.Int("results", len(results)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return results, nil
}
