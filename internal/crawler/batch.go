package crawler

import (
	"context"
	"log/slog"
	"time"

	"github.com/nao1215/feedlooker/internal/model"
	"golang.org/x/sync/errgroup"
)

// BatchDiscoverer runs discovery across multiple seed URLs concurrently.
// Each seed gets its own isolated run; only the output is shared.
//
// Design decision: We keep batching out of the Discoverer itself because:
//  1. It keeps the engine focused on one run's frontier
//  2. A run is already internally concurrent; two concurrency layers in
//     one type are hard to reason about
//  3. Batch policy (limits, callbacks) can change without touching the core
type BatchDiscoverer struct {
	// discoverer executes individual runs. Runs share no state, so one
	// engine instance serves all seeds.
	discoverer *Discoverer

	// concurrency is the maximum number of seeds discovered at once.
	concurrency int

	// logger is used for batch-level logging.
	logger *slog.Logger
}

// BatchOption configures a BatchDiscoverer.
type BatchOption func(*BatchDiscoverer)

// WithBatchConcurrency sets the maximum number of concurrent runs.
// Default is 3 if not specified.
func WithBatchConcurrency(n int) BatchOption {
	return func(b *BatchDiscoverer) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchDiscoverer) {
		b.logger = logger
	}
}

// NewBatchDiscoverer creates a BatchDiscoverer on the given engine.
func NewBatchDiscoverer(d *Discoverer, opts ...BatchOption) *BatchDiscoverer {
	b := &BatchDiscoverer{
		discoverer:  d,
		concurrency: 3,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.logger == nil {
		b.logger = slog.Default()
	}
	return b
}

// Discover runs discovery for every seed and returns the reports in seed
// order. A seed whose URL is invalid yields a report carrying only the
// seed URL; the other seeds are unaffected. The callback, when non-nil, is
// invoked as each seed finishes, from the finishing goroutine.
func (b *BatchDiscoverer) Discover(ctx context.Context, seeds []string, callback func(report *model.DiscoveryReport, err error, index int)) []*model.DiscoveryReport {
	b.logger.Info("starting batch discovery",
		"seeds", len(seeds),
		"concurrency", b.concurrency,
	)
	startTime := time.Now()

	reports := make([]*model.DiscoveryReport, len(seeds))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)
	for i, seed := range seeds {
		g.Go(func() error {
			report, err := b.discoverer.Discover(ctx, seed)
			if err != nil {
				b.logger.Warn("discovery failed", "seed", seed, "error", err)
				report = model.NewDiscoveryReport(seed)
			}
			reports[i] = report
			if callback != nil {
				callback(report, err, i)
			}
			// Input errors for one seed never abort the batch.
			return nil
		})
	}
	_ = g.Wait() //nolint:errcheck // Workers always return nil

	b.logger.Info("batch discovery complete",
		"seeds", len(seeds),
		"elapsed", time.Since(startTime),
	)
	return reports
}
