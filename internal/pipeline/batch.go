package pipeline

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/sitescan/internal/model"
)

// DefaultConcurrency is the number of targets processed at once when no
// WithConcurrency option is given.
const DefaultConcurrency = 2

// Factory builds the pipeline for one target. Taking the target lets
// callers apply per-target settings such as headers and timeouts.
type Factory func(target string) *Pipeline

// BatchProcessor handles concurrent processing of multiple targets.
// It uses errgroup to manage goroutines and respect concurrency limits.
type BatchProcessor struct {
	// factory creates a fresh pipeline for each target so that no
	// pipeline state leaks between scans.
	factory Factory

	// concurrency is the maximum number of concurrent scans.
	concurrency int

	// logger is used for batch-level logging.
	logger *slog.Logger
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent scans.
// Non-positive values keep the default.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a new BatchProcessor.
func NewBatchProcessor(factory Factory, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		factory:     factory,
		concurrency: DefaultConcurrency,
	}

	for _, opt := range opts {
		opt(bp)
	}

	if bp.logger == nil {
		bp.logger = slog.Default()
	}

	return bp
}

// ProcessBatch scans multiple targets concurrently, at most concurrency at
// a time, and returns one scan per target in input order. Scans that
// failed are included with their error recorded. Targets not started
// before ctx was cancelled have a nil entry, and the context error is
// returned.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, targets []string) ([]*model.Scan, error) {
	bp.logger.Info("starting batch processing",
		"total_targets", len(targets),
		"concurrency", bp.concurrency,
	)

	startTime := time.Now()

	// Each goroutine writes only its own index.
	results := make([]*model.Scan, len(targets))

	err := bp.run(ctx, targets, func(scan *model.Scan, index int) {
		results[index] = scan
	})

	bp.logger.Info("batch processing complete",
		"total_targets", len(targets),
		"elapsed", time.Since(startTime),
	)

	return results, err
}

// ProcessBatchWithCallback scans multiple targets and calls callback for
// each completed scan. This is useful for streaming results.
//
// The callback receives the scan and the index of the target in the
// original slice. It is called from the goroutine that completed the scan,
// so it must be safe for concurrent use.
func (bp *BatchProcessor) ProcessBatchWithCallback(
	ctx context.Context,
	targets []string,
	callback func(scan *model.Scan, index int),
) error {
	bp.logger.Info("starting batch processing with callback",
		"total_targets", len(targets),
		"concurrency", bp.concurrency,
	)

	return bp.run(ctx, targets, callback)
}

func (bp *BatchProcessor) run(ctx context.Context, targets []string, done func(*model.Scan, int)) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, target := range targets {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			bp.logger.Info("scanning target",
				"target", target,
				"index", i+1,
				"total", len(targets),
			)

			scan := model.NewScan(target)
			if err := bp.factory(target).Execute(ctx, scan); err != nil {
				// Recorded on the scan; other targets keep going.
				bp.logger.Warn("scan failed",
					"target", target,
					"error", err,
				)
			} else {
				bp.logger.Info("scan completed", "target", target)
			}

			done(scan, i)
			return nil
		})
	}

	return g.Wait()
}
