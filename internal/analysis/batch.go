package analysis

import (
	"context"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// BatchResult pairs a request with its outcome. Err holds per-function
// failures such as a degenerate derivative; they do not stop the batch.
type BatchResult struct {
	Request Request `json:"request"`
	Report  *Report `json:"report,omitempty"`
	Err     error   `json:"-"`
}

// RunBatch analyzes every request with at most workers running at once.
// Results keep the order of reqs. Only context cancellation aborts the batch.
func (a *Analyzer) RunBatch(ctx context.Context, reqs []Request, workers int) ([]BatchResult, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make([]BatchResult, len(reqs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, req := range reqs {
		i, req := i, req
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			report, err := a.Run(ctx, req)
			if err != nil && ctx.Err() != nil {
				return ctx.Err()
			}
			results[i] = BatchResult{Request: req, Report: report, Err: err}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	a.logger.Debug("batch complete", zap.Int("requests", len(reqs)), zap.Int("workers", workers))
	return results, nil
}
