package messaging

import (
	"context"
	"log/slog"
	"runtime/debug"

	"OrderDesk/pkg/logger"

	"golang.org/x/sync/errgroup"
)

// Runner manages multiple workers and runs them concurrently.
type Runner struct {
	workers []Worker
	handler MessageHandler
}

func NewRunner(workers []Worker, handler MessageHandler) *Runner {
	return &Runner{
		workers: workers,
		handler: handler,
	}
}

// Start runs all workers concurrently and waits for them to finish.
// Returns when ctx is cancelled or any worker returns an error.
// Workers are closed on return.
func (r *Runner) Start(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	for i, w := range r.workers {
		i, w := i, w
		g.Go(func() (err error) {
			defer func() {
				if rec := recover(); rec != nil {
					slog.ErrorContext(ctx, "Worker panic recovered",
						slog.Int("worker_idx", i),
						slog.Any("panic", rec),
						slog.String("stack", string(debug.Stack())))
				}
				if closeErr := w.Close(); closeErr != nil {
					slog.ErrorContext(ctx, "Failed to close worker", slog.Int("worker_idx", i), logger.Err(closeErr))
				}
			}()
			return w.Start(ctx, r.handler)
		})
	}

	return g.Wait()
}
