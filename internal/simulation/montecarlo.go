package simulation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"stroke-mcs/internal/random"
)

type runOutcome struct {
	index  int
	result SingleRunResult
	err    error
}

// RunMonteCarlo executes n independent passes on a bounded worker pool and aggregates them.
// Seeds are drawn up front, so a fixed engine seed reproduces the aggregate for any worker
// count. progress, when set, is called from a single goroutine with a tally snapshot after
// every run.
// On cancellation the runs already aggregated are returned together with the context error.
func (e *Engine) RunMonteCarlo(ctx context.Context, n int, opts Options, progress func(Progress)) (MultiRunResult, error) {
	if n <= 0 {
		return MultiRunResult{}, fmt.Errorf("%w: n=%d", ErrNoRuns, n)
	}

	batchID := uuid.NewString()
	workers := min(e.cfg.Workers, n)
	start := time.Now()
	log.Info().
		Str("batch", batchID).
		Int("runs", n).
		Int("workers", workers).
		Bool("time_uncertainty", opts.TimeUncertainty).
		Bool("lvo_uncertainty", opts.LVOUncertainty).
		Msg("Starting Monte Carlo batch")

	// 1. Derive per-run seeds before fan-out
	seeds := make([]uint64, n)
	for i := range seeds {
		seeds[i] = e.rng.Uint64()
	}

	// 2. Single consumer owns the tally
	tally := NewTally()
	results := make(chan runOutcome, workers)
	aggregated := make(chan struct{})
	go func() {
		defer close(aggregated)
		for r := range results {
			if r.err != nil {
				tally.Fail()
				log.Warn().Err(r.err).Str("batch", batchID).Int("run", r.index).Msg("Simulation run failed")
			} else {
				tally.Add(r.result)
			}
			if progress != nil {
				progress(tally.Snapshot())
			}
		}
	}()

	// 3. Fan out
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, seed := range seeds {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			began := time.Now()
			res, err := e.run(random.New(seed), opts)
			e.metrics.observe(res, err, time.Since(began))
			select {
			case results <- runOutcome{index: i, result: res, err: err}:
				return nil
			case <-gctx.Done():
				return gctx.Err()
			}
		})
	}
	waitErr := g.Wait()
	close(results)
	<-aggregated

	// 4. Freeze
	out, err := tally.Result()
	out.BatchID = batchID
	if waitErr == nil {
		waitErr = ctx.Err()
	}
	if waitErr != nil {
		log.Warn().Err(waitErr).Str("batch", batchID).Int("completed", out.Runs+out.Failed).Msg("Monte Carlo batch aborted")
		return out, errors.Join(waitErr, err)
	}
	if err != nil {
		return out, err
	}

	log.Info().
		Str("batch", batchID).
		Int("runs", out.Runs).
		Int("trivial", out.Trivial).
		Int("failed", out.Failed).
		Str("optimal", out.Optimal.String()).
		Dur("elapsed", time.Since(start)).
		Msg("Monte Carlo batch complete")
	return out, nil
}
