package wordle

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/jward/wordle/internal/freq"
	"github.com/jward/wordle/internal/store"
)

// countParallel counts files using a three-phase pipeline:
//
//	Phase A (serial):   Queue every unit and size the worker pool.
//	Phase B (parallel): Workers fold files into independent maps; cache
//	                    misses are buffered in a shared BatchedStore.
//	Phase C (serial):   A single owner merges maps as they arrive, then
//	                    commits the batch to SQLite in one transaction.
//
// The first error cancels the remaining work and is returned.
func (e *Engine) countParallel(ctx context.Context, units []unit) (*tally, error) {
	// ---- Phase A: Serial preparation ----
	numWorkers := e.workers
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	numWorkers = max(1, min(numWorkers, len(units)))

	workCh := make(chan unit, len(units))
	for _, u := range units {
		workCh <- u
	}
	close(workCh)

	var batch *store.BatchedStore
	var ds store.DataStore
	if e.store != nil {
		batch = store.NewBatchedStore(e.store)
		ds = batch
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// ---- Phase B: Parallel counting ----
	type result struct {
		unit unit
		res  fileResult
		err  error
	}
	resultCh := make(chan result, len(units))

	var wg sync.WaitGroup
	for range numWorkers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for u := range workCh {
				if ctx.Err() != nil {
					return
				}
				res, err := e.countFile(ctx, u, ds)
				resultCh <- result{unit: u, res: res, err: err}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	// ---- Phase C: Single owner merges and commits ----
	t := &tally{words: freq.Map{}, languages: map[string]bool{}}
	var firstErr error
	for r := range resultCh {
		if firstErr != nil {
			continue // drain
		}
		if r.err != nil {
			firstErr = fmt.Errorf("wordle: count %s: %w", r.unit.path, r.err)
			cancel()
			continue
		}
		t.add(r.res)
		e.emit(r.unit, r.res)
	}
	if firstErr != nil {
		return nil, firstErr
	}
	// A cancelled parent stops workers early without any per-file error.
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("wordle: %w", err)
	}

	if batch != nil && batch.Len() > 0 {
		if err := e.store.CommitBatch(batch); err != nil {
			return nil, fmt.Errorf("wordle: commit cache: %w", err)
		}
	}
	return t, nil
}
