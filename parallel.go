package bimrsid

import (
	"context"

	"golang.org/x/sync/errgroup"
)

const defaultBatchSize = 4096

// reconcileParallel reads up to BatchSize records, looks them up on Workers
// goroutines, then writes the batch in file order before reading the next
// one. Memory is bounded by the batch, and each record is only touched by
// the goroutine that owns its slot.
func (e *Engine) reconcileParallel(ctx context.Context, r *MarkerReader, w *MarkerWriter) (Stats, error) {
	batchSize := e.BatchSize
	if batchSize < 1 {
		batchSize = defaultBatchSize
	}

	var stats Stats
	batch := make([]*MarkerRecord, 0, batchSize)
	decisions := make([]Decision, batchSize)

	for {
		batch = batch[:0]
		for len(batch) < batchSize {
			m := r.Read()
			if m == nil {
				break
			}
			batch = append(batch, m)
		}
		if err := r.Error(); err != nil {
			return stats, err
		}
		if len(batch) == 0 {
			break
		}

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(e.Workers)
		for i := range batch {
			i := i
			g.Go(func() error {
				d, err := e.UpdateRecordID(gctx, batch[i])
				decisions[i] = d
				return err
			})
		}
		if err := g.Wait(); err != nil {
			return stats, err
		}

		for i, m := range batch {
			if err := e.emit(w, m, decisions[i], &stats); err != nil {
				return stats, err
			}
		}

		if len(batch) < batchSize {
			break
		}
	}

	return stats, w.Flush()
}
