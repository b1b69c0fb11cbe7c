package workers

import (
	"context"
	"sync"

	"github.com/samber/lo"
)

// DefaultBatchSize bounds how many items are in flight at once.
const DefaultBatchSize = 3

// Batcher runs items in fixed-size groups: groups execute one after another,
// members of a group execute concurrently. Run must always produce a result,
// so one failing item never affects its batch-mates or later batches.
type Batcher[T, R any] struct {
	// Size is the number of items per batch (DefaultBatchSize when <= 0).
	Size int
	// Run processes a single item.
	Run func(ctx context.Context, item T) R
	// Skip produces the result for items that were never started because ctx
	// was done before their batch began. Nil leaves the zero value.
	Skip func(item T) R
	// OnBatch, if set, is called before each batch starts.
	OnBatch func(index, size int)
}

// Process runs every item and returns the results in input order.
// The returned slice always has len(items) elements.
func (b Batcher[T, R]) Process(ctx context.Context, items []T) []R {
	size := b.Size
	if size <= 0 {
		size = DefaultBatchSize
	}

	results := make([]R, len(items))
	offset := 0

	for index, batch := range lo.Chunk(items, size) {
		if ctx.Err() != nil {
			b.skipFrom(items, results, offset)
			return results
		}

		if b.OnBatch != nil {
			b.OnBatch(index, len(batch))
		}

		var wg sync.WaitGroup
		for i, item := range batch {
			wg.Add(1)
			go func(slot int, item T) {
				defer wg.Done()
				results[slot] = b.Run(ctx, item)
			}(offset+i, item)
		}
		wg.Wait()

		offset += len(batch)
	}

	return results
}

func (b Batcher[T, R]) skipFrom(items []T, results []R, offset int) {
	if b.Skip == nil {
		return
	}
	for i := offset; i < len(items); i++ {
		results[i] = b.Skip(items[i])
	}
}
