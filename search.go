package chunkindex

import (
	"context"

	"github.com/hupe1980/chunkindex/internal/queue"
	"github.com/hupe1980/chunkindex/internal/simd"
)

// Result is a single search hit.
type Result struct {
	Index uint32  // record position, usable with the accessor methods
	Score float64 // dot-product similarity against the query
}

// SearchInto performs a bounded top-K scan and writes the hits into the
// caller-supplied buffers, which must hold at least k entries each. It
// returns the number of hits, which is min(k, number of records whose
// dimension equals len(query)).
//
// The query must already be unit-normalized; the index does not normalize
// it. An unnormalized query merely skews the absolute scores, it does not
// fail. Hits are written in heap order, not rank order.
func (ci *Index) SearchInto(ctx context.Context, query []float32, k int, indices []uint32, scores []float64) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if ci.chunks == nil {
		return 0, ErrClosed
	}
	if k <= 0 {
		return 0, ErrInvalidK
	}
	if len(indices) < k || len(scores) < k {
		return 0, ErrShortBuffer
	}

	// Records with any other dimensionality are excluded, not an error.
	bm := ci.dims[uint32(len(query))]
	if bm == nil {
		return 0, nil
	}

	top := queue.NewTopK(k)
	it := bm.Iterator()
	for it.HasNext() {
		i := it.Next()
		top.Offer(simd.Dot(query, ci.chunks[i].emb), i)
	}

	items := top.Items()
	for j, item := range items {
		indices[j] = item.Index
		scores[j] = item.Score
	}

	ci.logger.LogSearch(ctx, k, len(items), nil)
	return len(items), nil
}

// Search is the allocating convenience wrapper around SearchInto.
// Results are in heap order; sort by descending Score for display.
func (ci *Index) Search(ctx context.Context, query []float32, k int) ([]Result, error) {
	if k <= 0 {
		return nil, ErrInvalidK
	}

	indices := make([]uint32, k)
	scores := make([]float64, k)

	n, err := ci.SearchInto(ctx, query, k, indices, scores)
	if err != nil {
		return nil, err
	}

	results := make([]Result, n)
	for i := 0; i < n; i++ {
		results[i] = Result{Index: indices[i], Score: scores[i]}
	}
	return results, nil
}
