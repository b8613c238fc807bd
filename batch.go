package chunkindex

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// BatchSearch runs one Search per query concurrently and returns the
// results in query order. The loaded index is immutable and every search
// owns its heap, so the queries do not contend beyond CPU.
func (ci *Index) BatchSearch(ctx context.Context, queries [][]float32, k int) ([][]Result, error) {
	if ci.chunks == nil {
		return nil, ErrClosed
	}
	if k <= 0 {
		return nil, ErrInvalidK
	}

	out := make([][]Result, len(queries))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, q := range queries {
		i, q := i, q
		g.Go(func() error {
			results, err := ci.Search(ctx, q, k)
			if err != nil {
				return err
			}
			out[i] = results
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
