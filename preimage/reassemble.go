package preimage

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Reassemble fetches every hash in order and returns the concatenation of
// the preimages, with no separators. With parallelism > 1 up to that many
// fetches are in flight at once; results are still joined by index, so
// the output is identical to the sequential path. The first failure
// cancels all outstanding fetches. An empty sequence yields an empty
// buffer.
func Reassemble(ctx context.Context, f Fetcher, hashes []ContentHash, parallelism int) ([]byte, error) {
	if parallelism <= 1 || len(hashes) <= 1 {
		out := make([]byte, 0)
		for i, h := range hashes {
			data, err := f.Fetch(ctx, h)
			if err != nil {
				return nil, fmt.Errorf("preimage: chunk %d: %w", i, err)
			}
			out = append(out, data...)
		}
		return out, nil
	}

	parts := make([][]byte, len(hashes))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)
	for i, h := range hashes {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			data, err := f.Fetch(gctx, h)
			if err != nil {
				return fmt.Errorf("preimage: chunk %d: %w", i, err)
			}
			parts[i] = data
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	total := 0
	for _, p := range parts {
		total += len(p)
	}
	out := make([]byte, 0, total)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out, nil
}
