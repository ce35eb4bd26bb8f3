package storage

import (
	"context"
	"fmt"
)

// Copy writes every document of src into dst in a single batch, keeping ids
// and per-collection order. Documents already in dst with the same id are
// replaced. It returns the number of documents copied per collection.
func Copy(ctx context.Context, dst, src Adapter) (map[Collection]int, error) {
	counts := make(map[Collection]int, len(Collections))
	var writes []Write
	for _, c := range Collections {
		snap, err := src.List(ctx, c)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s from source: %w", c, err)
		}
		for _, rec := range snap {
			writes = append(writes, Write{Collection: c, ID: rec.ID, Op: OpSet, Data: rec.Data})
		}
		counts[c] = len(snap)
	}

	if len(writes) == 0 {
		return counts, nil
	}
	if err := dst.BatchWrite(ctx, writes); err != nil {
		return nil, fmt.Errorf("failed to write destination: %w", err)
	}
	return counts, nil
}
