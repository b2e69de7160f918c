package evm

import (
	"context"
	"sync"
)

// TimestampCache memoizes block timestamps forever. Block timestamps are
// immutable, so there is no TTL and no eviction.
type TimestampCache struct {
	mu sync.Mutex
	m  map[uint64]uint64
}

// NewTimestampCache builds an empty cache.
func NewTimestampCache() *TimestampCache {
	return &TimestampCache{m: map[uint64]uint64{}}
}

// Get looks up a block timestamp.
func (c *TimestampCache) Get(block uint64) (uint64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ts, ok := c.m[block]
	return ts, ok
}

// Put records a block timestamp.
func (c *TimestampCache) Put(block, ts uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[block] = ts
}

// BatchTimestamps resolves every block in blocks to its Unix timestamp,
// fanning uncached lookups out concurrently. Each lookup is idempotent and
// lands in the permanent cache, so ordering does not matter. Failed lookups
// are omitted from the result rather than failing the batch.
func (c *Client) BatchTimestamps(ctx context.Context, blocks []uint64) map[uint64]uint64 {
	result := map[uint64]uint64{}
	var toFetch []uint64
	for _, bn := range dedupBlocks(blocks) {
		if ts, ok := c.ts.Get(bn); ok {
			result[bn] = ts
		} else {
			toFetch = append(toFetch, bn)
		}
	}

	if len(toFetch) == 0 {
		return result
	}

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for _, bn := range toFetch {
		wg.Add(1)
		go func(bn uint64) {
			defer wg.Done()
			ts, err := c.BlockTimestamp(ctx, bn)
			if err != nil {
				return
			}
			mu.Lock()
			result[bn] = ts
			mu.Unlock()
		}(bn)
	}
	wg.Wait()

	return result
}

func dedupBlocks(blocks []uint64) []uint64 {
	seen := map[uint64]struct{}{}
	out := make([]uint64, 0, len(blocks))
	for _, b := range blocks {
		if _, ok := seen[b]; ok {
			continue
		}
		seen[b] = struct{}{}
		out = append(out, b)
	}
	return out
}
