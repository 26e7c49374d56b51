package core

import (
	"hash/fnv"
	"sync"

	"github.com/huangsam/devflow/schema"
)

// cacheShardCount is fixed so the shard index for a path never changes over
// the lifetime of a cache.
const cacheShardCount = 32

// ResultCache is a concurrent map keyed by file path holding the merged
// per-file result. PutIfAbsent is the only writer, which makes every entry
// write-once: a cached result is never overwritten or mutated.
//
// The cache owns all inserted values; readers receive copies.
type ResultCache struct {
	shards [cacheShardCount]cacheShard
}

type cacheShard struct {
	mu      sync.RWMutex
	entries map[string]*schema.AnalysisResult
}

// NewResultCache returns an empty cache.
func NewResultCache() *ResultCache {
	c := &ResultCache{}
	for i := range c.shards {
		c.shards[i].entries = make(map[string]*schema.AnalysisResult)
	}
	return c
}

func (c *ResultCache) shard(key string) *cacheShard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return &c.shards[h.Sum32()%cacheShardCount]
}

// PutIfAbsent inserts the result if its path is not already cached.
// Returns true when the insert happened.
func (c *ResultCache) PutIfAbsent(result *schema.AnalysisResult) bool {
	s := c.shard(result.Path)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[result.Path]; ok {
		return false
	}
	s.entries[result.Path] = result
	return true
}

// Get returns a copy of the cached result for a path. Non-blocking.
func (c *ResultCache) Get(path string) (*schema.AnalysisResult, bool) {
	s := c.shard(path)
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.entries[path]
	if !ok {
		return nil, false
	}
	return cloneResult(r), true
}

// Has reports whether a path is already cached. Non-blocking.
func (c *ResultCache) Has(path string) bool {
	s := c.shard(path)
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.entries[path]
	return ok
}

// Len returns the number of cached entries.
func (c *ResultCache) Len() int {
	total := 0
	for i := range c.shards {
		s := &c.shards[i]
		s.mu.RLock()
		total += len(s.entries)
		s.mu.RUnlock()
	}
	return total
}

// Snapshot returns copies of all cached results in unspecified order.
func (c *ResultCache) Snapshot() []*schema.AnalysisResult {
	results := make([]*schema.AnalysisResult, 0, c.Len())
	for i := range c.shards {
		s := &c.shards[i]
		s.mu.RLock()
		for _, r := range s.entries {
			results = append(results, cloneResult(r))
		}
		s.mu.RUnlock()
	}
	return results
}

func cloneResult(r *schema.AnalysisResult) *schema.AnalysisResult {
	clone := *r
	if r.Metrics.Dependencies != nil {
		clone.Metrics.Dependencies = make([]string, len(r.Metrics.Dependencies))
		copy(clone.Metrics.Dependencies, r.Metrics.Dependencies)
	}
	if r.Metrics.Findings != nil {
		clone.Metrics.Findings = make([]schema.SecurityFinding, len(r.Metrics.Findings))
		copy(clone.Metrics.Findings, r.Metrics.Findings)
	}
	if r.Insight != nil {
		insight := *r.Insight
		clone.Insight = &insight
	}
	return &clone
}
