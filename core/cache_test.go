package core

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huangsam/devflow/schema"
)

func TestResultCachePutIfAbsent(t *testing.T) {
	cache := NewResultCache()

	first := &schema.AnalysisResult{
		Path:    "src/main.rs",
		Metrics: schema.FileMetrics{Path: "src/main.rs", Complexity: 3},
	}
	second := &schema.AnalysisResult{
		Path:    "src/main.rs",
		Metrics: schema.FileMetrics{Path: "src/main.rs", Complexity: 99},
	}

	assert.True(t, cache.PutIfAbsent(first), "first insert should win")
	assert.False(t, cache.PutIfAbsent(second), "second insert should be rejected")

	got, ok := cache.Get("src/main.rs")
	require.True(t, ok)
	assert.Equal(t, 3.0, got.Metrics.Complexity, "cached entry must never be overwritten")
	assert.Equal(t, 1, cache.Len())
}

func TestResultCacheGetReturnsCopy(t *testing.T) {
	cache := NewResultCache()
	cache.PutIfAbsent(&schema.AnalysisResult{
		Path: "a.py",
		Metrics: schema.FileMetrics{
			Path:         "a.py",
			Dependencies: []string{"os"},
			Findings:     []schema.SecurityFinding{{Severity: schema.SeverityHigh}},
		},
		Insight: &schema.AIInsight{Summary: "fine"},
	})

	got, ok := cache.Get("a.py")
	require.True(t, ok)

	// Mutating the copy must not leak back into the cache.
	got.Metrics.Dependencies[0] = "mutated"
	got.Metrics.Findings[0].Severity = schema.SeverityLow
	got.Insight.Summary = "mutated"

	fresh, ok := cache.Get("a.py")
	require.True(t, ok)
	assert.Equal(t, "os", fresh.Metrics.Dependencies[0])
	assert.Equal(t, schema.SeverityHigh, fresh.Metrics.Findings[0].Severity)
	assert.Equal(t, "fine", fresh.Insight.Summary)
}

func TestResultCacheMiss(t *testing.T) {
	cache := NewResultCache()
	got, ok := cache.Get("missing.go")
	assert.False(t, ok)
	assert.Nil(t, got)
	assert.False(t, cache.Has("missing.go"))
}

func TestResultCacheConcurrentDedupe(t *testing.T) {
	cache := NewResultCache()
	const goroutines = 50
	const paths = 10

	var wins atomic.Int64
	var wg sync.WaitGroup
	for g := range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range paths {
				path := fmt.Sprintf("file%d.rs", i)
				result := &schema.AnalysisResult{
					Path:    path,
					Metrics: schema.FileMetrics{Path: path, Complexity: float64(g)},
				}
				if cache.PutIfAbsent(result) {
					wins.Add(1)
				}
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(paths), wins.Load(), "exactly one insert should win per path")
	assert.Equal(t, paths, cache.Len())
	assert.Len(t, cache.Snapshot(), paths)
}

func TestResultCacheSnapshot(t *testing.T) {
	cache := NewResultCache()
	for i := range 5 {
		cache.PutIfAbsent(&schema.AnalysisResult{Path: fmt.Sprintf("f%d.go", i)})
	}

	snapshot := cache.Snapshot()
	require.Len(t, snapshot, 5)

	seen := make(map[string]struct{})
	for _, r := range snapshot {
		seen[r.Path] = struct{}{}
	}
	assert.Len(t, seen, 5, "snapshot must contain each path once")
}
