package core

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/huangsam/devflow/core/lang"
	"github.com/huangsam/devflow/internal/contract"
	"github.com/huangsam/devflow/schema"
)

// RunStats tracks per-run counters. All mutation is atomic; counters only
// grow for the lifetime of one pipeline.
type RunStats struct {
	filesProcessed atomic.Int64
	errors         atomic.Int64
	totalFiles     atomic.Int64
}

// FilesProcessed returns the number of paths with a cached result.
func (s *RunStats) FilesProcessed() int64 { return s.filesProcessed.Load() }

// Errors returns the number of per-file failures recorded so far.
func (s *RunStats) Errors() int64 { return s.errors.Load() }

// TotalFiles returns the number of paths admitted for processing.
func (s *RunStats) TotalFiles() int64 { return s.totalFiles.Load() }

// Pipeline owns the work queue of file paths, a fixed pool of workers, the
// result cache and the run statistics. Submitting a path that is already
// cached or already in flight is a no-op, which gives the at-most-once
// guarantee. Closing the pipeline stops admission; workers drain the queue
// and exit.
type Pipeline struct {
	rootPath string
	calc     *Calculator
	provider contract.AIProvider
	sem      *semaphore.Weighted
	cache    *ResultCache
	stats    *RunStats

	pathCh chan string
	wg     sync.WaitGroup

	// reserveMu guards the in-flight reservation set; closeMu serializes
	// channel sends against Close.
	reserveMu sync.Mutex
	inFlight  map[string]struct{}
	closeMu   sync.RWMutex
	closed    bool
}

// NewPipeline starts worker goroutines and returns a ready pipeline.
// provider may be nil to disable AI review. The context is used for the
// lifetime of the workers' AI calls.
func NewPipeline(ctx context.Context, cfg *contract.Config, calc *Calculator, provider contract.AIProvider) *Pipeline {
	workers := cfg.Workers
	if workers <= 0 {
		workers = contract.DefaultWorkers
	}
	concurrency := cfg.AIConcurrency
	if concurrency <= 0 {
		concurrency = contract.DefaultAIConcurrency
	}

	p := &Pipeline{
		rootPath: cfg.RootPath,
		calc:     calc,
		provider: provider,
		sem:      semaphore.NewWeighted(concurrency),
		cache:    NewResultCache(),
		stats:    &RunStats{},
		pathCh:   make(chan string, workers*2),
		inFlight: make(map[string]struct{}),
	}

	for range workers {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for path := range p.pathCh {
				p.process(ctx, path)
			}
		}()
	}
	return p
}

// Submit enqueues a path unless it is already cached, already in flight, or
// the pipeline is closed. Returns true when the path was admitted.
func (p *Pipeline) Submit(path string) bool {
	p.closeMu.RLock()
	defer p.closeMu.RUnlock()
	if p.closed {
		return false
	}

	p.reserveMu.Lock()
	if p.cache.Has(path) {
		p.reserveMu.Unlock()
		return false
	}
	if _, ok := p.inFlight[path]; ok {
		p.reserveMu.Unlock()
		return false
	}
	p.inFlight[path] = struct{}{}
	p.reserveMu.Unlock()

	p.stats.totalFiles.Add(1)
	p.pathCh <- path
	return true
}

// Close stops admission of new paths. Queued paths still drain.
func (p *Pipeline) Close() {
	p.closeMu.Lock()
	defer p.closeMu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	close(p.pathCh)
}

// Wait blocks until all workers have drained the queue and exited.
func (p *Pipeline) Wait() {
	p.wg.Wait()
}

// IsProcessed reports whether a path has a cached result. Non-blocking.
func (p *Pipeline) IsProcessed(path string) bool {
	return p.cache.Has(path)
}

// GetResult returns the cached result for a path. Non-blocking.
func (p *Pipeline) GetResult(path string) (*schema.AnalysisResult, bool) {
	return p.cache.Get(path)
}

// Results returns copies of all cached results.
func (p *Pipeline) Results() []*schema.AnalysisResult {
	return p.cache.Snapshot()
}

// Stats returns the shared run statistics.
func (p *Pipeline) Stats() *RunStats {
	return p.stats
}

// process runs one file to completion or failure. Per-file errors never
// escape this function.
func (p *Pipeline) process(ctx context.Context, path string) {
	defer func() {
		p.reserveMu.Lock()
		delete(p.inFlight, path)
		p.reserveMu.Unlock()
	}()

	absPath := path
	if p.rootPath != "" && !filepath.IsAbs(path) {
		absPath = filepath.Join(p.rootPath, path)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		contract.LogWarn("stat file", err)
		return
	}
	content, err := os.ReadFile(absPath)
	if err != nil {
		// Unreadable files are skipped, not counted as analyzed.
		contract.LogWarn("read file", err)
		return
	}
	if _, ok := ClassifyContent(content); !ok {
		contract.LogWarn("skip file", fmt.Errorf("%s is not valid UTF-8", path))
		return
	}

	result := &schema.AnalysisResult{Path: path, AnalyzedAt: time.Now()}
	metrics, err := p.calc.Calculate(ctx, path, content, info.ModTime())
	if err != nil {
		// Placeholder result: the file is counted as processed with
		// zero-valued metrics so nothing ever blocks on it.
		result.Failed = true
		result.FailureReason = err.Error()
		result.Metrics = schema.FileMetrics{
			Path:     path,
			Language: lang.Detect(filepath.Ext(path)),
		}
		p.stats.errors.Add(1)
	} else {
		result.Metrics = metrics
	}

	if p.provider != nil && !result.Failed {
		insight, aiErr := p.reviewWithPermit(ctx, string(content))
		if aiErr != nil {
			contract.LogWarn("ai review", aiErr)
			p.stats.errors.Add(1)
		} else {
			result.Insight = insight
		}
	}

	if p.cache.PutIfAbsent(result) {
		p.stats.filesProcessed.Add(1)
	}
}

// reviewWithPermit holds a semaphore permit around the AI call so that
// outstanding external calls stay bounded. Acquire blocks rather than fails
// when permits are exhausted.
func (p *Pipeline) reviewWithPermit(ctx context.Context, content string) (*schema.AIInsight, error) {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer p.sem.Release(1)
	return p.provider.AnalyzeCode(ctx, content)
}
