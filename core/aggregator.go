package core

import (
	"context"
	"fmt"
	"hash/fnv"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
	"golang.org/x/sync/singleflight"

	"github.com/huangsam/devflow/core/lang"
	"github.com/huangsam/devflow/internal/contract"
	"github.com/huangsam/devflow/schema"
)

// skipDirs are never descended into, regardless of configured excludes.
var skipDirs = map[string]struct{}{
	".git":         {},
	".hg":          {},
	".svn":         {},
	"node_modules": {},
	"target":       {},
	"dist":         {},
	"build":        {},
	"vendor":       {},
}

// DiscoverFiles walks the configured root and returns the relative paths that
// pass path-stage classification. Content-stage checks happen later, at read
// time.
func DiscoverFiles(cfg *contract.Config) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(cfg.RootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			contract.LogWarn("walk", err)
			return nil
		}
		if d.IsDir() {
			if _, ok := skipDirs[d.Name()]; ok && path != cfg.RootPath {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(cfg.RootPath, path)
		if err != nil {
			return err
		}
		info, err := d.Info()
		if err != nil {
			contract.LogWarn("stat", err)
			return nil
		}
		if _, ok := ClassifyPath(rel, info.Size(), cfg.Excludes, cfg.MaxFileSize); ok {
			paths = append(paths, rel)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", cfg.RootPath, err)
	}
	return paths, nil
}

// AnalyzeProject runs a full analysis of the configured root and returns the
// aggregate snapshot. With an AI provider it runs the queue-and-workers
// pipeline; without one it uses the embedded data-parallel fan-out.
func AnalyzeProject(ctx context.Context, cfg *contract.Config, calc *Calculator, provider contract.AIProvider) (*schema.ProjectInsights, *RunStats, error) {
	paths, err := DiscoverFiles(cfg)
	if err != nil {
		return nil, nil, err
	}
	if provider != nil {
		return analyzeWithPipeline(ctx, cfg, calc, provider, paths)
	}
	return analyzeEmbedded(ctx, cfg, calc, paths)
}

// analyzeWithPipeline submits every discovered path to a pipeline, drains it
// and folds the cached results.
func analyzeWithPipeline(ctx context.Context, cfg *contract.Config, calc *Calculator, provider contract.AIProvider, paths []string) (*schema.ProjectInsights, *RunStats, error) {
	pipeline := NewPipeline(ctx, cfg, calc, provider)
	for _, path := range paths {
		pipeline.Submit(path)
	}
	pipeline.Close()
	pipeline.Wait()

	stats := pipeline.Stats()
	insights := foldResults(pipeline.Results(), stats)
	return insights, stats, nil
}

// analyzeEmbedded fans paths out across a worker pool that calls the
// calculator directly. Results fold into the shared snapshot under one small
// critical section per file, so the expensive parse work never serializes.
func analyzeEmbedded(ctx context.Context, cfg *contract.Config, calc *Calculator, paths []string) (*schema.ProjectInsights, *RunStats, error) {
	workers := cfg.Workers
	if workers <= 0 {
		workers = contract.DefaultWorkers
	}

	stats := &RunStats{}
	insights := newProjectInsights()
	var mu sync.Mutex
	pathCh := make(chan string, workers*2)

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for rel := range pathCh {
				result := analyzeOne(ctx, cfg, calc, rel, stats)
				if result == nil {
					continue
				}
				mu.Lock()
				foldOne(insights, result)
				mu.Unlock()
				stats.filesProcessed.Add(1)
			}
		}()
	}

	for _, rel := range paths {
		stats.totalFiles.Add(1)
		pathCh <- rel
	}
	close(pathCh)
	wg.Wait()

	insights.ErrorCount = int(stats.Errors())
	insights.GeneratedAt = time.Now()
	return insights, stats, nil
}

// analyzeOne reads and analyzes a single file. Returns nil when the file is
// skipped (unreadable or non-UTF-8); failures return a placeholder result.
func analyzeOne(ctx context.Context, cfg *contract.Config, calc *Calculator, rel string, stats *RunStats) *schema.AnalysisResult {
	absPath := rel
	if cfg.RootPath != "" && !filepath.IsAbs(rel) {
		absPath = filepath.Join(cfg.RootPath, rel)
	}
	info, err := os.Stat(absPath)
	if err != nil {
		contract.LogWarn("stat file", err)
		return nil
	}
	content, err := os.ReadFile(absPath)
	if err != nil {
		contract.LogWarn("read file", err)
		return nil
	}
	if _, ok := ClassifyContent(content); !ok {
		contract.LogWarn("skip file", fmt.Errorf("%s is not valid UTF-8", rel))
		return nil
	}

	result := &schema.AnalysisResult{Path: rel, AnalyzedAt: time.Now()}
	metrics, err := calc.Calculate(ctx, rel, content, info.ModTime())
	if err != nil {
		result.Failed = true
		result.FailureReason = err.Error()
		result.Metrics = schema.FileMetrics{
			Path:     rel,
			Language: lang.Detect(filepath.Ext(rel)),
		}
		stats.errors.Add(1)
		return result
	}
	result.Metrics = metrics
	return result
}

func newProjectInsights() *schema.ProjectInsights {
	return &schema.ProjectInsights{
		LanguageDistribution: make(map[schema.Language]int),
		MetricsByFile:        make(map[string]schema.FileMetrics),
		SecurityFindings:     []schema.ProjectFinding{},
	}
}

// foldOne merges one result into the snapshot. Callers hold the aggregation
// lock.
func foldOne(insights *schema.ProjectInsights, result *schema.AnalysisResult) {
	insights.FilesAnalyzed++
	insights.TotalLines += result.Metrics.LinesOfCode
	insights.TotalComplexity += result.Metrics.Complexity
	insights.LanguageDistribution[result.Metrics.Language]++
	insights.MetricsByFile[result.Path] = result.Metrics
	for _, f := range result.Metrics.Findings {
		insights.SecurityFindings = append(insights.SecurityFindings, schema.ProjectFinding{
			Path:            result.Path,
			SecurityFinding: f,
		})
	}
}

func foldResults(results []*schema.AnalysisResult, stats *RunStats) *schema.ProjectInsights {
	insights := newProjectInsights()
	for _, r := range results {
		foldOne(insights, r)
	}
	insights.ErrorCount = int(stats.Errors())
	insights.GeneratedAt = time.Now()
	return insights
}

// Analyzer is the single-file entry point used by editor adapters. Identical
// concurrent requests collapse into one computation via singleflight.
type Analyzer struct {
	calc     *Calculator
	provider contract.AIProvider
	sem      *semaphore.Weighted
	group    singleflight.Group
}

// NewAnalyzer builds an analyzer. provider may be nil to disable AI review.
func NewAnalyzer(cfg *contract.Config, calc *Calculator, provider contract.AIProvider) *Analyzer {
	concurrency := cfg.AIConcurrency
	if concurrency <= 0 {
		concurrency = contract.DefaultAIConcurrency
	}
	return &Analyzer{
		calc:     calc,
		provider: provider,
		sem:      semaphore.NewWeighted(concurrency),
	}
}

// Analyze runs metrics (and optional AI review) over in-memory content.
// The context's path is metadata only; no file I/O happens here.
func (a *Analyzer) Analyze(ctx context.Context, actx schema.AnalysisContext) (*schema.AnalysisResult, error) {
	key := analyzeKey(actx)
	v, err, _ := a.group.Do(key, func() (any, error) {
		content := []byte(actx.Content)
		if _, ok := ClassifyContent(content); !ok {
			return nil, fmt.Errorf("content of %s is not valid UTF-8", actx.Path)
		}

		result := &schema.AnalysisResult{Path: actx.Path, AnalyzedAt: time.Now()}
		metrics, err := a.calc.Calculate(ctx, actx.Path, content, time.Now())
		if err != nil {
			result.Failed = true
			result.FailureReason = err.Error()
			result.Metrics = schema.FileMetrics{
				Path:     actx.Path,
				Language: lang.Detect(filepath.Ext(actx.Path)),
			}
			return result, nil
		}
		result.Metrics = metrics

		if a.provider != nil {
			if err := a.sem.Acquire(ctx, 1); err != nil {
				return nil, err
			}
			insight, aiErr := a.provider.AnalyzeCode(ctx, actx.Content)
			a.sem.Release(1)
			if aiErr != nil {
				contract.LogWarn("ai review", aiErr)
			} else {
				result.Insight = insight
			}
		}
		return result, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*schema.AnalysisResult), nil
}

// SuggestFixes forwards findings to the AI provider under the same permit
// discipline as Analyze.
func (a *Analyzer) SuggestFixes(ctx context.Context, findings []schema.SecurityFinding) ([]string, error) {
	if a.provider == nil {
		return nil, fmt.Errorf("ai review is not enabled")
	}
	if err := a.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer a.sem.Release(1)
	return a.provider.SuggestFixes(ctx, findings)
}

func analyzeKey(actx schema.AnalysisContext) string {
	h := fnv.New64a()
	_, _ = h.Write([]byte(actx.Content))
	return fmt.Sprintf("%s|%x", actx.Path, h.Sum64())
}
