package core

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/huangsam/devflow/internal/aireview"
	"github.com/huangsam/devflow/internal/contract"
	"github.com/huangsam/devflow/schema"
)

// writeProjectFiles lays out a temp project and returns its root plus the
// relative paths written.
func writeProjectFiles(t *testing.T, files map[string]string) (string, []string) {
	t.Helper()
	root := t.TempDir()
	paths := make([]string, 0, len(files))
	for rel, content := range files {
		full := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
		paths = append(paths, rel)
	}
	return root, paths
}

func newPipelineConfig(root string) *contract.Config {
	return &contract.Config{
		RootPath:      root,
		Workers:       4,
		MinSeverity:   schema.SeverityLow,
		AIConcurrency: 2,
	}
}

func TestPipelineProcessesEachFileOnce(t *testing.T) {
	files := map[string]string{}
	for i := range 20 {
		files[fmt.Sprintf("src/file%d.py", i)] = "import os\n\ndef run():\n    pass\n"
	}
	root, paths := writeProjectFiles(t, files)
	cfg := newPipelineConfig(root)
	calc := newTestCalculator(t, schema.SeverityLow)

	pipeline := NewPipeline(context.Background(), cfg, calc, nil)

	// Hammer Submit from several goroutines with duplicate paths.
	var wg sync.WaitGroup
	for range 5 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, p := range paths {
				pipeline.Submit(p)
			}
		}()
	}
	wg.Wait()
	pipeline.Close()
	pipeline.Wait()

	stats := pipeline.Stats()
	assert.Equal(t, int64(len(paths)), stats.FilesProcessed(), "each file exactly once")
	assert.Equal(t, int64(0), stats.Errors())
	assert.Len(t, pipeline.Results(), len(paths))
	for _, p := range paths {
		assert.True(t, pipeline.IsProcessed(p))
	}
}

func TestPipelineSubmitDedupe(t *testing.T) {
	root, _ := writeProjectFiles(t, map[string]string{"a.py": "x = 1\n"})
	cfg := newPipelineConfig(root)
	calc := newTestCalculator(t, schema.SeverityLow)

	pipeline := NewPipeline(context.Background(), cfg, calc, nil)
	assert.True(t, pipeline.Submit("a.py"), "first submit is admitted")
	assert.False(t, pipeline.Submit("a.py"), "duplicate submit is a no-op")
	pipeline.Close()
	pipeline.Wait()

	assert.False(t, pipeline.Submit("a.py"), "submit after close is rejected")
	assert.Equal(t, int64(1), pipeline.Stats().FilesProcessed())
}

func TestPipelineFaultIsolation(t *testing.T) {
	root, paths := writeProjectFiles(t, map[string]string{
		"good1.rs":  "fn main() {}\n",
		"good2.rs":  "fn helper() -> i32 { 42 }\n",
		"broken.rs": "fn main( {\n",
	})
	cfg := newPipelineConfig(root)
	calc := newTestCalculator(t, schema.SeverityLow)

	pipeline := NewPipeline(context.Background(), cfg, calc, nil)
	for _, p := range paths {
		pipeline.Submit(p)
	}
	pipeline.Close()
	pipeline.Wait()

	stats := pipeline.Stats()
	assert.Equal(t, int64(3), stats.FilesProcessed(), "a failed file still completes")
	assert.Equal(t, int64(1), stats.Errors())

	broken, ok := pipeline.GetResult("broken.rs")
	require.True(t, ok)
	assert.True(t, broken.Failed)
	assert.NotEmpty(t, broken.FailureReason)
	assert.Equal(t, 0.0, broken.Metrics.Complexity, "placeholder metrics are zero-valued")

	good, ok := pipeline.GetResult("good1.rs")
	require.True(t, ok)
	assert.False(t, good.Failed)
	assert.Equal(t, 1, good.Metrics.LinesOfCode)
}

func TestPipelineSkipsNonUTF8(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "blob.py"), []byte{0xff, 0xfe, 0x01}, 0o644))
	cfg := newPipelineConfig(root)
	calc := newTestCalculator(t, schema.SeverityLow)

	pipeline := NewPipeline(context.Background(), cfg, calc, nil)
	pipeline.Submit("blob.py")
	pipeline.Close()
	pipeline.Wait()

	assert.Equal(t, int64(0), pipeline.Stats().FilesProcessed(), "skips are not processed files")
	assert.Equal(t, int64(0), pipeline.Stats().Errors(), "skips are not errors")
	assert.False(t, pipeline.IsProcessed("blob.py"))
}

func TestPipelineWithAIProvider(t *testing.T) {
	root, paths := writeProjectFiles(t, map[string]string{
		"a.py": "x = 1\n",
		"b.py": "y = 2\n",
	})
	cfg := newPipelineConfig(root)
	calc := newTestCalculator(t, schema.SeverityLow)
	provider := &aireview.StaticProvider{Insight: schema.AIInsight{Summary: "looks fine", Confidence: 0.8}}

	pipeline := NewPipeline(context.Background(), cfg, calc, provider)
	for _, p := range paths {
		pipeline.Submit(p)
	}
	pipeline.Close()
	pipeline.Wait()

	for _, p := range paths {
		result, ok := pipeline.GetResult(p)
		require.True(t, ok)
		require.NotNil(t, result.Insight)
		assert.Equal(t, "looks fine", result.Insight.Summary)
	}
}

func TestPipelineAIFailureKeepsMetrics(t *testing.T) {
	root, _ := writeProjectFiles(t, map[string]string{"a.py": "x = 1\n"})
	cfg := newPipelineConfig(root)
	calc := newTestCalculator(t, schema.SeverityLow)

	provider := &aireview.MockAIProvider{}
	provider.On("AnalyzeCode", mock.Anything, mock.Anything).Return(nil, fmt.Errorf("upstream down"))

	pipeline := NewPipeline(context.Background(), cfg, calc, provider)
	pipeline.Submit("a.py")
	pipeline.Close()
	pipeline.Wait()

	result, ok := pipeline.GetResult("a.py")
	require.True(t, ok)
	assert.Nil(t, result.Insight, "review failure leaves the insight empty")
	assert.False(t, result.Failed, "metrics still succeed")
	assert.Equal(t, int64(1), pipeline.Stats().Errors())
	provider.AssertExpectations(t)
}
