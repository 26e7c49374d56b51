package core

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/huangsam/devflow/internal/contract"
	"github.com/huangsam/devflow/internal/history"
	"github.com/huangsam/devflow/schema"
)

func TestExecuteAnalyzeWritesReportAndHistory(t *testing.T) {
	root, _ := writeProjectFiles(t, map[string]string{
		"main.rs": "fn main() {}\n",
		"util.py": "import os\n",
	})
	outputFile := filepath.Join(t.TempDir(), "report.json")
	cfg := &contract.Config{
		RootPath:       root,
		MaxFileSize:    1 << 20,
		Workers:        2,
		MinSeverity:    schema.SeverityLow,
		ResultLimit:    10,
		Precision:      1,
		Output:         schema.JSONOut,
		OutputFile:     outputFile,
		HistoryBackend: schema.SQLiteBackend,
	}

	store := &history.MockHistoryStore{}
	store.On("BeginRun", mock.Anything, mock.Anything).Return(int64(7), nil)
	store.On("RecordFileMetrics", int64(7), mock.Anything).Return(nil).Times(2)
	store.On("EndRun", int64(7), mock.Anything, mock.Anything).Return(nil)
	manager := &history.MockHistoryManager{}
	manager.On("GetHistoryStore").Return(store)

	err := ExecuteAnalyze(context.Background(), cfg, nil, manager)
	require.NoError(t, err)
	store.AssertExpectations(t)

	data, err := os.ReadFile(outputFile)
	require.NoError(t, err)
	var insights schema.ProjectInsights
	require.NoError(t, json.Unmarshal(data, &insights))
	assert.Equal(t, 2, insights.FilesAnalyzed)
}

func TestRecordRunHistory(t *testing.T) {
	insights := &schema.ProjectInsights{
		FilesAnalyzed: 1,
		MetricsByFile: map[string]schema.FileMetrics{
			"a.py": {Path: "a.py", LinesOfCode: 3},
		},
	}

	t.Run("nil manager is a no-op", func(t *testing.T) {
		cfg := &contract.Config{HistoryBackend: schema.SQLiteBackend}
		recordRunHistory(cfg, nil, time.Now(), insights)
	})

	t.Run("none backend is a no-op", func(t *testing.T) {
		cfg := &contract.Config{HistoryBackend: schema.NoneBackend}
		manager := &history.MockHistoryManager{}
		recordRunHistory(cfg, manager, time.Now(), insights)
		manager.AssertNotCalled(t, "GetHistoryStore")
	})

	t.Run("begin failure skips the rest", func(t *testing.T) {
		cfg := &contract.Config{HistoryBackend: schema.SQLiteBackend}
		store := &history.MockHistoryStore{}
		store.On("BeginRun", mock.Anything, mock.Anything).Return(int64(0), errors.New("db down"))
		manager := &history.MockHistoryManager{}
		manager.On("GetHistoryStore").Return(store)

		recordRunHistory(cfg, manager, time.Now(), insights)
		store.AssertNotCalled(t, "RecordFileMetrics", mock.Anything, mock.Anything)
		store.AssertNotCalled(t, "EndRun", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("metric failure still ends the run", func(t *testing.T) {
		cfg := &contract.Config{HistoryBackend: schema.SQLiteBackend}
		store := &history.MockHistoryStore{}
		store.On("BeginRun", mock.Anything, mock.Anything).Return(int64(3), nil)
		store.On("RecordFileMetrics", int64(3), mock.Anything).Return(errors.New("insert failed"))
		store.On("EndRun", int64(3), mock.Anything, insights).Return(nil)
		manager := &history.MockHistoryManager{}
		manager.On("GetHistoryStore").Return(store)

		recordRunHistory(cfg, manager, time.Now(), insights)
		store.AssertExpectations(t)
	})
}

func TestExecuteSecurity(t *testing.T) {
	root, _ := writeProjectFiles(t, map[string]string{
		"creds.py": `password = "hunter2"` + "\n",
	})
	outputFile := filepath.Join(t.TempDir(), "findings.json")
	cfg := &contract.Config{
		RootPath:    root,
		MaxFileSize: 1 << 20,
		Workers:     2,
		MinSeverity: schema.SeverityLow,
		ResultLimit: 10,
		Precision:   1,
		Output:      schema.JSONOut,
		OutputFile:  outputFile,
	}

	err := ExecuteSecurity(context.Background(), cfg)
	require.NoError(t, err)

	data, err := os.ReadFile(outputFile)
	require.NoError(t, err)
	var findings []schema.EnrichedFinding
	require.NoError(t, json.Unmarshal(data, &findings))
	require.Len(t, findings, 1)
	assert.Equal(t, "creds.py", findings[0].Path)
	assert.Equal(t, schema.SeverityHigh, findings[0].Severity)
}
