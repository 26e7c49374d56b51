package aireview

import (
	"context"
	"fmt"

	"github.com/stretchr/testify/mock"

	"github.com/huangsam/devflow/internal/contract"
	"github.com/huangsam/devflow/schema"
)

// MockAIProvider is a mock implementation of contract.AIProvider for testing.
type MockAIProvider struct {
	mock.Mock
}

var _ contract.AIProvider = (*MockAIProvider)(nil)

// AnalyzeCode mocks the AnalyzeCode method.
func (m *MockAIProvider) AnalyzeCode(ctx context.Context, content string) (*schema.AIInsight, error) {
	args := m.Called(ctx, content)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*schema.AIInsight), args.Error(1)
}

// SuggestFixes mocks the SuggestFixes method.
func (m *MockAIProvider) SuggestFixes(ctx context.Context, findings []schema.SecurityFinding) ([]string, error) {
	args := m.Called(ctx, findings)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// StaticProvider is a deterministic provider that returns fixed insights.
// Useful for demos and for tests that do not care about call counts.
type StaticProvider struct {
	Insight schema.AIInsight
}

var _ contract.AIProvider = (*StaticProvider)(nil)

// AnalyzeCode returns a copy of the fixed insight.
func (p *StaticProvider) AnalyzeCode(_ context.Context, _ string) (*schema.AIInsight, error) {
	insight := p.Insight
	return &insight, nil
}

// SuggestFixes returns one canned suggestion per finding.
func (p *StaticProvider) SuggestFixes(_ context.Context, findings []schema.SecurityFinding) ([]string, error) {
	suggestions := make([]string, len(findings))
	for i, f := range findings {
		suggestions[i] = fmt.Sprintf("Review %s finding at line %d", f.Severity, f.Line)
	}
	return suggestions, nil
}
