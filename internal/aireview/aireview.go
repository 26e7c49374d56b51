// Package aireview implements the AI code-review capability: a live
// OpenAI-compatible provider with retry and backoff, response normalization
// into structured insights, and deterministic mocks for testing.
package aireview

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/huangsam/devflow/internal/contract"
	"github.com/huangsam/devflow/schema"
)

// Retry policy for provider calls.
const (
	MaxAttempts           = 3
	DefaultRateLimitDelay = 2 * time.Second
	DefaultTransientDelay = 1 * time.Second
)

// completionClient is the slice of the OpenAI client the provider needs.
// Tests inject scripted fakes here.
type completionClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Compile-time check that the real client satisfies the interface.
var _ completionClient = (*openai.Client)(nil)

// OpenAIProvider reviews code through any OpenAI-compatible completions
// endpoint. Callers are expected to bound their own concurrency with a
// semaphore; the provider only handles retries.
type OpenAIProvider struct {
	client      completionClient
	model       string
	maxTokens   int
	temperature float32

	// Backoff delays are fields so tests can shrink them.
	RateLimitDelay time.Duration
	TransientDelay time.Duration
}

var _ contract.AIProvider = (*OpenAIProvider)(nil)

// NewOpenAIProvider builds a live provider from the validated config.
func NewOpenAIProvider(cfg *contract.Config) *OpenAIProvider {
	clientCfg := openai.DefaultConfig(cfg.AIAPIKey)
	if cfg.AIBaseURL != "" {
		clientCfg.BaseURL = cfg.AIBaseURL
	}
	return &OpenAIProvider{
		client:         openai.NewClientWithConfig(clientCfg),
		model:          cfg.AIModel,
		maxTokens:      cfg.AIMaxTokens,
		temperature:    0.2,
		RateLimitDelay: DefaultRateLimitDelay,
		TransientDelay: DefaultTransientDelay,
	}
}

// AnalyzeCode sends file content for review and normalizes the raw response
// into a structured insight.
func (p *OpenAIProvider) AnalyzeCode(ctx context.Context, content string) (*schema.AIInsight, error) {
	prompt := buildAnalyzePrompt(content)
	raw, err := p.complete(ctx, prompt)
	if err != nil {
		return nil, err
	}
	return NormalizeInsight(raw), nil
}

// SuggestFixes asks for remediation suggestions for a set of findings.
func (p *OpenAIProvider) SuggestFixes(ctx context.Context, findings []schema.SecurityFinding) ([]string, error) {
	if len(findings) == 0 {
		return nil, nil
	}
	prompt := buildFixesPrompt(findings)
	raw, err := p.complete(ctx, prompt)
	if err != nil {
		return nil, err
	}
	suggestions := ExtractSuggestions(raw)
	if len(suggestions) == 0 {
		suggestions = []string{strings.TrimSpace(raw)}
	}
	return suggestions, nil
}

// complete performs one prompt round trip with the retry policy: up to
// MaxAttempts attempts, a longer fixed wait after rate-limit failures than
// after generic transient ones. Exhausted retries propagate the last error.
func (p *OpenAIProvider) complete(ctx context.Context, prompt string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   p.maxTokens,
		Temperature: p.temperature,
	}

	var lastErr error
	for attempt := 1; attempt <= MaxAttempts; attempt++ {
		resp, err := p.client.CreateChatCompletion(ctx, req)
		if err == nil {
			if len(resp.Choices) == 0 {
				lastErr = errors.New("provider returned no choices")
			} else {
				return resp.Choices[0].Message.Content, nil
			}
		} else {
			lastErr = err
		}

		if attempt == MaxAttempts {
			break
		}
		delay := p.TransientDelay
		if isRateLimited(lastErr) {
			delay = p.RateLimitDelay
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(delay):
		}
	}
	return "", fmt.Errorf("ai request failed after %d attempts: %w", MaxAttempts, lastErr)
}

// isRateLimited detects rate-limit conditions from typed API errors or from
// failure text.
func isRateLimited(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == 429 {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "rate limit")
}

func buildAnalyzePrompt(content string) string {
	var b strings.Builder
	b.WriteString("Review the following source file. Summarize its quality, ")
	b.WriteString("list concrete improvement suggestions as bullet points, and ")
	b.WriteString("call out any security or performance concerns.\n\n")
	b.WriteString(content)
	return b.String()
}

func buildFixesPrompt(findings []schema.SecurityFinding) string {
	var b strings.Builder
	b.WriteString("Suggest fixes for the following findings, one bullet per finding:\n")
	for _, f := range findings {
		fmt.Fprintf(&b, "- [%s] %s (line %d)\n", f.Severity, f.Description, f.Line)
	}
	return b.String()
}
