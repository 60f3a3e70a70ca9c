package providers

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
)

var mockLegalTerms = []string{
	"indemnification",
	"force majeure",
	"arbitration",
	"jurisdiction",
	"breach",
	"whereas",
	"hereby",
	"notwithstanding",
	"pursuant",
	"covenant",
	"confidentiality",
	"governing law",
	"liability",
	"warranty",
	"termination",
}

// MockProvider produces deterministic output shaped like a real analysis. Text,
// Blocked and Err override the default behavior for tests.
type MockProvider struct {
	Text    string
	Blocked bool
	Err     error

	calls atomic.Int64
}

func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

func (m *MockProvider) Calls() int {
	return int(m.calls.Load())
}

func (m *MockProvider) Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, ProviderInfo, error) {
	m.calls.Add(1)
	info := ProviderInfo{Name: "mock", Model: "mock-llm-v1"}
	if err := ctx.Err(); err != nil {
		return GenerateResponse{}, info, err
	}
	if m.Err != nil {
		return GenerateResponse{}, info, m.Err
	}
	if m.Blocked {
		return GenerateResponse{Blocked: true, BlockReason: "SAFETY"}, info, nil
	}
	text := m.Text
	if text == "" {
		text = mockAnalysis(documentFromPrompt(req.Prompt))
	}
	promptTokens := len(strings.Fields(req.System)) + len(strings.Fields(req.Prompt))
	completionTokens := len(strings.Fields(text))
	return GenerateResponse{
		Text: text,
		Usage: Usage{
			PromptTokens:     promptTokens,
			CompletionTokens: completionTokens,
			TotalTokens:      promptTokens + completionTokens,
		},
	}, info, nil
}

func documentFromPrompt(prompt string) string {
	_, after, ok := strings.Cut(prompt, "Document:")
	if !ok {
		return prompt
	}
	if before, _, ok := strings.Cut(after, "Provide:"); ok {
		return before
	}
	return after
}

func mockAnalysis(doc string) string {
	low := strings.ToLower(doc)
	found := make([]string, 0, 4)
	for _, term := range mockLegalTerms {
		if strings.Contains(low, term) {
			found = append(found, term)
		}
	}
	b := strings.Builder{}
	b.WriteString("**Document Type:** Legal document (mock analysis)\n\n")
	b.WriteString("**Summary:**\n")
	b.WriteString(fmt.Sprintf("Deterministic mock summary of a document containing approximately %d words. ", len(strings.Fields(doc))))
	b.WriteString("Replace the mock provider with a real one for substantive analysis.\n\n")
	b.WriteString("**Legal Terms Found:**\n")
	if len(found) == 0 {
		b.WriteString("No specialized legal terms were identified.\n")
		return b.String()
	}
	for _, term := range found {
		b.WriteString("- ")
		b.WriteString(term)
		b.WriteString(": appears in the document\n")
	}
	return b.String()
}
