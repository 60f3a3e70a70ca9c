package providers

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockProviderListsTermsFromDocument(t *testing.T) {
	m := NewMockProvider()
	prompt := "Analyze this.\n\nDocument:\nThe Force Majeure clause and the indemnification clause apply.\n\nProvide:\n1. mention arbitration here but outside the document"
	resp, info, err := m.Generate(context.Background(), GenerateRequest{Prompt: prompt})
	require.NoError(t, err)
	assert.Equal(t, "mock", info.Name)
	assert.Contains(t, resp.Text, "**Legal Terms Found:**")
	assert.Contains(t, resp.Text, "- indemnification:")
	assert.Contains(t, resp.Text, "- force majeure:")
	assert.NotContains(t, resp.Text, "arbitration")
	assert.Greater(t, resp.Usage.TotalTokens, 0)
	assert.Equal(t, resp.Usage.PromptTokens+resp.Usage.CompletionTokens, resp.Usage.TotalTokens)
	assert.Equal(t, 1, m.Calls())
}

func TestMockProviderNoTermsHasNoBullets(t *testing.T) {
	resp, _, err := NewMockProvider().Generate(context.Background(), GenerateRequest{Prompt: "Document:\nthe cat sat on the mat\nProvide:"})
	require.NoError(t, err)
	_, section, ok := strings.Cut(resp.Text, "**Legal Terms Found:**")
	require.True(t, ok)
	assert.NotContains(t, section, "- ")
}

func TestMockProviderOverrides(t *testing.T) {
	blocked := &MockProvider{Blocked: true}
	resp, _, err := blocked.Generate(context.Background(), GenerateRequest{})
	require.NoError(t, err)
	assert.True(t, resp.Blocked)
	assert.Empty(t, resp.Text)

	failing := &MockProvider{Err: errors.New("boom")}
	_, _, err = failing.Generate(context.Background(), GenerateRequest{})
	assert.EqualError(t, err, "boom")

	fixed := &MockProvider{Text: "fixed"}
	resp, _, err = fixed.Generate(context.Background(), GenerateRequest{})
	require.NoError(t, err)
	assert.Equal(t, "fixed", resp.Text)
}
