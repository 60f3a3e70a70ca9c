package providers

import "context"

type ProviderInfo struct {
	Name  string `json:"name"`
	Model string `json:"model"`
}

// GenerateRequest carries one completion call. Zero sampling values leave the
// provider default in place.
type GenerateRequest struct {
	Operation       string  `json:"operation"`
	System          string  `json:"system"`
	Prompt          string  `json:"prompt"`
	Temperature     float64 `json:"temperature"`
	TopP            float64 `json:"top_p"`
	TopK            int     `json:"top_k"`
	MaxOutputTokens int     `json:"max_output_tokens"`
}

type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// GenerateResponse is returned without error when the provider answered but
// withheld content. Blocked is set in that case and Text may be empty.
type GenerateResponse struct {
	Text        string `json:"text"`
	Blocked     bool   `json:"blocked"`
	BlockReason string `json:"block_reason,omitempty"`
	Usage       Usage  `json:"usage"`
}

type LLMProvider interface {
	Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, ProviderInfo, error)
}
