package providers

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/openai/openai-go/v2/shared"
)

// OpenAIProvider speaks the chat completions API. Groq and Ollama expose the
// same API, so they are built from this type with a different base URL.
type OpenAIProvider struct {
	name   string
	model  string
	apiKey string
	client openai.Client
}

func NewOpenAIProvider(name, apiKey, baseURL, model string) *OpenAIProvider {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if strings.TrimSpace(baseURL) != "" {
		opts = append(opts, option.WithBaseURL(normalizeBaseURL(baseURL)))
	}
	return &OpenAIProvider{
		name:   name,
		model:  model,
		apiKey: apiKey,
		client: openai.NewClient(opts...),
	}
}

func NewGroqProvider(apiKey, model string) *OpenAIProvider {
	return NewOpenAIProvider("groq", apiKey, "https://api.groq.com/openai/v1", model)
}

// NewOllamaProvider targets a local Ollama daemon, which ignores the key.
func NewOllamaProvider(baseURL, model string) *OpenAIProvider {
	return NewOpenAIProvider("ollama", "ollama", strings.TrimRight(baseURL, "/")+"/v1", model)
}

func (o *OpenAIProvider) Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, ProviderInfo, error) {
	info := ProviderInfo{Name: o.name, Model: o.model}
	if o.apiKey == "" {
		return GenerateResponse{}, info, fmt.Errorf("%s: %w", o.name, ErrMissingKey)
	}
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if req.System != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}
	messages = append(messages, openai.UserMessage(req.Prompt))

	params := openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(o.model),
		Messages: messages,
	}
	if req.Temperature > 0 {
		params.Temperature = openai.Float(req.Temperature)
	}
	if req.TopP > 0 {
		params.TopP = openai.Float(req.TopP)
	}
	if req.MaxOutputTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(req.MaxOutputTokens))
	}

	resp, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return GenerateResponse{}, info, fmt.Errorf("%s generate: %w", o.name, err)
	}
	if len(resp.Choices) == 0 {
		return GenerateResponse{}, info, fmt.Errorf("%s: %w", o.name, ErrEmptyCompletion)
	}
	choice := resp.Choices[0]
	out := GenerateResponse{
		Text: strings.TrimSpace(choice.Message.Content),
		Usage: Usage{
			PromptTokens:     int(resp.Usage.PromptTokens),
			CompletionTokens: int(resp.Usage.CompletionTokens),
			TotalTokens:      int(resp.Usage.TotalTokens),
		},
	}
	if string(choice.FinishReason) == "content_filter" || choice.Message.Refusal != "" {
		out.Blocked = true
		out.BlockReason = "content_filter"
	} else if out.Text == "" {
		out.Blocked = true
		out.BlockReason = "empty response"
	}
	return out, info, nil
}

func normalizeBaseURL(raw string) string {
	u := strings.TrimRight(strings.TrimSpace(raw), "/")
	if !strings.HasSuffix(u, "/v1") {
		u += "/v1"
	}
	return u + "/"
}
