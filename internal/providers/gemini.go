package providers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/vertexai/genai"
)

// GeminiProvider calls Gemini through Vertex AI with every safety threshold at
// BLOCK_NONE.
type GeminiProvider struct {
	client *genai.Client
	model  string
}

func NewGeminiProvider(ctx context.Context, projectID, region, model string) (*GeminiProvider, error) {
	if projectID == "" || region == "" {
		return nil, fmt.Errorf("gemini: projectID and region cannot be empty")
	}
	client, err := genai.NewClient(ctx, projectID, region)
	if err != nil {
		return nil, fmt.Errorf("genai.NewClient: %w", err)
	}
	return &GeminiProvider{client: client, model: model}, nil
}

func (g *GeminiProvider) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}

func (g *GeminiProvider) Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, ProviderInfo, error) {
	info := ProviderInfo{Name: "gemini", Model: g.model}
	model := g.client.GenerativeModel(g.model)
	if req.System != "" {
		model.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(req.System)},
		}
	}
	model.GenerationConfig = geminiGenerationConfig(req)
	model.SafetySettings = []*genai.SafetySetting{
		{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockNone},
		{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockNone},
		{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockNone},
		{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockNone},
	}

	resp, err := model.GenerateContent(ctx, genai.Text(req.Prompt))
	if err != nil {
		var blocked *genai.BlockedError
		if errors.As(err, &blocked) {
			return GenerateResponse{Blocked: true, BlockReason: blockedReason(blocked)}, info, nil
		}
		return GenerateResponse{}, info, fmt.Errorf("gemini generate: %w", err)
	}
	out := GenerateResponse{Text: geminiText(resp), Usage: geminiUsage(resp)}
	if out.Text == "" {
		out.Blocked = true
		out.BlockReason = "empty response"
	}
	return out, info, nil
}

func geminiGenerationConfig(req GenerateRequest) genai.GenerationConfig {
	cfg := genai.GenerationConfig{}
	if req.Temperature > 0 {
		cfg.Temperature = genai.Ptr[float32](float32(req.Temperature))
	}
	if req.TopP > 0 {
		cfg.TopP = genai.Ptr[float32](float32(req.TopP))
	}
	if req.TopK > 0 {
		cfg.TopK = genai.Ptr[int32](int32(req.TopK))
	}
	if req.MaxOutputTokens > 0 {
		cfg.MaxOutputTokens = genai.Ptr[int32](int32(req.MaxOutputTokens))
	}
	return cfg
}

func geminiText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			b.WriteString(string(txt))
		}
	}
	return strings.TrimSpace(b.String())
}

func geminiUsage(resp *genai.GenerateContentResponse) Usage {
	if resp == nil || resp.UsageMetadata == nil {
		return Usage{}
	}
	return Usage{
		PromptTokens:     int(resp.UsageMetadata.PromptTokenCount),
		CompletionTokens: int(resp.UsageMetadata.CandidatesTokenCount),
		TotalTokens:      int(resp.UsageMetadata.TotalTokenCount),
	}
}

func blockedReason(b *genai.BlockedError) string {
	switch {
	case b.PromptFeedback != nil:
		return b.PromptFeedback.BlockReason.String()
	case b.Candidate != nil:
		return b.Candidate.FinishReason.String()
	default:
		return "blocked"
	}
}
