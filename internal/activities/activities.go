package activities

import (
	"context"
	"fmt"
	"time"

	"legaldoc/internal/analysis"
	"legaldoc/internal/models"
	"legaldoc/internal/providers"

	"go.temporal.io/sdk/activity"
)

type Activities struct {
	llm     providers.LLMProvider
	dict    analysis.Definer
	timeout time.Duration
}

func New(llm providers.LLMProvider, dict analysis.Definer, timeout time.Duration) *Activities {
	return &Activities{llm: llm, dict: dict, timeout: timeout}
}

// GenerateSummaryActivity makes the single completion call of an analysis.
// Blocked and empty answers are returned as output, transport failures as
// errors; the workflow treats both as a reason to fall back.
func (a *Activities) GenerateSummaryActivity(ctx context.Context, in GenerateSummaryInput) (GenerateSummaryOutput, error) {
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}
	resp, info, err := a.llm.Generate(ctx, analysis.SummaryRequest(in.Text))
	if err != nil {
		return GenerateSummaryOutput{}, fmt.Errorf("llm generate via %s failed: %w", info.Name, err)
	}
	activity.GetLogger(ctx).Info("summary generated",
		"provider", info.Name,
		"model", info.Model,
		"blocked", resp.Blocked,
		"total_tokens", resp.Usage.TotalTokens,
	)
	return GenerateSummaryOutput{
		Text:         resp.Text,
		Blocked:      resp.Blocked || resp.Text == "",
		BlockReason:  resp.BlockReason,
		ProviderName: info.Name,
		Model:        info.Model,
		Usage: models.UsageMetadata{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}, nil
}

// LookupTermActivity never fails; a missing definition is Found=false.
func (a *Activities) LookupTermActivity(ctx context.Context, in LookupTermInput) (LookupTermOutput, error) {
	if a.dict == nil {
		return LookupTermOutput{}, nil
	}
	res, ok := a.dict.Lookup(ctx, in.Term)
	return LookupTermOutput{Found: ok, Result: res}, nil
}
