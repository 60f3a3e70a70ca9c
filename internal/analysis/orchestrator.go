package analysis

import (
	"context"
	"time"

	"legaldoc/internal/models"
	"legaldoc/internal/providers"

	"go.uber.org/zap"
)

type Definer interface {
	Lookup(ctx context.Context, term string) (models.TermLookupResult, bool)
}

type Orchestrator struct {
	llm     providers.LLMProvider
	dict    Definer
	timeout time.Duration
	log     *zap.Logger
}

func NewOrchestrator(llm providers.LLMProvider, dict Definer, timeout time.Duration, log *zap.Logger) *Orchestrator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Orchestrator{llm: llm, dict: dict, timeout: timeout, log: log}
}

// Analyze never fails: blocked, empty and failed completions all resolve to
// FallbackResult.
func (o *Orchestrator) Analyze(ctx context.Context, text string) models.AnalysisResult {
	callCtx := ctx
	if o.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}
	resp, info, err := o.llm.Generate(callCtx, SummaryRequest(text))
	if err != nil {
		o.log.Warn("completion failed, using fallback",
			zap.String("provider", info.Name),
			zap.String("error_type", string(providers.ClassifyError(err))),
			zap.Error(err),
		)
		return FallbackResult(text)
	}
	if resp.Blocked || resp.Text == "" {
		o.log.Warn("completion blocked, using fallback",
			zap.String("provider", info.Name),
			zap.String("reason", resp.BlockReason),
		)
		return FallbackResult(text)
	}
	return o.Complete(ctx, resp.Text, toUsage(resp.Usage))
}

// Complete runs extraction and enhancement over a model answer.
func (o *Orchestrator) Complete(ctx context.Context, raw string, usage models.UsageMetadata) models.AnalysisResult {
	var lookup LookupFunc
	if o.dict != nil {
		lookup = o.dict.Lookup
	}
	candidates := ExtractTerms(raw)
	summary, defined := Enhance(ctx, raw, candidates, lookup)
	o.log.Debug("analysis complete",
		zap.Int("candidates", len(candidates)),
		zap.Strings("defined", defined),
		zap.Int("total_tokens", usage.TotalTokens),
	)
	return models.AnalysisResult{
		Summary:       summary,
		TermsLookedUp: defined,
		Usage:         usage,
	}
}

func toUsage(u providers.Usage) models.UsageMetadata {
	return models.UsageMetadata{
		PromptTokens:     u.PromptTokens,
		CompletionTokens: u.CompletionTokens,
		TotalTokens:      u.TotalTokens,
	}
}
