package workflows

import (
	"context"
	"time"

	"legaldoc/internal/activities"
	"legaldoc/internal/analysis"
	"legaldoc/internal/models"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

const QueryGetAnalysisStatus = "GetAnalysisStatus"

// DocumentAnalysisWorkflow is the durable form of Orchestrator.Analyze. No
// activity is retried: a failed completion resolves to the fallback result and
// a failed lookup counts as not found.
func DocumentAnalysisWorkflow(ctx workflow.Context, input DocumentAnalysisInput) (models.AnalysisResult, error) {
	status := AnalysisStatus{CurrentStep: "generate_summary"}
	if err := workflow.SetQueryHandler(ctx, QueryGetAnalysisStatus, func() (AnalysisStatus, error) {
		return status, nil
	}); err != nil {
		return models.AnalysisResult{}, err
	}
	logger := workflow.GetLogger(ctx)

	noRetry := &temporal.RetryPolicy{MaximumAttempts: 1}
	genCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: durationOrDefault(input.LLMTimeoutSeconds, 120),
		RetryPolicy:         noRetry,
	})
	var gen activities.GenerateSummaryOutput
	if err := workflow.ExecuteActivity(genCtx, "GenerateSummaryActivity", activities.GenerateSummaryInput{Text: input.Text}).Get(ctx, &gen); err != nil {
		logger.Warn("completion failed, using fallback", "error", err)
		status.CurrentStep = "done"
		status.Fallback = true
		return analysis.FallbackResult(input.Text), nil
	}
	status.Provider = gen.ProviderName
	if gen.Blocked || gen.Text == "" {
		logger.Warn("completion blocked, using fallback", "reason", gen.BlockReason)
		status.CurrentStep = "done"
		status.Fallback = true
		return analysis.FallbackResult(input.Text), nil
	}

	status.CurrentStep = "extract_terms"
	candidates := analysis.ExtractTerms(gen.Text)
	status.Candidates = candidates

	status.CurrentStep = "define_terms"
	lookupCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: durationOrDefault(input.LookupTimeoutSeconds, 30),
		RetryPolicy:         noRetry,
	})
	// Enhance runs sequentially, so driving activities from the callback keeps
	// the workflow deterministic.
	lookup := func(_ context.Context, term string) (models.TermLookupResult, bool) {
		var out activities.LookupTermOutput
		if err := workflow.ExecuteActivity(lookupCtx, "LookupTermActivity", activities.LookupTermInput{Term: term}).Get(ctx, &out); err != nil {
			logger.Warn("term lookup failed", "term", term, "error", err)
			return models.TermLookupResult{}, false
		}
		return out.Result, out.Found
	}
	summary, defined := analysis.Enhance(context.Background(), gen.Text, candidates, lookup)
	status.Defined = defined
	status.CurrentStep = "done"

	return models.AnalysisResult{
		Summary:       summary,
		TermsLookedUp: defined,
		Usage:         gen.Usage,
	}, nil
}

func durationOrDefault(seconds, fallback int) time.Duration {
	if seconds <= 0 {
		seconds = fallback
	}
	return time.Duration(seconds) * time.Second
}
