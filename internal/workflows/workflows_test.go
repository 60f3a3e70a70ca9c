package workflows

import (
	"context"
	"errors"
	"testing"

	"legaldoc/internal/activities"
	"legaldoc/internal/analysis"
	"legaldoc/internal/models"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/testsuite"
)

const docText = "Neither party is liable for force majeure events. Indemnification survives. Disputes go to arbitration."

const modelAnswer = "**Document Type:** Agreement\n\n**Summary:**\nA services agreement.\n\n" +
	"**Legal Terms Found:**\n- force majeure: excuses delay\n- indemnification: shifts losses\n" +
	"- zebra: not legal\n- arbitration: private forum\n- breach: failure to perform\n"

func registerActivityName[T any](env *testsuite.TestWorkflowEnvironment, name string, fn T) {
	env.RegisterActivityWithOptions(fn, activity.RegisterOptions{Name: name})
}

func newEnv() *testsuite.TestWorkflowEnvironment {
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestWorkflowEnvironment()
	env.RegisterWorkflow(DocumentAnalysisWorkflow)
	registerActivityName(env, "GenerateSummaryActivity", func(context.Context, activities.GenerateSummaryInput) (activities.GenerateSummaryOutput, error) {
		return activities.GenerateSummaryOutput{}, nil
	})
	registerActivityName(env, "LookupTermActivity", func(context.Context, activities.LookupTermInput) (activities.LookupTermOutput, error) {
		return activities.LookupTermOutput{}, nil
	})
	return env
}

func found(term string) activities.LookupTermOutput {
	return activities.LookupTermOutput{Found: true, Result: models.TermLookupResult{
		Term: term, Definition: "def of " + term, PartOfSpeech: "noun", Source: models.SourceBuiltin,
	}}
}

func TestDocumentAnalysisWorkflowDefinesTerms(t *testing.T) {
	env := newEnv()
	usage := models.UsageMetadata{PromptTokens: 120, CompletionTokens: 60, TotalTokens: 180}
	env.OnActivity("GenerateSummaryActivity", mock.Anything, activities.GenerateSummaryInput{Text: docText}).
		Return(activities.GenerateSummaryOutput{Text: modelAnswer, ProviderName: "mock", Usage: usage}, nil)
	env.OnActivity("LookupTermActivity", mock.Anything, activities.LookupTermInput{Term: "force majeure"}).Return(found("force majeure"), nil)
	env.OnActivity("LookupTermActivity", mock.Anything, activities.LookupTermInput{Term: "indemnification"}).Return(found("indemnification"), nil)
	env.OnActivity("LookupTermActivity", mock.Anything, activities.LookupTermInput{Term: "zebra"}).Return(activities.LookupTermOutput{}, nil)
	env.OnActivity("LookupTermActivity", mock.Anything, activities.LookupTermInput{Term: "arbitration"}).Return(found("arbitration"), nil)

	env.ExecuteWorkflow(DocumentAnalysisWorkflow, DocumentAnalysisInput{Text: docText})
	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var out models.AnalysisResult
	require.NoError(t, env.GetWorkflowResult(&out))
	require.Equal(t, []string{"force majeure", "indemnification", "arbitration"}, out.TermsLookedUp)
	require.Equal(t, usage, out.Usage)
	require.Contains(t, out.Summary, "**Legal Terms Explained:**")
	require.False(t, out.Fallback)
	// the cap is reached before "breach"
	env.AssertActivityNumberOfCalls(t, "LookupTermActivity", 4)

	val, err := env.QueryWorkflow(QueryGetAnalysisStatus)
	require.NoError(t, err)
	var status AnalysisStatus
	require.NoError(t, val.Get(&status))
	require.Equal(t, "done", status.CurrentStep)
	require.Equal(t, "mock", status.Provider)
	require.Len(t, status.Candidates, 5)
}

func TestDocumentAnalysisWorkflowFallsBackOnFailure(t *testing.T) {
	env := newEnv()
	env.OnActivity("GenerateSummaryActivity", mock.Anything, mock.Anything).
		Return(activities.GenerateSummaryOutput{}, errors.New("quota exceeded"))

	env.ExecuteWorkflow(DocumentAnalysisWorkflow, DocumentAnalysisInput{Text: docText})
	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var out models.AnalysisResult
	require.NoError(t, env.GetWorkflowResult(&out))
	require.Equal(t, analysis.FallbackResult(docText), out)
	env.AssertActivityNumberOfCalls(t, "GenerateSummaryActivity", 1)
	env.AssertActivityNumberOfCalls(t, "LookupTermActivity", 0)
}

func TestDocumentAnalysisWorkflowFallsBackWhenBlocked(t *testing.T) {
	env := newEnv()
	env.OnActivity("GenerateSummaryActivity", mock.Anything, mock.Anything).
		Return(activities.GenerateSummaryOutput{Blocked: true, BlockReason: "SAFETY"}, nil)

	env.ExecuteWorkflow(DocumentAnalysisWorkflow, DocumentAnalysisInput{Text: docText})
	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var out models.AnalysisResult
	require.NoError(t, env.GetWorkflowResult(&out))
	require.True(t, out.Fallback)
	require.Empty(t, out.TermsLookedUp)
	require.Equal(t, models.UsageMetadata{}, out.Usage)
}

func TestDocumentAnalysisWorkflowLookupErrorIsNotFound(t *testing.T) {
	env := newEnv()
	env.OnActivity("GenerateSummaryActivity", mock.Anything, mock.Anything).
		Return(activities.GenerateSummaryOutput{Text: "**Legal Terms Found:**\n- breach: x\n- covenant: y\n"}, nil)
	env.OnActivity("LookupTermActivity", mock.Anything, activities.LookupTermInput{Term: "breach"}).
		Return(activities.LookupTermOutput{}, errors.New("worker lost"))
	env.OnActivity("LookupTermActivity", mock.Anything, activities.LookupTermInput{Term: "covenant"}).Return(found("covenant"), nil)

	env.ExecuteWorkflow(DocumentAnalysisWorkflow, DocumentAnalysisInput{Text: docText})
	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var out models.AnalysisResult
	require.NoError(t, env.GetWorkflowResult(&out))
	require.Equal(t, []string{"covenant"}, out.TermsLookedUp)
	env.AssertActivityNumberOfCalls(t, "LookupTermActivity", 2)
}

func TestDocumentAnalysisWorkflowNoTermsSection(t *testing.T) {
	env := newEnv()
	env.OnActivity("GenerateSummaryActivity", mock.Anything, mock.Anything).
		Return(activities.GenerateSummaryOutput{Text: "Just a summary."}, nil)

	env.ExecuteWorkflow(DocumentAnalysisWorkflow, DocumentAnalysisInput{Text: docText})
	require.True(t, env.IsWorkflowCompleted())

	var out models.AnalysisResult
	require.NoError(t, env.GetWorkflowResult(&out))
	require.Equal(t, "Just a summary.", out.Summary)
	require.Empty(t, out.TermsLookedUp)
	require.Equal(t, models.PathwayNone, models.PathwayFor(out))
}
