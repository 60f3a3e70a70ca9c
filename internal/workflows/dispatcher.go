package workflows

import (
	"context"
	"fmt"
	"time"

	"legaldoc/internal/models"

	"github.com/google/uuid"
	enumspb "go.temporal.io/api/enums/v1"
	"go.temporal.io/sdk/client"
	"go.uber.org/zap"
)

// lookupHeadroom is added to the dictionary timeout for the lookup activity's
// StartToClose, leaving room for the glossary fallback after the HTTP deadline.
const lookupHeadroom = 5 * time.Second

func lookupActivityTimeout(dictTimeout time.Duration) time.Duration {
	return dictTimeout + lookupHeadroom
}

// Dispatcher runs analyses on a Temporal worker and waits for the result.
type Dispatcher struct {
	client        client.Client
	taskQueue     string
	llmTimeout    time.Duration
	lookupTimeout time.Duration
	log           *zap.Logger
}

// NewDispatcher takes the dictionary's HTTP timeout as lookupTimeout.
func NewDispatcher(c client.Client, taskQueue string, llmTimeout, lookupTimeout time.Duration, log *zap.Logger) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Dispatcher{
		client:        c,
		taskQueue:     taskQueue,
		llmTimeout:    llmTimeout,
		lookupTimeout: lookupTimeout,
		log:           log,
	}
}

func (d *Dispatcher) Analyze(ctx context.Context, text string) (models.AnalysisResult, error) {
	we, err := d.client.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
		ID:                    "analysis-" + uuid.NewString(),
		TaskQueue:             d.taskQueue,
		WorkflowIDReusePolicy: enumspb.WORKFLOW_ID_REUSE_POLICY_REJECT_DUPLICATE,
	}, DocumentAnalysisWorkflow, DocumentAnalysisInput{
		Text:                 text,
		LLMTimeoutSeconds:    int(d.llmTimeout / time.Second),
		LookupTimeoutSeconds: int(lookupActivityTimeout(d.lookupTimeout) / time.Second),
	})
	if err != nil {
		return models.AnalysisResult{}, fmt.Errorf("start analysis workflow: %w", err)
	}
	d.log.Debug("analysis workflow started", zap.String("workflow_id", we.GetID()), zap.String("run_id", we.GetRunID()))

	var out models.AnalysisResult
	if err := we.Get(ctx, &out); err != nil {
		return models.AnalysisResult{}, fmt.Errorf("analysis workflow %s: %w", we.GetID(), err)
	}
	if out.TermsLookedUp == nil {
		out.TermsLookedUp = []string{}
	}
	return out, nil
}
