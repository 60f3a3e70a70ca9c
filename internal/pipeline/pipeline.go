package pipeline

import (
	"context"
	"fmt"
	"runtime/debug"
	"strings"
	"time"
	"unicode/utf8"

	"legaldoc/internal/analysis"
	"legaldoc/internal/models"
	"legaldoc/internal/safety"
	"legaldoc/internal/telemetry"

	"go.uber.org/zap"
)

// Analyzer produces an AnalysisResult for validated text. The inline
// orchestrator and the Temporal dispatcher both satisfy it.
type Analyzer interface {
	Analyze(ctx context.Context, text string) (models.AnalysisResult, error)
}

type inlineAnalyzer struct {
	o *analysis.Orchestrator
}

// Inline adapts an Orchestrator, which never fails, to Analyzer.
func Inline(o *analysis.Orchestrator) Analyzer {
	return inlineAnalyzer{o: o}
}

func (a inlineAnalyzer) Analyze(ctx context.Context, text string) (models.AnalysisResult, error) {
	return a.o.Analyze(ctx, text), nil
}

// ValidationError is returned when the validator rejects the input. Reason is
// safe to show to the caller.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

type Pipeline struct {
	validator *safety.Validator
	analyzer  Analyzer
	recorder  telemetry.Recorder
	log       *zap.Logger
	now       func() time.Time
}

func New(v *safety.Validator, a Analyzer, r telemetry.Recorder, log *zap.Logger) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{validator: v, analyzer: a, recorder: r, log: log, now: time.Now}
}

// Analyze runs one request through validation, analysis and recording. The
// returned error is either a *ValidationError or an internal failure; in both
// cases an error LogRecord has been written.
func (p *Pipeline) Analyze(ctx context.Context, req models.AnalysisRequest) (models.AnalysisResponse, error) {
	// a client disconnect must not abort in-flight upstream calls
	ctx = context.WithoutCancel(ctx)
	start := p.now()
	inputLen := utf8.RuneCountInString(req.Text)
	name := strings.TrimSpace(req.DocumentName)
	if name == "" {
		name = models.DefaultDocumentName
	}

	if ok, reason := p.validator.Validate(req.Text); !ok {
		p.log.Info("input rejected", zap.String("reason", reason), zap.Int("input_length", inputLen))
		p.recordFailure(ctx, start, inputLen, reason)
		return models.AnalysisResponse{}, &ValidationError{Reason: reason}
	}

	res, err := p.runAnalyzer(ctx, req.Text)
	if err != nil {
		p.log.Error("analysis failed", zap.String("document_name", name), zap.Error(err))
		p.recordFailure(ctx, start, inputLen, err.Error())
		return models.AnalysisResponse{}, err
	}
	if res.TermsLookedUp == nil {
		res.TermsLookedUp = []string{}
	}

	now := p.now()
	ts := telemetry.Timestamp(now)
	tokens := models.IntPtr(res.Usage.TotalTokens)
	id := telemetry.NewSummaryID(now)

	if err := p.recorder.RecordSummary(ctx, models.SummaryRecord{
		ID:            id,
		Timestamp:     ts,
		DocumentName:  name,
		Summary:       res.Summary,
		TermsLookedUp: res.TermsLookedUp,
		TokensUsed:    tokens,
		InputLength:   inputLen,
	}); err != nil {
		p.log.Error("persist summary", zap.String("id", id), zap.Error(err))
	}
	if err := p.recorder.RecordLog(ctx, models.LogRecord{
		Timestamp:   ts,
		Pathway:     models.PathwayFor(res),
		LatencyMS:   latencyMS(start, now),
		TokensUsed:  tokens,
		InputLength: inputLen,
		Success:     true,
	}); err != nil {
		p.log.Error("persist request log", zap.Error(err))
	}

	p.log.Info("document analyzed",
		zap.String("id", id),
		zap.String("document_name", name),
		zap.Bool("fallback", res.Fallback),
		zap.Int("terms", len(res.TermsLookedUp)),
		zap.Int("total_tokens", res.Usage.TotalTokens),
	)
	return models.AnalysisResponse{
		Summary:       res.Summary,
		TermsLookedUp: res.TermsLookedUp,
		TokensUsed:    tokens,
		SavedID:       id,
		Timestamp:     ts,
	}, nil
}

// RecordRejection logs a request turned away before it reached the validator,
// such as a body over the request size limit.
func (p *Pipeline) RecordRejection(ctx context.Context, inputLen int, reason string) {
	p.log.Info("input rejected", zap.String("reason", reason), zap.Int("input_length", inputLen))
	p.recordFailure(context.WithoutCancel(ctx), p.now(), inputLen, reason)
}

func (p *Pipeline) runAnalyzer(ctx context.Context, text string) (res models.AnalysisResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Error("analyzer panic", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
			err = fmt.Errorf("analyzer panic: %v", r)
		}
	}()
	return p.analyzer.Analyze(ctx, text)
}

func (p *Pipeline) recordFailure(ctx context.Context, start time.Time, inputLen int, msg string) {
	now := p.now()
	if err := p.recorder.RecordLog(ctx, models.LogRecord{
		Timestamp:    telemetry.Timestamp(now),
		Pathway:      models.PathwayError,
		LatencyMS:    latencyMS(start, now),
		InputLength:  inputLen,
		Success:      false,
		ErrorMessage: models.StringPtr(msg),
	}); err != nil {
		p.log.Error("persist request log", zap.Error(err))
	}
}

// ListSummaries never fails; storage errors yield an empty list.
func (p *Pipeline) ListSummaries(ctx context.Context) []models.SummaryRecord {
	out, err := p.recorder.ListSummaries(ctx)
	if err != nil {
		p.log.Warn("list summaries", zap.Error(err))
		return []models.SummaryRecord{}
	}
	if out == nil {
		return []models.SummaryRecord{}
	}
	return out
}

func (p *Pipeline) GetSummary(ctx context.Context, id string) (models.SummaryRecord, error) {
	return p.recorder.GetSummary(ctx, id)
}

func latencyMS(start, end time.Time) float64 {
	return float64(end.Sub(start).Microseconds()) / 1000
}
