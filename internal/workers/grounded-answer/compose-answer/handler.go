// internal/workers/grounded-answer/compose-answer/handler.go
package composeanswer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Sankalp-SISL/MIDC-chatbot/internal/common/aws"
	apperrors "github.com/Sankalp-SISL/MIDC-chatbot/internal/common/errors"
	"github.com/Sankalp-SISL/MIDC-chatbot/internal/common/logger"
	"github.com/Sankalp-SISL/MIDC-chatbot/internal/common/metrics"
	"github.com/Sankalp-SISL/MIDC-chatbot/internal/common/observability"
	"github.com/Sankalp-SISL/MIDC-chatbot/internal/models"
	arbitratemode "github.com/Sankalp-SISL/MIDC-chatbot/internal/workers/grounded-answer/arbitrate-mode"
	assemblecontext "github.com/Sankalp-SISL/MIDC-chatbot/internal/workers/grounded-answer/assemble-context"
	detectlanguage "github.com/Sankalp-SISL/MIDC-chatbot/internal/workers/grounded-answer/detect-language"
	enrichresponse "github.com/Sankalp-SISL/MIDC-chatbot/internal/workers/grounded-answer/enrich-response"
	generateanswer "github.com/Sankalp-SISL/MIDC-chatbot/internal/workers/grounded-answer/generate-answer"
	selectdocuments "github.com/Sankalp-SISL/MIDC-chatbot/internal/workers/grounded-answer/select-documents"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"go.opentelemetry.io/otel/attribute"
)

const (
	TaskType = "midc.compose-answer"

	errQuestionRequired = "Question is required"
)

// GapNotifier receives questions the pipeline could not answer.
type GapNotifier interface {
	Notify(ctx context.Context, gap aws.KnowledgeGap) error
}

type Handler struct {
	config   *Config
	stages   Stages
	notifier GapNotifier
	obs      *observability.Observability
	errors   *apperrors.ErrorHandler
	logger   logger.Logger
}

// NewHandler builds the orchestrator. notifier and obs may be nil.
func NewHandler(config *Config, stages Stages, notifier GapNotifier, obs *observability.Observability, log logger.Logger) *Handler {
	log = log.With(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:   config,
		stages:   stages,
		notifier: notifier,
		obs:      obs,
		errors:   apperrors.NewErrorHandler(log),
		logger:   log,
	}
}

// Handle serves a workflow job carrying {question, mode}.
func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.JobTimeout)
	defer cancel()

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.errors.HandleJobError(ctx, client, job, apperrors.NewInvalidRequestError(fmt.Sprintf("parse variables: %v", err)))
		return
	}
	if input.RequestID == "" {
		input.RequestID = fmt.Sprintf("job-%d", job.Key)
	}

	output, err := h.Execute(ctx, &input)
	if err != nil {
		h.errors.HandleJobError(ctx, client, job, err)
		return
	}
	h.completeJob(ctx, client, job, output)
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output.ComposedAnswer)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return
	}

	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
	}
}

// Execute runs the pipeline for one question. The only errors returned are
// input errors; every failure after that is answered with a safe default.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	question := strings.TrimSpace(input.Question)
	if question == "" {
		return nil, apperrors.NewInvalidRequestError(errQuestionRequired)
	}
	explicit, ok := models.ParseExplicitMode(input.Mode)
	if !ok {
		return nil, apperrors.NewInvalidRequestError(fmt.Sprintf("mode must be empty or %q, got %q", models.ExplicitModeInternet, input.Mode))
	}

	started := time.Now()
	log := logger.FromContext(ctx, h.logger)
	if input.RequestID != "" {
		log = log.With(map[string]interface{}{"requestId": input.RequestID})
	}

	ctx, span := h.obs.StartSpan(ctx, "compose-answer", attribute.String("requestId", input.RequestID))
	defer span.End()

	r := &run{handler: h, logger: log, query: models.Query{Text: question, ExplicitMode: explicit}}
	out := r.execute(ctx)
	out.RequestID = input.RequestID

	metrics.AnswersTotal.WithLabelValues(string(out.Mode), string(out.Language), out.Outcome).Inc()
	h.obs.RecordRequest(ctx, string(out.Mode), out.Outcome, time.Since(started))
	span.SetAttributes(
		attribute.String("mode", string(out.Mode)),
		attribute.String("outcome", out.Outcome),
		attribute.Float64("confidence", out.Confidence),
	)

	log.Info("answer composed", map[string]interface{}{
		"mode":       string(out.Mode),
		"language":   string(out.Language),
		"outcome":    out.Outcome,
		"confidence": out.Confidence,
		"sources":    len(out.Sources),
		"elapsedMs":  time.Since(started).Milliseconds(),
	})

	if out.Outcome != OutcomeAnswered {
		h.alert(ctx, log, question, out)
	}
	return out, nil
}

func (h *Handler) alert(ctx context.Context, log logger.Logger, question string, out *Output) {
	if h.notifier == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), h.config.AlertTimeout)
	defer cancel()

	err := h.notifier.Notify(ctx, aws.KnowledgeGap{
		Question:  question,
		Language:  string(out.Language),
		Mode:      string(out.Mode),
		Reason:    out.Outcome,
		RequestID: out.RequestID,
		At:        time.Now().UTC(),
	})
	if err != nil {
		log.Warn("knowledge gap alert failed", map[string]interface{}{"error": err.Error()})
	}
}

// run holds the per-request state machine.
type run struct {
	handler *Handler
	logger  logger.Logger
	query   models.Query

	states   []State
	language models.Language
	mode     models.Mode
}

func (r *run) advance(s State) {
	if n := len(r.states); n > 0 && stateOrder[s] <= stateOrder[r.states[n-1]] {
		r.logger.Error("ignoring backward state transition", map[string]interface{}{
			"from": string(r.states[n-1]),
			"to":   string(s),
		})
		return
	}
	r.states = append(r.states, s)
}

func (r *run) execute(ctx context.Context) (out *Output) {
	r.advance(StateStart)
	r.language = models.LanguageDefault
	r.mode = models.ModeInternal

	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("pipeline panicked", map[string]interface{}{"panic": fmt.Sprint(p)})
			out = r.safe(false)
		}
	}()

	stages := r.handler.stages

	r.timed(ctx, detectlanguage.Stage, func(context.Context) {
		r.language = stages.Language.Execute(&detectlanguage.Input{Text: r.query.Text}).Language
	})
	r.advance(StateLanguageDetected)

	var decision *arbitratemode.Output
	r.timed(ctx, arbitratemode.Stage, func(context.Context) {
		decision = stages.Mode.Execute(&arbitratemode.Input{Text: r.query.Text, ExplicitMode: r.query.ExplicitMode})
	})
	r.mode = decision.Mode
	r.advance(StateModeDecided)

	var assembled *assemblecontext.Output
	if r.mode == models.ModeInternal {
		var (
			selected *selectdocuments.Output
			err      error
		)
		r.timed(ctx, selectdocuments.Stage, func(ctx context.Context) {
			selected, err = stages.Select.Execute(ctx, &selectdocuments.Input{Text: r.query.Text, EntitySafety: decision.EntitySafety()})
		})
		if err != nil {
			unavailable := errors.Is(err, apperrors.ErrKnowledgeBaseUnavailable)
			r.logger.Warn("document selection failed", map[string]interface{}{
				"error":       err.Error(),
				"unavailable": unavailable,
			})
			return r.safe(unavailable)
		}
		r.advance(StateDocumentsSelected)

		r.timed(ctx, assemblecontext.Stage, func(context.Context) {
			assembled = stages.Assemble.Execute(&assemblecontext.Input{Documents: selected.Documents})
		})
		r.advance(StateContextAssembled)
	}

	var generated *generateanswer.Output
	r.timed(ctx, generateanswer.Stage, func(ctx context.Context) {
		in := &generateanswer.Input{Question: r.query.Text, Language: r.language, Mode: r.mode}
		if assembled != nil {
			in.Context = assembled.Context
		}
		generated = stages.Generate.Execute(ctx, in)
	})
	r.advance(StateAnswerGenerated)

	var answer *models.ComposedAnswer
	r.timed(ctx, enrichresponse.Stage, func(ctx context.Context) {
		answer = stages.Enrich.Execute(ctx, &enrichresponse.Input{
			Question:  r.query.Text,
			Language:  r.language,
			Mode:      r.mode,
			Answer:    generated,
			Assembled: assembled,
		})
	})
	r.advance(StateEnriched)
	r.advance(StateDone)

	outcome := OutcomeAnswered
	if generated.Fallback || stages.Enrich.NotAvailable(answer.Text) {
		outcome = OutcomeNotAvailable
	}
	return &Output{ComposedAnswer: *answer, States: r.states, Outcome: outcome}
}

// safe ends the run with a default answer.
func (r *run) safe(unavailable bool) *Output {
	answer := r.handler.stages.Enrich.SafeAnswer(r.query.Text, r.language, r.mode, unavailable)
	r.advance(StateDone)

	outcome := OutcomeStageError
	if unavailable {
		outcome = OutcomeUnavailable
	}
	return &Output{ComposedAnswer: *answer, States: r.states, Outcome: outcome}
}

func (r *run) timed(ctx context.Context, stage string, fn func(ctx context.Context)) {
	ctx, span := r.handler.obs.StartSpan(ctx, stage)
	defer span.End()

	started := time.Now()
	fn(ctx)
	metrics.StageDuration.WithLabelValues(stage).Observe(time.Since(started).Seconds())
}
