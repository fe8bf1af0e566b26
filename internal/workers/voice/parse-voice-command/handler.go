package parsevoicecommand

import (
	"context"
	"errors"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"shopsense-voice/internal/catalog"
	apperrors "shopsense-voice/internal/common/errors"
	"shopsense-voice/internal/common/logger"
	"shopsense-voice/internal/common/metrics"
	"shopsense-voice/internal/common/observability"
	"shopsense-voice/internal/common/validation"
	"shopsense-voice/internal/models"
	"shopsense-voice/internal/nlu/session"
)

const (
	TaskType = "parse-voice-command"
)

var ErrNoCatalog = errors.New("no products supplied and no catalog configured")

// Parser is the slice of the NLU engine the handler needs.
type Parser interface {
	Parse(ctx context.Context, text string, products []models.Product) models.Command
}

type Handler struct {
	config   *Config
	parser   Parser
	catalog  catalog.Source
	sessions *session.Tracker
	errors   *apperrors.ErrorHandler
	obs      *observability.Observability
	logger   logger.Logger
}

// NewHandler wires the handler. products may be nil when every caller sends
// the catalog inline; sessions may be nil to disable ordering.
func NewHandler(config *Config, parser Parser, products catalog.Source, sessions *session.Tracker, obs *observability.Observability, log logger.Logger) *Handler {
	if obs == nil {
		obs = observability.Noop()
	}
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:   config,
		parser:   parser,
		catalog:  products,
		sessions: sessions,
		errors:   apperrors.NewErrorHandler(log),
		obs:      obs,
		logger:   log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()

	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	input, err := DecodeInput([]byte(job.Variables))
	if err != nil {
		h.fail(ctx, client, job, err, start)
		return
	}

	output, err := h.Execute(ctx, input)
	if err != nil {
		h.fail(ctx, client, job, err, start)
		return
	}

	h.obs.RecordParse(ctx, "worker", string(output.Command.Intent), output.Command.Source)
	h.completeJob(ctx, client, job, output, start)
}

// DecodeInput validates raw job variables and decodes them.
func DecodeInput(raw []byte) (*Input, error) {
	return validation.DecodeParseRequest(raw)
}

// Execute parses one request. A session id serialises parses of that
// session; a parse overtaken by a newer utterance is skipped or flagged stale.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, apperrors.NewInvalidInputError("input cannot be nil")
	}

	if input.SessionID == "" || h.sessions == nil {
		cmd, err := h.parse(ctx, input)
		if err != nil {
			return nil, err
		}
		return &Output{Command: cmd}, nil
	}

	seq := input.Sequence
	if seq == 0 {
		seq = h.sessions.Next(input.SessionID)
	}

	var (
		cmd      = models.UnknownCommand()
		parseErr error
	)
	stale, err := h.sessions.Do(ctx, input.SessionID, seq, func(ctx context.Context) {
		cmd, parseErr = h.parse(ctx, input)
	})
	if err != nil {
		return nil, apperrors.NewTimeoutError("session", err)
	}
	if parseErr != nil {
		return nil, parseErr
	}
	if stale {
		metrics.StaleResults.Inc()
		h.logger.Info("result overtaken by newer utterance", map[string]interface{}{
			"sessionId": input.SessionID,
			"sequence":  seq,
			"latest":    h.sessions.Latest(input.SessionID),
		})
	}

	return &Output{Command: cmd, Stale: stale}, nil
}

func (h *Handler) parse(ctx context.Context, input *Input) (models.Command, error) {
	products, err := h.products(ctx, input)
	if err != nil {
		return models.Command{}, err
	}
	return h.parser.Parse(ctx, input.Text, products), nil
}

// products prefers the inline catalog; otherwise it reads the user's catalog
// fresh so the newest products are matchable.
func (h *Handler) products(ctx context.Context, input *Input) ([]models.Product, error) {
	if input.HasCatalog() || input.UserID == "" {
		return input.Products, nil
	}
	if h.catalog == nil {
		return nil, apperrors.NewInvalidInputError(ErrNoCatalog.Error())
	}

	products, err := h.catalog.ListProducts(ctx, input.UserID)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, apperrors.NewTimeoutError("catalog", err)
		}
		return nil, apperrors.NewCatalogFetchFailedError(err)
	}
	return products, nil
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output, start time.Time) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		h.record(ctx, "failed", apperrors.ErrCodeInternal, start)
		return
	}

	if _, err := cmd.Send(context.Background()); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		h.record(ctx, "failed", apperrors.ErrCodeExternalService, start)
		return
	}

	h.logger.Info("job completed", map[string]interface{}{
		"jobKey": job.Key,
		"intent": output.Command.Intent,
		"stale":  output.Stale,
	})
	h.record(ctx, "completed", "", start)
}

func (h *Handler) fail(ctx context.Context, client worker.JobClient, job entities.Job, err error, start time.Time) {
	h.errors.HandleJobError(context.Background(), client, job, err)
	h.record(ctx, "failed", apperrors.AsStandardError(err).Code, start)
}

func (h *Handler) record(ctx context.Context, status string, code apperrors.ErrorCode, start time.Time) {
	elapsed := time.Since(start)
	if status == "completed" {
		metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	} else {
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(code)).Inc()
	}
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(elapsed.Seconds())
	h.obs.RecordJobProcessed(ctx, status)
	h.obs.RecordJobDuration(ctx, elapsed, status)
}
