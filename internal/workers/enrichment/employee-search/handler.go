package employeesearch

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"quickenrich-workers/internal/common/camunda"
	"quickenrich-workers/internal/common/config"
	"quickenrich-workers/internal/common/errors"
	"quickenrich-workers/internal/common/logger"
	"quickenrich-workers/internal/common/metrics"
	"quickenrich-workers/internal/common/observability"
	"quickenrich-workers/internal/common/quickenrich"
	"quickenrich-workers/internal/common/validation"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const TaskType = "quickenrich.employee.search"

// JobService is the business layer behind the handler.
type JobService interface {
	Execute(ctx context.Context, input *Input) (*Output, error)
	TestCredentials(ctx context.Context) error
}

type Handler struct {
	config       *Config
	logger       logger.Logger
	camunda      *camunda.Client
	service      JobService
	errorHandler *errors.ErrorHandler
	obs          *observability.Observability
	tracer       trace.Tracer
}

type HandlerOptions struct {
	AppConfig    *config.Config
	Camunda      *camunda.Client
	Client       *quickenrich.Client
	CustomConfig *Config
	Logger       logger.Logger
	// Observability is optional; nil disables otel job metrics.
	Observability *observability.Observability
	// Service replaces the default service, mainly for tests.
	Service JobService
}

func NewHandler(opts HandlerOptions) (*Handler, error) {
	workerConfig := createConfigFromAppConfig(opts.AppConfig, opts.CustomConfig)

	if err := workerConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration for %s: %w", WorkerName, err)
	}

	var loggerInstance logger.Logger
	if opts.Logger != nil {
		loggerInstance = opts.Logger
	} else {
		loggerInstance = logger.NewStructured("info", "json")
	}
	loggerInstance = loggerInstance.With(map[string]interface{}{"worker": TaskType})

	service := opts.Service
	if service == nil {
		if opts.Client == nil {
			return nil, fmt.Errorf("quickenrich client is required")
		}
		client := opts.Client.WithCredential(workerConfig.CredentialName)
		service = NewService(ServiceDependencies{
			Logger: loggerInstance,
			Searchers: func(credential string) Searcher {
				return client.WithCredential(credential)
			},
			CredentialTester: client.TestCredentials,
		}, workerConfig)
	}

	return &Handler{
		config:       workerConfig,
		logger:       loggerInstance,
		camunda:      opts.Camunda,
		service:      service,
		errorHandler: errors.NewErrorHandler(loggerInstance),
		obs:          opts.Observability,
		tracer:       otel.Tracer("quickenrich-workers/employee-search"),
	}, nil
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	startTime := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	ctx, span := h.tracer.Start(ctx, TaskType, trace.WithAttributes(
		attribute.Int64("zeebe.job.key", job.GetKey()),
		attribute.Int64("zeebe.process_instance.key", job.GetProcessInstanceKey()),
	))
	defer span.End()

	log := logger.WithTrace(ctx, h.logger).With(map[string]interface{}{
		"jobKey":             job.GetKey(),
		"processInstanceKey": job.GetProcessInstanceKey(),
		"runId":              uuid.New().String(),
	})

	log.Info("Processing employee search job", map[string]interface{}{
		"retries": job.GetRetries(),
	})

	input, err := h.parseInput(job)
	if err != nil {
		h.fail(ctx, client, job, err, startTime)
		return
	}

	output, err := h.Execute(ctx, input)
	if err != nil {
		h.fail(ctx, client, job, err, startTime)
		return
	}

	if !h.completeJob(ctx, client, job, output, log) {
		return
	}
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(startTime).Seconds())
	h.obs.RecordJob(ctx, TaskType, "completed", time.Since(startTime))
}

// Execute implements the standard worker interface for direct execution
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.service.Execute(ctx, input)
}

func (h *Handler) parseInput(job entities.Job) (*Input, error) {
	variables, err := job.GetVariablesAsMap()
	if err != nil {
		return nil, errors.NewInputParsingError(err)
	}

	result := validation.ValidateInput(variables, GetInputSchema())
	if !result.Valid {
		return nil, errors.NewInputValidationError(result.GetErrorMessages())
	}

	var vars jobVariables
	if err := json.Unmarshal([]byte(job.GetVariables()), &vars); err != nil {
		return nil, errors.NewInputParsingError(err)
	}

	input := &Input{
		ContinueOnFail: h.config.ContinueOnFail,
		Credential:     vars.Credential,
	}
	if vars.ContinueOnFail != nil {
		input.ContinueOnFail = *vars.ContinueOnFail
	}

	if _, batch := variables["items"]; batch {
		input.Items = vars.Items
	} else {
		input.Items = []SearchParams{vars.SearchParams}
	}
	return input, nil
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output, log logger.Logger) bool {
	variables := map[string]interface{}{
		"employeeSearch": output,
	}

	request, err := client.NewCompleteJobCommand().JobKey(job.GetKey()).VariablesFromMap(variables)
	if err != nil {
		log.Error("Failed to create complete job command", map[string]interface{}{
			"error": err.Error(),
		})
		return false
	}

	if _, err := request.Send(ctx); err != nil {
		log.Error("Failed to complete job", map[string]interface{}{
			"error": err.Error(),
		})
		return false
	}

	log.Info("Employee search completed", map[string]interface{}{
		"count": output.Count,
	})
	return true
}

func (h *Handler) fail(ctx context.Context, client worker.JobClient, job entities.Job, err error, startTime time.Time) {
	span := trace.SpanFromContext(ctx)
	span.RecordError(err)

	bpmnErr := h.errorHandler.HandleJobError(ctx, client, job, err)
	span.SetAttributes(attribute.String("error.code", bpmnErr.Code))

	metrics.WorkerJobsFailed.WithLabelValues(TaskType, bpmnErr.Code).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(startTime).Seconds())
	h.obs.RecordJob(ctx, TaskType, "failed", time.Since(startTime))
}

// WorkerOptions describes the job subscription for camunda.StartWorker.
func (h *Handler) WorkerOptions() camunda.WorkerOptions {
	return camunda.WorkerOptions{
		TaskType:      TaskType,
		MaxJobsActive: h.config.MaxJobsActive,
		Timeout:       h.config.Timeout,
	}
}

// HealthCheck verifies the broker connection, when there is one, and the API credential.
func (h *Handler) HealthCheck(ctx context.Context) error {
	if h.camunda != nil {
		if err := h.camunda.HealthCheck(ctx); err != nil {
			return fmt.Errorf("camunda health check failed: %w", err)
		}
	}

	if err := h.service.TestCredentials(ctx); err != nil {
		return fmt.Errorf("quickenrich credential check failed: %w", err)
	}

	h.logger.Debug("Health check passed", nil)
	return nil
}

func (h *Handler) GetTaskType() string {
	return TaskType
}

func (h *Handler) IsEnabled() bool {
	return h.config.Enabled
}

func (h *Handler) GetConfig() *Config {
	return h.config
}
