// internal/common/errors/handler.go
package errors

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/url"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

// Classified is implemented by domain errors that know their standardized form.
type Classified interface {
	StandardError() *StandardError
}

// ErrorHandler handles job errors with standardized error handling
type ErrorHandler struct {
	logger Logger
}

type Logger interface {
	Error(msg string, fields map[string]interface{})
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// HandleJobError fails the job with retries left for retryable codes and throws a BPMN error otherwise.
func (h *ErrorHandler) HandleJobError(ctx context.Context, client worker.JobClient, job entities.Job, err error) *BPMNError {
	stdErr := Normalize(err)
	bpmnErr := ConvertToBPMNError(stdErr)

	h.logError(job, stdErr, bpmnErr)

	if retries := RemainingRetries(job.GetRetries(), bpmnErr.Retries); retries > 0 {
		h.failJobWithRetries(ctx, client, job, bpmnErr, retries)
	} else {
		h.throwBPMNError(ctx, client, job, bpmnErr)
	}
	return bpmnErr
}

// Normalize maps any error onto a StandardError.
func Normalize(err error) *StandardError {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}

	var classified Classified
	if stderrors.As(err, &classified) {
		return classified.StandardError()
	}

	var urlErr *url.Error
	if stderrors.As(err, &urlErr) {
		return NewTransportError(err)
	}

	return NewInternalError(err)
}

// RemainingRetries returns how many retries to hand back to the engine: the job's own
// counter minus the current attempt, capped by the code's budget.
func RemainingRetries(jobRetries int32, budget int) int32 {
	if budget <= 0 || jobRetries <= 1 {
		return 0
	}
	remaining := jobRetries - 1
	if int32(budget) < remaining {
		remaining = int32(budget)
	}
	return remaining
}

func (h *ErrorHandler) failJobWithRetries(ctx context.Context, client worker.JobClient, job entities.Job, bpmnErr *BPMNError, retries int32) {
	cmd := client.NewFailJobCommand().
		JobKey(job.GetKey()).
		Retries(retries).
		ErrorMessage(fmt.Sprintf("[%s] %s", bpmnErr.Code, bpmnErr.Message))

	withVars, err := cmd.VariablesFromMap(bpmnErr.ToErrorVariables())
	if err != nil {
		h.logger.Error("failed to set error variables, failing job without them", map[string]interface{}{
			"jobKey": job.GetKey(),
			"error":  err.Error(),
		})
		if _, sendErr := cmd.Send(ctx); sendErr != nil {
			h.logSendError(job, sendErr)
		}
		return
	}

	if _, sendErr := withVars.Send(ctx); sendErr != nil {
		h.logSendError(job, sendErr)
	}
}

func (h *ErrorHandler) throwBPMNError(ctx context.Context, client worker.JobClient, job entities.Job, bpmnErr *BPMNError) {
	cmd := client.NewThrowErrorCommand().
		JobKey(job.GetKey()).
		ErrorCode(bpmnErr.Code).
		ErrorMessage(bpmnErr.Message)

	varsJSON, err := json.Marshal(bpmnErr.ToErrorVariables())
	if err != nil {
		h.logger.Error("failed to encode error variables", map[string]interface{}{
			"jobKey": job.GetKey(),
			"error":  err.Error(),
		})
		if _, sendErr := cmd.Send(ctx); sendErr != nil {
			h.logSendError(job, sendErr)
		}
		return
	}

	withVars, err := cmd.VariablesFromString(string(varsJSON))
	if err != nil {
		h.logger.Error("failed to set error variables, throwing without them", map[string]interface{}{
			"jobKey": job.GetKey(),
			"error":  err.Error(),
		})
		if _, sendErr := cmd.Send(ctx); sendErr != nil {
			h.logSendError(job, sendErr)
		}
		return
	}

	if _, sendErr := withVars.Send(ctx); sendErr != nil {
		h.logSendError(job, sendErr)
	}
}

func (h *ErrorHandler) logSendError(job entities.Job, err error) {
	h.logger.Error("failed to report job error to Camunda", map[string]interface{}{
		"jobKey": job.GetKey(),
		"error":  err.Error(),
	})
}

func (h *ErrorHandler) logError(job entities.Job, stdErr *StandardError, bpmnErr *BPMNError) {
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":           job.GetKey(),
		"jobType":          job.GetType(),
		"errorCode":        string(stdErr.Code),
		"message":          bpmnErr.Message,
		"details":          stdErr.Details,
		"retryable":        stdErr.Retryable,
		"retries":          bpmnErr.Retries,
		"errorCategory":    GetErrorCategory(stdErr.Code),
		"workflowInstance": job.GetProcessInstanceKey(),
	})
}
