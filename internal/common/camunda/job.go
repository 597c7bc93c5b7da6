package camunda

import (
	"context"
	"encoding/json"
	"time"

	"cotiza-workers/internal/common/errors"
	"cotiza-workers/internal/common/logger"
	"cotiza-workers/internal/common/metrics"
	"cotiza-workers/internal/common/observability"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	statusCompleted = "completed"
	statusFailed    = "failed"
)

// completeRetry bounds the retries of the complete command. Short delays keep
// the job well inside its activation timeout.
var completeRetry = &RetryConfig{MaxRetries: 2, BaseDelay: 200 * time.Millisecond, MaxDelay: time.Second}

// Reporter finishes jobs for one task type and records their outcome in the
// prometheus and otel metrics.
type Reporter struct {
	taskType string
	errors   *errors.ErrorHandler
	obs      *observability.Observability
	logger   logger.Logger
}

// NewReporter builds a Reporter. obs may be nil.
func NewReporter(taskType string, obs *observability.Observability, log logger.Logger) *Reporter {
	return &Reporter{
		taskType: taskType,
		errors:   errors.NewErrorHandler(log),
		obs:      obs,
		logger:   log,
	}
}

// DecodeVariables unmarshals the job variables into v, mapping failures to a
// PARSE_ERROR.
func DecodeVariables(job entities.Job, v interface{}) error {
	if err := json.Unmarshal([]byte(job.Variables), v); err != nil {
		return errors.NewParseError(err)
	}
	return nil
}

// Complete sends the complete command with output as the job variables.
func (r *Reporter) Complete(ctx context.Context, client worker.JobClient, job entities.Job, started time.Time, output interface{}) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		r.logger.Error("failed to create complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err,
		})
		r.Fail(ctx, client, job, started, errors.NewParseError(err))
		return
	}
	err = sendWithRetry(ctx, completeRetry, "complete job", func(ctx context.Context) error {
		_, err := cmd.Send(ctx)
		return err
	})
	if err != nil {
		r.logger.Error("failed to send complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
	}
	r.observe(ctx, started, "")
}

// Fail reports err through the error handler, which either fails the job
// with retries or throws a BPMN error.
func (r *Reporter) Fail(ctx context.Context, client worker.JobClient, job entities.Job, started time.Time, err error) errors.Decision {
	stdErr := errors.AsStandardError(err)
	decision := r.errors.HandleJobError(ctx, client, job, stdErr)
	r.observe(ctx, started, string(stdErr.Code))
	return decision
}

func (r *Reporter) observe(ctx context.Context, started time.Time, errorCode string) {
	metrics.ObserveJob(r.taskType, started, errorCode)
	status := statusCompleted
	if errorCode != "" {
		status = statusFailed
	}
	r.obs.RecordJobProcessed(ctx, r.taskType, status)
	r.obs.RecordJobDuration(ctx, r.taskType, time.Since(started), status)
}
