// internal/workers/wizard/validate-answers/handler.go
package validateanswers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"cotiza-workers/internal/common/camunda"
	apperrors "cotiza-workers/internal/common/errors"
	"cotiza-workers/internal/common/logger"
	"cotiza-workers/internal/common/observability"
	"cotiza-workers/internal/common/validation"
	"cotiza-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "validate-answers"
)

var (
	ErrNilInput      = errors.New("input cannot be nil")
	ErrUnknownWizard = errors.New("unknown wizard")
)

type Handler struct {
	config   *Config
	reporter *camunda.Reporter
	logger   logger.Logger
}

func NewHandler(config *Config, obs *observability.Observability, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:   config,
		reporter: camunda.NewReporter(TaskType, obs, log),
		logger:   log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	started := time.Now()
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := camunda.DecodeVariables(job, &input); err != nil {
		h.reporter.Fail(context.Background(), client, job, started, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.reporter.Fail(context.Background(), client, job, started, toStandardError(err))
		return
	}

	h.reporter.Complete(context.Background(), client, job, started, output)
}

func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, ErrNilInput
	}

	var schema string
	switch input.Wizard {
	case WizardVehicle:
		schema = validation.SchemaVehicleAnswers
	case WizardInsurance:
		schema = validation.SchemaInsuranceAnswers
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownWizard, input.Wizard)
	}

	answers := input.Answers
	if answers == nil {
		answers = map[string]interface{}{}
	}

	result, err := validation.Validate(schema, answers)
	if err != nil {
		return nil, err
	}

	output := &Output{
		AnswersValid:     result.Valid,
		ValidationErrors: result.Errors,
	}
	if output.ValidationErrors == nil {
		output.ValidationErrors = []validation.ValidationError{}
	}

	if !result.Valid {
		h.logger.Info("answers rejected", map[string]interface{}{
			"wizard":     input.Wizard,
			"errorCount": len(result.Errors),
			"errors":     result.GetErrorMessages(),
		})
		return output, nil
	}

	switch input.Wizard {
	case WizardVehicle:
		var typed models.VehicleAnswers
		if err := remarshal(answers, &typed); err != nil {
			return nil, err
		}
		output.VehicleAnswers = &typed
	case WizardInsurance:
		var typed models.InsuranceAnswers
		if err := remarshal(answers, &typed); err != nil {
			return nil, err
		}
		output.InsuranceAnswers = &typed
	}

	h.logger.Info("answers validated", map[string]interface{}{"wizard": input.Wizard})
	return output, nil
}

// remarshal converts the loosely typed job variables into their model.
func remarshal(in interface{}, out interface{}) error {
	data, err := json.Marshal(in)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

func toStandardError(err error) error {
	switch {
	case errors.Is(err, ErrUnknownWizard), errors.Is(err, ErrNilInput):
		return apperrors.NewInvalidAnswersError(err.Error())
	default:
		return apperrors.NewParseError(err)
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
