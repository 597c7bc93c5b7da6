package validateanswers

import (
	"context"
	"testing"

	apperrors "cotiza-workers/internal/common/errors"
	"cotiza-workers/internal/common/logger"
	"cotiza-workers/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testLogger struct {
	t *testing.T
}

func (tl *testLogger) Debug(msg string, fields map[string]interface{}) {
	tl.t.Logf("DEBUG: %s %v", msg, fields)
}

func (tl *testLogger) Info(msg string, fields map[string]interface{}) {
	tl.t.Logf("INFO: %s %v", msg, fields)
}

func (tl *testLogger) Warn(msg string, fields map[string]interface{}) {
	tl.t.Logf("WARN: %s %v", msg, fields)
}

func (tl *testLogger) Error(msg string, fields map[string]interface{}) {
	tl.t.Logf("ERROR: %s %v", msg, fields)
}

func (tl *testLogger) WithFields(fields map[string]interface{}) logger.Logger {
	return tl
}

func (tl *testLogger) WithError(err error) logger.Logger {
	return tl
}

func (tl *testLogger) With(fields map[string]interface{}) logger.Logger {
	return tl
}

func newHandler(t *testing.T) *Handler {
	return NewHandler(LoadConfig(), nil, &testLogger{t: t})
}

func TestHandler_Execute_VehicleAnswers(t *testing.T) {
	h := newHandler(t)

	output, err := h.Execute(context.Background(), &Input{
		Wizard: WizardVehicle,
		Answers: map[string]interface{}{
			"monthlyBudget": []interface{}{300000.0, 500000.0},
			"downPayment":   []interface{}{0.0, 3000000.0},
			"bodyTypes":     []interface{}{"sedan", "suv"},
			"fuelTypes":     []interface{}{"hybrid"},
			"transmission":  "automatic",
			"usage":         []interface{}{"city", "family"},
			"condition":     "new",
		},
	})
	require.NoError(t, err)

	assert.True(t, output.AnswersValid)
	assert.Empty(t, output.ValidationErrors)
	assert.NotNil(t, output.ValidationErrors)
	require.NotNil(t, output.VehicleAnswers)
	assert.Nil(t, output.InsuranceAnswers)

	answers := output.VehicleAnswers
	assert.Equal(t, models.NewRange(300000, 500000), *answers.MonthlyBudget)
	assert.Equal(t, 3000000.0, answers.DownPayment.Max())
	assert.Equal(t, []models.BodyType{models.BodyTypeSedan, models.BodyTypeSUV}, answers.BodyTypes)
	assert.Equal(t, models.TransmissionAutomatic, answers.Transmission)
	assert.Equal(t, models.ConditionNew, answers.Condition)
}

func TestHandler_Execute_InsuranceAnswers(t *testing.T) {
	h := newHandler(t)

	output, err := h.Execute(context.Background(), &Input{
		Wizard: WizardInsurance,
		Answers: map[string]interface{}{
			"vehicleId":        "veh-1",
			"monthlyBudget":    []interface{}{30000.0, 50000.0},
			"deductibleRange":  []interface{}{3.0, 10.0},
			"minimumCoverages": []interface{}{"rc-1000", "theft"},
			"preferences":      []interface{}{"replacement-car"},
		},
	})
	require.NoError(t, err)

	assert.True(t, output.AnswersValid)
	require.NotNil(t, output.InsuranceAnswers)
	assert.Equal(t, "veh-1", output.InsuranceAnswers.VehicleID)
	assert.Equal(t, models.NewRange(3, 10), *output.InsuranceAnswers.DeductibleRange)
	assert.Equal(t, []string{models.CoverageRC1000, models.CoverageTheft}, output.InsuranceAnswers.MinimumCoverages)
}

func TestHandler_Execute_InvalidAnswers(t *testing.T) {
	tests := []struct {
		name    string
		wizard  string
		answers map[string]interface{}
		field   string
	}{
		{
			name:    "missing budget",
			wizard:  WizardVehicle,
			answers: map[string]interface{}{"bodyTypes": []interface{}{"sedan"}},
		},
		{
			name:    "nil answers",
			wizard:  WizardInsurance,
			answers: nil,
		},
		{
			name:    "inverted budget",
			wizard:  WizardVehicle,
			answers: map[string]interface{}{"monthlyBudget": []interface{}{500000.0, 300000.0}},
			field:   "monthlyBudget",
		},
		{
			name:    "unknown coverage",
			wizard:  WizardInsurance,
			answers: map[string]interface{}{"monthlyBudget": []interface{}{1.0, 2.0}, "minimumCoverages": []interface{}{"meteor"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, err := newHandler(t).Execute(context.Background(), &Input{Wizard: tt.wizard, Answers: tt.answers})
			require.NoError(t, err)

			assert.False(t, output.AnswersValid)
			assert.NotEmpty(t, output.ValidationErrors)
			assert.Nil(t, output.VehicleAnswers)
			assert.Nil(t, output.InsuranceAnswers)
			if tt.field != "" {
				var fields []string
				for _, e := range output.ValidationErrors {
					fields = append(fields, e.Field)
				}
				assert.Contains(t, fields, tt.field)
			}
		})
	}
}

func TestHandler_Execute_UnknownWizard(t *testing.T) {
	_, err := newHandler(t).Execute(context.Background(), &Input{Wizard: "boat"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownWizard)

	stdErr := apperrors.AsStandardError(toStandardError(err))
	assert.Equal(t, apperrors.ErrCodeInvalidAnswers, stdErr.Code)
	assert.False(t, stdErr.Retryable)
}

func TestHandler_Execute_NilInput(t *testing.T) {
	_, err := newHandler(t).Execute(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNilInput)
}
