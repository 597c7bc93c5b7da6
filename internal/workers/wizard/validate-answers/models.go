// internal/workers/wizard/validate-answers/models.go
package validateanswers

import (
	"cotiza-workers/internal/common/validation"
	"cotiza-workers/internal/models"
)

// Wizards the storefront runs.
const (
	WizardVehicle   = "vehicle"
	WizardInsurance = "insurance"
)

type Input struct {
	Wizard  string                 `json:"wizard"`
	Answers map[string]interface{} `json:"answers"`
}

type Output struct {
	AnswersValid     bool                         `json:"answersValid"`
	ValidationErrors []validation.ValidationError `json:"validationErrors"`
	VehicleAnswers   *models.VehicleAnswers       `json:"vehicleAnswers,omitempty"`
	InsuranceAnswers *models.InsuranceAnswers     `json:"insuranceAnswers,omitempty"`
}
