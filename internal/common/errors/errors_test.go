package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertToBPMNError(t *testing.T) {
	stdErr := NewCatalogLoadFailedError("vehicles", stderrors.New("connection refused")).
		WithMetadata("condition", "new")

	bpmnErr := ConvertToBPMNError(stdErr)
	assert.Equal(t, "CATALOG_LOAD_FAILED", bpmnErr.Code)
	assert.True(t, bpmnErr.Retryable)
	assert.Equal(t, 3, bpmnErr.Retries)
	assert.Contains(t, bpmnErr.Details, "connection refused")

	vars := bpmnErr.ToErrorVariables()
	assert.Equal(t, "CATALOG_LOAD_FAILED", vars["errorCode"])
	assert.Equal(t, "CATALOG_LOAD_FAILED", vars["originalErrorCode"])
	assert.Equal(t, "new", vars["condition"])
}

func TestConvertToBPMNError_Mapping(t *testing.T) {
	bpmnErr := ConvertToBPMNError(NewSearchTimeoutError())
	assert.Equal(t, "SEARCH_QUERY_FAILED", bpmnErr.Code)
	assert.Equal(t, "SEARCH_TIMEOUT", bpmnErr.ToErrorVariables()["originalErrorCode"])
	assert.Equal(t, 2, bpmnErr.Retries)
}

func TestConvertToBPMNError_BusinessErrorsNeverRetry(t *testing.T) {
	for _, stdErr := range []*StandardError{
		NewInvalidAnswersError("monthlyBudget: required"),
		NewDuplicateLeadError("ana@example.cl", "veh-1"),
		NewVehicleNotFoundError("veh-404"),
		NewIndexNotFoundError("vehicles"),
	} {
		bpmnErr := ConvertToBPMNError(stdErr)
		assert.False(t, bpmnErr.Retryable, stdErr.Code)
		assert.Equal(t, 0, bpmnErr.Retries, stdErr.Code)
	}
}

func TestDecide(t *testing.T) {
	tests := []struct {
		name             string
		err              *StandardError
		jobRetries       int32
		expectedDecision Decision
		expectedRetries  int32
	}{
		{"business error throws", NewInvalidAnswersError("x"), 3, DecisionThrow, 0},
		{"technical error fails with retries", NewLeadInsertFailedError(stderrors.New("db")), 3, DecisionFail, 2},
		{"retries capped by code", NewLeadInsertFailedError(stderrors.New("db")), 10, DecisionFail, 3},
		{"last retry throws", NewLeadInsertFailedError(stderrors.New("db")), 1, DecisionThrow, 0},
		{"no retries left throws", NewValuationTimeoutError(), 0, DecisionThrow, 0},
		{"internal error throws", AsStandardError(stderrors.New("panic")), 3, DecisionThrow, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision, retries := Decide(tt.err, tt.jobRetries)
			assert.Equal(t, tt.expectedDecision, decision)
			assert.Equal(t, tt.expectedRetries, retries)
		})
	}
}

func TestAsStandardError(t *testing.T) {
	cause := stderrors.New("timeout")
	wrapped := fmt.Errorf("rank vehicles: %w", NewValuationFailedError(cause))

	stdErr := AsStandardError(wrapped)
	require.NotNil(t, stdErr)
	assert.Equal(t, ErrCodeValuationFailed, stdErr.Code)
	assert.True(t, stderrors.Is(stdErr, cause))

	plain := AsStandardError(stderrors.New("unexpected"))
	assert.Equal(t, ErrCodeInternal, plain.Code)
	assert.False(t, plain.Retryable)
	assert.Equal(t, "unexpected", plain.Details)
}

func TestGetErrorCategory(t *testing.T) {
	tests := map[ErrorCode]string{
		ErrCodeInvalidAnswers:         "VALIDATION",
		ErrCodeParseError:             "VALIDATION",
		ErrCodeCatalogLoadFailed:      "CATALOG",
		ErrCodePremiumLookupFailed:    "CATALOG",
		ErrCodeSearchTimeout:          "SEARCH",
		ErrCodeIndexNotFound:          "SEARCH",
		ErrCodeValuationFailed:        "VALUATION",
		ErrCodeVehicleNotFound:        "VALUATION",
		ErrCodeDuplicateLead:          "LEAD",
		ErrCodeNotificationSendFailed: "NOTIFICATION",
		ErrCodeExternalService:        "OTHER",
	}
	for code, category := range tests {
		assert.Equal(t, category, GetErrorCategory(code), code)
	}
}

func TestIsKnownErrorCode(t *testing.T) {
	assert.True(t, IsKnownErrorCode(ErrCodeDuplicateLead))
	assert.True(t, IsKnownErrorCode("SEARCH_TIMEOUT"))
	assert.False(t, IsKnownErrorCode("DATABASE_INSERT_FAILED"))
	assert.False(t, IsKnownErrorCode(""))
}
