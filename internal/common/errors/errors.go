// Package errors maps worker failures onto the error codes the quote processes
// catch with boundary events.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ErrorCode is the code a BPMN boundary event matches on.
type ErrorCode string

const (
	ErrCodeInvalidAnswers ErrorCode = "INVALID_ANSWERS"
	ErrCodeParseError     ErrorCode = "PARSE_ERROR"

	ErrCodeCatalogLoadFailed   ErrorCode = "CATALOG_LOAD_FAILED"
	ErrCodePremiumLookupFailed ErrorCode = "PREMIUM_LOOKUP_FAILED"

	ErrCodeSearchQueryFailed ErrorCode = "SEARCH_QUERY_FAILED"
	ErrCodeSearchTimeout     ErrorCode = "SEARCH_TIMEOUT"
	ErrCodeIndexNotFound     ErrorCode = "INDEX_NOT_FOUND"

	ErrCodeValuationFailed  ErrorCode = "VALUATION_FAILED"
	ErrCodeValuationTimeout ErrorCode = "VALUATION_TIMEOUT"
	ErrCodeVehicleNotFound  ErrorCode = "VEHICLE_NOT_FOUND"

	ErrCodeLeadInsertFailed       ErrorCode = "LEAD_INSERT_FAILED"
	ErrCodeDuplicateLead          ErrorCode = "DUPLICATE_LEAD"
	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"

	ErrCodeExternalService ErrorCode = "EXTERNAL_SERVICE_ERROR"
	ErrCodeInternal        ErrorCode = "INTERNAL_ERROR"
)

type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`

	cause error
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// WithMetadata returns e after setting key; it is meant for chaining on a
// freshly built error.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// BPMNError is what a failed job reports back to the engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables flattens the error into job variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

func newError(code ErrorCode, message, details string, retryable bool, cause error) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
}

func errDetails(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func NewInvalidAnswersError(details string) *StandardError {
	return newError(ErrCodeInvalidAnswers, "Wizard answers failed validation", details, false, nil)
}

func NewParseError(err error) *StandardError {
	return newError(ErrCodeParseError, "Failed to parse job variables", errDetails(err), false, err)
}

func NewCatalogLoadFailedError(catalog string, err error) *StandardError {
	return newError(ErrCodeCatalogLoadFailed, "Failed to load catalog",
		fmt.Sprintf("catalog: %s, error: %s", catalog, errDetails(err)), true, err)
}

func NewPremiumLookupFailedError(vehicleID string, err error) *StandardError {
	return newError(ErrCodePremiumLookupFailed, "Failed to load premium table",
		fmt.Sprintf("vehicleId: %s, error: %s", vehicleID, errDetails(err)), true, err)
}

func NewSearchQueryFailedError(err error) *StandardError {
	return newError(ErrCodeSearchQueryFailed, "Vehicle search failed", errDetails(err), true, err)
}

func NewSearchTimeoutError() *StandardError {
	return newError(ErrCodeSearchTimeout, "Vehicle search timed out", "", true, nil)
}

func NewIndexNotFoundError(index string) *StandardError {
	return newError(ErrCodeIndexNotFound, "Search index not found", fmt.Sprintf("index: %s", index), false, nil)
}

func NewValuationFailedError(err error) *StandardError {
	return newError(ErrCodeValuationFailed, "Vehicle valuation failed", errDetails(err), true, err)
}

func NewValuationTimeoutError() *StandardError {
	return newError(ErrCodeValuationTimeout, "Vehicle valuation timed out", "", true, nil)
}

func NewVehicleNotFoundError(vehicleID string) *StandardError {
	return newError(ErrCodeVehicleNotFound, "Vehicle not found", fmt.Sprintf("vehicleId: %s", vehicleID), false, nil)
}

func NewLeadInsertFailedError(err error) *StandardError {
	return newError(ErrCodeLeadInsertFailed, "Failed to store lead", errDetails(err), true, err)
}

func NewDuplicateLeadError(email, productID string) *StandardError {
	return newError(ErrCodeDuplicateLead, "Lead already registered",
		fmt.Sprintf("email: %s, productId: %s", email, productID), false, nil)
}

func NewNotificationSendFailedError(channel string, err error) *StandardError {
	return newError(ErrCodeNotificationSendFailed, "Failed to send notification",
		fmt.Sprintf("channel: %s, error: %s", channel, errDetails(err)), true, err)
}

func NewExternalServiceError(service string, err error) *StandardError {
	return newError(ErrCodeExternalService, fmt.Sprintf("External service '%s' error", service), errDetails(err), true, err)
}

// BPMNErrorMapping lists codes whose BPMN name differs from the internal one.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeSearchTimeout: ErrCodeSearchQueryFailed.String(),
}

func (c ErrorCode) String() string { return string(c) }

var knownCodes = map[ErrorCode]bool{
	ErrCodeInvalidAnswers:         true,
	ErrCodeParseError:             true,
	ErrCodeCatalogLoadFailed:      true,
	ErrCodePremiumLookupFailed:    true,
	ErrCodeSearchQueryFailed:      true,
	ErrCodeSearchTimeout:          true,
	ErrCodeIndexNotFound:          true,
	ErrCodeValuationFailed:        true,
	ErrCodeValuationTimeout:       true,
	ErrCodeVehicleNotFound:        true,
	ErrCodeLeadInsertFailed:       true,
	ErrCodeDuplicateLead:          true,
	ErrCodeNotificationSendFailed: true,
	ErrCodeExternalService:        true,
	ErrCodeInternal:               true,
}

// IsKnownErrorCode reports whether code is one of the codes above.
func IsKnownErrorCode(code ErrorCode) bool {
	return knownCodes[code]
}

func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeCatalogLoadFailed,
		ErrCodePremiumLookupFailed,
		ErrCodeSearchQueryFailed,
		ErrCodeValuationFailed,
		ErrCodeLeadInsertFailed,
		ErrCodeNotificationSendFailed,
		ErrCodeExternalService:
		return 3

	case ErrCodeSearchTimeout,
		ErrCodeValuationTimeout:
		return 2

	default:
		return 0
	}
}

func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, ok := BPMNErrorMapping[stdErr.Code]
	if !ok {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	vars := map[string]interface{}{
		"originalErrorCode": string(stdErr.Code),
		"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
	}
	for k, v := range stdErr.Metadata {
		vars[k] = v
	}

	return &BPMNError{
		Code:           bpmnCode,
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        retries,
		ErrorVariables: vars,
	}
}

func GetErrorCategory(code ErrorCode) string {
	c := string(code)
	switch {
	case strings.Contains(c, "ANSWERS") || strings.Contains(c, "PARSE"):
		return "VALIDATION"
	case strings.Contains(c, "CATALOG") || strings.Contains(c, "PREMIUM"):
		return "CATALOG"
	case strings.Contains(c, "SEARCH") || strings.Contains(c, "INDEX"):
		return "SEARCH"
	case strings.Contains(c, "VALUATION") || strings.Contains(c, "VEHICLE"):
		return "VALUATION"
	case strings.Contains(c, "LEAD"):
		return "LEAD"
	case strings.Contains(c, "NOTIFICATION"):
		return "NOTIFICATION"
	default:
		return "OTHER"
	}
}

// AsStandardError finds a StandardError in err's chain, or wraps err as a
// non-retryable internal error.
func AsStandardError(err error) *StandardError {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	return newError(ErrCodeInternal, "Unexpected error", errDetails(err), false, err)
}
