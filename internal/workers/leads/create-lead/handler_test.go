package createlead

import (
	"context"
	"database/sql"
	"testing"

	apperrors "cotiza-workers/internal/common/errors"
	"cotiza-workers/internal/common/logger"
	"cotiza-workers/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
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

func createTestInput() *Input {
	return &Input{
		CustomerName: "Ana Pérez",
		Email:        "Ana@Example.cl",
		Phone:        "+56 9 1234 5678",
		RUT:          "12.345.678-5",
		ProductKind:  models.ProductKindVehicle,
		ProductID:    "veh-1",
		Score:        88,
		Answers:      map[string]interface{}{"monthlyBudget": []interface{}{300000.0, 500000.0}},
	}
}

func newHandler(t *testing.T) (*Handler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewHandler(LoadConfig(), db, nil, &testLogger{t: t}), mock
}

func TestHandler_Execute_CreatesLead(t *testing.T) {
	h, mock := newHandler(t)

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("ana@example.cl", "veh-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec(`INSERT INTO leads`).
		WithArgs(sqlmock.AnyArg(), "Ana Pérez", "ana@example.cl", "+56912345678", "123456785",
			"vehicle", "veh-1", 88, sqlmock.AnyArg(), "new", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	output, err := h.Execute(context.Background(), createTestInput())
	require.NoError(t, err)

	assert.NotEmpty(t, output.LeadID)
	assert.Equal(t, output.LeadID, output.Lead.ID)
	assert.Equal(t, StatusNew, output.LeadStatus)
	assert.Equal(t, "ana@example.cl", output.Lead.Email)
	assert.Equal(t, "123456785", output.Lead.RUT)
	assert.NotEmpty(t, output.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_OptionalFieldsStoredAsNull(t *testing.T) {
	h, mock := newHandler(t)

	input := createTestInput()
	input.Phone = ""
	input.RUT = ""
	input.Answers = nil

	mock.ExpectQuery(`SELECT EXISTS`).WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec(`INSERT INTO leads`).
		WithArgs(sqlmock.AnyArg(), "Ana Pérez", "ana@example.cl", nil, nil,
			"vehicle", "veh-1", 88, []byte("{}"), "new", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	_, err := h.Execute(context.Background(), input)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_Duplicate(t *testing.T) {
	h, mock := newHandler(t)

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("ana@example.cl", "veh-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	input := createTestInput()
	_, err := h.Execute(context.Background(), input)
	require.ErrorIs(t, err, ErrDuplicateLead)

	stdErr := apperrors.AsStandardError(toStandardError(input, err))
	assert.Equal(t, apperrors.ErrCodeDuplicateLead, stdErr.Code)
	assert.False(t, stdErr.Retryable)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_DatabaseErrors(t *testing.T) {
	t.Run("duplicate check", func(t *testing.T) {
		h, mock := newHandler(t)
		mock.ExpectQuery(`SELECT EXISTS`).WillReturnError(sql.ErrConnDone)

		_, err := h.Execute(context.Background(), createTestInput())
		assert.ErrorIs(t, err, ErrLeadInsertFailed)
	})

	t.Run("insert", func(t *testing.T) {
		h, mock := newHandler(t)
		mock.ExpectQuery(`SELECT EXISTS`).WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		mock.ExpectExec(`INSERT INTO leads`).WillReturnError(sql.ErrConnDone)

		input := createTestInput()
		_, err := h.Execute(context.Background(), input)
		require.ErrorIs(t, err, ErrLeadInsertFailed)

		stdErr := apperrors.AsStandardError(toStandardError(input, err))
		assert.Equal(t, apperrors.ErrCodeLeadInsertFailed, stdErr.Code)
		assert.True(t, stdErr.Retryable)
	})
}

func TestHandler_Execute_InvalidLead(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Input)
	}{
		{"bad email", func(in *Input) { in.Email = "ana@" }},
		{"unknown product kind", func(in *Input) { in.ProductKind = "boat" }},
		{"missing product", func(in *Input) { in.ProductID = "" }},
		{"short name", func(in *Input) { in.CustomerName = "A" }},
		{"score out of range", func(in *Input) { in.Score = 120 }},
		{"rut check digit", func(in *Input) { in.RUT = "12.345.678-9" }},
		{"phone too short", func(in *Input) { in.Phone = "123" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, mock := newHandler(t)
			input := createTestInput()
			tt.mutate(input)

			_, err := h.Execute(context.Background(), input)
			require.ErrorIs(t, err, ErrInvalidLead)
			assert.Equal(t, apperrors.ErrCodeInvalidAnswers, apperrors.AsStandardError(toStandardError(input, err)).Code)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
