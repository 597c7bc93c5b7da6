package createlead

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"cotiza-workers/internal/common/camunda"
	apperrors "cotiza-workers/internal/common/errors"
	"cotiza-workers/internal/common/logger"
	"cotiza-workers/internal/common/observability"
	"cotiza-workers/internal/common/validation"
	"cotiza-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

const (
	TaskType = "create-lead"
)

var (
	ErrInvalidLead      = errors.New("INVALID_ANSWERS")
	ErrLeadInsertFailed = errors.New("LEAD_INSERT_FAILED")
	ErrDuplicateLead    = errors.New("DUPLICATE_LEAD")
)

type Handler struct {
	config   *Config
	db       *sql.DB
	reporter *camunda.Reporter
	logger   logger.Logger
}

func NewHandler(config *Config, db *sql.DB, obs *observability.Observability, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:   config,
		db:       db,
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
		h.reporter.Fail(context.Background(), client, job, started, toStandardError(&input, err))
		return
	}

	h.reporter.Complete(context.Background(), client, job, started, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, fmt.Errorf("%w: input cannot be nil", ErrInvalidLead)
	}
	if err := validateLead(input); err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))

	var exists bool
	err := h.db.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM leads
			WHERE email = $1 AND product_id = $2 AND status <> 'closed'
		)`, email, input.ProductID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("%w: duplicate check failed: %v", ErrLeadInsertFailed, err)
	}
	if exists {
		return nil, fmt.Errorf("%w: open lead exists for %s and product %s",
			ErrDuplicateLead, email, input.ProductID)
	}

	lead := models.Lead{
		ID:           uuid.New().String(),
		CustomerName: strings.TrimSpace(input.CustomerName),
		Email:        email,
		Phone:        strings.ReplaceAll(input.Phone, " ", ""),
		ProductKind:  input.ProductKind,
		ProductID:    input.ProductID,
		Score:        input.Score,
		Answers:      input.Answers,
		Status:       StatusNew,
		CreatedAt:    time.Now().UTC().Format(time.RFC3339),
	}
	if input.RUT != "" {
		lead.RUT = validation.NormalizeRUT(input.RUT)
	}

	answersJSON := []byte("{}")
	if lead.Answers != nil {
		answersJSON, err = json.Marshal(lead.Answers)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to marshal answers: %v", ErrLeadInsertFailed, err)
		}
	}

	_, err = h.db.ExecContext(ctx, `
		INSERT INTO leads (
			id, customer_name, email, phone, rut, product_kind,
			product_id, score, answers, status, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		lead.ID,
		lead.CustomerName,
		lead.Email,
		nullable(lead.Phone),
		nullable(lead.RUT),
		string(lead.ProductKind),
		lead.ProductID,
		lead.Score,
		answersJSON,
		lead.Status,
		lead.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: insert failed: %v", ErrLeadInsertFailed, err)
	}

	h.logger.Info("lead created", map[string]interface{}{
		"leadId":      lead.ID,
		"productKind": string(lead.ProductKind),
		"productId":   lead.ProductID,
		"score":       lead.Score,
	})

	return &Output{
		LeadID:     lead.ID,
		LeadStatus: lead.Status,
		Lead:       lead,
		CreatedAt:  lead.CreatedAt,
	}, nil
}

// validateLead checks the lead against the embedded schema and the RUT
// check digit.
func validateLead(input *Input) error {
	raw, err := json.Marshal(input)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidLead, err)
	}
	var doc map[string]interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidLead, err)
	}

	result, err := validation.Validate(validation.SchemaLead, doc)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidLead, err)
	}
	if !result.Valid {
		return fmt.Errorf("%w: %s", ErrInvalidLead, strings.Join(result.GetErrorMessages(), "; "))
	}
	if input.RUT != "" && !validation.ValidateRUT(input.RUT) {
		return fmt.Errorf("%w: rut: check digit mismatch", ErrInvalidLead)
	}
	return nil
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func toStandardError(input *Input, err error) error {
	switch {
	case errors.Is(err, ErrInvalidLead):
		return apperrors.NewInvalidAnswersError(err.Error())
	case errors.Is(err, ErrDuplicateLead):
		return apperrors.NewDuplicateLeadError(strings.ToLower(input.Email), input.ProductID)
	case errors.Is(err, ErrLeadInsertFailed):
		return apperrors.NewLeadInsertFailedError(err)
	default:
		return err
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
