package sendleadnotification

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"text/template"
	"time"

	"cotiza-workers/internal/common/camunda"
	apperrors "cotiza-workers/internal/common/errors"
	"cotiza-workers/internal/common/logger"
	"cotiza-workers/internal/common/observability"
	"cotiza-workers/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

const (
	TaskType = "send-lead-notification"
)

var (
	ErrInvalidLead            = errors.New("INVALID_ANSWERS")
	ErrNotificationSendFailed = errors.New("NOTIFICATION_SEND_FAILED")
)

type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type Handler struct {
	config    *Config
	db        *sql.DB
	sesClient SESService
	snsClient SNSService
	reporter  *camunda.Reporter
	logger    logger.Logger
}

// NewHandler builds the handler. db may be nil, in which case notification
// rows are not recorded.
func NewHandler(config *Config, db *sql.DB, sesClient SESService, snsClient SNSService, obs *observability.Observability, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:    config,
		db:        db,
		sesClient: sesClient,
		snsClient: snsClient,
		reporter:  camunda.NewReporter(TaskType, obs, log),
		logger:    log,
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

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil || input.Lead.ID == "" || input.Lead.Email == "" {
		return nil, fmt.Errorf("%w: lead id and email are required", ErrInvalidLead)
	}
	lead := input.Lead
	data := templateData{Lead: lead, ProductName: input.ProductName}
	sentAt := time.Now().UTC().Format(time.RFC3339)

	var notifications []models.LeadNotification
	record := func(channel, status string) {
		notifications = append(notifications, models.LeadNotification{
			ID:        uuid.New().String(),
			LeadID:    lead.ID,
			Channel:   channel,
			Status:    status,
			SentAt:    sentAt,
			CreatedAt: sentAt,
		})
	}

	var sendErr error
	if !h.config.EmailEnabled {
		record(ChannelEmail, StatusDisabled)
	} else {
		if err := h.sendEmail(ctx, []string{lead.Email}, customerSubject, customerBody, data); err != nil {
			h.logger.Error("customer email send failed", map[string]interface{}{
				"error":  err.Error(),
				"leadId": lead.ID,
			})
			record(ChannelEmail, StatusFailed)
			sendErr = fmt.Errorf("%w: %s: %v", ErrNotificationSendFailed, ChannelEmail, err)
		} else {
			record(ChannelEmail, StatusSent)
		}

		if sendErr == nil && len(h.config.SalesTeam) > 0 {
			if err := h.sendEmail(ctx, h.config.SalesTeam, salesSubject, salesBody, data); err != nil {
				h.logger.Error("sales team email send failed", map[string]interface{}{
					"error":  err.Error(),
					"leadId": lead.ID,
				})
				record(ChannelSalesEmail, StatusFailed)
				sendErr = fmt.Errorf("%w: %s: %v", ErrNotificationSendFailed, ChannelSalesEmail, err)
			} else {
				record(ChannelSalesEmail, StatusSent)
			}
		}
	}

	// SMS goes to high-scoring leads only and never fails the job.
	if sendErr == nil && h.config.SMSEnabled && lead.Phone != "" && lead.Score >= h.config.SMSMinScore {
		if err := h.sendSMS(ctx, lead.Phone, data); err != nil {
			h.logger.Warn("SMS send failed", map[string]interface{}{
				"error":  err.Error(),
				"leadId": lead.ID,
			})
			record(ChannelSMS, StatusFailed)
		} else {
			record(ChannelSMS, StatusSent)
		}
	}

	h.persist(ctx, notifications)

	if sendErr != nil {
		return nil, sendErr
	}

	status := StatusDisabled
	for _, n := range notifications {
		if n.Status == StatusSent {
			status = StatusSent
			break
		}
	}

	h.logger.Info("lead notifications sent", map[string]interface{}{
		"leadId":        lead.ID,
		"status":        status,
		"notifications": len(notifications),
	})

	return &Output{
		NotificationStatus: status,
		Notifications:      notifications,
		SentAt:             sentAt,
	}, nil
}

func (h *Handler) sendEmail(ctx context.Context, to []string, subject, body *template.Template, data templateData) error {
	msg, err := render(subject, body, data)
	if err != nil {
		return err
	}
	_, err = h.sesClient.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: to,
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(msg.Subject), Charset: aws.String("UTF-8")},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(msg.Body), Charset: aws.String("UTF-8")},
			},
		},
		Source: aws.String(h.config.FromEmail),
	})
	return err
}

func (h *Handler) sendSMS(ctx context.Context, to string, data templateData) error {
	msg, err := render(nil, smsBody, data)
	if err != nil {
		return err
	}
	_, err = h.snsClient.Publish(ctx, &sns.PublishInput{
		PhoneNumber: aws.String(to),
		Message:     aws.String(msg.Body),
	})
	return err
}

// persist records every attempt in lead_notifications. Failures are logged.
func (h *Handler) persist(ctx context.Context, notifications []models.LeadNotification) {
	if h.db == nil {
		return
	}
	for _, n := range notifications {
		_, err := h.db.ExecContext(ctx, `
			INSERT INTO lead_notifications (id, lead_id, channel, status, sent_at, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			n.ID, n.LeadID, n.Channel, n.Status, n.SentAt, n.CreatedAt,
		)
		if err != nil {
			h.logger.Warn("notification record insert failed", map[string]interface{}{
				"error":   err.Error(),
				"leadId":  n.LeadID,
				"channel": n.Channel,
			})
		}
	}
}

func toStandardError(err error) error {
	switch {
	case errors.Is(err, ErrInvalidLead):
		return apperrors.NewInvalidAnswersError(err.Error())
	case errors.Is(err, ErrNotificationSendFailed):
		return apperrors.NewNotificationSendFailedError(ChannelEmail, err)
	default:
		return err
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
