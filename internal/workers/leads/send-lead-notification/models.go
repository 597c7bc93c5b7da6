// internal/workers/leads/send-lead-notification/models.go
package sendleadnotification

import "cotiza-workers/internal/models"

type Input struct {
	Lead        models.Lead `json:"lead"`
	ProductName string      `json:"productName,omitempty"`
}

type Output struct {
	NotificationStatus string                    `json:"notificationStatus"`
	Notifications      []models.LeadNotification `json:"notifications"`
	SentAt             string                    `json:"sentAt"`
}

const (
	ChannelEmail      = "email"
	ChannelSalesEmail = "sales-email"
	ChannelSMS        = "sms"
)

const (
	StatusSent     = "sent"
	StatusFailed   = "failed"
	StatusDisabled = "disabled"
)
