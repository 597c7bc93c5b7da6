// internal/models/lead.go
package models

type ProductKind string

const (
	ProductKindVehicle   ProductKind = "vehicle"
	ProductKindInsurance ProductKind = "insurance"
)

type Lead struct {
	ID           string                 `json:"id"`
	CustomerName string                 `json:"customerName"`
	Email        string                 `json:"email"`
	Phone        string                 `json:"phone,omitempty"`
	RUT          string                 `json:"rut,omitempty"`
	ProductKind  ProductKind            `json:"productKind"`
	ProductID    string                 `json:"productId"`
	Score        int                    `json:"score"`
	Answers      map[string]interface{} `json:"answers,omitempty"`
	Status       string                 `json:"status"` // "new", "contacted", "closed"
	CreatedAt    string                 `json:"createdAt"`
}

type LeadNotification struct {
	ID        string `json:"id"`
	LeadID    string `json:"leadId"`
	Channel   string `json:"channel"` // "email", "sms"
	Status    string `json:"status"`  // "sent", "failed", "disabled"
	SentAt    string `json:"sentAt"`
	CreatedAt string `json:"createdAt"`
}
