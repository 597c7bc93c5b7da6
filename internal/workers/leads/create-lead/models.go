// internal/workers/leads/create-lead/models.go
package createlead

import "cotiza-workers/internal/models"

type Input struct {
	CustomerName string                 `json:"customerName"`
	Email        string                 `json:"email"`
	Phone        string                 `json:"phone,omitempty"`
	RUT          string                 `json:"rut,omitempty"`
	ProductKind  models.ProductKind     `json:"productKind"`
	ProductID    string                 `json:"productId"`
	Score        int                    `json:"score"`
	Answers      map[string]interface{} `json:"answers,omitempty"`
}

type Output struct {
	LeadID     string      `json:"leadId"`
	LeadStatus string      `json:"leadStatus"`
	Lead       models.Lead `json:"lead"`
	CreatedAt  string      `json:"createdAt"`
}

const (
	StatusNew = "new"
)
