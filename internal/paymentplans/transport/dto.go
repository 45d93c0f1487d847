// Package transport defines the request and response shapes for the
// payment plans HTTP API.
package transport

import (
	"time"

	"estate_sales_backend/internal/paymentplans/domain"

	"github.com/google/uuid"
)

type CreatePlanRequest struct {
	SaleID       uuid.UUID `json:"saleId" validate:"required"`
	Amount       int64     `json:"amount" validate:"required,gt=0"`
	Frequency    string    `json:"frequency" validate:"required,oneof=WEEKLY MONTHLY QUARTERLY YEARLY CUSTOM"`
	IntervalDays int       `json:"intervalDays" validate:"gte=0"`
	FirstDueDate string    `json:"firstDueDate" validate:"omitempty,datetime=2006-01-02"`
}

type PlanResponse struct {
	ID            uuid.UUID             `json:"id"`
	SaleID        uuid.UUID             `json:"saleId"`
	ClientID      uuid.UUID             `json:"clientId"`
	Amount        int64                 `json:"amount"`
	Frequency     string                `json:"frequency"`
	IntervalDays  int                   `json:"intervalDays,omitempty"`
	StartDate     string                `json:"startDate"`
	NextDueDate   string                `json:"nextDueDate"`
	Status        string                `json:"status"`
	UpdateHistory []domain.HistoryEntry `json:"updateHistory"`
	CreatedBy     *uuid.UUID            `json:"createdBy,omitempty"`
	CreatedAt     time.Time             `json:"createdAt"`
	UpdatedAt     time.Time             `json:"updatedAt"`
}

// FromDomain maps a plan onto the response shape.
func FromDomain(p *domain.Plan) PlanResponse {
	return PlanResponse{
		ID:            p.ID,
		SaleID:        p.SaleID,
		ClientID:      p.ClientID,
		Amount:        p.Amount,
		Frequency:     string(p.Frequency),
		IntervalDays:  p.IntervalDays,
		StartDate:     p.StartDate.Format("2006-01-02"),
		NextDueDate:   p.NextDueDate.Format("2006-01-02"),
		Status:        string(p.Status),
		UpdateHistory: p.UpdateHistory,
		CreatedBy:     p.CreatedBy,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}
