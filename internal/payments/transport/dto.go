// Package transport defines the request and response shapes for the
// payments HTTP API.
package transport

import (
	"time"

	"estate_sales_backend/internal/payments/service"

	"github.com/google/uuid"
)

type AddPaymentRequest struct {
	SaleID uuid.UUID `json:"saleId" validate:"required"`
	Amount int64     `json:"amount" validate:"required,gt=0"`
	Type   string    `json:"type" validate:"omitempty,oneof=INFRASTRUCTURE FACILITY WATER ELECTRICITY SUPERVISION AUTHORITY OTHER GENERAL"`
	Method string    `json:"method" validate:"omitempty,oneof=FULLPAYMENT INSTALLMENT TRANSFER CASH"`
}

type PaymentResponse struct {
	ID             uuid.UUID  `json:"id"`
	SaleID         uuid.UUID  `json:"saleId"`
	ClientID       uuid.UUID  `json:"clientId"`
	Amount         int64      `json:"amount"`
	Type           string     `json:"type"`
	Method         string     `json:"method,omitempty"`
	Status         string     `json:"status"`
	TransactionRef string     `json:"transactionRef"`
	HouseID        *uuid.UUID `json:"houseId,omitempty"`
	PlotID         *uuid.UUID `json:"plotId,omitempty"`
	RecordedBy     *uuid.UUID `json:"recordedBy,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
}

type AllocationResponse struct {
	Payment      PaymentResponse `json:"payment"`
	SaleCode     string          `json:"saleCode"`
	PaidAmount   int64           `json:"paidAmount"`
	TotalPayable int64           `json:"totalPayable"`
	Settled      bool            `json:"settled"`
}

// FromPayment maps a payment onto the response shape.
func FromPayment(p *service.Payment) PaymentResponse {
	return PaymentResponse{
		ID:             p.ID,
		SaleID:         p.SaleID,
		ClientID:       p.ClientID,
		Amount:         p.Amount,
		Type:           string(p.Type),
		Method:         string(p.Method),
		Status:         p.Status,
		TransactionRef: p.TransactionRef,
		HouseID:        p.HouseID,
		PlotID:         p.PlotID,
		RecordedBy:     p.RecordedBy,
		CreatedAt:      p.CreatedAt,
	}
}

// FromAllocation maps a committed allocation onto the response shape.
func FromAllocation(r *service.AllocationResult) AllocationResponse {
	return AllocationResponse{
		Payment:      FromPayment(&r.Payment),
		SaleCode:     r.SaleCode,
		PaidAmount:   r.PaidAmount,
		TotalPayable: r.TotalPayable,
		Settled:      r.Settled,
	}
}
