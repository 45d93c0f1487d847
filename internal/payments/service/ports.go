package service

import (
	"context"
	"time"

	"estate_sales_backend/internal/sales/domain"

	"github.com/google/uuid"
)

// Payment is one recorded movement of money against a sale.
type Payment struct {
	ID             uuid.UUID
	SaleID         uuid.UUID
	ClientID       uuid.UUID
	Amount         int64
	Type           domain.PaymentType
	Method         domain.PaymentMethod
	Status         string
	TransactionRef string
	HouseID        *uuid.UUID
	PlotID         *uuid.UUID
	RecordedBy     *uuid.UUID
	CreatedAt      time.Time
}

// AllocationParams describes a payment to apply to a sale's ledger.
type AllocationParams struct {
	SaleID     uuid.UUID
	Amount     int64
	Type       domain.PaymentType
	Method     domain.PaymentMethod
	RecordedBy uuid.UUID
}

// AllocationResult is returned after a committed allocation. The client
// contact fields are joined in so notification events never read other
// modules' storage.
type AllocationResult struct {
	Payment      Payment
	SaleCode     string
	PaidAmount   int64
	TotalPayable int64
	Settled      bool

	ClientName  string
	ClientEmail string
	ClientPhone string
}

// ReversalResult is returned after a committed reversal.
type ReversalResult struct {
	Payment    Payment
	SaleCode   string
	PaidAmount int64

	ClientName  string
	ClientEmail string
	ClientPhone string
}

// Ledger is the transactional allocation surface of the payments
// repository. Both operations lock the sale row, apply the ledger rules
// and commit the payment row and sale update together.
type Ledger interface {
	Allocate(ctx context.Context, params AllocationParams) (*AllocationResult, error)
	Reverse(ctx context.Context, paymentID, reversedBy uuid.UUID) (*ReversalResult, error)
	GetPayment(ctx context.Context, id uuid.UUID) (*Payment, error)
	ListBySale(ctx context.Context, saleID uuid.UUID) ([]Payment, error)
}
