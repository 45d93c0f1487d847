package service

import (
	"context"
	"time"

	"estate_sales_backend/internal/paymentplans/domain"

	"github.com/google/uuid"
)

// DuePlan is an active plan whose due date has arrived, joined with the
// sale and client details the reminder notification needs.
type DuePlan struct {
	Plan     domain.Plan
	SaleCode string

	ClientName  string
	ClientEmail string
	ClientPhone string
}

// SaleRef is the slice of a sale a plan binds to.
type SaleRef struct {
	ID       uuid.UUID
	ClientID uuid.UUID
}

// Store is the persistence surface for installment plans.
type Store interface {
	Create(ctx context.Context, plan *domain.Plan) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Plan, error)
	ListBySale(ctx context.Context, saleID uuid.UUID) ([]domain.Plan, error)
	// ListDue returns ACTIVE plans with a due date on or before the cutoff.
	ListDue(ctx context.Context, cutoff time.Time) ([]DuePlan, error)
	// Advance moves an ACTIVE plan's due date forward. The update is a
	// no-op when the plan is no longer active.
	Advance(ctx context.Context, id uuid.UUID, nextDue time.Time) error
	// SetStatus updates the lifecycle status and appends the audit entry.
	SetStatus(ctx context.Context, id uuid.UUID, status domain.Status, entry domain.HistoryEntry) error
	// FindSale returns the sale a plan binds to, or NotFound.
	FindSale(ctx context.Context, saleID uuid.UUID) (*SaleRef, error)
}
