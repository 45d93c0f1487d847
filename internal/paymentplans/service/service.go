// Package service implements the installment plan scheduler. Plans are
// reminders layered over a sale; they never move money and never touch
// the payment ledger.
package service

import (
	"context"
	"time"

	"estate_sales_backend/internal/events"
	"estate_sales_backend/internal/paymentplans/domain"
	"estate_sales_backend/internal/rbac"
	"estate_sales_backend/platform/apperr"
	"estate_sales_backend/platform/logger"

	"github.com/google/uuid"
)

// Service manages installment plans.
type Service struct {
	store    Store
	eventBus events.Bus
	log      *logger.Logger
	now      func() time.Time
}

// New creates a new payment plans service.
func New(store Store, log *logger.Logger) *Service {
	return &Service{store: store, log: log, now: time.Now}
}

// SetEventBus wires the event bus for due-date notifications.
func (s *Service) SetEventBus(bus events.Bus) {
	s.eventBus = bus
}

// CreatePlanInput describes a new installment plan.
type CreatePlanInput struct {
	SaleID       uuid.UUID
	Amount       int64
	Frequency    domain.Frequency
	IntervalDays int
	// FirstDueDate is optional; when zero the first due date is computed
	// from today by the plan's cadence.
	FirstDueDate time.Time
}

// CreatePlan creates an installment plan bound to an existing sale and
// that sale's client.
func (s *Service) CreatePlan(ctx context.Context, actor rbac.Actor, input CreatePlanInput) (*domain.Plan, error) {
	if err := rbac.Require(actor, rbac.CapabilityManagePlans); err != nil {
		return nil, err
	}
	if input.Amount <= 0 {
		return nil, apperr.Validation("plan amount must be positive")
	}
	if !domain.ValidFrequency(input.Frequency) {
		return nil, apperr.Validation("unknown plan frequency")
	}
	if input.Frequency == domain.FrequencyCustom && input.IntervalDays <= 0 && input.FirstDueDate.IsZero() {
		return nil, apperr.Validation("custom plans need an interval or an explicit first due date")
	}

	saleRef, err := s.store.FindSale(ctx, input.SaleID)
	if err != nil {
		return nil, err
	}

	firstDue := input.FirstDueDate
	if firstDue.IsZero() {
		firstDue = domain.NextDueDate(input.Frequency, s.now(), input.IntervalDays)
	}

	plan := &domain.Plan{
		ID:           uuid.New(),
		SaleID:       saleRef.ID,
		ClientID:     saleRef.ClientID,
		Amount:       input.Amount,
		Frequency:    input.Frequency,
		IntervalDays: input.IntervalDays,
		StartDate:    firstDue,
		NextDueDate:  firstDue,
		Status:       domain.StatusActive,
		CreatedBy:    &actor.ID,
	}
	plan.AppendHistory(domain.HistoryEntry{Action: domain.ActionCreate, ActionBy: actor.ID})
	if err := s.store.Create(ctx, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

// CancelPlan cancels an active plan. Cancellation is terminal and leaves
// the sale ledger untouched.
func (s *Service) CancelPlan(ctx context.Context, actor rbac.Actor, id uuid.UUID) (*domain.Plan, error) {
	if err := rbac.Require(actor, rbac.CapabilityManagePlans); err != nil {
		return nil, err
	}

	plan, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if plan.Status != domain.StatusActive {
		return nil, apperr.Conflict("only active plans can be cancelled")
	}

	entry := domain.HistoryEntry{Action: domain.ActionCancel, ActionDate: s.now(), ActionBy: actor.ID}
	if err := s.store.SetStatus(ctx, id, domain.StatusCancelled, entry); err != nil {
		return nil, err
	}
	plan.Status = domain.StatusCancelled
	plan.AppendHistory(entry)
	return plan, nil
}

// GetPlan returns a plan by id.
func (s *Service) GetPlan(ctx context.Context, actor rbac.Actor, id uuid.UUID) (*domain.Plan, error) {
	if err := rbac.Require(actor, rbac.CapabilityViewLedger); err != nil {
		return nil, err
	}
	return s.store.GetByID(ctx, id)
}

// ListBySale returns a sale's plans.
func (s *Service) ListBySale(ctx context.Context, actor rbac.Actor, saleID uuid.UUID) ([]domain.Plan, error) {
	if err := rbac.Require(actor, rbac.CapabilityViewLedger); err != nil {
		return nil, err
	}
	return s.store.ListBySale(ctx, saleID)
}

// DispatchDue publishes a reminder for every active plan whose due date
// has arrived and rolls its due date forward. Called by the scheduler;
// returns the number of reminders published.
func (s *Service) DispatchDue(ctx context.Context) (int, error) {
	due, err := s.store.ListDue(ctx, s.now())
	if err != nil {
		return 0, err
	}

	dispatched := 0
	for _, d := range due {
		next := domain.NextDueDate(d.Plan.Frequency, d.Plan.NextDueDate, d.Plan.IntervalDays)
		if !next.After(d.Plan.NextDueDate) {
			// A custom plan without an interval cannot advance; skip it so
			// the scanner does not remind on every run.
			s.log.Warn("payment plan cannot advance", "plan_id", d.Plan.ID.String())
			continue
		}
		if err := s.store.Advance(ctx, d.Plan.ID, next); err != nil {
			return dispatched, err
		}

		if s.eventBus != nil {
			s.eventBus.Publish(ctx, events.NewPaymentPlanDue(
				d.Plan.ID, d.Plan.SaleID, d.SaleCode,
				d.Plan.Amount, d.Plan.NextDueDate.Format("2006-01-02"),
				d.ClientName, d.ClientEmail, d.ClientPhone))
		}
		dispatched++
	}
	return dispatched, nil
}
