// Package service implements the payment allocator: applying payments to
// a sale's ledger and reversing them on deletion, with notifications
// published only after the transaction commits.
package service

import (
	"context"

	"estate_sales_backend/internal/events"
	"estate_sales_backend/internal/rbac"
	"estate_sales_backend/internal/sales/domain"
	"estate_sales_backend/platform/logger"

	"github.com/google/uuid"
)

// Service implements payment allocation and reversal.
type Service struct {
	ledger   Ledger
	eventBus events.Bus
	log      *logger.Logger
}

// New creates a new payments service.
func New(ledger Ledger, log *logger.Logger) *Service {
	return &Service{ledger: ledger, log: log}
}

// SetEventBus wires the event bus for post-commit notifications.
func (s *Service) SetEventBus(bus events.Bus) {
	s.eventBus = bus
}

// AddPaymentInput describes a payment to record.
type AddPaymentInput struct {
	SaleID uuid.UUID
	Amount int64
	// Type is optional; an empty value defaults to GENERAL.
	Type   domain.PaymentType
	Method domain.PaymentMethod
}

// AddPayment applies a payment to the sale ledger. Exactly one event is
// published after commit: payment.completed when this payment settled the
// sale in full, payment.received otherwise.
func (s *Service) AddPayment(ctx context.Context, actor rbac.Actor, input AddPaymentInput) (*AllocationResult, error) {
	if err := rbac.Require(actor, rbac.CapabilityRecordPayments); err != nil {
		return nil, err
	}
	return s.allocate(ctx, input, actor.ID)
}

// DeletePayment reverses a payment in full and removes it. Re-deleting
// the same payment fails with not-found; the ledger is never reversed
// twice.
func (s *Service) DeletePayment(ctx context.Context, actor rbac.Actor, paymentID uuid.UUID) error {
	if err := rbac.Require(actor, rbac.CapabilityDeletePayments); err != nil {
		return err
	}

	result, err := s.ledger.Reverse(ctx, paymentID, actor.ID)
	if err != nil {
		return err
	}
	s.log.LedgerMutation("payment_reversed", result.Payment.SaleID.String(), result.Payment.Amount, result.PaidAmount)

	if s.eventBus != nil {
		s.eventBus.Publish(ctx, events.NewPaymentReversed(
			result.Payment.ID, result.Payment.SaleID, result.SaleCode,
			result.Payment.Amount, result.PaidAmount,
			result.ClientName, result.ClientEmail, result.ClientPhone))
	}
	return nil
}

// Record applies an initial payment on behalf of the sales service. The
// caller has already passed its own authorization check.
func (s *Service) Record(ctx context.Context, saleID uuid.UUID, amount int64, method domain.PaymentMethod, recordedBy uuid.UUID) error {
	_, err := s.allocate(ctx, AddPaymentInput{SaleID: saleID, Amount: amount, Method: method}, recordedBy)
	return err
}

// GetPayment returns a payment by id.
func (s *Service) GetPayment(ctx context.Context, actor rbac.Actor, id uuid.UUID) (*Payment, error) {
	if err := rbac.Require(actor, rbac.CapabilityViewLedger); err != nil {
		return nil, err
	}
	return s.ledger.GetPayment(ctx, id)
}

// ListBySale returns a sale's payments.
func (s *Service) ListBySale(ctx context.Context, actor rbac.Actor, saleID uuid.UUID) ([]Payment, error) {
	if err := rbac.Require(actor, rbac.CapabilityViewLedger); err != nil {
		return nil, err
	}
	return s.ledger.ListBySale(ctx, saleID)
}

func (s *Service) allocate(ctx context.Context, input AddPaymentInput, recordedBy uuid.UUID) (*AllocationResult, error) {
	paymentType := input.Type
	if paymentType == "" {
		// Unattributed payments default to GENERAL.
		paymentType = domain.PaymentGeneral
	}

	result, err := s.ledger.Allocate(ctx, AllocationParams{
		SaleID:     input.SaleID,
		Amount:     input.Amount,
		Type:       paymentType,
		Method:     input.Method,
		RecordedBy: recordedBy,
	})
	if err != nil {
		return nil, err
	}
	s.log.LedgerMutation("payment_applied", input.SaleID.String(), input.Amount, result.PaidAmount)

	if s.eventBus != nil {
		if result.Settled {
			s.eventBus.Publish(ctx, events.NewPaymentCompleted(
				result.Payment.ID, result.Payment.SaleID, result.SaleCode,
				result.TotalPayable,
				result.ClientName, result.ClientEmail, result.ClientPhone))
		} else {
			s.eventBus.Publish(ctx, events.NewPaymentReceived(
				result.Payment.ID, result.Payment.SaleID, result.SaleCode,
				result.Payment.Amount, result.PaidAmount, result.TotalPayable,
				result.ClientName, result.ClientEmail, result.ClientPhone))
		}
	}
	return result, nil
}
