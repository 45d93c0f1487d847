// Package events defines the domain events exchanged between modules.
// Events carry the recipient's contact details so notification handlers
// never need to query other modules' storage.
package events

import (
	"github.com/google/uuid"

	"estate_sales_backend/platform/events"
)

// Re-exports so modules depend on one events package.
type (
	Event       = events.Event
	BaseEvent   = events.BaseEvent
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	InMemoryBus = events.InMemoryBus
)

var (
	NewBaseEvent   = events.NewBaseEvent
	NewInMemoryBus = events.NewInMemoryBus
)

// Event names.
const (
	EventClientAccountCreated         = "client.account_created"
	EventPurchaseApplicationSubmitted = "sale.application_submitted"
	EventSaleApproved                 = "sale.approved"
	EventPaymentReceived              = "payment.received"
	EventPaymentCompleted             = "payment.completed"
	EventPaymentReversed              = "payment.reversed"
	EventPaymentPlanDue               = "payment_plan.due"
	EventNotificationOutboxDue        = "notification.outbox_due"
)

// ClientAccountCreated is published when a client account is provisioned
// during a sale application for a contact not seen before.
type ClientAccountCreated struct {
	events.BaseEvent
	ClientID    uuid.UUID
	ClientName  string
	ClientEmail string
	ClientPhone string
}

func NewClientAccountCreated(clientID uuid.UUID, name, email, phone string) *ClientAccountCreated {
	return &ClientAccountCreated{
		BaseEvent:   events.NewBaseEvent(EventClientAccountCreated),
		ClientID:    clientID,
		ClientName:  name,
		ClientEmail: email,
		ClientPhone: phone,
	}
}

// PurchaseApplicationSubmitted is published after a sale record is committed.
type PurchaseApplicationSubmitted struct {
	events.BaseEvent
	SaleID       uuid.UUID
	SaleCode     string
	ClientID     uuid.UUID
	ClientName   string
	ClientEmail  string
	ClientPhone  string
	PropertyKind string
	TotalPayable int64
}

func NewPurchaseApplicationSubmitted(saleID uuid.UUID, saleCode string, clientID uuid.UUID, name, email, phone, propertyKind string, totalPayable int64) *PurchaseApplicationSubmitted {
	return &PurchaseApplicationSubmitted{
		BaseEvent:    events.NewBaseEvent(EventPurchaseApplicationSubmitted),
		SaleID:       saleID,
		SaleCode:     saleCode,
		ClientID:     clientID,
		ClientName:   name,
		ClientEmail:  email,
		ClientPhone:  phone,
		PropertyKind: propertyKind,
		TotalPayable: totalPayable,
	}
}

// SaleApproved is published when management approves a pending sale.
type SaleApproved struct {
	events.BaseEvent
	SaleID      uuid.UUID
	SaleCode    string
	ClientName  string
	ClientEmail string
	ClientPhone string
}

func NewSaleApproved(saleID uuid.UUID, saleCode, name, email, phone string) *SaleApproved {
	return &SaleApproved{
		BaseEvent:   events.NewBaseEvent(EventSaleApproved),
		SaleID:      saleID,
		SaleCode:    saleCode,
		ClientName:  name,
		ClientEmail: email,
		ClientPhone: phone,
	}
}

// PaymentReceived is published after a partial payment is committed.
type PaymentReceived struct {
	events.BaseEvent
	PaymentID    uuid.UUID
	SaleID       uuid.UUID
	SaleCode     string
	Amount       int64
	PaidAmount   int64
	TotalPayable int64
	ClientName   string
	ClientEmail  string
	ClientPhone  string
}

func NewPaymentReceived(paymentID, saleID uuid.UUID, saleCode string, amount, paidAmount, totalPayable int64, name, email, phone string) *PaymentReceived {
	return &PaymentReceived{
		BaseEvent:    events.NewBaseEvent(EventPaymentReceived),
		PaymentID:    paymentID,
		SaleID:       saleID,
		SaleCode:     saleCode,
		Amount:       amount,
		PaidAmount:   paidAmount,
		TotalPayable: totalPayable,
		ClientName:   name,
		ClientEmail:  email,
		ClientPhone:  phone,
	}
}

// PaymentCompleted is published when a payment settles the sale in full.
type PaymentCompleted struct {
	events.BaseEvent
	PaymentID    uuid.UUID
	SaleID       uuid.UUID
	SaleCode     string
	TotalPayable int64
	ClientName   string
	ClientEmail  string
	ClientPhone  string
}

func NewPaymentCompleted(paymentID, saleID uuid.UUID, saleCode string, totalPayable int64, name, email, phone string) *PaymentCompleted {
	return &PaymentCompleted{
		BaseEvent:    events.NewBaseEvent(EventPaymentCompleted),
		PaymentID:    paymentID,
		SaleID:       saleID,
		SaleCode:     saleCode,
		TotalPayable: totalPayable,
		ClientName:   name,
		ClientEmail:  email,
		ClientPhone:  phone,
	}
}

// PaymentReversed is published after a recorded payment is deleted and
// the sale ledger rolled back.
type PaymentReversed struct {
	events.BaseEvent
	PaymentID   uuid.UUID
	SaleID      uuid.UUID
	SaleCode    string
	Amount      int64
	PaidAmount  int64
	ClientName  string
	ClientEmail string
	ClientPhone string
}

func NewPaymentReversed(paymentID, saleID uuid.UUID, saleCode string, amount, paidAmount int64, name, email, phone string) *PaymentReversed {
	return &PaymentReversed{
		BaseEvent:   events.NewBaseEvent(EventPaymentReversed),
		PaymentID:   paymentID,
		SaleID:      saleID,
		SaleCode:    saleCode,
		Amount:      amount,
		PaidAmount:  paidAmount,
		ClientName:  name,
		ClientEmail: email,
		ClientPhone: phone,
	}
}

// PaymentPlanDue is published by the scheduler when an installment
// reaches its due date.
type PaymentPlanDue struct {
	events.BaseEvent
	PlanID      uuid.UUID
	SaleID      uuid.UUID
	SaleCode    string
	Amount      int64
	DueDateISO  string
	ClientName  string
	ClientEmail string
	ClientPhone string
}

// NotificationOutboxDue is published by the scheduler worker when a
// claimed outbox record should be delivered.
type NotificationOutboxDue struct {
	events.BaseEvent
	OutboxID uuid.UUID
}

func NewNotificationOutboxDue(outboxID uuid.UUID) *NotificationOutboxDue {
	return &NotificationOutboxDue{
		BaseEvent: events.NewBaseEvent(EventNotificationOutboxDue),
		OutboxID:  outboxID,
	}
}

func NewPaymentPlanDue(planID, saleID uuid.UUID, saleCode string, amount int64, dueDateISO, name, email, phone string) *PaymentPlanDue {
	return &PaymentPlanDue{
		BaseEvent:   events.NewBaseEvent(EventPaymentPlanDue),
		PlanID:      planID,
		SaleID:      saleID,
		SaleCode:    saleCode,
		Amount:      amount,
		DueDateISO:  dueDateISO,
		ClientName:  name,
		ClientEmail: email,
		ClientPhone: phone,
	}
}
