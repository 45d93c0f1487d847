package domain

import (
	"time"

	"github.com/google/uuid"
)

// HistoryAction distinguishes entries in the sale's audit log.
type HistoryAction string

const (
	ActionCreate HistoryAction = "CREATE"
	ActionUpdate HistoryAction = "UPDATE"
	ActionSettle HistoryAction = "SETTLE"
	ActionCancel HistoryAction = "CANCEL"
)

// HistoryEntry is one append-only audit record on a sale. Exactly one of
// the per-action payloads is set, matching Action.
type HistoryEntry struct {
	Action       HistoryAction `json:"action"`
	ActionDate   time.Time     `json:"actionDate"`
	ActionBy     uuid.UUID     `json:"actionBy"`
	ActionByUser string        `json:"actionByUser,omitempty"`

	Create *CreatePayload `json:"create,omitempty"`
	Update *UpdatePayload `json:"update,omitempty"`
	Settle *SettlePayload `json:"settle,omitempty"`
	Cancel *CancelPayload `json:"cancel,omitempty"`
}

// CreatePayload records how a sale came into existence.
type CreatePayload struct {
	Source       string `json:"source"` // DIRECT, PUBLIC or EXISTING_CLIENT
	TotalPayable int64  `json:"totalPayable"`
	InitialPaid  int64  `json:"initialPaid"`
}

// UpdatePayload records a ledger movement or an approval.
type UpdatePayload struct {
	Operation  string    `json:"operation"` // APPROVE, PAYMENT
	PaymentID  uuid.UUID `json:"paymentId,omitempty"`
	Amount     int64     `json:"amount,omitempty"`
	PaidAmount int64     `json:"paidAmount"`
}

// SettlePayload records the payment that brought the sale to PAID.
type SettlePayload struct {
	PaymentID    uuid.UUID `json:"paymentId"`
	Amount       int64     `json:"amount"`
	TotalPayable int64     `json:"totalPayable"`
}

// CancelPayload records a payment reversal with the ledger position it
// left behind.
type CancelPayload struct {
	PaymentID  uuid.UUID `json:"paymentId"`
	Amount     int64     `json:"amount"`
	PaidAmount int64     `json:"paidAmount"`
	Reason     string    `json:"reason,omitempty"`
}

// AppendHistory appends an entry stamped with the current time.
func (s *Sale) AppendHistory(entry HistoryEntry) {
	if entry.ActionDate.IsZero() {
		entry.ActionDate = time.Now()
	}
	s.UpdateHistory = append(s.UpdateHistory, entry)
}
