// Package domain holds the installment plan model and its due-date rules.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Frequency is the installment cadence of a plan.
type Frequency string

const (
	FrequencyWeekly    Frequency = "WEEKLY"
	FrequencyMonthly   Frequency = "MONTHLY"
	FrequencyQuarterly Frequency = "QUARTERLY"
	FrequencyYearly    Frequency = "YEARLY"
	FrequencyCustom    Frequency = "CUSTOM"
)

// ValidFrequency reports whether f is a known frequency.
func ValidFrequency(f Frequency) bool {
	switch f {
	case FrequencyWeekly, FrequencyMonthly, FrequencyQuarterly, FrequencyYearly, FrequencyCustom:
		return true
	}
	return false
}

// Status is the plan lifecycle. Cancellation is terminal and never
// touches the payment ledger.
type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
)

// HistoryAction distinguishes entries in a plan's audit log.
type HistoryAction string

const (
	ActionCreate HistoryAction = "CREATE"
	ActionCancel HistoryAction = "CANCEL"
)

// HistoryEntry is one append-only audit record on a plan.
type HistoryEntry struct {
	Action     HistoryAction `json:"action"`
	ActionDate time.Time     `json:"actionDate"`
	ActionBy   uuid.UUID     `json:"actionBy"`
}

// Plan is an installment schedule bound to a sale and its client. It is
// informational and never competes with the sale ledger.
type Plan struct {
	ID            uuid.UUID
	SaleID        uuid.UUID
	ClientID      uuid.UUID
	Amount        int64
	Frequency     Frequency
	IntervalDays  int
	StartDate     time.Time
	NextDueDate   time.Time
	Status        Status
	UpdateHistory []HistoryEntry
	CreatedBy     *uuid.UUID
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// AppendHistory appends an entry stamped with the current time.
func (p *Plan) AppendHistory(entry HistoryEntry) {
	if entry.ActionDate.IsZero() {
		entry.ActionDate = time.Now()
	}
	p.UpdateHistory = append(p.UpdateHistory, entry)
}

// NextDueDate computes the due date following from for the given cadence.
// CUSTOM plans advance by intervalDays when set; with no interval the date
// is returned unchanged and the caller supplies it explicitly.
func NextDueDate(frequency Frequency, from time.Time, intervalDays int) time.Time {
	switch frequency {
	case FrequencyWeekly:
		return from.AddDate(0, 0, 7)
	case FrequencyMonthly:
		return from.AddDate(0, 1, 0)
	case FrequencyQuarterly:
		return from.AddDate(0, 3, 0)
	case FrequencyYearly:
		return from.AddDate(1, 0, 0)
	case FrequencyCustom:
		if intervalDays > 0 {
			return from.AddDate(0, 0, intervalDays)
		}
		return from
	default:
		return from
	}
}
