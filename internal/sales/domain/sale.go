// Package domain holds the sale aggregate and the pure ledger rules
// applied to it. Nothing in this package touches storage or transport.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// PropertyKind selects which property store a sale refers to.
type PropertyKind string

const (
	PropertyHouse PropertyKind = "HOUSE"
	PropertyPlot  PropertyKind = "PLOT"
)

// PropertyStatus is the sale-relevant lifecycle of a house or plot.
type PropertyStatus string

const (
	PropertyAvailable PropertyStatus = "AVAILABLE"
	PropertyReserved  PropertyStatus = "RESERVED"
	PropertySold      PropertyStatus = "SOLD"
)

// SaleStatus only advances PENDING -> ACTIVE -> PURCHASED. Reversal of
// payments may regress PURCHASED to ACTIVE, or to PENDING when the paid
// amount returns to zero.
type SaleStatus string

const (
	SalePending   SaleStatus = "PENDING"
	SaleActive    SaleStatus = "ACTIVE"
	SalePurchased SaleStatus = "PURCHASED"
)

// PaymentStatus is derived from (paidAmount, totalPayable), never stored
// independently of them.
type PaymentStatus string

const (
	PaymentUnpaid PaymentStatus = "UNPAID"
	PaymentPaying PaymentStatus = "PAYING"
	PaymentPaid   PaymentStatus = "PAID"
)

// RegistrationFeesStatus tracks the one-off registration fee settled at
// approval time.
type RegistrationFeesStatus string

const (
	RegistrationUnpaid RegistrationFeesStatus = "UNPAID"
	RegistrationPaid   RegistrationFeesStatus = "PAID"
)

// PaymentType tags a payment with the fee bucket it funds. GENERAL is the
// catch-all for payments not attributed to a specific bucket.
type PaymentType string

const (
	PaymentInfrastructure PaymentType = "INFRASTRUCTURE"
	PaymentFacility       PaymentType = "FACILITY"
	PaymentWater          PaymentType = "WATER"
	PaymentElectricity    PaymentType = "ELECTRICITY"
	PaymentSupervision    PaymentType = "SUPERVISION"
	PaymentAuthority      PaymentType = "AUTHORITY"
	PaymentOther          PaymentType = "OTHER"
	PaymentGeneral        PaymentType = "GENERAL"
)

// PaymentMethod describes how a payment arrived.
type PaymentMethod string

const (
	MethodFullPayment PaymentMethod = "FULLPAYMENT"
	MethodInstallment PaymentMethod = "INSTALLMENT"
	MethodTransfer    PaymentMethod = "TRANSFER"
	MethodCash        PaymentMethod = "CASH"
)

// ValidPaymentType reports whether t is a known payment type.
func ValidPaymentType(t PaymentType) bool {
	switch t {
	case PaymentInfrastructure, PaymentFacility, PaymentWater, PaymentElectricity,
		PaymentSupervision, PaymentAuthority, PaymentOther, PaymentGeneral:
		return true
	}
	return false
}

// ApplicantProfile is the identity block captured on the sale form. It is
// stored on the sale so a later sale by the same client can copy it.
type ApplicantProfile struct {
	Name           string
	Email          string
	Phone          string
	Occupation     string
	Address        string
	NextOfKinName  string
	NextOfKinPhone string
}

// Sale is the financial aggregate for one property purchase. All amounts
// are in minor currency units.
type Sale struct {
	ID             uuid.UUID
	Code           string
	TransactionRef string

	ClientID      uuid.UUID
	AgentID       *uuid.UUID
	PropertyKind  PropertyKind
	PropertyID    uuid.UUID
	ReservationID *uuid.UUID

	Status                 SaleStatus
	PaymentStatus          PaymentStatus
	RegistrationFeesStatus RegistrationFeesStatus

	PropertyPayable int64
	Discount        int64
	AgencyFee       int64
	Fees            FeeSchedule
	TotalPayable    int64

	PropertyPayablePaid int64
	AgencyFeePaid       int64
	FeesPaid            FeeSchedule
	PaidAmount          int64

	Applicant ApplicantProfile

	UpdateHistory []HistoryEntry

	CreatedBy  *uuid.UUID
	ApprovedBy *uuid.UUID
	ApprovedAt *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// RemainingBalance is what is still owed on the sale.
func (s *Sale) RemainingBalance() int64 {
	return s.TotalPayable - s.PaidAmount
}
