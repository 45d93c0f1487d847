// Package transport defines the request and response shapes for the
// sales HTTP API.
package transport

import (
	"time"

	"estate_sales_backend/internal/sales/domain"

	"github.com/google/uuid"
)

type ApplicantPayload struct {
	Name           string `json:"name" validate:"required"`
	Email          string `json:"email" validate:"omitempty,email"`
	Phone          string `json:"phone"`
	Occupation     string `json:"occupation"`
	Address        string `json:"address"`
	NextOfKinName  string `json:"nextOfKinName"`
	NextOfKinPhone string `json:"nextOfKinPhone"`
}

type FeesPayload struct {
	Infrastructure int64 `json:"infrastructure" validate:"gte=0"`
	Facility       int64 `json:"facility" validate:"gte=0"`
	Water          int64 `json:"water" validate:"gte=0"`
	Electricity    int64 `json:"electricity" validate:"gte=0"`
	Supervision    int64 `json:"supervision" validate:"gte=0"`
	Authority      int64 `json:"authority" validate:"gte=0"`
	Other          int64 `json:"other" validate:"gte=0"`
}

func (f FeesPayload) ToDomain() domain.FeeSchedule {
	return domain.FeeSchedule{
		Infrastructure: f.Infrastructure,
		Facility:       f.Facility,
		Water:          f.Water,
		Electricity:    f.Electricity,
		Supervision:    f.Supervision,
		Authority:      f.Authority,
		Other:          f.Other,
	}
}

type AddSaleRequest struct {
	PropertyKind     string           `json:"propertyKind" validate:"required,oneof=HOUSE PLOT"`
	PropertyID       uuid.UUID        `json:"propertyId" validate:"required"`
	ReservationCode  string           `json:"reservationCode"`
	Applicant        ApplicantPayload `json:"applicant" validate:"required"`
	Fees             FeesPayload      `json:"fees"`
	AgencyFeePercent float64          `json:"agencyFeePercent" validate:"gte=0,lte=100"`
	Discount         int64            `json:"discount" validate:"gte=0"`
	PaymentMethod    string           `json:"paymentMethod"`
	PaidAmount       int64            `json:"paidAmount" validate:"gte=0"`
	AgentID          *uuid.UUID       `json:"agentId"`
}

type PublicSaleRequest struct {
	PropertyKind string           `json:"propertyKind" validate:"required,oneof=HOUSE PLOT"`
	PropertyID   uuid.UUID        `json:"propertyId" validate:"required"`
	Applicant    ApplicantPayload `json:"applicant" validate:"required"`
}

type ExistingClientSaleRequest struct {
	ClientID         uuid.UUID   `json:"clientId" validate:"required"`
	PropertyKind     string      `json:"propertyKind" validate:"required,oneof=HOUSE PLOT"`
	PropertyID       uuid.UUID   `json:"propertyId" validate:"required"`
	ReservationCode  string      `json:"reservationCode"`
	Fees             FeesPayload `json:"fees"`
	AgencyFeePercent float64     `json:"agencyFeePercent" validate:"gte=0,lte=100"`
	Discount         int64       `json:"discount" validate:"gte=0"`
	PaymentMethod    string      `json:"paymentMethod"`
	PaidAmount       int64       `json:"paidAmount" validate:"gte=0"`
	AgentID          *uuid.UUID  `json:"agentId"`
}

type ApproveSaleRequest struct {
	PaidAmount    int64  `json:"paidAmount" validate:"gte=0"`
	PaymentMethod string `json:"paymentMethod"`
}

type LedgerBucket struct {
	Nominal int64 `json:"nominal"`
	Paid    int64 `json:"paid"`
}

type SaleResponse struct {
	ID             uuid.UUID  `json:"id"`
	Code           string     `json:"code"`
	TransactionRef string     `json:"transactionRef"`
	ClientID       uuid.UUID  `json:"clientId"`
	AgentID        *uuid.UUID `json:"agentId,omitempty"`
	PropertyKind   string     `json:"propertyKind"`
	PropertyID     uuid.UUID  `json:"propertyId"`
	ReservationID  *uuid.UUID `json:"reservationId,omitempty"`

	Status                 string `json:"status"`
	PaymentStatus          string `json:"paymentStatus"`
	RegistrationFeesStatus string `json:"registrationFeesStatus"`

	PropertyPayable LedgerBucket            `json:"propertyPayable"`
	AgencyFee       LedgerBucket            `json:"agencyFee"`
	Discount        int64                   `json:"discount"`
	Fees            map[string]LedgerBucket `json:"fees"`
	TotalPayable    int64                   `json:"totalPayable"`
	PaidAmount      int64                   `json:"paidAmount"`

	Applicant ApplicantPayload `json:"applicant"`

	UpdateHistory []domain.HistoryEntry `json:"updateHistory"`

	ApprovedAt *time.Time `json:"approvedAt,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

// FromDomain maps a sale aggregate onto the response shape.
func FromDomain(s *domain.Sale) SaleResponse {
	return SaleResponse{
		ID:             s.ID,
		Code:           s.Code,
		TransactionRef: s.TransactionRef,
		ClientID:       s.ClientID,
		AgentID:        s.AgentID,
		PropertyKind:   string(s.PropertyKind),
		PropertyID:     s.PropertyID,
		ReservationID:  s.ReservationID,

		Status:                 string(s.Status),
		PaymentStatus:          string(s.PaymentStatus),
		RegistrationFeesStatus: string(s.RegistrationFeesStatus),

		PropertyPayable: LedgerBucket{Nominal: s.PropertyPayable, Paid: s.PropertyPayablePaid},
		AgencyFee:       LedgerBucket{Nominal: s.AgencyFee, Paid: s.AgencyFeePaid},
		Discount:        s.Discount,
		Fees: map[string]LedgerBucket{
			"infrastructure": {Nominal: s.Fees.Infrastructure, Paid: s.FeesPaid.Infrastructure},
			"facility":       {Nominal: s.Fees.Facility, Paid: s.FeesPaid.Facility},
			"water":          {Nominal: s.Fees.Water, Paid: s.FeesPaid.Water},
			"electricity":    {Nominal: s.Fees.Electricity, Paid: s.FeesPaid.Electricity},
			"supervision":    {Nominal: s.Fees.Supervision, Paid: s.FeesPaid.Supervision},
			"authority":      {Nominal: s.Fees.Authority, Paid: s.FeesPaid.Authority},
			"other":          {Nominal: s.Fees.Other, Paid: s.FeesPaid.Other},
		},
		TotalPayable: s.TotalPayable,
		PaidAmount:   s.PaidAmount,

		Applicant: ApplicantPayload{
			Name:           s.Applicant.Name,
			Email:          s.Applicant.Email,
			Phone:          s.Applicant.Phone,
			Occupation:     s.Applicant.Occupation,
			Address:        s.Applicant.Address,
			NextOfKinName:  s.Applicant.NextOfKinName,
			NextOfKinPhone: s.Applicant.NextOfKinPhone,
		},

		UpdateHistory: s.UpdateHistory,

		ApprovedAt: s.ApprovedAt,
		CreatedAt:  s.CreatedAt,
		UpdatedAt:  s.UpdatedAt,
	}
}
