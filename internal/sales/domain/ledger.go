package domain

import "estate_sales_backend/platform/apperr"

// Ledger mutation failures. These are compared by identity with errors.Is
// and already carry the right HTTP mapping.
var (
	ErrSaleBalanceZero    = apperr.Conflict("sale balance is zero")
	ErrNothingPayable     = apperr.Conflict("sale has no payable amount")
	ErrZeroAmount         = apperr.Validation("payment amount must be positive")
	ErrBucketOverfunded   = apperr.Conflict("payment exceeds the fee bucket balance")
	ErrUnknownPaymentType = apperr.Validation("unknown payment type")
)

// DerivePaymentStatus computes the payment status from the ledger totals.
// PAID covers the paid >= total case including a zero-total sale.
func DerivePaymentStatus(paidAmount, totalPayable int64) PaymentStatus {
	switch {
	case paidAmount >= totalPayable:
		return PaymentPaid
	case paidAmount > 0:
		return PaymentPaying
	default:
		return PaymentUnpaid
	}
}

// ApplyPayment routes amount into the sale's ledger under the given type
// and rederives payment status and sale status. The sale is not mutated
// when an error is returned.
func (s *Sale) ApplyPayment(amount int64, paymentType PaymentType) error {
	if !ValidPaymentType(paymentType) {
		return ErrUnknownPaymentType
	}
	if amount <= 0 {
		return ErrZeroAmount
	}
	if s.TotalPayable <= 0 {
		return ErrNothingPayable
	}
	if s.RemainingBalance() <= 0 {
		return ErrSaleBalanceZero
	}

	newPaid := s.PaidAmount + amount

	if paymentType == PaymentGeneral {
		if newPaid >= s.TotalPayable {
			// Full settlement: every bucket is marked funded at its
			// nominal value regardless of what this amount nominally
			// covered. The property slice absorbs the remainder so the
			// paid fields still sum to newPaid.
			s.FeesPaid = s.Fees
			s.AgencyFeePaid = s.AgencyFee
			s.PropertyPayablePaid = newPaid - s.Fees.Sum() - s.AgencyFee
		} else {
			s.PropertyPayablePaid += amount
		}
	} else {
		paid := s.FeesPaid.bucket(paymentType)
		nominal := s.Fees.bucket(paymentType)
		if *paid+amount > *nominal {
			return ErrBucketOverfunded
		}
		*paid += amount
	}

	s.PaidAmount = newPaid
	s.PaymentStatus = DerivePaymentStatus(s.PaidAmount, s.TotalPayable)
	if s.PaymentStatus == PaymentPaid {
		s.Status = SalePurchased
	} else if s.Status == SalePending {
		// A sale becomes ACTIVE once money arrives; creation leaves it
		// PENDING until the first allocation commits.
		s.Status = SaleActive
	}
	return nil
}

// ReversePayment rolls back a previously applied payment of the given
// amount and type. Reversing the GENERAL payment that carried the sale
// over its total undoes the full settlement: fee and agency allocations
// collapse back into the property slice so the paid fields still sum to
// the remaining paid amount. Bucket balances never go negative.
func (s *Sale) ReversePayment(amount int64, paymentType PaymentType) error {
	if !ValidPaymentType(paymentType) {
		return ErrUnknownPaymentType
	}
	if amount <= 0 {
		return ErrZeroAmount
	}

	newPaid := s.PaidAmount - amount

	if paymentType == PaymentGeneral && s.PaidAmount >= s.TotalPayable && newPaid < s.TotalPayable {
		s.FeesPaid = FeeSchedule{}
		s.AgencyFeePaid = 0
		s.PropertyPayablePaid = newPaid
	} else if paymentType == PaymentGeneral {
		s.PropertyPayablePaid -= amount
	} else {
		// Settlement may have rerouted this bucket's funds; whatever the
		// bucket no longer holds comes out of the property slice.
		paid := s.FeesPaid.bucket(paymentType)
		taken := amount
		if *paid < taken {
			taken = *paid
		}
		*paid -= taken
		s.PropertyPayablePaid -= amount - taken
	}

	s.PaidAmount = newPaid
	if s.PaidAmount <= 0 {
		s.PaymentStatus = PaymentUnpaid
		s.Status = SalePending
		return nil
	}
	s.PaymentStatus = DerivePaymentStatus(s.PaidAmount, s.TotalPayable)
	if s.PaymentStatus != PaymentPaid && s.Status == SalePurchased {
		s.Status = SaleActive
	}
	return nil
}

// bucket returns the field backing a named payment type. Callers must not
// pass GENERAL.
func (f *FeeSchedule) bucket(paymentType PaymentType) *int64 {
	switch paymentType {
	case PaymentInfrastructure:
		return &f.Infrastructure
	case PaymentFacility:
		return &f.Facility
	case PaymentWater:
		return &f.Water
	case PaymentElectricity:
		return &f.Electricity
	case PaymentSupervision:
		return &f.Supervision
	case PaymentAuthority:
		return &f.Authority
	default:
		return &f.Other
	}
}
