package domain

import (
	"errors"
	"math/rand"
	"testing"
)

func newTestSale() *Sale {
	fees := FeeSchedule{Facility: 50_000}
	agencyFee, total := ComputeTotals(1_000_000, fees, 5, 0)
	return &Sale{
		Status:          SalePending,
		PaymentStatus:   PaymentUnpaid,
		PropertyPayable: 1_000_000,
		AgencyFee:       agencyFee,
		Fees:            fees,
		TotalPayable:    total,
	}
}

func paidSum(s *Sale) int64 {
	return s.PropertyPayablePaid + s.AgencyFeePaid + s.FeesPaid.Sum()
}

func TestDerivePaymentStatus(t *testing.T) {
	cases := []struct {
		paid, total int64
		want        PaymentStatus
	}{
		{0, 100, PaymentUnpaid},
		{1, 100, PaymentPaying},
		{99, 100, PaymentPaying},
		{100, 100, PaymentPaid},
		{150, 100, PaymentPaid},
		{0, 0, PaymentPaid},
	}
	for _, tc := range cases {
		if got := DerivePaymentStatus(tc.paid, tc.total); got != tc.want {
			t.Fatalf("DerivePaymentStatus(%d, %d) = %s, want %s", tc.paid, tc.total, got, tc.want)
		}
	}
}

func TestDerivePaymentStatusProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 1000; i++ {
		paid := rng.Int63n(2_000_000)
		total := rng.Int63n(2_000_000)
		got := DerivePaymentStatus(paid, total)

		var want PaymentStatus
		switch {
		case paid >= total:
			want = PaymentPaid
		case paid > 0:
			want = PaymentPaying
		default:
			want = PaymentUnpaid
		}
		if got != want {
			t.Fatalf("paid=%d total=%d: got %s, want %s", paid, total, got, want)
		}
	}
}

func TestGeneralPaymentFullSettlement(t *testing.T) {
	s := newTestSale()

	if err := s.ApplyPayment(1_100_000, PaymentGeneral); err != nil {
		t.Fatalf("apply: %v", err)
	}

	if s.FeesPaid != s.Fees {
		t.Fatalf("fee buckets not settled: %+v", s.FeesPaid)
	}
	if s.AgencyFeePaid != s.AgencyFee {
		t.Fatalf("agency fee paid = %d, want %d", s.AgencyFeePaid, s.AgencyFee)
	}
	if s.PaidAmount != 1_100_000 {
		t.Fatalf("paid amount = %d, want 1100000", s.PaidAmount)
	}
	if got := paidSum(s); got != s.PaidAmount {
		t.Fatalf("paid fields sum to %d, paid amount is %d", got, s.PaidAmount)
	}
	if s.PaymentStatus != PaymentPaid {
		t.Fatalf("payment status = %s, want PAID", s.PaymentStatus)
	}
	if s.Status != SalePurchased {
		t.Fatalf("status = %s, want PURCHASED", s.Status)
	}
}

func TestGeneralPaymentReversalAfterSettlement(t *testing.T) {
	s := newTestSale()
	if err := s.ApplyPayment(1_100_000, PaymentGeneral); err != nil {
		t.Fatalf("apply: %v", err)
	}

	if err := s.ReversePayment(1_100_000, PaymentGeneral); err != nil {
		t.Fatalf("reverse: %v", err)
	}

	if s.PaidAmount != 0 {
		t.Fatalf("paid amount = %d, want 0", s.PaidAmount)
	}
	if (s.FeesPaid != FeeSchedule{}) {
		t.Fatalf("fee buckets not reset: %+v", s.FeesPaid)
	}
	if s.AgencyFeePaid != 0 || s.PropertyPayablePaid != 0 {
		t.Fatalf("agency paid %d, property paid %d, want 0/0", s.AgencyFeePaid, s.PropertyPayablePaid)
	}
	if s.PaymentStatus != PaymentUnpaid {
		t.Fatalf("payment status = %s, want UNPAID", s.PaymentStatus)
	}
	if s.Status != SalePending {
		t.Fatalf("status = %s, want PENDING", s.Status)
	}
}

func TestPartialPaymentRoundTrip(t *testing.T) {
	s := newTestSale()
	s.Status = SaleActive

	before := *s
	if err := s.ApplyPayment(200_000, PaymentGeneral); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if s.PaymentStatus != PaymentPaying {
		t.Fatalf("payment status = %s, want PAYING", s.PaymentStatus)
	}
	if got := paidSum(s); got != s.PaidAmount {
		t.Fatalf("paid fields sum to %d, paid amount is %d", got, s.PaidAmount)
	}

	if err := s.ReversePayment(200_000, PaymentGeneral); err != nil {
		t.Fatalf("reverse: %v", err)
	}
	if s.PropertyPayablePaid != before.PropertyPayablePaid ||
		s.AgencyFeePaid != before.AgencyFeePaid ||
		s.FeesPaid != before.FeesPaid ||
		s.PaidAmount != before.PaidAmount {
		t.Fatalf("ledger not restored: %+v vs %+v", s, before)
	}
}

func TestNamedBucketPaymentRoundTrip(t *testing.T) {
	s := newTestSale()
	s.Status = SaleActive

	if err := s.ApplyPayment(30_000, PaymentFacility); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if s.FeesPaid.Facility != 30_000 {
		t.Fatalf("facility paid = %d, want 30000", s.FeesPaid.Facility)
	}
	if got := paidSum(s); got != s.PaidAmount {
		t.Fatalf("paid fields sum to %d, paid amount is %d", got, s.PaidAmount)
	}

	if err := s.ReversePayment(30_000, PaymentFacility); err != nil {
		t.Fatalf("reverse: %v", err)
	}
	if s.FeesPaid.Facility != 0 || s.PaidAmount != 0 {
		t.Fatalf("ledger not restored: facility paid %d, paid %d", s.FeesPaid.Facility, s.PaidAmount)
	}
}

func TestBucketOverfundRejected(t *testing.T) {
	s := newTestSale()

	err := s.ApplyPayment(60_000, PaymentFacility)
	if !errors.Is(err, ErrBucketOverfunded) {
		t.Fatalf("got %v, want ErrBucketOverfunded", err)
	}
	if s.PaidAmount != 0 || s.FeesPaid.Facility != 0 {
		t.Fatal("rejected payment mutated the ledger")
	}
}

func TestZeroBalanceRejected(t *testing.T) {
	s := newTestSale()
	if err := s.ApplyPayment(1_100_000, PaymentGeneral); err != nil {
		t.Fatalf("apply: %v", err)
	}

	before := *s
	err := s.ApplyPayment(1, PaymentGeneral)
	if !errors.Is(err, ErrSaleBalanceZero) {
		t.Fatalf("got %v, want ErrSaleBalanceZero", err)
	}
	if s.PaidAmount != before.PaidAmount || s.FeesPaid != before.FeesPaid ||
		s.PropertyPayablePaid != before.PropertyPayablePaid ||
		s.PaymentStatus != before.PaymentStatus || s.Status != before.Status {
		t.Fatal("rejected payment mutated the sale")
	}
}

func TestNothingPayableRejected(t *testing.T) {
	s := &Sale{TotalPayable: 0}
	if err := s.ApplyPayment(100, PaymentGeneral); !errors.Is(err, ErrNothingPayable) {
		t.Fatalf("got %v, want ErrNothingPayable", err)
	}

	s = &Sale{TotalPayable: -500}
	if err := s.ApplyPayment(100, PaymentGeneral); !errors.Is(err, ErrNothingPayable) {
		t.Fatalf("got %v, want ErrNothingPayable", err)
	}
}

func TestZeroAndNegativeAmountRejected(t *testing.T) {
	s := newTestSale()
	if err := s.ApplyPayment(0, PaymentGeneral); !errors.Is(err, ErrZeroAmount) {
		t.Fatalf("got %v, want ErrZeroAmount", err)
	}
	if err := s.ApplyPayment(-50, PaymentGeneral); !errors.Is(err, ErrZeroAmount) {
		t.Fatalf("got %v, want ErrZeroAmount", err)
	}
}

func TestUnknownPaymentTypeRejected(t *testing.T) {
	s := newTestSale()
	if err := s.ApplyPayment(100, PaymentType("BOGUS")); !errors.Is(err, ErrUnknownPaymentType) {
		t.Fatalf("got %v, want ErrUnknownPaymentType", err)
	}
}

func TestReversalRegressesPurchasedToActive(t *testing.T) {
	s := newTestSale()
	s.Status = SaleActive
	if err := s.ApplyPayment(600_000, PaymentGeneral); err != nil {
		t.Fatalf("apply first: %v", err)
	}
	if err := s.ApplyPayment(500_000, PaymentGeneral); err != nil {
		t.Fatalf("apply second: %v", err)
	}
	if s.Status != SalePurchased {
		t.Fatalf("status = %s, want PURCHASED", s.Status)
	}

	if err := s.ReversePayment(500_000, PaymentGeneral); err != nil {
		t.Fatalf("reverse: %v", err)
	}
	if s.Status != SaleActive {
		t.Fatalf("status = %s, want ACTIVE after reversal", s.Status)
	}
	if s.PaymentStatus != PaymentPaying {
		t.Fatalf("payment status = %s, want PAYING", s.PaymentStatus)
	}
	if got := paidSum(s); got != s.PaidAmount {
		t.Fatalf("paid fields sum to %d, paid amount is %d", got, s.PaidAmount)
	}
}

func TestReversalOrderingKeepsBucketsNonNegative(t *testing.T) {
	s := newTestSale()
	s.Status = SaleActive

	// General, typed, then the settling general payment.
	if err := s.ApplyPayment(1_000_000, PaymentGeneral); err != nil {
		t.Fatalf("apply general: %v", err)
	}
	if err := s.ApplyPayment(50_000, PaymentFacility); err != nil {
		t.Fatalf("apply facility: %v", err)
	}
	if err := s.ApplyPayment(50_000, PaymentGeneral); err != nil {
		t.Fatalf("apply settling general: %v", err)
	}
	if s.PaymentStatus != PaymentPaid {
		t.Fatalf("payment status = %s, want PAID", s.PaymentStatus)
	}

	// Reversing out of order must never drive a bucket negative, even
	// though settlement rerouted the facility funds.
	if err := s.ReversePayment(1_000_000, PaymentGeneral); err != nil {
		t.Fatalf("reverse general: %v", err)
	}
	if s.FeesPaid.Facility < 0 || s.AgencyFeePaid < 0 || s.PropertyPayablePaid < 0 {
		t.Fatalf("negative bucket after general reversal: %+v agency=%d property=%d",
			s.FeesPaid, s.AgencyFeePaid, s.PropertyPayablePaid)
	}
	if got := paidSum(s); got != s.PaidAmount {
		t.Fatalf("paid fields sum to %d, paid amount is %d", got, s.PaidAmount)
	}

	if err := s.ReversePayment(50_000, PaymentFacility); err != nil {
		t.Fatalf("reverse facility: %v", err)
	}
	if s.FeesPaid.Facility < 0 {
		t.Fatalf("facility paid = %d, must not go negative", s.FeesPaid.Facility)
	}
	if got := paidSum(s); got != s.PaidAmount {
		t.Fatalf("paid fields sum to %d, paid amount is %d", got, s.PaidAmount)
	}

	if err := s.ReversePayment(50_000, PaymentGeneral); err != nil {
		t.Fatalf("reverse last general: %v", err)
	}
	if s.PaidAmount != 0 || paidSum(s) != 0 {
		t.Fatalf("ledger not emptied: paid=%d sum=%d", s.PaidAmount, paidSum(s))
	}
	if s.PaymentStatus != PaymentUnpaid || s.Status != SalePending {
		t.Fatalf("sale %s/%s, want UNPAID/PENDING", s.PaymentStatus, s.Status)
	}
}

func TestNonSettlingGeneralReversalOnPaidSaleKeepsBuckets(t *testing.T) {
	s := newTestSale()
	s.Status = SaleActive

	// Overshoot: the settling payment takes paid past the total, so a
	// small reversal leaves the sale settled.
	if err := s.ApplyPayment(1_150_000, PaymentGeneral); err != nil {
		t.Fatalf("apply: %v", err)
	}

	if err := s.ReversePayment(20_000, PaymentGeneral); err != nil {
		t.Fatalf("reverse: %v", err)
	}
	if s.PaymentStatus != PaymentPaid {
		t.Fatalf("payment status = %s, want PAID while paid >= total", s.PaymentStatus)
	}
	if s.Status != SalePurchased {
		t.Fatalf("status = %s, want PURCHASED while settled", s.Status)
	}
	if s.FeesPaid != s.Fees || s.AgencyFeePaid != s.AgencyFee {
		t.Fatalf("fee buckets disturbed: %+v agency=%d", s.FeesPaid, s.AgencyFeePaid)
	}
	if got := paidSum(s); got != s.PaidAmount {
		t.Fatalf("paid fields sum to %d, paid amount is %d", got, s.PaidAmount)
	}
}

func TestLedgerSumInvariantUnderRandomSequence(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	types := []PaymentType{
		PaymentGeneral, PaymentFacility, PaymentInfrastructure,
		PaymentWater, PaymentElectricity, PaymentSupervision,
		PaymentAuthority, PaymentOther,
	}

	for run := 0; run < 50; run++ {
		fees := FeeSchedule{
			Infrastructure: rng.Int63n(100_000),
			Facility:       rng.Int63n(100_000),
			Water:          rng.Int63n(50_000),
			Electricity:    rng.Int63n(50_000),
			Supervision:    rng.Int63n(50_000),
			Authority:      rng.Int63n(50_000),
			Other:          rng.Int63n(50_000),
		}
		price := 500_000 + rng.Int63n(1_000_000)
		agencyFee, total := ComputeTotals(price, fees, 5, 0)
		s := &Sale{
			Status:          SaleActive,
			PaymentStatus:   PaymentUnpaid,
			PropertyPayable: price,
			AgencyFee:       agencyFee,
			Fees:            fees,
			TotalPayable:    total,
		}

		type applied struct {
			amount int64
			ptype  PaymentType
		}
		var history []applied

		for i := 0; i < 20; i++ {
			if len(history) > 0 && rng.Intn(3) == 0 {
				last := history[len(history)-1]
				history = history[:len(history)-1]
				if err := s.ReversePayment(last.amount, last.ptype); err != nil {
					t.Fatalf("run %d: reverse: %v", run, err)
				}
			} else {
				amount := 1 + rng.Int63n(200_000)
				ptype := types[rng.Intn(len(types))]
				if err := s.ApplyPayment(amount, ptype); err != nil {
					continue
				}
				history = append(history, applied{amount, ptype})
			}

			if got := paidSum(s); got != s.PaidAmount {
				t.Fatalf("run %d step %d: paid fields sum to %d, paid amount is %d", run, i, got, s.PaidAmount)
			}
			if got := DerivePaymentStatus(s.PaidAmount, s.TotalPayable); got != s.PaymentStatus {
				t.Fatalf("run %d step %d: stored status %s, derived %s", run, i, s.PaymentStatus, got)
			}
		}
	}
}
