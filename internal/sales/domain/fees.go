package domain

import "math"

// FeeSchedule holds the seven named fee buckets attached to a sale.
// The same type doubles as the paid-so-far counters.
type FeeSchedule struct {
	Infrastructure int64
	Facility       int64
	Water          int64
	Electricity    int64
	Supervision    int64
	Authority      int64
	Other          int64
}

// Sum returns the total of all buckets.
func (f FeeSchedule) Sum() int64 {
	return f.Infrastructure + f.Facility + f.Water + f.Electricity +
		f.Supervision + f.Authority + f.Other
}

// ComputeAgencyFee derives the agency fee amount from the property price
// and a percentage, rounded to the nearest minor unit.
func ComputeAgencyFee(price int64, agencyFeePercent float64) int64 {
	return int64(math.Round(float64(price) * agencyFeePercent / 100))
}

// ComputeTotals calculates the agency fee and total payable amount for a
// sale. The result is not clamped; a negative total is returned as is and
// rejected by the caller.
func ComputeTotals(price int64, fees FeeSchedule, agencyFeePercent float64, discount int64) (agencyFee, totalPayable int64) {
	agencyFee = ComputeAgencyFee(price, agencyFeePercent)
	totalPayable = price + fees.Sum() + agencyFee - discount
	return agencyFee, totalPayable
}
