package compare

import (
	"github.com/shopspring/decimal"

	"hotel_ratecheck/internal/domain"
)

var hundred = decimal.NewFromInt(100)

// Savings computes the per-night and trip deltas of best against the booked
// nightly rate. It returns nil when best is nil or lacks an amount for the
// stay type. A zero original rate yields a zero percentage. No rounding.
func Savings(original decimal.Decimal, best *domain.RateRecord, nights int, stay domain.StayType) *domain.Savings {
	if best == nil {
		return nil
	}
	amt, ok := best.NightlyAmount(stay)
	if !ok {
		return nil
	}
	diff := original.Sub(amt)
	pct := decimal.Zero
	if !original.IsZero() {
		pct = diff.Div(original).Mul(hundred)
	}
	return &domain.Savings{
		DiffPerNight: diff,
		Pct:          pct,
		DiffTotal:    diff.Mul(decimal.NewFromInt(int64(nights))),
	}
}
