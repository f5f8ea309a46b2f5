package compare

import (
	"github.com/shopspring/decimal"

	"hotel_ratecheck/internal/domain"
)

// Select returns the cheapest eligible rate or nil when none qualifies.
// Award stays compare points and ignore the cancellation filter; cash stays
// compare price after filtering by refundability. Unknown refundability is
// only eligible under CancelAny. Ties go to the first record in input order.
func Select(records []domain.RateRecord, stay domain.StayType, filter domain.CancellationType) *domain.RateRecord {
	var (
		best    *domain.RateRecord
		bestAmt decimal.Decimal
	)
	for i := range records {
		r := records[i]
		amt, ok := r.NightlyAmount(stay)
		if !ok {
			continue
		}
		if stay == domain.StayCash && !eligible(r.Refundability, filter) {
			continue
		}
		if best == nil || amt.LessThan(bestAmt) {
			best, bestAmt = &r, amt
		}
	}
	return best
}

func eligible(r domain.Refundability, filter domain.CancellationType) bool {
	switch filter {
	case domain.CancelRefundable:
		return r == domain.Refundable
	case domain.CancelNonRefundable:
		return r == domain.NonRefundable
	default:
		return true
	}
}
