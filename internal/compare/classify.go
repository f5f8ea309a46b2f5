// Package compare holds the rate comparison engine: refundability
// classification, deduplication, best-match selection, savings and the
// per-reservation report. Everything here is pure and safe for concurrent use.
package compare

import (
	"strings"

	"hotel_ratecheck/internal/domain"
)

var (
	nonRefundableKeywords = []string{"prepay", "advance purchase", "non-refund", "non refund", "nonrefund"}
	refundableKeywords    = []string{"flexible", "flex", "refundable"}
)

// Classify derives refundability for a rate. The upstream availability search
// rarely fills a cancellation field, so rate-name keywords are used as a fallback.
// First matching rule wins.
func Classify(r domain.RateRecord, stay domain.StayType) domain.Refundability {
	if stay == domain.StayAward {
		return domain.Refundable
	}
	if r.FreeCancellationUntil != nil && strings.TrimSpace(*r.FreeCancellationUntil) != "" {
		return domain.Refundable
	}
	if r.DepositRequired {
		return domain.NonRefundable
	}
	name := strings.ToLower(r.RateName)
	if containsAny(name, nonRefundableKeywords) {
		return domain.NonRefundable
	}
	if containsAny(name, refundableKeywords) {
		return domain.Refundable
	}
	return domain.RefundUnknown
}

// ClassifyAll returns a copy of records with refundability derived by Classify.
// Whatever refundability the records arrived with is discarded.
func ClassifyAll(records []domain.RateRecord, stay domain.StayType) []domain.RateRecord {
	out := make([]domain.RateRecord, len(records))
	for i, r := range records {
		r.Refundability = Classify(r, stay)
		out[i] = r
	}
	return out
}

func containsAny(s string, kws []string) bool {
	for _, kw := range kws {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
