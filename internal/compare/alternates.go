package compare

import (
	"golang.org/x/sync/errgroup"

	"hotel_ratecheck/internal/domain"
)

// alternateCategories lists the categories to compare besides the reservation's own.
func alternateCategories(ct domain.CancellationType) []domain.CancellationType {
	switch ct {
	case domain.CancelRefundable:
		return []domain.CancellationType{domain.CancelNonRefundable}
	case domain.CancelNonRefundable:
		return []domain.CancellationType{domain.CancelRefundable}
	default:
		return []domain.CancellationType{domain.CancelRefundable, domain.CancelNonRefundable}
	}
}

// Alternates answers "what if the cancellation constraint were different".
// Categories with no comparable rate are omitted. An alternate may be the same
// record as the primary best match when the reservation accepts any policy.
func Alternates(records []domain.RateRecord, cfg domain.ReservationConfig) []domain.Alternate {
	cats := alternateCategories(cfg.CancellationType)
	nights := cfg.NumNights()

	slots := make([]*domain.Alternate, len(cats))
	var g errgroup.Group
	for i, cat := range cats {
		i, cat := i, cat
		alt := cfg.WithCancellation(cat)
		g.Go(func() error {
			best := Select(records, alt.StayType, alt.CancellationType)
			sv := Savings(alt.OriginalRatePerNight, best, nights, alt.StayType)
			if best == nil || sv == nil {
				return nil
			}
			slots[i] = &domain.Alternate{
				Category: cat,
				Label:    cat.Label(),
				Rate:     *best,
				Savings:  *sv,
			}
			return nil
		})
	}
	_ = g.Wait()

	out := make([]domain.Alternate, 0, len(cats))
	for _, a := range slots {
		if a != nil {
			out = append(out, *a)
		}
	}
	return out
}
