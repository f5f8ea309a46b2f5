package compare

import (
	"fmt"
	"sort"

	"hotel_ratecheck/internal/domain"
)

// Build assembles the comparison for one reservation. Invalid reservations and
// records with neither price nor points are rejected rather than compared, so a
// broken input never surfaces as "no savings".
//
// Rate rows are the deduplicated list, which keys on cash price only. For award
// stays two points offers sharing a rate name and room type collapse to the
// first seen, so the best match can be absent from the rows and then no row is
// marked IsBest.
func Build(records []domain.RateRecord, cfg domain.ReservationConfig) (domain.ComparisonResult, error) {
	if err := cfg.Validate(); err != nil {
		return domain.ComparisonResult{}, err
	}
	for i, r := range records {
		if err := r.Validate(); err != nil {
			return domain.ComparisonResult{}, fmt.Errorf("rate %d: %w", i, err)
		}
	}

	nights := cfg.NumNights()
	res := domain.ComparisonResult{
		Reservation: cfg,
		NumNights:   nights,
		Alternates:  Alternates(records, cfg),
	}

	// Selection runs on the raw list: dedup ignores points, so it could hide a
	// cheaper award record sharing a key with an earlier one.
	if best := Select(records, cfg.StayType, cfg.CancellationType); best != nil {
		if sv := Savings(cfg.OriginalRatePerNight, best, nights, cfg.StayType); sv != nil {
			res.Best = &domain.BestMatch{Rate: *best, Savings: *sv}
		}
	}

	res.RateRows = rateRows(Normalize(records), cfg, nights, res.Best)
	return res, nil
}

func rateRows(recs []domain.RateRecord, cfg domain.ReservationConfig, nights int, best *domain.BestMatch) []domain.RateRow {
	rows := make([]domain.RateRow, 0, len(recs))
	for i := range recs {
		r := recs[i]
		rows = append(rows, domain.RateRow{
			Rate:    r,
			Savings: Savings(cfg.OriginalRatePerNight, &r, nights, cfg.StayType),
			IsBest:  best != nil && best.Rate.SameOffer(r),
		})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rowLess(rows[i].Rate, rows[j].Rate) })
	return rows
}

// rowLess orders by cash price ascending; unpriced rows go last, ordered by points.
func rowLess(a, b domain.RateRecord) bool {
	switch {
	case a.PricePerNight != nil && b.PricePerNight != nil:
		return a.PricePerNight.LessThan(*b.PricePerNight)
	case a.PricePerNight != nil:
		return true
	case b.PricePerNight != nil:
		return false
	case a.PointsPerNight != nil && b.PointsPerNight != nil:
		return *a.PointsPerNight < *b.PointsPerNight
	}
	return a.PointsPerNight != nil && b.PointsPerNight == nil
}
