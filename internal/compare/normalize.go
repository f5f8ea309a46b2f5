package compare

import "hotel_ratecheck/internal/domain"

type rateKey struct{ rateName, roomType string }

// Normalize keeps one record per (rate name, room type code). A priced record
// replaces a collision only when strictly cheaper, and always replaces an
// unpriced one; unpriced collisions keep the first seen. Output follows
// first-seen key order.
func Normalize(records []domain.RateRecord) []domain.RateRecord {
	idx := make(map[rateKey]int, len(records))
	out := make([]domain.RateRecord, 0, len(records))
	for _, r := range records {
		k := rateKey{r.RateName, r.RoomTypeCode}
		i, seen := idx[k]
		if !seen {
			idx[k] = len(out)
			out = append(out, r)
			continue
		}
		if cheaper(r, out[i]) {
			out[i] = r
		}
	}
	return out
}

func cheaper(cand, cur domain.RateRecord) bool {
	if cand.PricePerNight == nil {
		return false
	}
	if cur.PricePerNight == nil {
		return true
	}
	return cand.PricePerNight.LessThan(*cur.PricePerNight)
}
