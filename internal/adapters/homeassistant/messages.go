package homeassistant

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"hotel_ratecheck/internal/domain"
)

const noComparable = "no comparable rate found"

// amount renders a nightly figure in the stay's unit: currency for cash,
// points for award stays.
func amount(stay domain.StayType, currency string, d decimal.Decimal) string {
	if stay == domain.StayAward {
		return d.StringFixed(0) + " pts"
	}
	return fmt.Sprintf("%s $%s", currency, d.StringFixed(2))
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}

// AlertMessage formats a single reservation's best match.
func AlertMessage(res domain.ComparisonResult) (title, message string) {
	cfg := res.Reservation
	if res.Best == nil {
		return "🏨 " + cfg.DisplayName(), noComparable
	}
	best, s := res.Best.Rate, res.Best.Savings
	nightly, _ := best.NightlyAmount(cfg.StayType)

	title = "🏨 Cheaper rate found: " + cfg.DisplayName()
	lines := []string{
		best.RateName,
		fmt.Sprintf("%s/night  (↓ %s%% vs your %s)",
			amount(cfg.StayType, cfg.Currency, nightly), s.Pct.StringFixed(1),
			amount(cfg.StayType, cfg.Currency, cfg.OriginalRatePerNight)),
		fmt.Sprintf("Saves %s/night · %s over %s",
			amount(cfg.StayType, cfg.Currency, s.DiffPerNight),
			amount(cfg.StayType, cfg.Currency, s.DiffTotal),
			plural(res.NumNights, "night")),
		fmt.Sprintf("Check-in %s  →  %s", cfg.CheckIn, cfg.CheckOut),
	}
	return title, strings.Join(lines, "\n")
}

// SummaryMessage lists cheaper finds first, then reservations that could not
// be compared. A run with nothing to report says so with its finish time.
func SummaryMessage(run domain.CheckRun) (title, message string) {
	var drops, others []string
	for _, rep := range run.Reports {
		switch {
		case rep.Result == nil:
			others = append(others, fmt.Sprintf("• %s: check failed", rep.ReservationID))
		case rep.Result.Best == nil:
			others = append(others, fmt.Sprintf("• %s: %s", rep.Result.Reservation.DisplayName(), noComparable))
		case rep.Result.HasCheaper():
			cfg, s := rep.Result.Reservation, rep.Result.Best.Savings
			drops = append(drops, fmt.Sprintf("• %s: ↓%s%% (%s savings)",
				cfg.DisplayName(), s.Pct.StringFixed(1), amount(cfg.StayType, cfg.Currency, s.DiffTotal)))
		}
	}

	finished := run.FinishedAt.UTC().Format("2006-01-02 15:04 MST")
	if len(drops) > 0 {
		return fmt.Sprintf("🏨 Cheaper rates found (%d)", len(drops)), strings.Join(append(drops, others...), "\n")
	}
	if len(others) > 0 {
		return "🏨 Marriott Check", strings.Join(append(others, finished), "\n")
	}
	return "🏨 Marriott Check", "All booked rates are still the best ✓\n" + finished
}
