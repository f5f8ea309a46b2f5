package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"

	"hotel_ratecheck/internal/domain"
)

func encodeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printRun(w io.Writer, format string, run domain.CheckRun) error {
	switch format {
	case "json":
		return encodeJSON(w, run)
	case "table":
	default:
		return fmt.Errorf("unknown format %q", format)
	}

	fmt.Fprintf(w, "Run %s  (%s, %d reservations)\n\n",
		run.ID, run.FinishedAt.Sub(run.StartedAt).Round(time.Millisecond), len(run.Reports))

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RESERVATION\tBOOKED\tBEST\tRATE\tSAVES/NIGHT\tPCT")
	for _, rep := range run.Reports {
		if rep.Result == nil {
			fmt.Fprintf(tw, "%s\t-\t-\tcheck failed: %s\t-\t-\n", rep.ReservationID, rep.Error)
			continue
		}
		res := rep.Result
		booked := money(res.Reservation, res.Reservation.OriginalRatePerNight)
		if res.Best == nil {
			fmt.Fprintf(tw, "%s\t%s\t-\tno comparable rate found\t-\t-\n", res.Reservation.DisplayName(), booked)
			continue
		}
		best, _ := res.Best.Rate.NightlyAmount(res.Reservation.StayType)
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s%%\n",
			res.Reservation.DisplayName(), booked,
			money(res.Reservation, best), res.Best.Rate.RateName,
			money(res.Reservation, res.Best.Savings.DiffPerNight),
			res.Best.Savings.Pct.StringFixed(1))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(w, "\n%d cheaper rate(s) found\n", len(run.Cheaper()))
	return nil
}

func printResult(w io.Writer, format string, res domain.ComparisonResult) error {
	switch format {
	case "json":
		return encodeJSON(w, res)
	case "table":
	default:
		return fmt.Errorf("unknown format %q", format)
	}

	c := res.Reservation
	fmt.Fprintf(w, "%s  %s → %s  (%d nights, %s)\n",
		c.DisplayName(), c.CheckIn, c.CheckOut, res.NumNights, c.CancellationType.Label())
	fmt.Fprintf(w, "Booked: %s/night\n\n", money(c, c.OriginalRatePerNight))

	if res.Best == nil {
		fmt.Fprintln(w, "No comparable rate found")
	} else {
		s := res.Best.Savings
		fmt.Fprintf(w, "Best:   %s  %s/night\n", res.Best.Rate.RateName, nightly(c, res.Best.Rate))
		fmt.Fprintf(w, "Saves:  %s/night, %s total (%s%%)\n",
			money(c, s.DiffPerNight), money(c, s.DiffTotal), s.Pct.StringFixed(1))
	}
	for _, a := range res.Alternates {
		fmt.Fprintf(w, "%-15s %s  %s/night (%s%%)\n",
			a.Label+":", a.Rate.RateName, nightly(c, a.Rate), a.Savings.Pct.StringFixed(1))
	}
	if len(res.RateRows) == 0 {
		return nil
	}

	fmt.Fprintln(w)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "\tROOM\tRATE\tPRICE\tREFUND\tDIFF")
	for _, row := range res.RateRows {
		mark := ""
		if row.IsBest {
			mark = "*"
		}
		diff := "-"
		if row.Savings != nil {
			diff = money(c, row.Savings.DiffPerNight)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			mark, row.Rate.RoomTypeCode, row.Rate.RateName, nightly(c, row.Rate), row.Rate.Refundability, diff)
	}
	return tw.Flush()
}

func nightly(c domain.ReservationConfig, r domain.RateRecord) string {
	d, ok := r.NightlyAmount(c.StayType)
	if !ok {
		return "-"
	}
	return money(c, d)
}

func money(c domain.ReservationConfig, d decimal.Decimal) string {
	if c.StayType == domain.StayAward {
		return d.StringFixed(0) + " pts"
	}
	return c.Currency + " " + d.StringFixed(2)
}
