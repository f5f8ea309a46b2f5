package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"hotel_ratecheck/internal/domain"
	"hotel_ratecheck/internal/shared"
)

func stay(ct domain.CancellationType) domain.ReservationConfig {
	return domain.ReservationConfig{
		PropertyID:           "yyzdt",
		CheckIn:              domain.NewDate(2026, time.March, 1),
		CheckOut:             domain.NewDate(2026, time.March, 3),
		Adults:               2,
		NumRooms:             1,
		OriginalRatePerNight: decimal.RequireFromString("229"),
		Currency:             "CAD",
		CancellationType:     ct,
	}
}

func priced(name, price string) domain.RateRecord {
	p := decimal.RequireFromString(price)
	return domain.RateRecord{RoomTypeCode: "KNGS", RateName: name, PricePerNight: &p, Currency: "CAD"}
}

func TestEvaluate_IgnoresSuppliedRefundability(t *testing.T) {
	prepay := priced("Prepay Advance Purchase", "100")
	prepay.DepositRequired = true
	prepay.Refundability = domain.Refundable
	in := compareInput{
		Reservation: stay(domain.CancelRefundable),
		Rates:       []domain.RateRecord{prepay, priced("Flexible", "200")},
	}

	res, err := evaluate(in, false)
	require.NoError(t, err)
	require.NotNil(t, res.Best)
	assert.Equal(t, "Flexible", res.Best.Rate.RateName)
	assert.Equal(t, domain.Refundable, in.Rates[0].Refundability, "input records are not mutated")
}

func TestEvaluate_EmptyRates(t *testing.T) {
	_, err := evaluate(compareInput{Reservation: stay(domain.CancelAny)}, false)
	assert.True(t, errors.Is(err, errNoRates))

	res, err := evaluate(compareInput{Reservation: stay(domain.CancelAny)}, true)
	require.NoError(t, err)
	assert.Nil(t, res.Best, "an empty live fetch is a valid no-match")
}

func TestCompareCommand_ReservationNeedsLive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "booking.json")
	b, err := json.Marshal(stay(domain.CancelAny))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))

	a := &cli.App{Name: "checker", Commands: []*cli.Command{compareCommand(shared.Config{})}}
	err = a.RunContext(context.Background(), []string{"checker", "compare", "--reservation", path})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--live")
}

func TestPrintResult_Table(t *testing.T) {
	prepay := priced("Advance Purchase, Prepay", "140")
	prepay.DepositRequired = true
	res, err := evaluate(compareInput{
		Reservation: stay(domain.CancelAny),
		Rates:       []domain.RateRecord{priced("Flexible Rate", "229"), prepay},
	}, false)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, printResult(&buf, "table", res))
	out := buf.String()
	assert.Contains(t, out, "Best:   Advance Purchase, Prepay  CAD 140.00/night")
	assert.Contains(t, out, "CAD 89.00/night, CAD 178.00 total (38.9%)")

	assert.Error(t, printResult(&buf, "xml", res))
}
