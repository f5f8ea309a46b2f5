package domain_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotel_ratecheck/internal/domain"
)

func validReservation() domain.ReservationConfig {
	return domain.ReservationConfig{
		PropertyID:           "yyzdt",
		CheckIn:              domain.NewDate(2026, time.March, 1),
		CheckOut:             domain.NewDate(2026, time.March, 4),
		Adults:               2,
		NumRooms:             1,
		OriginalRatePerNight: decimal.RequireFromString("229.00"),
		Currency:             "CAD",
	}
}

func TestReservation_Validate(t *testing.T) {
	require.NoError(t, validReservation().Validate())

	cases := map[string]func(*domain.ReservationConfig){
		"same day":         func(c *domain.ReservationConfig) { c.CheckOut = c.CheckIn },
		"reversed":         func(c *domain.ReservationConfig) { c.CheckIn, c.CheckOut = c.CheckOut, c.CheckIn },
		"zero rate":        func(c *domain.ReservationConfig) { c.OriginalRatePerNight = decimal.Zero },
		"negative rate":    func(c *domain.ReservationConfig) { c.OriginalRatePerNight = decimal.NewFromInt(-5) },
		"no adults":        func(c *domain.ReservationConfig) { c.Adults = 0 },
		"no rooms":         func(c *domain.ReservationConfig) { c.NumRooms = 0 },
		"missing property": func(c *domain.ReservationConfig) { c.PropertyID = "  " },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := validReservation()
			mutate(&c)
			assert.ErrorIs(t, c.Validate(), domain.ErrInvalidReservation)
		})
	}
}

func TestReservation_NumNightsAndCopy(t *testing.T) {
	c := validReservation()
	assert.Equal(t, 3, c.NumNights())

	alt := c.WithCancellation(domain.CancelNonRefundable)
	assert.Equal(t, domain.CancelNonRefundable, alt.CancellationType)
	assert.Equal(t, domain.CancelAny, c.CancellationType)
	assert.Equal(t, c.PropertyID, alt.PropertyID)
}

func TestReservation_DisplayName(t *testing.T) {
	c := validReservation()
	assert.Equal(t, "YYZDT", c.DisplayName())
	c.Name = "Toronto Marriott Downtown"
	assert.Equal(t, "Toronto Marriott Downtown", c.DisplayName())
}

func TestReservation_JSON(t *testing.T) {
	raw := `{"property_id":"yyzdt","check_in":"2026-03-01","check_out":"2026-03-03","adults":2,"num_rooms":1,
		"original_rate_per_night":"229.00","currency":"CAD","cancellation_type":"nonrefundable","stay_type":"award"}`
	var c domain.ReservationConfig
	require.NoError(t, json.Unmarshal([]byte(raw), &c))
	assert.Equal(t, domain.CancelNonRefundable, c.CancellationType)
	assert.Equal(t, domain.StayAward, c.StayType)
	assert.Equal(t, 2, c.NumNights())

	out, err := json.Marshal(c)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"check_in":"2026-03-01"`)
	assert.Contains(t, string(out), `"cancellation_type":"nonrefundable"`)

	assert.Error(t, json.Unmarshal([]byte(`{"check_in":"03/01/2026"}`), &c))
	assert.Error(t, json.Unmarshal([]byte(`{"cancellation_type":"sometimes"}`), &c))
}

func TestRateRecord_Validate(t *testing.T) {
	p := decimal.NewFromInt(100)
	neg := decimal.NewFromInt(-1)
	pts := int64(40000)

	assert.NoError(t, domain.RateRecord{PricePerNight: &p}.Validate())
	assert.NoError(t, domain.RateRecord{PointsPerNight: &pts}.Validate())
	assert.ErrorIs(t, domain.RateRecord{RateName: "x"}.Validate(), domain.ErrInvalidRate)
	assert.ErrorIs(t, domain.RateRecord{PricePerNight: &neg}.Validate(), domain.ErrInvalidRate)
}

func TestRefundability_JSONKeepsUnknown(t *testing.T) {
	b, err := json.Marshal(domain.RefundUnknown)
	require.NoError(t, err)
	assert.Equal(t, `"unknown"`, string(b))

	var r domain.Refundability
	require.NoError(t, json.Unmarshal([]byte(`"non-refundable"`), &r))
	assert.Equal(t, domain.NonRefundable, r)
}
