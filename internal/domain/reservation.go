package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// Date is a calendar day (UTC midnight) encoded as YYYY-MM-DD.
type Date struct{ time.Time }

func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return Date{t}, nil
}

func NewDate(y int, m time.Month, d int) Date { return Date{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)} }

func (d Date) String() string { return d.Format(dateLayout) }

func (d Date) MarshalJSON() ([]byte, error) { return json.Marshal(d.String()) }

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	v, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// ReservationConfig is the booked stay a comparison is evaluated against.
type ReservationConfig struct {
	ID                   string           `json:"id"`
	Name                 string           `json:"name"`
	PropertyID           string           `json:"property_id"`
	CheckIn              Date             `json:"check_in"`
	CheckOut             Date             `json:"check_out"`
	Adults               int              `json:"adults"`
	NumRooms             int              `json:"num_rooms"`
	OriginalRatePerNight decimal.Decimal  `json:"original_rate_per_night"`
	Currency             string           `json:"currency"`
	CancellationType     CancellationType `json:"cancellation_type"`
	StayType             StayType         `json:"stay_type"`
}

func (c ReservationConfig) Validate() error {
	if strings.TrimSpace(c.PropertyID) == "" {
		return fmt.Errorf("%w: property_id is required", ErrInvalidReservation)
	}
	if !c.CheckOut.After(c.CheckIn.Time) {
		return fmt.Errorf("%w: check_out %s must be after check_in %s", ErrInvalidReservation, c.CheckOut, c.CheckIn)
	}
	if !c.OriginalRatePerNight.IsPositive() {
		return fmt.Errorf("%w: original_rate_per_night must be > 0, got %s", ErrInvalidReservation, c.OriginalRatePerNight)
	}
	if c.Adults < 1 {
		return fmt.Errorf("%w: adults must be >= 1", ErrInvalidReservation)
	}
	if c.NumRooms < 1 {
		return fmt.Errorf("%w: num_rooms must be >= 1", ErrInvalidReservation)
	}
	return nil
}

func (c ReservationConfig) NumNights() int {
	return int(c.CheckOut.Sub(c.CheckIn.Time).Hours() / 24)
}

// WithCancellation returns a copy of c with only the cancellation policy replaced.
func (c ReservationConfig) WithCancellation(ct CancellationType) ReservationConfig {
	c.CancellationType = ct
	return c
}

// DisplayName falls back to the upper-cased property code.
func (c ReservationConfig) DisplayName() string {
	if n := strings.TrimSpace(c.Name); n != "" {
		return n
	}
	return strings.ToUpper(c.PropertyID)
}
