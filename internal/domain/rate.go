package domain

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Refundability is a tri-state cancellation classification of a rate.
// Unknown is never folded into either of the other two states.
type Refundability int

const (
	RefundUnknown Refundability = iota
	Refundable
	NonRefundable
)

func (r Refundability) String() string {
	switch r {
	case Refundable:
		return "refundable"
	case NonRefundable:
		return "nonrefundable"
	default:
		return "unknown"
	}
}

func (r Refundability) MarshalJSON() ([]byte, error) { return json.Marshal(r.String()) }

func (r *Refundability) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	switch strings.ToLower(s) {
	case "refundable":
		*r = Refundable
	case "nonrefundable", "non-refundable":
		*r = NonRefundable
	default:
		*r = RefundUnknown
	}
	return nil
}

type StayType int

const (
	StayCash StayType = iota
	StayAward
)

func (s StayType) String() string {
	if s == StayAward {
		return "award"
	}
	return "cash"
}

func ParseStayType(s string) (StayType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "cash":
		return StayCash, nil
	case "award", "points":
		return StayAward, nil
	}
	return StayCash, fmt.Errorf("unknown stay type %q", s)
}

func (s StayType) MarshalJSON() ([]byte, error) { return json.Marshal(s.String()) }

func (s *StayType) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	v, err := ParseStayType(raw)
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// CancellationType is the policy filter a comparison must respect.
type CancellationType int

const (
	CancelAny CancellationType = iota
	CancelRefundable
	CancelNonRefundable
)

func (c CancellationType) String() string {
	switch c {
	case CancelRefundable:
		return "refundable"
	case CancelNonRefundable:
		return "nonrefundable"
	default:
		return "any"
	}
}

// Label is the display name used for alternate categories and summaries.
func (c CancellationType) Label() string {
	switch c {
	case CancelRefundable:
		return "Refundable"
	case CancelNonRefundable:
		return "Non-refundable"
	default:
		return "Any"
	}
}

func ParseCancellationType(s string) (CancellationType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "any":
		return CancelAny, nil
	case "refundable":
		return CancelRefundable, nil
	case "nonrefundable", "non-refundable":
		return CancelNonRefundable, nil
	}
	return CancelAny, fmt.Errorf("unknown cancellation type %q", s)
}

func (c CancellationType) MarshalJSON() ([]byte, error) { return json.Marshal(c.String()) }

func (c *CancellationType) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	v, err := ParseCancellationType(raw)
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// RateRecord is one advertised room+rate combination for a stay.
type RateRecord struct {
	RoomTypeCode          string           `json:"room_type_code"`
	RoomTypeName          string           `json:"room_type_name"`
	RoomDescription       string           `json:"room_description,omitempty"`
	RateName              string           `json:"rate_name"`
	RatePlanCode          string           `json:"rate_plan_code,omitempty"`
	MarketCode            string           `json:"market_code,omitempty"`
	PricePerNight         *decimal.Decimal `json:"price_per_night"`
	PointsPerNight        *int64           `json:"points_per_night"`
	Currency              string           `json:"currency"`
	IsMembersOnly         bool             `json:"is_members_only"`
	DepositRequired       bool             `json:"deposit_required"`
	FreeCancellationUntil *string          `json:"free_cancellation_until,omitempty"`
	Refundability         Refundability    `json:"refundability"`
}

// Validate enforces that a record carries a usable price or points amount.
func (r RateRecord) Validate() error {
	if r.PricePerNight == nil && r.PointsPerNight == nil {
		return fmt.Errorf("%w: %q/%q has neither price nor points", ErrInvalidRate, r.RateName, r.RoomTypeCode)
	}
	if r.PricePerNight != nil && r.PricePerNight.IsNegative() {
		return fmt.Errorf("%w: %q has negative price %s", ErrInvalidRate, r.RateName, r.PricePerNight)
	}
	if r.PointsPerNight != nil && *r.PointsPerNight < 0 {
		return fmt.Errorf("%w: %q has negative points %d", ErrInvalidRate, r.RateName, *r.PointsPerNight)
	}
	return nil
}

// NightlyAmount returns the per-night figure compared for the given stay type:
// points for award stays, cash price otherwise.
func (r RateRecord) NightlyAmount(stay StayType) (decimal.Decimal, bool) {
	if stay == StayAward {
		if r.PointsPerNight == nil {
			return decimal.Zero, false
		}
		return decimal.NewFromInt(*r.PointsPerNight), true
	}
	if r.PricePerNight == nil {
		return decimal.Zero, false
	}
	return *r.PricePerNight, true
}

// SameOffer reports whether two records describe the same rate at the same amount.
func (r RateRecord) SameOffer(o RateRecord) bool {
	if r.RateName != o.RateName {
		return false
	}
	switch {
	case r.PricePerNight == nil && o.PricePerNight == nil:
	case r.PricePerNight == nil || o.PricePerNight == nil:
		return false
	case !r.PricePerNight.Equal(*o.PricePerNight):
		return false
	}
	switch {
	case r.PointsPerNight == nil && o.PointsPerNight == nil:
		return true
	case r.PointsPerNight == nil || o.PointsPerNight == nil:
		return false
	}
	return *r.PointsPerNight == *o.PointsPerNight
}
