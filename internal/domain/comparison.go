package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Savings is measured against the booked nightly rate. A negative DiffPerNight
// means the compared rate is pricier than what was booked.
type Savings struct {
	DiffPerNight decimal.Decimal `json:"diff_per_night"`
	Pct          decimal.Decimal `json:"pct"`
	DiffTotal    decimal.Decimal `json:"diff_total"`
}

type BestMatch struct {
	Rate    RateRecord `json:"rate"`
	Savings Savings    `json:"savings"`
}

// Alternate is the best rate under a cancellation category other than the reservation's own.
type Alternate struct {
	Category CancellationType `json:"category"`
	Label    string           `json:"label"`
	Rate     RateRecord       `json:"rate"`
	Savings  Savings          `json:"savings"`
}

type RateRow struct {
	Rate    RateRecord `json:"rate"`
	Savings *Savings   `json:"savings,omitempty"`
	IsBest  bool       `json:"is_best"`
}

// ComparisonResult is produced once per reservation per run and never mutated.
// Best is nil when no comparable rate exists, which is not the same as "no savings".
type ComparisonResult struct {
	Reservation ReservationConfig `json:"reservation"`
	NumNights   int               `json:"num_nights"`
	Best        *BestMatch        `json:"best"`
	Alternates  []Alternate       `json:"alternates"`
	RateRows    []RateRow         `json:"rate_rows"`
}

// HasCheaper reports whether the best match undercuts the booked rate.
func (r ComparisonResult) HasCheaper() bool {
	return r.Best != nil && r.Best.Savings.DiffPerNight.IsPositive()
}

type RunStatus string

const (
	RunIdle     RunStatus = "idle"
	RunChecking RunStatus = "checking"
	RunDone     RunStatus = "done"
	RunError    RunStatus = "error"
)

// Report wraps one reservation's comparison within a run. Error is set instead of
// Result when the rates could not be fetched or compared.
type Report struct {
	ReservationID string            `json:"reservation_id"`
	Result        *ComparisonResult `json:"result,omitempty"`
	Error         string            `json:"error,omitempty"`
}

type CheckRun struct {
	ID         string    `json:"id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Reports    []Report  `json:"reports"`
}

// Cheaper returns the reports whose best match undercuts the booked rate.
func (r CheckRun) Cheaper() []ComparisonResult {
	var out []ComparisonResult
	for _, rep := range r.Reports {
		if rep.Result != nil && rep.Result.HasCheaper() {
			out = append(out, *rep.Result)
		}
	}
	return out
}

type Status struct {
	Status  RunStatus `json:"status"`
	LastRun *CheckRun `json:"last_run,omitempty"`
	Error   string    `json:"error,omitempty"`
}
