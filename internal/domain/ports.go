package domain

import "context"

// RateSource retrieves the currently available rates for a reservation's stay.
type RateSource interface {
	FetchRates(ctx context.Context, cfg ReservationConfig) ([]RateRecord, error)
}

type ReservationRepository interface {
	ListReservations(ctx context.Context) ([]ReservationConfig, error)
	GetReservation(ctx context.Context, id string) (ReservationConfig, error)
	UpsertReservation(ctx context.Context, cfg ReservationConfig) error
	DeleteReservation(ctx context.Context, id string) error
}

type RunRepository interface {
	SaveRun(ctx context.Context, run CheckRun) error
	LatestRun(ctx context.Context) (CheckRun, error)
}

// Notifier delivers alerts produced by a check run.
type Notifier interface {
	NotifyCheaperRate(ctx context.Context, res ComparisonResult) error
	NotifySummary(ctx context.Context, run CheckRun) error
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}
