package app

import (
	"context"
	"errors"

	"hotel_ratecheck/internal/domain"
)

// Notifiers fans a notification out to every channel. All channels are tried;
// their errors are joined.
type Notifiers []domain.Notifier

func (ns Notifiers) NotifyCheaperRate(ctx context.Context, res domain.ComparisonResult) error {
	var errs []error
	for _, n := range ns {
		errs = append(errs, n.NotifyCheaperRate(ctx, res))
	}
	return errors.Join(errs...)
}

func (ns Notifiers) NotifySummary(ctx context.Context, run domain.CheckRun) error {
	var errs []error
	for _, n := range ns {
		errs = append(errs, n.NotifySummary(ctx, run))
	}
	return errors.Join(errs...)
}
