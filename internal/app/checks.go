package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/semaphore"

	"hotel_ratecheck/internal/adapters/observability"
	"hotel_ratecheck/internal/compare"
	"hotel_ratecheck/internal/domain"
)

// LatestRunKey is the cache key holding the most recent CheckRun.
const LatestRunKey = "run:latest"

// CheckService fetches current rates for every stored reservation and compares
// them against the booked rate. Only one run is active at a time.
type CheckService struct {
	source       domain.RateSource
	reservations domain.ReservationRepository
	runs         domain.RunRepository
	cache        domain.Cache
	notifier     domain.Notifier
	workers      int
	cacheTTL     time.Duration
	now          func() time.Time

	mu      sync.Mutex
	status  domain.RunStatus
	lastRun *domain.CheckRun
	lastErr string
	done    chan struct{}
}

func NewCheckService(
	src domain.RateSource,
	res domain.ReservationRepository,
	runs domain.RunRepository,
	cache domain.Cache,
	n domain.Notifier,
	workers int,
	ttl time.Duration,
) *CheckService {
	if workers <= 0 {
		workers = 1
	}
	return &CheckService{
		source:       src,
		reservations: res,
		runs:         runs,
		cache:        cache,
		notifier:     n,
		workers:      workers,
		cacheTTL:     ttl,
		now:          time.Now,
		status:       domain.RunIdle,
	}
}

// Status returns a snapshot of the run state.
func (s *CheckService) Status() domain.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := domain.Status{Status: s.status, Error: s.lastErr}
	if s.lastRun != nil {
		cp := *s.lastRun
		st.LastRun = &cp
	}
	return st
}

// Start launches a run in the background and returns its id. The run outlives
// the caller's context but keeps its values (trace, logger).
func (s *CheckService) Start(ctx context.Context) (string, error) {
	list, done, err := s.begin(ctx)
	if err != nil {
		return "", err
	}
	id := uuid.NewString()
	go func() {
		defer close(done)
		_, _ = s.execute(context.WithoutCancel(ctx), id, list)
	}()
	return id, nil
}

// Run performs a full check synchronously.
func (s *CheckService) Run(ctx context.Context) (domain.CheckRun, error) {
	list, done, err := s.begin(ctx)
	if err != nil {
		return domain.CheckRun{}, err
	}
	defer close(done)
	return s.execute(ctx, uuid.NewString(), list)
}

// Wait blocks until the active run, if any, has finished.
func (s *CheckService) Wait(ctx context.Context) error {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()
	if done == nil {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// begin claims the checking state before listing reservations, so the store
// is never queried under the lock. A failed or empty listing restores the
// previous state.
func (s *CheckService) begin(ctx context.Context) ([]domain.ReservationConfig, chan struct{}, error) {
	s.mu.Lock()
	if s.status == domain.RunChecking {
		s.mu.Unlock()
		return nil, nil, domain.ErrCheckRunning
	}
	prevStatus, prevErr, prevDone := s.status, s.lastErr, s.done
	done := make(chan struct{})
	s.status = domain.RunChecking
	s.lastErr = ""
	s.done = done
	s.mu.Unlock()

	list, err := s.reservations.ListReservations(ctx)
	if err == nil && len(list) == 0 {
		err = domain.ErrNoReservations
	}
	if err != nil {
		s.mu.Lock()
		s.status, s.lastErr, s.done = prevStatus, prevErr, prevDone
		s.mu.Unlock()
		close(done)
		return nil, nil, err
	}
	return list, done, nil
}

func (s *CheckService) execute(ctx context.Context, id string, list []domain.ReservationConfig) (domain.CheckRun, error) {
	ctx, span := observability.StartSpan(ctx, "check.Run",
		attribute.String("run_id", id),
		attribute.Int("reservations", len(list)),
	)
	defer span.End()

	lg := log.With().Str("run", id).Logger()
	lg.Info().Int("reservations", len(list)).Msg("check started")

	run := domain.CheckRun{ID: id, StartedAt: s.now().UTC()}
	run.Reports = s.checkAll(ctx, list)
	run.FinishedAt = s.now().UTC()

	var runErr error
	if err := s.runs.SaveRun(ctx, run); err != nil {
		lg.Error().Err(err).Msg("save run failed")
		runErr = err
	}
	if s.cache != nil {
		_ = s.cache.Set(ctx, LatestRunKey, run, int(s.cacheTTL.Seconds()))
	}
	s.notify(ctx, run)

	failed := 0
	for _, r := range run.Reports {
		if r.Error != "" {
			failed++
		}
	}
	if runErr == nil && failed == len(run.Reports) {
		runErr = errAllFailed(failed)
	}

	s.mu.Lock()
	s.lastRun = &run
	if runErr != nil {
		s.status = domain.RunError
		s.lastErr = runErr.Error()
	} else {
		s.status = domain.RunDone
	}
	s.mu.Unlock()

	outcome := string(domain.RunDone)
	if runErr != nil {
		outcome = string(domain.RunError)
		span.RecordError(runErr)
	}
	observability.ObserveRun(outcome)
	lg.Info().
		Int("cheaper", len(run.Cheaper())).
		Int("failed", failed).
		Dur("took", run.FinishedAt.Sub(run.StartedAt)).
		Msg("check finished")
	return run, runErr
}

func errAllFailed(n int) error {
	return fmt.Errorf("all %d reservation checks failed", n)
}

// checkAll evaluates reservations concurrently, bounded by the worker count;
// reports keep the input order.
func (s *CheckService) checkAll(ctx context.Context, list []domain.ReservationConfig) []domain.Report {
	reports := make([]domain.Report, len(list))
	sem := semaphore.NewWeighted(int64(s.workers))
	var wg sync.WaitGroup
	for i, cfg := range list {
		if err := sem.Acquire(ctx, 1); err != nil {
			reports[i] = domain.Report{ReservationID: cfg.ID, Error: err.Error()}
			continue
		}
		wg.Add(1)
		go func(i int, cfg domain.ReservationConfig) {
			defer wg.Done()
			defer sem.Release(1)
			reports[i] = s.checkOne(ctx, cfg)
		}(i, cfg)
	}
	wg.Wait()
	return reports
}

func (s *CheckService) checkOne(ctx context.Context, cfg domain.ReservationConfig) domain.Report {
	ctx, span := observability.StartSpan(ctx, "check.Reservation",
		attribute.String("reservation", cfg.ID),
		attribute.String("property", cfg.PropertyID),
	)
	defer span.End()

	rep := domain.Report{ReservationID: cfg.ID}
	records, err := s.source.FetchRates(ctx, cfg)
	if err == nil {
		var res domain.ComparisonResult
		if res, err = compare.Build(records, cfg); err == nil {
			rep.Result = &res
		}
	}
	if err != nil {
		span.RecordError(err)
		rep.Error = err.Error()
		observability.ObserveReservation(cfg.ID, "error", 0, false)
		log.Warn().Err(err).Str("reservation", cfg.ID).Msg("reservation check failed")
		return rep
	}

	res := rep.Result
	switch {
	case res.Best == nil:
		observability.ObserveReservation(cfg.ID, "no_match", 0, false)
	case res.HasCheaper():
		observability.ObserveReservation(cfg.ID, "cheaper", res.Best.Savings.Pct.InexactFloat64(), true)
	default:
		observability.ObserveReservation(cfg.ID, "not_cheaper", res.Best.Savings.Pct.InexactFloat64(), true)
	}
	log.Debug().
		Str("reservation", cfg.ID).
		Int("rates", len(records)).
		Bool("cheaper", res.HasCheaper()).
		Msg("reservation checked")
	return rep
}

// notify sends one alert per cheaper result, then the run summary. Delivery
// failures never fail the run.
func (s *CheckService) notify(ctx context.Context, run domain.CheckRun) {
	if s.notifier == nil {
		return
	}
	for _, res := range run.Cheaper() {
		if err := s.notifier.NotifyCheaperRate(ctx, res); err != nil {
			log.Warn().Err(err).Str("reservation", res.Reservation.ID).Msg("cheaper-rate alert failed")
		}
	}
	if err := s.notifier.NotifySummary(ctx, run); err != nil {
		log.Warn().Err(err).Msg("summary notification failed")
	}
}
