package mysql

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"hotel_ratecheck/internal/domain"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Migrate applies the embedded schema files in name order. Every file is
// idempotent (CREATE ... IF NOT EXISTS), so it is safe on each boot.
func Migrate(ctx context.Context, db *sql.DB) error {
	names, err := fs.Glob(migrations, "migrations/*.sql")
	if err != nil {
		return err
	}
	sort.Strings(names)
	for _, n := range names {
		b, err := migrations.ReadFile(n)
		if err != nil {
			return err
		}
		if _, err := db.ExecContext(ctx, string(b)); err != nil {
			return fmt.Errorf("migrate %s: %w", n, err)
		}
	}
	return nil
}

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) Ping(ctx context.Context) error { return r.db.PingContext(ctx) }

func (r *Repo) UpsertReservation(ctx context.Context, c domain.ReservationConfig) error {
	_, err := r.db.ExecContext(ctx, upsertReservationSQL,
		c.ID,
		c.Name,
		strings.ToLower(c.PropertyID),
		c.CheckIn.Time,
		c.CheckOut.Time,
		c.Adults,
		c.NumRooms,
		c.OriginalRatePerNight,
		strings.ToUpper(c.Currency),
		c.CancellationType.String(),
		c.StayType.String(),
	)
	return err
}

func (r *Repo) DeleteReservation(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, deleteReservationSQL, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *Repo) GetReservation(ctx context.Context, id string) (domain.ReservationConfig, error) {
	c, err := scanReservation(r.db.QueryRowContext(ctx, getReservationSQL, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ReservationConfig{}, domain.ErrNotFound
	}
	return c, err
}

func (r *Repo) ListReservations(ctx context.Context) ([]domain.ReservationConfig, error) {
	rows, err := r.db.QueryContext(ctx, listReservationsSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ReservationConfig
	for rows.Next() {
		c, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanReservation(s scanner) (domain.ReservationConfig, error) {
	var (
		c            domain.ReservationConfig
		in, out      time.Time
		rate         decimal.Decimal
		cancel, stay string
	)
	if err := s.Scan(
		&c.ID,
		&c.Name,
		&c.PropertyID,
		&in, &out,
		&c.Adults,
		&c.NumRooms,
		&rate,
		&c.Currency,
		&cancel,
		&stay,
	); err != nil {
		return domain.ReservationConfig{}, err
	}
	c.CheckIn = domain.NewDate(in.Year(), in.Month(), in.Day())
	c.CheckOut = domain.NewDate(out.Year(), out.Month(), out.Day())
	c.OriginalRatePerNight = rate

	var err error
	if c.CancellationType, err = domain.ParseCancellationType(cancel); err != nil {
		return domain.ReservationConfig{}, fmt.Errorf("reservation %s: %w", c.ID, err)
	}
	if c.StayType, err = domain.ParseStayType(stay); err != nil {
		return domain.ReservationConfig{}, fmt.Errorf("reservation %s: %w", c.ID, err)
	}
	return c, nil
}

// SaveRun stores the run with its reports as a JSON blob.
func (r *Repo) SaveRun(ctx context.Context, run domain.CheckRun) error {
	reports, err := json.Marshal(run.Reports)
	if err != nil {
		return fmt.Errorf("encode reports: %w", err)
	}
	_, err = r.db.ExecContext(ctx, insertRunSQL,
		run.ID,
		run.StartedAt.UTC(),
		run.FinishedAt.UTC(),
		string(reports),
		len(run.Cheaper()),
	)
	return err
}

func (r *Repo) LatestRun(ctx context.Context) (domain.CheckRun, error) {
	var (
		run     domain.CheckRun
		reports []byte
	)
	err := r.db.QueryRowContext(ctx, latestRunSQL).Scan(&run.ID, &run.StartedAt, &run.FinishedAt, &reports)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.CheckRun{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.CheckRun{}, err
	}
	if err := json.Unmarshal(reports, &run.Reports); err != nil {
		return domain.CheckRun{}, fmt.Errorf("decode reports for run %s: %w", run.ID, err)
	}
	return run, nil
}
