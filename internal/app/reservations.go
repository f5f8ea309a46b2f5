package app

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"hotel_ratecheck/internal/domain"
)

// ReservationService manages the stored bookings a check run compares against.
type ReservationService struct {
	repo domain.ReservationRepository
}

func NewReservationService(r domain.ReservationRepository) *ReservationService {
	return &ReservationService{repo: r}
}

func (s *ReservationService) List(ctx context.Context) ([]domain.ReservationConfig, error) {
	out, err := s.repo.ListReservations(ctx)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.ReservationConfig{}
	}
	return out, nil
}

func (s *ReservationService) Get(ctx context.Context, id string) (domain.ReservationConfig, error) {
	return s.repo.GetReservation(ctx, id)
}

// Create validates cfg and stores it under a fresh id.
func (s *ReservationService) Create(ctx context.Context, cfg domain.ReservationConfig) (domain.ReservationConfig, error) {
	cfg = tidy(cfg)
	cfg.ID = uuid.NewString()
	if err := cfg.Validate(); err != nil {
		return domain.ReservationConfig{}, err
	}
	if err := s.repo.UpsertReservation(ctx, cfg); err != nil {
		return domain.ReservationConfig{}, err
	}
	return cfg, nil
}

// Update replaces an existing reservation; unknown ids yield ErrNotFound.
func (s *ReservationService) Update(ctx context.Context, id string, cfg domain.ReservationConfig) (domain.ReservationConfig, error) {
	if _, err := s.repo.GetReservation(ctx, id); err != nil {
		return domain.ReservationConfig{}, err
	}
	cfg = tidy(cfg)
	cfg.ID = id
	if err := cfg.Validate(); err != nil {
		return domain.ReservationConfig{}, err
	}
	if err := s.repo.UpsertReservation(ctx, cfg); err != nil {
		return domain.ReservationConfig{}, err
	}
	return cfg, nil
}

func (s *ReservationService) Delete(ctx context.Context, id string) error {
	return s.repo.DeleteReservation(ctx, id)
}

func tidy(c domain.ReservationConfig) domain.ReservationConfig {
	c.Name = strings.TrimSpace(c.Name)
	c.PropertyID = strings.ToLower(strings.TrimSpace(c.PropertyID))
	c.Currency = strings.ToUpper(strings.TrimSpace(c.Currency))
	if c.Currency == "" {
		c.Currency = "USD"
	}
	if c.Adults == 0 {
		c.Adults = 1
	}
	if c.NumRooms == 0 {
		c.NumRooms = 1
	}
	return c
}
