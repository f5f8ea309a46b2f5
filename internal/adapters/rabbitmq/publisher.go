// Package rabbitmq publishes check-run events for downstream consumers.
// Each publish dials, declares the durable queue and sends one persistent
// JSON message; failures are logged and returned.
package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"hotel_ratecheck/internal/adapters/observability"
	"hotel_ratecheck/internal/domain"
)

const (
	CheaperQueue = "rate.cheaper"
	RunsQueue    = "rate.runs"
	channel      = "rabbitmq"
)

// RateDropEvent is published once per reservation whose best match undercuts the booked rate.
type RateDropEvent struct {
	ReservationID string          `json:"reservation_id"`
	Name          string          `json:"name"`
	PropertyID    string          `json:"property_id"`
	CheckIn       domain.Date     `json:"check_in"`
	CheckOut      domain.Date     `json:"check_out"`
	StayType      domain.StayType `json:"stay_type"`
	Currency      string          `json:"currency"`
	OriginalPrice decimal.Decimal `json:"original_per_night"`
	RateName      string          `json:"rate_name"`
	RoomTypeCode  string          `json:"room_type_code"`
	NightlyAmount decimal.Decimal `json:"best_per_night"`
	Refundability string          `json:"refundability"`
	DiffPerNight  decimal.Decimal `json:"diff_per_night"`
	DiffTotal     decimal.Decimal `json:"diff_total"`
	Pct           decimal.Decimal `json:"pct"`
	NumNights     int             `json:"num_nights"`
	DetectedAt    time.Time       `json:"detected_at"`
}

// RunCompletedEvent summarises a whole run.
type RunCompletedEvent struct {
	RunID        string    `json:"run_id"`
	StartedAt    time.Time `json:"started_at"`
	FinishedAt   time.Time `json:"finished_at"`
	Reservations int       `json:"reservations"`
	Cheaper      int       `json:"cheaper"`
	Failed       int       `json:"failed"`
}

// NewRateDropEvent returns false when res carries no best match.
func NewRateDropEvent(res domain.ComparisonResult, now time.Time) (RateDropEvent, bool) {
	if res.Best == nil {
		return RateDropEvent{}, false
	}
	cfg, best := res.Reservation, res.Best
	nightly, _ := best.Rate.NightlyAmount(cfg.StayType)
	return RateDropEvent{
		ReservationID: cfg.ID,
		Name:          cfg.DisplayName(),
		PropertyID:    strings.ToUpper(cfg.PropertyID),
		CheckIn:       cfg.CheckIn,
		CheckOut:      cfg.CheckOut,
		StayType:      cfg.StayType,
		Currency:      cfg.Currency,
		OriginalPrice: cfg.OriginalRatePerNight,
		RateName:      best.Rate.RateName,
		RoomTypeCode:  best.Rate.RoomTypeCode,
		NightlyAmount: nightly,
		Refundability: best.Rate.Refundability.String(),
		DiffPerNight:  best.Savings.DiffPerNight,
		DiffTotal:     best.Savings.DiffTotal,
		Pct:           best.Savings.Pct,
		NumNights:     res.NumNights,
		DetectedAt:    now.UTC(),
	}, true
}

func NewRunCompletedEvent(run domain.CheckRun) RunCompletedEvent {
	ev := RunCompletedEvent{
		RunID:        run.ID,
		StartedAt:    run.StartedAt.UTC(),
		FinishedAt:   run.FinishedAt.UTC(),
		Reservations: len(run.Reports),
		Cheaper:      len(run.Cheaper()),
	}
	for _, rep := range run.Reports {
		if rep.Error != "" {
			ev.Failed++
		}
	}
	return ev
}

// Publisher implements domain.Notifier over RabbitMQ. An empty URL disables it.
type Publisher struct {
	url string
	now func() time.Time
}

func New(url string) *Publisher {
	return &Publisher{url: strings.TrimSpace(url), now: time.Now}
}

func (p *Publisher) Enabled() bool { return p.url != "" }

func (p *Publisher) NotifyCheaperRate(ctx context.Context, res domain.ComparisonResult) error {
	ev, ok := NewRateDropEvent(res, p.now())
	if !ok || !p.Enabled() {
		return nil
	}
	err := p.publish(ctx, CheaperQueue, ev)
	observability.ObserveNotification(channel, "alert", err)
	return err
}

func (p *Publisher) NotifySummary(ctx context.Context, run domain.CheckRun) error {
	if !p.Enabled() {
		return nil
	}
	err := p.publish(ctx, RunsQueue, NewRunCompletedEvent(run))
	observability.ObserveNotification(channel, "summary", err)
	return err
}

func (p *Publisher) publish(ctx context.Context, queue string, event any) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("rabbitmq: marshal event: %w", err)
	}

	conn, err := amqp.Dial(p.url)
	if err != nil {
		log.Error().Err(err).Msg("rabbitmq dial failed")
		return fmt.Errorf("rabbitmq: dial: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("rabbitmq: channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("rabbitmq: declare %s: %w", queue, err)
	}

	err = ch.PublishWithContext(ctx, "", queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    p.now().UTC(),
		Body:         body,
	})
	if err != nil {
		log.Error().Err(err).Str("queue", queue).Msg("rabbitmq publish failed")
		return fmt.Errorf("rabbitmq: publish %s: %w", queue, err)
	}
	log.Debug().Str("queue", queue).Msg("event published")
	return nil
}
