// internal/adapters/homeassistant/notifier.go
package homeassistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"hotel_ratecheck/internal/adapters/observability"
	"hotel_ratecheck/internal/domain"
)

const channel = "homeassistant"

// Notifier pushes messages through a Home Assistant notify service using a
// long-lived access token. With no URL or token it is disabled and every call
// is a no-op.
type Notifier struct {
	url     string
	token   string
	service string
	hc      *http.Client
}

func New(url, token, service string) *Notifier {
	service = strings.TrimSpace(service)
	if service == "" {
		service = "notify"
	}
	return &Notifier{
		url:     strings.TrimRight(strings.TrimSpace(url), "/"),
		token:   strings.TrimSpace(token),
		service: service,
		hc:      &http.Client{Timeout: 10 * time.Second},
	}
}

func (n *Notifier) Enabled() bool { return n.url != "" && n.token != "" }

func (n *Notifier) NotifyCheaperRate(ctx context.Context, res domain.ComparisonResult) error {
	title, msg := AlertMessage(res)
	return n.send(ctx, "alert", title, msg)
}

func (n *Notifier) NotifySummary(ctx context.Context, run domain.CheckRun) error {
	title, msg := SummaryMessage(run)
	return n.send(ctx, "summary", title, msg)
}

// SendTest delivers a fixed message so the channel can be verified end to end.
func (n *Notifier) SendTest(ctx context.Context) error {
	return n.send(ctx, "test", "🏨 Rate check", "Test notification ✓")
}

func (n *Notifier) send(ctx context.Context, kind, title, message string) error {
	if !n.Enabled() {
		return nil
	}
	err := n.post(ctx, title, message)
	observability.ObserveNotification(channel, kind, err)
	if err != nil {
		log.Error().Err(err).Str("kind", kind).Msg("home assistant notify failed")
		return err
	}
	log.Info().Str("kind", kind).Str("title", title).Msg("home assistant notification sent")
	return nil
}

func (n *Notifier) post(ctx context.Context, title, message string) error {
	b, err := json.Marshal(map[string]string{"title": title, "message": message})
	if err != nil {
		return err
	}
	url := fmt.Sprintf("%s/api/services/notify/%s", n.url, n.service)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+n.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated {
		return nil
	}
	eb, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
	return fmt.Errorf("home assistant: status %d: %s", resp.StatusCode, strings.TrimSpace(string(eb)))
}
