// internal/adapters/marriott/client.go
package marriott

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/time/rate"

	"hotel_ratecheck/internal/adapters/observability"
	"hotel_ratecheck/internal/domain"
)

const (
	operationName = "PhoenixBookDTTSearchProductsByProperty"
	pageLimit     = 150
	userAgent     = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/145.0.0.0 Safari/537.36"
)

var (
	ErrUnauthorized = errors.New("marriott: unauthorized")
	ErrForbidden    = errors.New("marriott: forbidden")
)

type Client struct {
	base string
	hc   *http.Client
	rl   *rate.Limiter
}

func New(base string, rps int) (*Client, error) {
	if strings.TrimSpace(base) == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	if rps <= 0 {
		rps = 1
	}
	return &Client{
		base: strings.TrimRight(base, "/"),
		hc:   &http.Client{Timeout: 30 * time.Second},
		rl:   rate.NewLimiter(rate.Limit(rps), rps),
	}, nil
}

// FetchRates runs one availability search for the reservation's stay and maps
// every priced room in the response. Failed calls are not retried.
func (c *Client) FetchRates(ctx context.Context, cfg domain.ReservationConfig) ([]domain.RateRecord, error) {
	ctx, span := observability.StartSpan(ctx, "marriott.FetchRates",
		attribute.String("property", strings.ToUpper(cfg.PropertyID)),
		attribute.String("check_in", cfg.CheckIn.String()),
	)
	defer span.End()

	var payload map[string]any
	if err := c.post(ctx, c.base+"/mi/query/"+operationName, searchRequest(cfg), &payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if msg := graphQLError(payload); msg != "" && lookupAny(payload, "data") == nil {
		err := fmt.Errorf("marriott: graphql: %s", msg)
		span.RecordError(err)
		return nil, err
	}

	rooms := mapRooms(payload)
	span.SetAttributes(attribute.Int("rooms", len(rooms)))
	log.Debug().
		Str("property", strings.ToUpper(cfg.PropertyID)).
		Int("rooms", len(rooms)).
		Msg("marriott rates mapped")
	return rooms, nil
}

func searchRequest(cfg domain.ReservationConfig) map[string]any {
	return map[string]any{
		"operationName": operationName,
		"query":         searchQuery,
		"variables": map[string]any{
			"search": map[string]any{
				"options": map[string]any{
					"startDate":         cfg.CheckIn.String(),
					"endDate":           cfg.CheckOut.String(),
					"quantity":          cfg.NumRooms,
					"numberInParty":     cfg.Adults,
					"childAges":         []int{},
					"productRoomType":   []string{"ALL"},
					"productStatusType": []string{"AVAILABLE"},
					"rateRequestTypes": []map[string]string{
						{"value": "", "type": "STANDARD"},
						{"value": "", "type": "PREPAY"},
						{"value": "", "type": "PACKAGES"},
						{"value": "MRM", "type": "CLUSTER"},
						{"value": "AAA", "type": "AAA"},
					},
					"isErsProperty":     false,
					"disabilityRequest": "ACCESSIBLE_AND_NON_ACCESSIBLE",
				},
				"propertyId": strings.ToUpper(cfg.PropertyID),
			},
			"offset": 0,
			"limit":  pageLimit,
		},
	}
}

func (c *Client) post(ctx context.Context, url string, body any, out any) error {
	// client-side rate limiting
	if err := c.rl.Wait(ctx); err != nil {
		return err
	}
	b, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "*/*")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("apollographql-client-name", "phoenix_book")
	req.Header.Set("apollographql-client-version", "1")
	req.Header.Set("application-name", "book")
	req.Header.Set("graphql-operation-name", operationName)

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		observability.ObserveExternal("marriott", operationName, 0, time.Since(start))
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	defer resp.Body.Close()
	observability.ObserveExternal("marriott", operationName, resp.StatusCode, time.Since(start))

	switch resp.StatusCode {
	case http.StatusOK:
		return json.NewDecoder(resp.Body).Decode(out)
	case http.StatusNotFound:
		return domain.ErrNotFound
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	default:
		// read a small error body for diagnostics
		eb, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("marriott: bad status %d: %s", resp.StatusCode, strings.TrimSpace(string(eb)))
	}
}

func graphQLError(payload map[string]any) string {
	errs, ok := lookupAny(payload, "errors").([]any)
	if !ok || len(errs) == 0 {
		return ""
	}
	if first, ok := errs[0].(map[string]any); ok {
		if m := lookupStr(first, "message"); m != "" {
			return m
		}
	}
	return "unknown error"
}
