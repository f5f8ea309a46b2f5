package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "ratecheck", Name: "http_requests_total", Help: "HTTP requests."},
		[]string{"route", "method", "status"},
	)
	HTTPLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ratecheck", Name: "http_request_duration_seconds",
			Help:    "HTTP request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
	ExternalRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "ratecheck", Name: "external_requests_total", Help: "Outbound requests."},
		[]string{"service", "endpoint", "status"},
	)
	ExternalLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ratecheck", Name: "external_request_duration_seconds",
			Help:    "Outbound request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "endpoint"},
	)
	CacheEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "ratecheck", Name: "cache_events_total", Help: "Cache hits/misses/sets/dels."},
		[]string{"cache", "event"}, // event: hit|miss|set|del|error
	)
	CheckRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "ratecheck", Name: "check_runs_total", Help: "Completed check runs."},
		[]string{"outcome"}, // outcome: done|error
	)
	ReservationChecks = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "ratecheck", Name: "reservation_checks_total", Help: "Per-reservation comparisons."},
		[]string{"result"}, // result: cheaper|no_savings|no_match|error
	)
	BestSavingsPct = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{Namespace: "ratecheck", Name: "best_savings_pct", Help: "Latest best-match savings percentage per reservation."},
		[]string{"reservation"},
	)
	Notifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "ratecheck", Name: "notifications_total", Help: "Notifications sent."},
		[]string{"channel", "kind", "status"},
	)
)

// Serve starts a standalone metrics listener for reg; an empty addr disables it.
func Serve(addr string, reg *prometheus.Registry) {
	if addr == "" {
		return // disabled
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", MetricsHandler(reg))

	go func() {
		srv := &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		log.Info().Str("addr", addr).Msg("metrics server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("metrics server failed")
		}
	}()
}

func InitRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(HTTPRequests, HTTPLatency, ExternalRequests, ExternalLatency, CacheEvents,
		CheckRuns, ReservationChecks, BestSavingsPct, Notifications)
	return reg
}

func MetricsHandler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

func ObserveHTTP(route, method string, status int, dur time.Duration) {
	HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	HTTPLatency.WithLabelValues(route, method).Observe(dur.Seconds())
}

func ObserveExternal(service, endpoint string, status int, dur time.Duration) {
	ExternalRequests.WithLabelValues(service, endpoint, strconv.Itoa(status)).Inc()
	ExternalLatency.WithLabelValues(service, endpoint).Observe(dur.Seconds())
}

func ObserveCache(cache, event string) { // event: hit|miss|set|del|error
	CacheEvents.WithLabelValues(cache, event).Inc()
}

func ObserveRun(outcome string) { CheckRuns.WithLabelValues(outcome).Inc() }

func ObserveReservation(id, result string, pct float64, hasPct bool) {
	ReservationChecks.WithLabelValues(result).Inc()
	if hasPct {
		BestSavingsPct.WithLabelValues(id).Set(pct)
	} else {
		BestSavingsPct.DeleteLabelValues(id)
	}
}

func ObserveNotification(channel, kind string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	Notifications.WithLabelValues(channel, kind, status).Inc()
}
