// internal/adapters/http_server/handlers.go
package httpserver

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"hotel_ratecheck/internal/app"
	"hotel_ratecheck/internal/compare"
	"hotel_ratecheck/internal/domain"
)

const maxBody = 1 << 20

// NotifyTester sends a fixed message through a notification channel.
type NotifyTester interface {
	Enabled() bool
	SendTest(ctx context.Context) error
}

type Handlers struct {
	Checks       *app.CheckService
	Runs         *app.QueryService
	Reservations *app.ReservationService
	Tester       NotifyTester
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Route("/v1", func(r chi.Router) {
		r.Get("/status", h.status)
		r.Post("/check", h.startCheck)
		r.Get("/runs/latest", h.latestRun)
		r.Post("/compare", h.compare)
		r.Post("/notify/test", h.notifyTest)
		r.Route("/reservations", func(r chi.Router) {
			r.Get("/", h.listReservations)
			r.Post("/", h.createReservation)
			r.Get("/{id}", h.getReservation)
			r.Put("/{id}", h.updateReservation)
			r.Delete("/{id}", h.deleteReservation)
		})
	})
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// writeError maps domain sentinels onto problem responses.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeProblem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, domain.ErrInvalidReservation), errors.Is(err, domain.ErrInvalidRate):
		writeProblem(w, http.StatusBadRequest, "Invalid Input", err.Error())
	case errors.Is(err, domain.ErrNoReservations):
		writeProblem(w, http.StatusBadRequest, "No Reservations", err.Error())
	case errors.Is(err, domain.ErrCheckRunning):
		writeProblem(w, http.StatusConflict, "Check Running", err.Error())
	default:
		log.Error().Err(err).Msg("request failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeProblem(w, http.StatusBadRequest, "Malformed Body", err.Error())
		return false
	}
	return true
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

func (h *Handlers) status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Checks.Status())
}

func (h *Handlers) startCheck(w http.ResponseWriter, r *http.Request) {
	id, err := h.Checks.Start(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"run_id": id, "status": string(domain.RunChecking)})
}

func (h *Handlers) latestRun(w http.ResponseWriter, r *http.Request) {
	run, err := h.Runs.LatestRun(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	etag, body := calcETagAndBody(run)
	// If client already has this version, short-circuit.
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag) // include ETag on 304
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write latestRun body")
	}
}

type compareRequest struct {
	Reservation domain.ReservationConfig `json:"reservation"`
	Rates       []domain.RateRecord      `json:"rates"`
}

// compare runs the engine on caller-supplied rates without touching storage.
// Refundability is always re-derived; a value sent by the caller is ignored.
func (h *Handlers) compare(w http.ResponseWriter, r *http.Request) {
	var req compareRequest
	if !decode(w, r, &req) {
		return
	}
	rates := compare.ClassifyAll(req.Rates, req.Reservation.StayType)
	res, err := compare.Build(rates, req.Reservation)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handlers) notifyTest(w http.ResponseWriter, r *http.Request) {
	if h.Tester == nil || !h.Tester.Enabled() {
		writeProblem(w, http.StatusBadRequest, "Notifications Disabled", "HA_URL and HA_TOKEN must be set")
		return
	}
	if err := h.Tester.SendTest(r.Context()); err != nil {
		writeProblem(w, http.StatusBadGateway, "Notify Failed", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"sent": true})
}

func (h *Handlers) listReservations(w http.ResponseWriter, r *http.Request) {
	out, err := h.Reservations.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) getReservation(w http.ResponseWriter, r *http.Request) {
	c, err := h.Reservations.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *Handlers) createReservation(w http.ResponseWriter, r *http.Request) {
	var in domain.ReservationConfig
	if !decode(w, r, &in) {
		return
	}
	c, err := h.Reservations.Create(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Location", "/v1/reservations/"+c.ID)
	writeJSON(w, http.StatusCreated, c)
}

func (h *Handlers) updateReservation(w http.ResponseWriter, r *http.Request) {
	var in domain.ReservationConfig
	if !decode(w, r, &in) {
		return
	}
	c, err := h.Reservations.Update(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *Handlers) deleteReservation(w http.ResponseWriter, r *http.Request) {
	if err := h.Reservations.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
