package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/etnz/irr"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
	Batch int    `json:"batch,omitempty"` // 1-based follow-on investment at fault
	Field string `json:"field,omitempty"`
}

type Handler struct {
	maxBodyBytes int64
}

func NewHandler(maxBodyBytes int64) *Handler {
	return &Handler{maxBodyBytes: maxBodyBytes}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// Calculate evaluates the scenario in the request body, in the mode it names.
func (h *Handler) Calculate(w http.ResponseWriter, r *http.Request) {
	sc, ok := h.decode(w, r)
	if !ok {
		return
	}
	h.evaluate(w, r, sc)
}

// CalculateMode evaluates the scenario in the request body in the mode named by the path.
func (h *Handler) CalculateMode(w http.ResponseWriter, r *http.Request) {
	mode, err := irr.ParseMode(chi.URLParam(r, "mode"))
	if err != nil {
		writeJSON(w, r, http.StatusNotFound, ErrorResponse{Error: err.Error()})
		return
	}
	sc, ok := h.decode(w, r)
	if !ok {
		return
	}
	sc.Mode = mode
	h.evaluate(w, r, sc)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (irr.Scenario, bool) {
	if h.maxBodyBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	}
	sc, err := irr.DecodeScenario(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		status := http.StatusBadRequest
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		writeJSON(w, r, status, ErrorResponse{Error: err.Error()})
		return irr.Scenario{}, false
	}
	return sc, true
}

func (h *Handler) evaluate(w http.ResponseWriter, r *http.Request, sc irr.Scenario) {
	logger := zerolog.Ctx(r.Context())

	c, err := irr.Evaluate(sc)
	if err != nil {
		var de *irr.DomainError
		if errors.As(err, &de) {
			logger.Debug().Err(err).Str("mode", sc.Mode.String()).Msg("calculation rejected")
			writeJSON(w, r, http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error(), Batch: de.Batch, Field: de.Field})
			return
		}
		writeJSON(w, r, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	logger.Debug().
		Str("id", c.ID.String()).
		Str("mode", sc.Mode.String()).
		Float64("rate", float64(c.Metrics.Rate)).
		Msg("calculation done")
	writeJSON(w, r, http.StatusOK, c)
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to encode response")
		http.Error(w, fmt.Sprintf("failed to encode response: %v", err), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(append(data, '\n'))
}
