package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"charityfund/service"

	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"
)

// ActorHeader carries the acting user recorded on allocations
const ActorHeader = "X-Actor"

// App holds the services behind the HTTP handlers
type App struct {
	Allocations service.AllocationService
	Reports     service.ReportService
	Registry    service.RegistryService
}

// NewApp creates the handler set
func NewApp(allocations service.AllocationService, reports service.ReportService, registry service.RegistryService) *App {
	return &App{
		Allocations: allocations,
		Reports:     reports,
		Registry:    registry,
	}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, kind, message string) {
	a.json(w, code, map[string]any{
		"error":   kind,
		"message": message,
	})
}

// fail maps a service error onto a status code and error kind
func (a *App) fail(w http.ResponseWriter, r *http.Request, err error) {
	code, kind := http.StatusInternalServerError, "internal"
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		code, kind = http.StatusBadRequest, "bad_request"
	case errors.Is(err, service.ErrNotFound):
		code, kind = http.StatusNotFound, "not_found"
	case errors.Is(err, service.ErrInvalidDonation):
		code, kind = http.StatusUnprocessableEntity, "invalid_donation"
	case errors.Is(err, service.ErrInvalidAllocation):
		code, kind = http.StatusUnprocessableEntity, "invalid_allocation"
	case errors.Is(err, service.ErrOverAllocation):
		code, kind = http.StatusConflict, "over_allocation"
	case errors.Is(err, service.ErrConcurrencyConflict):
		code, kind = http.StatusConflict, "concurrency_conflict"
	}

	if code == http.StatusInternalServerError {
		log.WithFields(log.Fields{
			"method": r.Method,
			"path":   r.URL.Path,
			"error":  err,
		}).Error("Request failed")
		a.error(w, code, kind, "internal error")
		return
	}
	a.error(w, code, kind, err.Error())
}

func (a *App) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload: "+err.Error())
		return false
	}
	return true
}

func (a *App) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid id")
		return 0, false
	}
	return id, true
}

func actor(r *http.Request) *string {
	v := strings.TrimSpace(r.Header.Get(ActorHeader))
	if v == "" {
		return nil
	}
	return &v
}

// Health reports liveness
func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]any{"status": "ok"})
}
