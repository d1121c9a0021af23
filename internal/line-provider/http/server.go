package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/radieske/sports-bet-sync/internal/line-provider/catalog"
	"github.com/radieske/sports-bet-sync/internal/line-provider/dto"
	"github.com/radieske/sports-bet-sync/internal/shared/apperr"
	"github.com/radieske/sports-bet-sync/pkg/contracts/events"
)

// API expõe os endpoints REST do line-provider
type API struct {
	Log     *zap.Logger
	Catalog *catalog.Catalog
}

// Router retorna o roteador HTTP com os endpoints REST
func (a *API) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer, middleware.StripSlashes, withCORS)

	r.Post("/events", a.createEvent)             // Cria evento
	r.Get("/events", a.listEvents)               // Lista todos os eventos
	r.Get("/events/{id}", a.getEvent)            // Busca um evento
	r.Put("/events/{id}/status", a.updateStatus) // Transição de status (+ publicação)
	r.Get("/actual_events", a.listActiveEvents)  // Snapshot de eventos abertos
	return r
}

func (a *API) createEvent(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.fail(w, r, fmt.Errorf("bad json: %v: %w", err, apperr.ErrParse))
		return
	}

	e, err := a.Catalog.Create(r.Context(), catalog.CreateInput{
		Coefficient: req.Coefficient,
		Deadline:    req.Deadline,
		Status:      events.EventStatus(req.Status),
	})
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.FromEvent(e))
}

func (a *API) listEvents(w http.ResponseWriter, r *http.Request) {
	evs, err := a.Catalog.List(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	out := make([]dto.EventResponse, 0, len(evs))
	for _, e := range evs {
		out = append(out, dto.FromEvent(e))
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *API) getEvent(w http.ResponseWriter, r *http.Request) {
	id, err := eventID(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	e, err := a.Catalog.Get(r.Context(), id)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.FromEvent(e))
}

func (a *API) listActiveEvents(w http.ResponseWriter, r *http.Request) {
	evs, err := a.Catalog.ActiveSnapshot(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, evs)
}

func (a *API) updateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := eventID(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	var req dto.StatusUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.fail(w, r, fmt.Errorf("bad json: %v: %w", err, apperr.ErrParse))
		return
	}

	e, err := a.Catalog.UpdateStatus(r.Context(), id, events.EventStatus(req.Status))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.FromEvent(e))
}

// fail loga e responde com o erro mapeado pela taxonomia
func (a *API) fail(w http.ResponseWriter, r *http.Request, err error) {
	code, _ := apperr.Status(err)
	log := a.Log.With(zap.String("method", r.Method), zap.String("path", r.URL.Path), zap.Error(err))
	if code >= http.StatusInternalServerError {
		log.Error("request failed")
	} else {
		log.Info("request rejected")
	}
	apperr.WriteHTTP(w, err)
}

func eventID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid event id %q: %w", raw, apperr.ErrInvalidArgument)
	}
	return id, nil
}

// writeJSON serializa a resposta em JSON e define o status HTTP
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func withCORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		h.ServeHTTP(w, r)
	})
}
