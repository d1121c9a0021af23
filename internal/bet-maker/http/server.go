package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/radieske/sports-bet-sync/internal/bet-maker/dto"
	"github.com/radieske/sports-bet-sync/internal/bet-maker/ledger"
	"github.com/radieske/sports-bet-sync/internal/bet-maker/ws"
	"github.com/radieske/sports-bet-sync/internal/shared/apperr"
)

// API expõe os endpoints REST do bet-maker
type API struct {
	Log    *zap.Logger
	Ledger *ledger.Ledger
	Hub    *ws.Hub // opcional
}

// Router retorna o roteador HTTP com os endpoints REST e o WS
func (a *API) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer, middleware.StripSlashes, withCORS)

	r.Get("/events", a.listEvents) // Eventos apostáveis (espelho)
	r.Post("/bet", a.placeBet)     // Nova aposta
	r.Get("/bets", a.listBets)     // Histórico (?event_id=N filtra)
	if a.Hub != nil {
		r.Get("/ws", a.Hub.HandleWS) // Feed de liquidações
	}
	return r
}

func (a *API) listEvents(w http.ResponseWriter, r *http.Request) {
	ms, err := a.Ledger.Events(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.FromMirror(ms))
}

func (a *API) placeBet(w http.ResponseWriter, r *http.Request) {
	var req dto.PlaceBetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.fail(w, r, fmt.Errorf("bad json: %v: %w", err, apperr.ErrParse))
		return
	}
	if req.EventID <= 0 {
		a.fail(w, r, fmt.Errorf("event_id is required: %w", apperr.ErrInvalidArgument))
		return
	}

	b, err := a.Ledger.CreateBet(r.Context(), req.EventID, req.Amount)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.FromBet(b))
}

func (a *API) listBets(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("event_id")
	if raw == "" {
		bs, err := a.Ledger.ListBets(r.Context())
		if err != nil {
			a.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, dto.FromBets(bs))
		return
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		a.fail(w, r, fmt.Errorf("invalid event_id %q: %w", raw, apperr.ErrInvalidArgument))
		return
	}
	bs, err := a.Ledger.BetsByEvent(r.Context(), id)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.FromBets(bs))
}

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

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func withCORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		h.ServeHTTP(w, r)
	})
}
