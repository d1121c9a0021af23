package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"go.uber.org/zap/zaptest"

	"github.com/radieske/sports-bet-sync/internal/bet-maker/dto"
	"github.com/radieske/sports-bet-sync/internal/bet-maker/ledger"
	"github.com/radieske/sports-bet-sync/internal/bet-maker/ledger/ledgertest"
	"github.com/radieske/sports-bet-sync/internal/bet-maker/repo"
	"github.com/radieske/sports-bet-sync/pkg/contracts/events"
)

func newTestServer(t *testing.T, mirrored ...int64) (*httptest.Server, *ledger.Ledger) {
	t.Helper()
	log := zaptest.NewLogger(t)
	st := ledgertest.NewMemStore()
	for _, id := range mirrored {
		st.Mirror[id] = repo.MirrorEntry{EventID: id, Coefficient: decimal.RequireFromString("1.75")}
	}
	l := ledger.New(log, st)
	srv := httptest.NewServer((&API{Log: log, Ledger: l}).Router())
	t.Cleanup(srv.Close)
	return srv, l
}

func do(t *testing.T, method, url, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestPlaceAndListBets(t *testing.T) {
	srv, l := newTestServer(t, 1, 2)

	resp := do(t, http.MethodGet, srv.URL+"/events/", "")
	var evs []dto.EventResponse
	if err := json.NewDecoder(resp.Body).Decode(&evs); err != nil {
		t.Fatal(err)
	}
	if len(evs) != 2 || evs[0].EventID != 1 || evs[0].Coefficient.String() != "1.75" {
		t.Fatalf("events = %+v", evs)
	}

	resp = do(t, http.MethodPost, srv.URL+"/bet", `{"event_id":1,"amount":10.50}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("place bet status = %d", resp.StatusCode)
	}
	var b dto.BetResponse
	if err := json.NewDecoder(resp.Body).Decode(&b); err != nil {
		t.Fatal(err)
	}
	if b.ID != 1 || b.Status != "pending" || b.Amount.String() != "10.5" {
		t.Fatalf("bet = %+v", b)
	}
	do(t, http.MethodPost, srv.URL+"/bet/", `{"event_id":2,"amount":3}`)

	if _, err := l.Settle(context.Background(), 1, events.BetWon); err != nil {
		t.Fatal(err)
	}

	resp = do(t, http.MethodGet, srv.URL+"/bets", "")
	var all []dto.BetResponse
	_ = json.NewDecoder(resp.Body).Decode(&all)
	if len(all) != 2 || all[0].Status != "won" || all[1].Status != "pending" {
		t.Errorf("bets = %+v", all)
	}

	resp = do(t, http.MethodGet, srv.URL+"/bets?event_id=2", "")
	var byEvent []dto.BetResponse
	_ = json.NewDecoder(resp.Body).Decode(&byEvent)
	if len(byEvent) != 1 || byEvent[0].EventID != 2 {
		t.Errorf("bets of event 2 = %+v", byEvent)
	}

	// evento liquidado saiu do espelho: não aceita mais apostas
	resp = do(t, http.MethodPost, srv.URL+"/bet", `{"event_id":1,"amount":1}`)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("bet on settled event status = %d, want 404", resp.StatusCode)
	}
}

func TestRejections(t *testing.T) {
	srv, _ := newTestServer(t, 1)

	for _, tc := range []struct {
		name   string
		method string
		path   string
		body   string
		code   int
	}{
		{"bad json", http.MethodPost, "/bet", `{`, http.StatusBadRequest},
		{"missing event", http.MethodPost, "/bet", `{"amount":5}`, http.StatusBadRequest},
		{"unknown event", http.MethodPost, "/bet", `{"event_id":9,"amount":5}`, http.StatusNotFound},
		{"zero amount", http.MethodPost, "/bet", `{"event_id":1,"amount":0}`, http.StatusBadRequest},
		{"too precise", http.MethodPost, "/bet", `{"event_id":1,"amount":1.234}`, http.StatusBadRequest},
		{"bad filter", http.MethodGet, "/bets?event_id=x", ``, http.StatusBadRequest},
	} {
		resp := do(t, tc.method, srv.URL+tc.path, tc.body)
		if resp.StatusCode != tc.code {
			t.Errorf("%s: status = %d, want %d", tc.name, resp.StatusCode, tc.code)
		}
	}
}

func TestEmptyLists(t *testing.T) {
	srv, _ := newTestServer(t)
	for _, path := range []string{"/events", "/bets", "/bets?event_id=3"} {
		resp := do(t, http.MethodGet, srv.URL+path, "")
		var raw json.RawMessage
		_ = json.NewDecoder(resp.Body).Decode(&raw)
		if string(raw) != "[]" {
			t.Errorf("%s = %s, want []", path, raw)
		}
	}
}
