package ws

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap/zaptest"

	"github.com/radieske/sports-bet-sync/internal/bet-maker/pubsub"
	"github.com/radieske/sports-bet-sync/pkg/contracts/events"
)

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	c, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

// roundTrip manda um ping e espera o pong: as mensagens anteriores já foram tratadas
func roundTrip(t *testing.T, c *websocket.Conn) {
	t.Helper()
	if err := c.WriteJSON(ClientMsg{Type: "ping"}); err != nil {
		t.Fatal(err)
	}
	c.SetReadDeadline(time.Now().Add(2 * time.Second))
	var pong map[string]string
	if err := c.ReadJSON(&pong); err != nil || pong["type"] != "pong" {
		t.Fatalf("pong = %v, err = %v", pong, err)
	}
}

func TestHub_BroadcastToSubscribers(t *testing.T) {
	hub := NewHub(zaptest.NewLogger(t), func(*http.Request) bool { return true })
	srv := httptest.NewServer(http.HandlerFunc(hub.HandleWS))
	defer srv.Close()

	sub := dial(t, srv)
	other := dial(t, srv)

	sub.WriteJSON(ClientMsg{Type: "subscribe", EventID: 5})
	other.WriteJSON(ClientMsg{Type: "subscribe", EventID: 6})
	roundTrip(t, sub)
	roundTrip(t, other)

	if err := hub.Dispatch([]byte(`{"event_id":5,"status":"won","bet_ids":[1,2]}`)); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}

	sub.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got pubsub.SettlementUpdate
	if err := sub.ReadJSON(&got); err != nil {
		t.Fatalf("read: %v", err)
	}
	if got.EventID != 5 || got.Status != events.BetWon || len(got.BetIDs) != 2 {
		t.Errorf("update = %+v", got)
	}

	// o inscrito em outro evento não recebe nada antes do próprio pong
	roundTrip(t, other)
}

func TestHub_Unsubscribe(t *testing.T) {
	hub := NewHub(zaptest.NewLogger(t), func(*http.Request) bool { return true })
	srv := httptest.NewServer(http.HandlerFunc(hub.HandleWS))
	defer srv.Close()

	c := dial(t, srv)
	c.WriteJSON(ClientMsg{Type: "subscribe", EventID: 5})
	c.WriteJSON(ClientMsg{Type: "unsubscribe", EventID: 5})
	roundTrip(t, c)

	hub.Broadcast(pubsub.SettlementUpdate{EventID: 5, Status: events.BetLost, BetIDs: []int64{}})
	roundTrip(t, c)

	hub.mu.RLock()
	n := len(hub.subs)
	hub.mu.RUnlock()
	if n != 0 {
		t.Errorf("subs = %d, want 0", n)
	}
}

// serverConn devolve o lado servidor de uma conexão sem loop de leitura
func serverConn(t *testing.T) *websocket.Conn {
	t.Helper()
	got := make(chan *websocket.Conn, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u := websocket.Upgrader{}
		ws, err := u.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		got <- ws
	}))
	t.Cleanup(srv.Close)
	dial(t, srv)
	select {
	case ws := <-got:
		return ws
	case <-time.After(2 * time.Second):
		t.Fatal("upgrade timed out")
		return nil
	}
}

func TestHub_BroadcastDropsBrokenConnection(t *testing.T) {
	hub := NewHub(zaptest.NewLogger(t), nil)
	broken := &conn{ws: serverConn(t)}
	broken.ws.Close()
	hub.subs[5] = map[*conn]struct{}{broken: {}}
	hub.subs[6] = map[*conn]struct{}{broken: {}}

	hub.Broadcast(pubsub.SettlementUpdate{EventID: 5, Status: events.BetWon, BetIDs: []int64{1}})

	hub.mu.RLock()
	n := len(hub.subs)
	hub.mu.RUnlock()
	if n != 0 {
		t.Errorf("subs = %d after failed write, want 0", n)
	}
}

func TestHub_WriteHasDeadline(t *testing.T) {
	c := &conn{ws: serverConn(t)}
	// cliente nunca lê: a escrita termina por deadline em vez de bloquear
	payload := make([]byte, 1<<20)
	start := time.Now()
	var err error
	for i := 0; i < 64 && err == nil; i++ {
		err = c.write(payload)
	}
	if err == nil {
		t.Skip("socket buffers absorbed every write")
	}
	if d := time.Since(start); d > writeWait+2*time.Second {
		t.Errorf("write blocked for %v", d)
	}
}

func TestHub_DispatchInvalid(t *testing.T) {
	hub := NewHub(zaptest.NewLogger(t), nil)
	if err := hub.Dispatch([]byte(`{`)); err == nil {
		t.Fatal("expected error for invalid payload")
	}
}
