package ws

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/radieske/sports-bet-sync/internal/bet-maker/pubsub"
)

// writeWait limita quanto um cliente lento segura um broadcast
const writeWait = 5 * time.Second

// conn serializa as escritas: gorilla não aceita writers concorrentes
type conn struct {
	ws *websocket.Conn
	mu sync.Mutex
}

func (c *conn) write(b []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.ws.WriteMessage(websocket.TextMessage, b)
}

// Hub gerencia conexões WebSocket e assinaturas de liquidação por evento
type Hub struct {
	Log      *zap.Logger
	upgrader websocket.Upgrader
	mu       sync.RWMutex
	// eventID -> set of connections
	subs map[int64]map[*conn]struct{}
}

// NewHub cria uma instância de Hub com política customizada de origem
func NewHub(log *zap.Logger, allowOrigin func(r *http.Request) bool) *Hub {
	return &Hub{
		Log:      log,
		upgrader: websocket.Upgrader{CheckOrigin: allowOrigin},
		subs:     make(map[int64]map[*conn]struct{}),
	}
}

// HandleWS gerencia o ciclo de vida de uma conexão WebSocket.
// Cada cliente pode se inscrever em vários eventos.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	c := &conn{ws: ws}

	for {
		var msg ClientMsg
		if err := ws.ReadJSON(&msg); err != nil {
			break
		}
		switch msg.Type {
		case "subscribe":
			h.mu.Lock()
			if _, ok := h.subs[msg.EventID]; !ok {
				h.subs[msg.EventID] = make(map[*conn]struct{})
			}
			h.subs[msg.EventID][c] = struct{}{}
			h.mu.Unlock()
		case "unsubscribe":
			h.mu.Lock()
			h.remove(msg.EventID, c)
			h.mu.Unlock()
		case "ping":
			_ = c.write([]byte(`{"type":"pong"}`))
		}
	}

	h.drop(c)
}

// drop tira a conexão de todas as assinaturas e a fecha
func (h *Hub) drop(c *conn) {
	h.mu.Lock()
	for id := range h.subs {
		h.remove(id, c)
	}
	h.mu.Unlock()
	_ = c.ws.Close()
}

// remove exige h.mu travado
func (h *Hub) remove(eventID int64, c *conn) {
	if set, ok := h.subs[eventID]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(h.subs, eventID)
		}
	}
}

// Broadcast envia a liquidação para os clientes inscritos no evento
func (h *Hub) Broadcast(upd pubsub.SettlementUpdate) {
	h.mu.RLock()
	conns := make([]*conn, 0, len(h.subs[upd.EventID]))
	for c := range h.subs[upd.EventID] {
		conns = append(conns, c)
	}
	h.mu.RUnlock()
	if len(conns) == 0 {
		return
	}

	b, _ := json.Marshal(upd)
	for _, c := range conns {
		if err := c.write(b); err != nil {
			// após um erro de escrita a conexão gorilla fica inutilizável
			h.Log.Debug("ws write failed, dropping connection", zap.Int64("event_id", upd.EventID), zap.Error(err))
			h.drop(c)
		}
	}
}

// Dispatch decodifica um payload do canal Redis e faz o broadcast
func (h *Hub) Dispatch(payload []byte) error {
	var upd pubsub.SettlementUpdate
	if err := json.Unmarshal(payload, &upd); err != nil {
		return err
	}
	h.Broadcast(upd)
	return nil
}
