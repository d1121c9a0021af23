package ws

// ClientMsg representa uma mensagem recebida do cliente WebSocket
type ClientMsg struct {
	Type    string `json:"type"`     // subscribe | unsubscribe | ping
	EventID int64  `json:"event_id"` // requerido em subscribe/unsubscribe
}
