package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/radieske/sports-bet-sync/internal/bet-maker/repo"
)

// PlaceBetRequest é o payload de POST /bet
type PlaceBetRequest struct {
	EventID int64           `json:"event_id"`
	Amount  decimal.Decimal `json:"amount"`
}

// BetResponse representa uma aposta
type BetResponse struct {
	ID        int64           `json:"id"`
	EventID   int64           `json:"event_id"`
	Amount    decimal.Decimal `json:"amount"`
	Status    string          `json:"status"` // pending | won | lost
	CreatedAt time.Time       `json:"created_at"`
}

// EventResponse é um evento apostável (entrada do espelho)
type EventResponse struct {
	EventID     int64           `json:"event_id"`
	Coefficient decimal.Decimal `json:"coefficient"`
}

func FromBet(b repo.Bet) BetResponse {
	return BetResponse{
		ID:        b.ID,
		EventID:   b.EventID,
		Amount:    b.Amount,
		Status:    string(b.Status),
		CreatedAt: b.CreatedAt,
	}
}

func FromBets(bs []repo.Bet) []BetResponse {
	out := make([]BetResponse, 0, len(bs))
	for _, b := range bs {
		out = append(out, FromBet(b))
	}
	return out
}

func FromMirror(ms []repo.MirrorEntry) []EventResponse {
	out := make([]EventResponse, 0, len(ms))
	for _, m := range ms {
		out = append(out, EventResponse{EventID: m.EventID, Coefficient: m.Coefficient})
	}
	return out
}
