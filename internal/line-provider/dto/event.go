package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/radieske/sports-bet-sync/internal/line-provider/repo"
)

// CreateEventRequest é o payload de POST /events/
type CreateEventRequest struct {
	Coefficient decimal.Decimal `json:"coefficient"`
	Deadline    time.Time       `json:"deadline"` // RFC3339
	Status      string          `json:"status"`   // unfinished | A | B (default unfinished)
}

// StatusUpdateRequest é o payload de PUT /events/{id}/status
type StatusUpdateRequest struct {
	Status string `json:"status"`
}

// EventResponse representa um evento completo
type EventResponse struct {
	ID          int64           `json:"id"`
	Coefficient decimal.Decimal `json:"coefficient"`
	Deadline    time.Time       `json:"deadline"`
	Status      string          `json:"status"`
}

func FromEvent(e repo.Event) EventResponse {
	return EventResponse{
		ID:          e.ID,
		Coefficient: e.Coefficient,
		Deadline:    e.Deadline,
		Status:      string(e.Status),
	}
}
