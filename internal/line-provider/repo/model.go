package repo

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/radieske/sports-bet-sync/pkg/contracts/events"
)

// Event é o modelo persistido no Postgres (fonte da verdade dos eventos).
type Event struct {
	ID          int64              `json:"id"`
	Coefficient decimal.Decimal    `json:"coefficient"`
	Deadline    time.Time          `json:"deadline"`
	Status      events.EventStatus `json:"status"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// OpenAt diz se o evento ainda aceita apostas no instante now.
func (e Event) OpenAt(now time.Time) bool {
	return e.Status == events.EventUnfinished && e.Deadline.After(now)
}
