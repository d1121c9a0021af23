package repo

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/radieske/sports-bet-sync/pkg/contracts/events"
)

// MirrorEntry é a cópia local de um evento aberto no line-provider.
// O coeficiente é copiado na inserção e nunca atualizado.
type MirrorEntry struct {
	EventID     int64
	Coefficient decimal.Decimal
	CreatedAt   time.Time
}

// Bet é o modelo persistido no Postgres.
type Bet struct {
	ID        int64
	EventID   int64
	Amount    decimal.Decimal
	Status    events.BetStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}
