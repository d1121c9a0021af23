package events

import "github.com/shopspring/decimal"

func init() {
	// coeficientes e valores trafegam como número JSON, não string
	decimal.MarshalJSONWithoutQuotes = true
}

// EventStatusChanged é publicado no tópico "event_status_updates"
// a cada transição aceita pelo line-provider.
type EventStatusChanged struct {
	EventID int64       `json:"event_id"`
	Status  EventStatus `json:"status"`
}

// ActiveEvent é uma entrada do snapshot de eventos abertos para aposta
// (GET /actual_events/ do line-provider).
type ActiveEvent struct {
	ID          int64           `json:"id"`
	Coefficient decimal.Decimal `json:"coefficient"`
}
