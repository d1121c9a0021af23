package pubsub

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"github.com/radieske/sports-bet-sync/internal/bet-maker/ledger"
	"github.com/radieske/sports-bet-sync/pkg/contracts/events"
)

// SettlementUpdate é o payload publicado no canal e repassado ao WS
type SettlementUpdate struct {
	EventID int64            `json:"event_id"`
	Status  events.BetStatus `json:"status"`
	BetIDs  []int64          `json:"bet_ids"`
}

// Publisher é o subconjunto de *redis.Client usado aqui
type Publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

type RedisBroadcaster struct {
	r       Publisher
	channel string
}

func NewRedisBroadcaster(r Publisher, channel string) *RedisBroadcaster {
	return &RedisBroadcaster{r: r, channel: channel}
}

// PublishSettlement avisa as instâncias conectadas que as apostas de um evento foram liquidadas
func (b *RedisBroadcaster) PublishSettlement(ctx context.Context, s ledger.Settlement) error {
	ids := s.BetIDs
	if ids == nil {
		ids = []int64{}
	}
	payload, err := json.Marshal(SettlementUpdate{EventID: s.EventID, Status: s.Status, BetIDs: ids})
	if err != nil {
		return err
	}
	return b.r.Publish(ctx, b.channel, payload).Err()
}
