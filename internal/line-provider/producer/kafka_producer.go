package producer

import (
	"context"
	"encoding/json"
	"strconv"

	"go.uber.org/zap"

	"github.com/radieske/sports-bet-sync/internal/shared/kafka"
	"github.com/radieske/sports-bet-sync/pkg/contracts/events"
)

// StatusPublisher publica mudanças de status de eventos no tópico durável.
// Não deduplica: a entrega é at-least-once e o consumidor é idempotente.
type StatusPublisher struct {
	Writer kafka.MessageWriter
	Topic  string
	Log    *zap.Logger
}

func NewStatusPublisher(w kafka.MessageWriter, topic string, log *zap.Logger) *StatusPublisher {
	return &StatusPublisher{Writer: w, Topic: topic, Log: log}
}

// PublishStatusChanged serializa o evento e espera o ack do broker.
// A chave é o id do evento, então mensagens do mesmo evento caem na mesma partição.
func (p *StatusPublisher) PublishStatusChanged(ctx context.Context, e events.EventStatusChanged) error {
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}

	if err := kafka.WriteJSON(ctx, p.Writer, strconv.FormatInt(e.EventID, 10), b, events.ContractVersion); err != nil {
		return err
	}

	p.Log.Debug("published event status",
		zap.String("topic", p.Topic),
		zap.Int64("event_id", e.EventID),
		zap.String("status", string(e.Status)),
	)
	return nil
}
