package ws

import (
	"context"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// StartRedisSubscriber escuta o canal de liquidações e repassa cada
// mensagem ao Hub até o contexto ser cancelado. Bloqueia.
func StartRedisSubscriber(ctx context.Context, r *redis.Client, channel string, hub *Hub) error {
	sub := r.Subscribe(ctx, channel)
	defer sub.Close()
	ch := sub.Channel()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			if err := hub.Dispatch([]byte(msg.Payload)); err != nil {
				hub.Log.Warn("ws subscriber unmarshal error", zap.String("channel", channel), zap.Error(err))
			}
		}
	}
}
