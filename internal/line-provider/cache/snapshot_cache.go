package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/radieske/sports-bet-sync/internal/line-provider/repo"
)

const keyActiveEvents = "line:active_events"

// RedisSnapshotCache guarda o último resultado da consulta de eventos abertos.
// TTL curto: o catálogo invalida a chave em toda escrita e refiltra o deadline na leitura.
type RedisSnapshotCache struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisSnapshotCache(c *redis.Client, ttl time.Duration) *RedisSnapshotCache {
	return &RedisSnapshotCache{Client: c, TTL: ttl}
}

func (r *RedisSnapshotCache) Get(ctx context.Context) ([]repo.Event, bool, error) {
	b, err := r.Client.Get(ctx, keyActiveEvents).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var evs []repo.Event
	if err := json.Unmarshal(b, &evs); err != nil {
		return nil, false, err
	}
	return evs, true, nil
}

func (r *RedisSnapshotCache) Set(ctx context.Context, evs []repo.Event) error {
	b, err := json.Marshal(evs)
	if err != nil {
		return err
	}
	return r.Client.Set(ctx, keyActiveEvents, b, r.TTL).Err()
}

func (r *RedisSnapshotCache) Invalidate(ctx context.Context) error {
	return r.Client.Del(ctx, keyActiveEvents).Err()
}
