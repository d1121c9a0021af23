package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Options são os parâmetros de conexão vindos da config
type Options struct {
	Addr        string
	Password    string
	DB          int
	DialTimeout time.Duration // padrão 3s
}

// ConnectRedis abre o client e só devolve depois de um PING bem-sucedido
func ConnectRedis(ctx context.Context, o Options) (*redis.Client, error) {
	if o.DialTimeout <= 0 {
		o.DialTimeout = 3 * time.Second
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:         o.Addr,
		Password:     o.Password,
		DB:           o.DB,
		DialTimeout:  o.DialTimeout,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})

	ctx, cancel := context.WithTimeout(ctx, o.DialTimeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis %s: %w", o.Addr, err)
	}

	return rdb, nil
}
