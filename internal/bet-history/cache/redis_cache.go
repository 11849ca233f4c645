package cache

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/radieske/crypto-wager-platform-poc/pkg/contracts/events"
)

// RedisCache guarda o último evento conhecido de cada aposta e o preço
// corrente de cada ativo, com TTL configurável
type RedisCache struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisCache(c *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{Client: c, TTL: ttl}
}

func betKey(betID int64) string { return "bets:current:" + strconv.FormatInt(betID, 10) }

func priceKey(token string) string { return "prices:token:" + token }

// SetBetEvent armazena o evento mais recente da aposta
func (r *RedisCache) SetBetEvent(ctx context.Context, ev events.BetEvent) error {
	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return r.Client.Set(ctx, betKey(ev.BetID), b, r.TTL).Err()
}

// SetPrice armazena o preço corrente do ativo
func (r *RedisCache) SetPrice(ctx context.Context, e events.PriceUpdate) error {
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return r.Client.Set(ctx, priceKey(e.Token), b, r.TTL).Err()
}
