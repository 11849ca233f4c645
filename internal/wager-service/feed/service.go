package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/radieske/crypto-wager-platform-poc/pkg/contracts/events"
)

const redisKeyCurrent = "prices:current"

// Service implementa o refreshPrices: puxa o snapshot do agregador, troca o
// snapshot em memória usado pela liquidação e espelha no Redis para os
// serviços de leitura. O espelho é best-effort: falha de cache não invalida
// o refresh.
type Service struct {
	log    *zap.Logger
	client *Client
	snap   *Snapshot
	rdb    *redis.Client // opcional
	ttl    time.Duration
}

func NewService(log *zap.Logger, client *Client, snap *Snapshot, rdb *redis.Client, ttl time.Duration) *Service {
	return &Service{log: log, client: client, snap: snap, rdb: rdb, ttl: ttl}
}

// Refresh substitui o snapshot corrente pelo que o agregador reporta agora
func (s *Service) Refresh(ctx context.Context) error {
	snap, err := s.client.FetchPrices(ctx)
	if err != nil {
		return err
	}
	if len(snap.Prices) == 0 {
		return fmt.Errorf("aggregator returned empty snapshot")
	}

	at := snap.UpdatedAt
	if at.IsZero() {
		at = time.Now().UTC()
	}
	s.snap.Replace(snap.Prices, at)

	if s.rdb != nil {
		b, _ := json.Marshal(snap)
		if err := s.rdb.Set(ctx, redisKeyCurrent, b, s.ttl).Err(); err != nil {
			s.log.Warn("redis mirror failed", zap.Error(err))
		}
	}

	s.log.Info("price snapshot replaced", zap.Int("tokens", len(snap.Prices)), zap.Time("updatedAt", at))
	return nil
}

// CachedSnapshot lê o espelho Redis (usado pelos serviços de leitura)
func CachedSnapshot(ctx context.Context, rdb *redis.Client) (events.PricesSnapshot, bool, error) {
	var out events.PricesSnapshot
	b, err := rdb.Get(ctx, redisKeyCurrent).Bytes()
	if err == redis.Nil {
		return out, false, nil
	}
	if err != nil {
		return out, false, err
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return out, false, err
	}
	return out, true, nil
}
