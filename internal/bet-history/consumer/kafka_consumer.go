package consumer

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/radieske/crypto-wager-platform-poc/internal/bet-history/cache"
	"github.com/radieske/crypto-wager-platform-poc/internal/bet-history/pubsub"
	"github.com/radieske/crypto-wager-platform-poc/internal/bet-history/repository"
	skafka "github.com/radieske/crypto-wager-platform-poc/internal/shared/kafka"
	"github.com/radieske/crypto-wager-platform-poc/pkg/contracts/events"
)

// BetProcessor consome os eventos de aposta do Kafka, materializa a projeção
// no Postgres, atualiza o cache Redis e retransmite no canal Pub/Sub.
// Callbacks de métricas podem ser usadas para monitoramento de cada etapa.
type BetProcessor struct {
	Log         *zap.Logger
	Reader      *kafka.Reader
	Repo        *repository.PostgresRepo
	Cache       *cache.RedisCache
	Broadcaster *pubsub.RedisBroadcaster
	Channel     string
	DLQ         *kafka.Writer // opcional; mensagens indecodificáveis

	OnConsumed func()       // métricas (counter++)
	OnPersist  func()       // métricas
	OnError    func(string) // métricas por fase
}

// Run inicia o loop principal de consumo e processamento
func (p *BetProcessor) Run(ctx context.Context) error {
	for {
		key, value, err := skafka.ReadNext(ctx, p.Reader)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err() // encerra se o contexto for cancelado
			}
			p.Log.Warn("kafka read failed", zap.Error(err))
			p.fail("read")
			time.Sleep(500 * time.Millisecond)
			continue
		}

		if p.OnConsumed != nil {
			p.OnConsumed()
		}

		var ev events.BetEvent
		if err := json.Unmarshal(value, &ev); err != nil {
			p.Log.Warn("invalid message", zap.Error(err))
			p.fail("decode")
			if p.DLQ != nil {
				_ = skafka.WriteJSON(ctx, p.DLQ, string(key), value)
			}
			continue
		}

		// Projeção no Postgres primeiro: é a fonte do read API
		if err := p.Repo.ApplyBetEvent(ctx, ev); err != nil {
			p.Log.Warn("db apply failed", zap.Int64("betId", ev.BetID), zap.Error(err))
			p.fail("db_apply")
			continue
		}

		// Cache e broadcast são best-effort
		if err := p.Cache.SetBetEvent(ctx, ev); err != nil {
			p.Log.Warn("redis set failed", zap.Error(err))
			p.fail("cache")
		}
		if p.Broadcaster != nil {
			if err := p.Broadcaster.Publish(ctx, p.Channel, value); err != nil {
				p.Log.Warn("pubsub publish failed", zap.Error(err))
				p.fail("pubsub")
			}
		}

		if p.OnPersist != nil {
			p.OnPersist()
		}
	}
}

func (p *BetProcessor) fail(phase string) {
	if p.OnError != nil {
		p.OnError(phase)
	}
}

// PriceProcessor consome os ticks de preço e alimenta prices_current,
// price_history e o cache Redis
type PriceProcessor struct {
	Log    *zap.Logger
	Reader *kafka.Reader
	Repo   *repository.PostgresRepo
	Cache  *cache.RedisCache

	OnConsumed func()
	OnPersist  func()
	OnError    func(string)
}

func (p *PriceProcessor) Run(ctx context.Context) error {
	for {
		_, value, err := skafka.ReadNext(ctx, p.Reader)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			p.Log.Warn("kafka read failed", zap.Error(err))
			p.fail("read")
			time.Sleep(500 * time.Millisecond)
			continue
		}

		if p.OnConsumed != nil {
			p.OnConsumed()
		}

		var ev events.PriceUpdate
		if err := json.Unmarshal(value, &ev); err != nil {
			p.Log.Warn("invalid message", zap.Error(err))
			p.fail("decode")
			continue
		}

		if err := p.Cache.SetPrice(ctx, ev); err != nil {
			p.Log.Warn("redis set failed", zap.Error(err))
			p.fail("cache")
			// não bloqueia persistência se falhar o cache
		}

		if err := p.Repo.UpsertPriceCurrent(ctx, ev); err != nil {
			p.Log.Warn("db upsert failed", zap.Error(err))
			p.fail("db_upsert")
			continue
		}
		if err := p.Repo.InsertPriceHistory(ctx, ev); err != nil {
			p.Log.Warn("db insert history failed", zap.Error(err))
			p.fail("db_history")
			continue
		}

		if p.OnPersist != nil {
			p.OnPersist()
		}
	}
}

func (p *PriceProcessor) fail(phase string) {
	if p.OnError != nil {
		p.OnError(phase)
	}
}
