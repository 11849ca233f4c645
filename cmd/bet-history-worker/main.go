package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/radieske/crypto-wager-platform-poc/internal/bet-history/cache"
	"github.com/radieske/crypto-wager-platform-poc/internal/bet-history/consumer"
	"github.com/radieske/crypto-wager-platform-poc/internal/bet-history/pubsub"
	"github.com/radieske/crypto-wager-platform-poc/internal/bet-history/repository"
	sharedcache "github.com/radieske/crypto-wager-platform-poc/internal/shared/cache"
	"github.com/radieske/crypto-wager-platform-poc/internal/shared/config"
	"github.com/radieske/crypto-wager-platform-poc/internal/shared/db"
	skafka "github.com/radieske/crypto-wager-platform-poc/internal/shared/kafka"
	"github.com/radieske/crypto-wager-platform-poc/internal/shared/logger"
	"github.com/radieske/crypto-wager-platform-poc/internal/shared/metrics"
)

var (
	betConsumed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "history_bet_events_consumed_total",
		Help: "Eventos de aposta consumidos",
	})
	betPersisted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "history_bet_events_persisted_total",
		Help: "Eventos de aposta materializados",
	})
	priceConsumed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "history_price_updates_consumed_total",
		Help: "Ticks de preço consumidos",
	})
	pricePersisted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "history_price_updates_persisted_total",
		Help: "Ticks de preço materializados",
	})
	phaseErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "history_worker_errors_total",
		Help: "Erros por fase do pipeline",
	}, []string{"phase"})
)

func main() {
	cfg := config.Load()
	log, err := logger.New("bet-history-worker", cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	prometheus.MustRegister(betConsumed, betPersisted, priceConsumed, pricePersisted, phaseErrors)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Inicializa dependências: Postgres e Redis
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("pg connect", zap.Error(err))
	}
	defer pg.Close()

	rdb, err := sharedcache.ConnectRedis(ctx, cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis connect", zap.Error(err))
	}

	repo := repository.NewPostgresRepo(pg)
	rcache := cache.NewRedisCache(rdb, 10*time.Minute)
	broadcaster := pubsub.NewRedisBroadcaster(rdb)

	betReader := skafka.NewReader(cfg.KafkaBrokers, cfg.TopicBetEvents, "bet-history")
	defer betReader.Close()
	priceReader := skafka.NewReader(cfg.KafkaBrokers, cfg.TopicPriceUpdates, "bet-history")
	defer priceReader.Close()

	dlqWriter := skafka.NewWriter(cfg.KafkaBrokers, cfg.TopicBetEventsDLQ)
	defer dlqWriter.Close()

	// Servidor de métricas e healthcheck
	metrics.StartMetricsServer(cfg.MetricsPort, func(hctx context.Context) error {
		if err := pg.PingContext(hctx); err != nil {
			return err
		}
		return rdb.Ping(hctx).Err()
	})
	log.Info("metrics/health", zap.String("addr", ":"+cfg.MetricsPort))

	betProc := &consumer.BetProcessor{
		Log:         log,
		Reader:      betReader,
		Repo:        repo,
		Cache:       rcache,
		Broadcaster: broadcaster,
		Channel:     cfg.RedisPubSubChannel,
		DLQ:         dlqWriter,
		OnConsumed:  betConsumed.Inc,
		OnPersist:   betPersisted.Inc,
		OnError:     func(phase string) { phaseErrors.WithLabelValues(phase).Inc() },
	}
	priceProc := &consumer.PriceProcessor{
		Log:        log,
		Reader:     priceReader,
		Repo:       repo,
		Cache:      rcache,
		OnConsumed: priceConsumed.Inc,
		OnPersist:  pricePersisted.Inc,
		OnError:    func(phase string) { phaseErrors.WithLabelValues(phase).Inc() },
	}

	log.Info("bet-history-worker started",
		zap.String("betTopic", cfg.TopicBetEvents),
		zap.String("priceTopic", cfg.TopicPriceUpdates),
	)

	errCh := make(chan error, 2)
	go func() { errCh <- betProc.Run(ctx) }()
	go func() { errCh <- priceProc.Run(ctx) }()

	if err := <-errCh; err != nil && err != context.Canceled {
		log.Fatal("processor", zap.Error(err))
	}
}
