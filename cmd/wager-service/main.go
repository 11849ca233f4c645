package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/radieske/crypto-wager-platform-poc/internal/shared/config"
	skafka "github.com/radieske/crypto-wager-platform-poc/internal/shared/kafka"
	"github.com/radieske/crypto-wager-platform-poc/internal/shared/logger"
	"github.com/radieske/crypto-wager-platform-poc/internal/shared/metrics"
	"github.com/radieske/crypto-wager-platform-poc/internal/wager-service/engine"
	"github.com/radieske/crypto-wager-platform-poc/internal/wager-service/feed"
	"github.com/radieske/crypto-wager-platform-poc/internal/wager-service/funds"
	whttp "github.com/radieske/crypto-wager-platform-poc/internal/wager-service/http"
	kpub "github.com/radieske/crypto-wager-platform-poc/internal/wager-service/producer"
)

// Métricas Prometheus do serviço de apostas
var (
	betsCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "wager_bets_created_total",
		Help: "Apostas criadas",
	})
	betsAccepted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "wager_bets_accepted_total",
		Help: "Apostas casadas",
	})
	betsCanceled = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "wager_bets_canceled_total",
		Help: "Apostas canceladas",
	})
	betsChecked = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "wager_bets_checked_total",
		Help: "Chamadas de checkBet que transicionaram ou confirmaram estado",
	})
)

func main() {
	cfg := config.Load()
	log, err := logger.New("wager-service", cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	prometheus.MustRegister(betsCreated, betsAccepted, betsCanceled, betsChecked)

	// Redis: espelho do snapshot de preços para os serviços de leitura
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		log.Fatal("redis", zap.Error(err))
	}

	// Kafka writer (tópico bet_events)
	writer := skafka.NewWriter(cfg.KafkaBrokers, cfg.TopicBetEvents)
	defer writer.Close()

	// Feed de preços: cliente do agregador + snapshot em memória + espelho Redis
	snapshot := feed.NewSnapshot()
	feedSvc := feed.NewService(log, feed.NewClient(cfg.OracleHTTPURL), snapshot, rdb, 5*time.Minute)

	// Primeira carga do snapshot; sem preço nenhum a liquidação não funciona,
	// mas o serviço sobe mesmo assim e o admin pode dar refresh depois.
	// Com o agregador fora do ar, tenta restaurar do espelho Redis
	if err := feedSvc.Refresh(context.Background()); err != nil {
		log.Warn("initial price refresh failed", zap.Error(err))
		if cached, ok, cerr := feed.CachedSnapshot(context.Background(), rdb); cerr == nil && ok {
			snapshot.Replace(cached.Prices, cached.UpdatedAt)
			log.Info("price snapshot restored from redis mirror", zap.Int("tokens", len(cached.Prices)))
		}
	}

	// Config de fee/limites com guard de owner
	limits, err := engine.NewFeeAndLimits(cfg.AdminAccount, cfg.FeePercentage, cfg.MaxPendingBets)
	if err != nil {
		log.Fatal("fee/limits config", zap.Error(err))
	}

	bank := funds.NewInMemoryBank()
	notifier := kpub.NewKafkaNotifier(writer)

	eng := engine.New(log, bank, snapshot, feedSvc, notifier, limits, engine.Options{
		MinStake: cfg.MinStake,
	})

	api := whttp.NewServer(log, eng, bank)
	api.OnCreated = betsCreated.Inc
	api.OnAccepted = betsAccepted.Inc
	api.OnCanceled = betsCanceled.Inc
	api.OnChecked = betsChecked.Inc

	apiSrv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler: api.Router(),
	}

	// metrics/health
	metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	})
	log.Info("metrics/health", zap.String("addr", ":"+cfg.MetricsPort))

	log.Info("wager-service listening",
		zap.String("addr", fmt.Sprintf(":%s", cfg.HTTPPort)),
		zap.String("admin", cfg.AdminAccount),
		zap.Int64("feePct", cfg.FeePercentage),
		zap.Int("maxPending", cfg.MaxPendingBets),
		zap.Int64("minStake", cfg.MinStake),
	)
	if err := apiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("api", zap.Error(err))
	}
}
