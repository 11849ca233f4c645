package main

import (
	"context"
	"os/signal"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"github.com/radieske/crypto-wager-platform-poc/internal/price-ingest/publisher"
	"github.com/radieske/crypto-wager-platform-poc/internal/price-ingest/service"
	"github.com/radieske/crypto-wager-platform-poc/internal/shared/config"
	"github.com/radieske/crypto-wager-platform-poc/internal/shared/logger"
	"github.com/radieske/crypto-wager-platform-poc/internal/shared/metrics"
)

func main() {
	cfg := config.Load()
	log, err := logger.New("price-ingest-service", cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pub := publisher.NewKafkaPublisher(strings.Split(cfg.KafkaBrokers, ","), cfg.TopicPriceUpdates, log)
	defer pub.Close()

	// Servidor de métricas e healthcheck
	metrics.StartMetricsServer(cfg.MetricsPort, func(context.Context) error { return nil })
	log.Info("metrics/health", zap.String("addr", ":"+cfg.MetricsPort))

	client := &service.WSClient{
		URL:       cfg.OracleWSURL,
		Log:       log,
		Publisher: pub,
	}

	log.Info("price-ingest started",
		zap.String("oracleWS", cfg.OracleWSURL),
		zap.String("topic", cfg.TopicPriceUpdates),
	)
	client.Start(ctx)
}
