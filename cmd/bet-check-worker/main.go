package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/radieske/crypto-wager-platform-poc/internal/shared/config"
	"github.com/radieske/crypto-wager-platform-poc/internal/shared/logger"
	"github.com/radieske/crypto-wager-platform-poc/internal/shared/metrics"
)

// O engine não se auto-agenda: este worker é o gatilho periódico do checkBet.
// A cada intervalo lista as apostas vivas no wager-service e dispara o check
// de cada uma; "ainda não venceu" (409) é resultado esperado, não erro.

var (
	checksIssued = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "check_worker_checks_total",
		Help: "Chamadas de checkBet disparadas",
	})
	checksNotDue = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "check_worker_not_due_total",
		Help: "Checks respondidos com 'ainda não venceu'",
	})
	checksFailed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "check_worker_failures_total",
		Help: "Checks com erro de transporte ou resposta inesperada",
	})
)

type openBetsResp struct {
	BetIDs []int64 `json:"bet_ids"`
}

func main() {
	cfg := config.Load()
	log, err := logger.New("bet-check-worker", cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	prometheus.MustRegister(checksIssued, checksNotDue, checksFailed)

	// Servidor de métricas e healthcheck
	metrics.StartMetricsServer(cfg.MetricsPort, func(context.Context) error { return nil })
	log.Info("metrics/health", zap.String("addr", ":"+cfg.MetricsPort))

	log.Info("bet-check-worker started",
		zap.String("wagerService", cfg.WagerServiceURL),
		zap.Duration("interval", cfg.CheckInterval),
	)

	client := &http.Client{Timeout: 10 * time.Second}
	ticker := time.NewTicker(cfg.CheckInterval)
	defer ticker.Stop()

	for range ticker.C {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.CheckInterval)
		runSweep(ctx, log, client, cfg.WagerServiceURL)
		cancel()
	}
}

// runSweep percorre as apostas vivas e dispara um check em cada uma
func runSweep(ctx context.Context, log *zap.Logger, client *http.Client, baseURL string) {
	ids, err := fetchOpenBets(ctx, client, baseURL)
	if err != nil {
		log.Warn("list open bets", zap.Error(err))
		checksFailed.Inc()
		return
	}

	for _, id := range ids {
		if err := checkBet(ctx, client, baseURL, id); err != nil {
			if err == errNotDue {
				checksNotDue.Inc()
				continue
			}
			log.Warn("check bet", zap.Int64("betId", id), zap.Error(err))
			checksFailed.Inc()
			continue
		}
		checksIssued.Inc()
	}
}

func fetchOpenBets(ctx context.Context, client *http.Client, baseURL string) ([]int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/bets/open", nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("open bets http %s", resp.Status)
	}

	var out openBetsResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	return out.BetIDs, nil
}

var errNotDue = fmt.Errorf("bet not due")

func checkBet(ctx context.Context, client *http.Client, baseURL string, betID int64) error {
	url := fmt.Sprintf("%s/bets/%d/check", baseURL, betID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(nil))
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusConflict:
		// precondição de timestamp ainda não satisfeita; tentamos de novo
		// no próximo sweep
		return errNotDue
	default:
		return fmt.Errorf("check http %s", resp.Status)
	}
}
