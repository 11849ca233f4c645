package main

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/radieske/crypto-wager-platform-poc/internal/shared/config"
	"github.com/radieske/crypto-wager-platform-poc/internal/shared/logger"
	"github.com/radieske/crypto-wager-platform-poc/pkg/contracts/events"
)

// Simulador do agregador externo de preços: random walk sobre os seis ativos,
// broadcast por WebSocket a cada tick e snapshot consolidado em GET /prices
// (é esse endpoint que o refreshPrices do engine consome).

const priceScale = 100_000_000

var (
	upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     func(r *http.Request) bool { return true },
	}

	// Preços iniciais em unidades (antes da escala 1e8)
	basePrices = map[string]float64{
		"BTC": 65000,
		"ETH": 3400,
		"BNB": 580,
		"XRP": 0.52,
		"ADA": 0.38,
		"SOL": 150,
	}

	wsConnections = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "oracle_ws_connections",
		Help: "Clientes WebSocket conectados",
	})
	wsMessagesSent = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "oracle_ws_messages_sent_total",
		Help: "Total de mensagens WS enviadas",
	})
	snapshotServed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "oracle_snapshot_requests_total",
		Help: "Leituras de GET /prices",
	})
)

type clientConn struct {
	id   string
	conn *websocket.Conn
}

type hub struct {
	mu      sync.RWMutex
	clients map[string]*clientConn
	log     *zap.Logger
}

func newHub(log *zap.Logger) *hub {
	return &hub{clients: make(map[string]*clientConn), log: log}
}

func (h *hub) add(c *clientConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c.id] = c
	wsConnections.Inc()
	h.log.Info("ws client connected", zap.String("client_id", c.id))
}

func (h *hub) remove(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[id]; ok {
		delete(h.clients, id)
		wsConnections.Dec()
		h.log.Info("ws client disconnected", zap.String("client_id", id))
	}
}

func (h *hub) broadcast(v any) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	msg, _ := json.Marshal(v)
	for id, c := range h.clients {
		c.conn.SetWriteDeadline(time.Now().Add(2 * time.Second))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			h.log.Warn("ws write failed", zap.String("client_id", id), zap.Error(err))
			_ = c.conn.Close()
		} else {
			wsMessagesSent.Inc()
		}
	}
}

// book mantém o preço corrente de cada ativo entre os ticks
type book struct {
	mu      sync.RWMutex
	prices  map[string]int64
	updated time.Time
	version int
}

func newBook() *book {
	b := &book{prices: make(map[string]int64)}
	for sym, p := range basePrices {
		b.prices[sym] = int64(p * priceScale)
	}
	b.updated = time.Now().UTC()
	return b
}

// tick aplica um passo do random walk (±0.5%) e retorna os updates do tick
func (b *book) tick(source string) []events.PriceUpdate {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.version++
	b.updated = time.Now().UTC()

	updates := make([]events.PriceUpdate, 0, len(b.prices))
	for sym, p := range b.prices {
		drift := 1 + (rand.Float64()-0.5)/100
		np := int64(float64(p) * drift)
		if np < 1 {
			np = 1
		}
		b.prices[sym] = np
		updates = append(updates, events.PriceUpdate{
			Token:     sym,
			Price:     np,
			UpdatedAt: b.updated,
			Source:    source,
			Version:   b.version,
		})
	}
	return updates
}

func (b *book) snapshot(source string) events.PricesSnapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := events.PricesSnapshot{
		Prices:    make(map[string]int64, len(b.prices)),
		UpdatedAt: b.updated,
		Source:    source,
	}
	for sym, p := range b.prices {
		out.Prices[sym] = p
	}
	return out
}

func main() {
	cfg := config.Load()
	log, err := logger.New("oracle-simulator", cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	prometheus.MustRegister(wsConnections, wsMessagesSent, snapshotServed)

	h := newHub(log)
	bk := newBook()

	// Random walk a cada 3 segundos, com broadcast para os clientes WS
	go func() {
		ticker := time.NewTicker(3 * time.Second)
		defer ticker.Stop()
		for range ticker.C {
			for _, up := range bk.tick("oracle-simulator") {
				h.broadcast(up)
			}
		}
	}()

	// ==== MUX PÚBLICO: /ws e /prices
	appMux := http.NewServeMux()

	appMux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Warn("ws upgrade failed", zap.Error(err))
			return
		}
		id := uuid.NewString()
		c := &clientConn{id: id, conn: conn}
		h.add(c)

		go func() {
			defer func() {
				h.remove(id)
				_ = conn.Close()
			}()
			_ = conn.SetReadDeadline(time.Time{})
			for {
				// Lê e descarta mensagens do cliente para manter o socket limpo
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()
	})

	appMux.HandleFunc("/prices", func(w http.ResponseWriter, r *http.Request) {
		snapshotServed.Inc()
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(bk.snapshot("oracle-simulator"))
	})

	// ==== MUX DE MÉTRICAS (/healthz, /metrics)
	metricsMux := http.NewServeMux()
	metricsMux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	metricsMux.Handle("/metrics", promhttp.Handler())

	go func() {
		metricsAddr := fmt.Sprintf(":%s", cfg.MetricsPort)
		log.Info("oracle simulator (metrics) running", zap.String("addr", metricsAddr))
		if err := http.ListenAndServe(metricsAddr, metricsMux); err != nil {
			log.Fatal("metrics server error", zap.Error(err))
		}
	}()

	publicAddr := fmt.Sprintf(":%s", cfg.HTTPPort)
	log.Info("oracle simulator (public) running",
		zap.String("addr", publicAddr),
		zap.String("paths", "/ws,/prices"),
	)
	if err := http.ListenAndServe(publicAddr, appMux); err != nil {
		log.Fatal("public server error", zap.Error(err))
	}
}
