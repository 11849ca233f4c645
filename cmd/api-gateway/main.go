package main

import (
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"

	"go.uber.org/zap"

	"github.com/radieske/crypto-wager-platform-poc/internal/shared/config"
	"github.com/radieske/crypto-wager-platform-poc/internal/shared/logger"
)

func rp(to string) *httputil.ReverseProxy {
	u, _ := url.Parse(to)
	return httputil.NewSingleHostReverseProxy(u)
}

func main() {
	cfg := config.Load()
	log, _ := logger.New(cfg.ServiceName, cfg.Env)
	defer log.Sync()

	// targets
	wagerURL := os.Getenv("WAGER_URL")
	if wagerURL == "" {
		wagerURL = cfg.WagerServiceURL
	}
	historyURL := os.Getenv("HISTORY_URL")
	if historyURL == "" {
		historyURL = "http://localhost:8086"
	}
	oracleURL := os.Getenv("ORACLE_URL")
	if oracleURL == "" {
		oracleURL = cfg.OracleHTTPURL
	}
	wager := rp(wagerURL)
	history := rp(historyURL)
	oracle := rp(oracleURL)

	mux := http.NewServeMux()

	// apostas (ex.: /api/wager/* -> wager-service)
	mux.Handle("/api/wager/", http.StripPrefix("/api/wager", wager))

	// histórico (ex.: /api/history/* -> history-service)
	mux.Handle("/api/history/", http.StripPrefix("/api/history", history))

	// preços do oráculo (ex.: /api/oracle/* -> oracle-simulator)
	mux.Handle("/api/oracle/", http.StripPrefix("/api/oracle", oracle))

	addr := ":" + cfg.HTTPPort
	log.Info("api-gateway listening", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, withCORS(mux)); err != nil && err != http.ErrServerClosed {
		log.Fatal("gateway failed", zap.Error(err))
	}
}

func withCORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		h.ServeHTTP(w, r)
	})
}
