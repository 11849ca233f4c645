package httpapi

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/radieske/crypto-wager-platform-poc/internal/history-service/cache"
	"github.com/radieske/crypto-wager-platform-poc/internal/history-service/dto"
	"github.com/radieske/crypto-wager-platform-poc/internal/history-service/repo"
)

const defaultListLimit = 100

// API expõe os endpoints REST de consulta do histórico de apostas
// Utiliza um repositório de leitura (Postgres) e cache (Redis)
type API struct {
	ReadRepo *repo.ReadRepo // acesso à projeção
	Cache    *cache.Cache   // cache de leituras
}

// Router retorna o roteador HTTP com os endpoints REST
func (a *API) Router() http.Handler {
	r := chi.NewRouter()
	r.Get("/v1/bets", a.listBets)                        // Lista as apostas mais recentes
	r.Get("/v1/bets/{id}", a.getBet)                     // Detalhe de uma aposta
	r.Get("/v1/bets/{id}/history", a.getHistory)         // Transições de status
	r.Get("/v1/accounts/{id}/bets", a.listAccountBets)   // Apostas de uma conta
	r.Get("/v1/prices/{token}/history", a.priceHistory)  // Histórico de preços
	return r
}

// writeJSON serializa a resposta em JSON e define o status HTTP
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *API) listBets(w http.ResponseWriter, r *http.Request) {
	limit := defaultListLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 && n <= 1000 {
			limit = n
		}
	}
	bets, err := a.ReadRepo.ListBets(r.Context(), limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, bets)
}

// getBet retorna uma aposta, preferencialmente do cache
func (a *API) getBet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	betID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid bet id"})
		return
	}

	var fromCache dto.BetRow
	if ok, _ := a.Cache.GetBet(r.Context(), id, &fromCache); ok {
		writeJSON(w, http.StatusOK, fromCache)
		return
	}

	b, err := a.ReadRepo.GetBet(r.Context(), betID)
	if err != nil {
		if err == sql.ErrNoRows {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	_ = a.Cache.SetBet(r.Context(), id, b, 30*time.Second) // salva no cache por 30s
	writeJSON(w, http.StatusOK, b)
}

func (a *API) getHistory(w http.ResponseWriter, r *http.Request) {
	betID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid bet id"})
		return
	}
	hist, err := a.ReadRepo.GetStatusHistory(r.Context(), betID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, hist)
}

// listAccountBets retorna as apostas da conta, preferencialmente do cache
func (a *API) listAccountBets(w http.ResponseWriter, r *http.Request) {
	acct := chi.URLParam(r, "id")

	var fromCache []dto.BetRow
	if ok, _ := a.Cache.GetAccountBets(r.Context(), acct, &fromCache); ok {
		writeJSON(w, http.StatusOK, fromCache)
		return
	}

	bets, err := a.ReadRepo.ListBetsByAccount(r.Context(), acct)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	_ = a.Cache.SetAccountBets(r.Context(), acct, bets, 10*time.Second)
	writeJSON(w, http.StatusOK, bets)
}

func (a *API) priceHistory(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	limit := defaultListLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 && n <= 1000 {
			limit = n
		}
	}
	points, err := a.ReadRepo.GetPriceHistory(r.Context(), token, limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, points)
}
