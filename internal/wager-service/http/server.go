package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/radieske/crypto-wager-platform-poc/internal/wager-service/dto"
	"github.com/radieske/crypto-wager-platform-poc/internal/wager-service/engine"
	"github.com/radieske/crypto-wager-platform-poc/internal/wager-service/funds"
)

// Server expõe a API pública do engine de apostas.
// Callbacks de métricas podem ser plugadas pelo main (counter++ por operação).
type Server struct {
	log  *zap.Logger
	eng  *engine.Engine
	bank *funds.InMemoryBank

	OnCreated  func()
	OnAccepted func()
	OnCanceled func()
	OnChecked  func()
}

func NewServer(log *zap.Logger, eng *engine.Engine, bank *funds.InMemoryBank) *Server {
	return &Server{log: log, eng: eng, bank: bank}
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/bets", s.createBet)         // POST
	mux.HandleFunc("/bets/open", s.openBets)     // GET
	mux.HandleFunc("/bets/", s.betByID)          // GET /bets/{id}, POST /bets/{id}/{accept|cancel|check}
	mux.HandleFunc("/prices", s.prices)          // GET
	mux.HandleFunc("/accounts/", s.accountOps)   // GET stats/balance, POST deposit
	mux.HandleFunc("/admin/prices/refresh", s.adminRefreshPrices)
	mux.HandleFunc("/admin/fee", s.adminSetFee)
	mux.HandleFunc("/admin/max-pending", s.adminSetMaxPending)
	mux.HandleFunc("/admin/fees/withdraw", s.adminWithdrawFees)
	return mux
}

func (s *Server) createBet(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req dto.CreateBetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.AccountID == "" || req.Amount <= 0 || req.Token == "" || req.PredictedPrice <= 0 {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	token, err := engine.ParseToken(req.Token)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	betID, err := s.eng.CreateBet(r.Context(), engine.CreateParams{
		Requester:      req.AccountID,
		Amount:         req.Amount,
		Token:          token,
		PredictedPrice: req.PredictedPrice,
		IsGt:           req.IsGt,
		SpecifiedDate:  req.SpecifiedDate,
		ExpirationDate: req.ExpirationDate,
	})
	if err != nil {
		writeEngineError(w, err)
		return
	}
	if s.OnCreated != nil {
		s.OnCreated()
	}

	writeJSON(w, dto.CreateBetResponse{BetID: betID, Status: string(engine.StatusPending)})
}

// betByID resolve /bets/{id} e as ações /bets/{id}/{accept|cancel|check}
func (s *Server) betByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/bets/")
	parts := strings.SplitN(rest, "/", 2)

	betID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		http.Error(w, "betId must be numeric", http.StatusBadRequest)
		return
	}

	if len(parts) == 1 {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		bet, err := s.eng.GetBet(betID)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, bet)
		return
	}

	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	switch parts[1] {
	case "accept":
		var req dto.AcceptBetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if req.AccountID == "" || req.Amount <= 0 {
			http.Error(w, "invalid payload", http.StatusBadRequest)
			return
		}
		if err := s.eng.AcceptBet(r.Context(), betID, req.AccountID, req.Amount); err != nil {
			writeEngineError(w, err)
			return
		}
		if s.OnAccepted != nil {
			s.OnAccepted()
		}
		writeJSON(w, dto.StatusResponse{BetID: betID, Status: string(engine.StatusAccepted)})

	case "cancel":
		var req dto.CancelBetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if req.AccountID == "" {
			http.Error(w, "invalid payload", http.StatusBadRequest)
			return
		}
		if err := s.eng.CancelBet(r.Context(), betID, req.AccountID); err != nil {
			writeEngineError(w, err)
			return
		}
		if s.OnCanceled != nil {
			s.OnCanceled()
		}
		writeJSON(w, dto.StatusResponse{BetID: betID, Status: string(engine.StatusCanceled)})

	case "check":
		if err := s.eng.CheckBet(r.Context(), betID); err != nil {
			writeEngineError(w, err)
			return
		}
		if s.OnChecked != nil {
			s.OnChecked()
		}
		bet, err := s.eng.GetBet(betID)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, dto.StatusResponse{BetID: betID, Status: string(bet.Status)})

	default:
		http.Error(w, "unknown action", http.StatusNotFound)
	}
}

func (s *Server) openBets(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, dto.OpenBetsResponse{BetIDs: s.eng.OpenBets()})
}

func (s *Server) prices(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	prices, at := s.eng.TokenPrices()
	writeJSON(w, dto.PricesResponse{Prices: prices, UpdatedAt: at})
}

// accountOps resolve /accounts/{id}/{stats|balance|deposit}
func (s *Server) accountOps(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/accounts/")
	parts := strings.SplitN(rest, "/", 2)
	if len(parts) != 2 || parts[0] == "" {
		http.Error(w, "accountId required", http.StatusBadRequest)
		return
	}
	acct := parts[0]

	switch parts[1] {
	case "stats":
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		wins, losses := s.eng.StatsFor(acct)
		writeJSON(w, dto.AccountStatsResponse{AccountID: acct, Wins: wins, Losses: losses})

	case "balance":
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, dto.BalanceResponse{AccountID: acct, Balance: s.bank.Balance(acct)})

	case "deposit":
		// faucet do PoC; num ambiente real o valor entraria pela camada de pagamento
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req dto.DepositRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if req.Amount <= 0 {
			http.Error(w, "invalid payload", http.StatusBadRequest)
			return
		}
		newBal := s.bank.Deposit(acct, req.Amount)
		writeJSON(w, dto.BalanceResponse{AccountID: acct, Balance: newBal})

	default:
		http.Error(w, "unknown action", http.StatusNotFound)
	}
}

func (s *Server) adminRefreshPrices(w http.ResponseWriter, r *http.Request) {
	var req dto.AdminRequest
	if !decodeAdminPost(w, r, &req) || req.AccountID == "" {
		return
	}
	if err := s.eng.RefreshPrices(r.Context(), req.AccountID); err != nil {
		writeEngineError(w, err)
		return
	}
	prices, at := s.eng.TokenPrices()
	writeJSON(w, dto.PricesResponse{Prices: prices, UpdatedAt: at})
}

func (s *Server) adminSetFee(w http.ResponseWriter, r *http.Request) {
	var req dto.SetFeeRequest
	if !decodeAdminPost(w, r, &req) || req.AccountID == "" {
		return
	}
	if err := s.eng.SetFeePercentage(req.AccountID, req.FeePercentage); err != nil {
		writeEngineError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) adminSetMaxPending(w http.ResponseWriter, r *http.Request) {
	var req dto.SetMaxPendingRequest
	if !decodeAdminPost(w, r, &req) || req.AccountID == "" {
		return
	}
	if err := s.eng.SetMaxPendingBets(req.AccountID, req.MaxPendingBets); err != nil {
		writeEngineError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) adminWithdrawFees(w http.ResponseWriter, r *http.Request) {
	var req dto.AdminRequest
	if !decodeAdminPost(w, r, &req) || req.AccountID == "" {
		return
	}
	amount, err := s.eng.WithdrawFees(r.Context(), req.AccountID)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, dto.WithdrawFeesResponse{Withdrawn: amount})
}

// decodeAdminPost valida método e corpo das rotas administrativas
func decodeAdminPost(w http.ResponseWriter, r *http.Request, dst any) bool {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return false
	}
	return true
}

// writeEngineError traduz os erros de precondição do engine em status HTTP
func writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, engine.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, engine.ErrPermissionDenied):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, engine.ErrTransferFailed):
		http.Error(w, err.Error(), http.StatusBadGateway)
	case errors.Is(err, engine.ErrInvalidState),
		errors.Is(err, engine.ErrExpired),
		errors.Is(err, engine.ErrNotYetMatured),
		errors.Is(err, engine.ErrValueMismatch),
		errors.Is(err, engine.ErrLimitExceeded):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
