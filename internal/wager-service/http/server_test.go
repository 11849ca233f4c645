package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/radieske/crypto-wager-platform-poc/internal/wager-service/dto"
	"github.com/radieske/crypto-wager-platform-poc/internal/wager-service/engine"
	"github.com/radieske/crypto-wager-platform-poc/internal/wager-service/funds"
)

const adminAcct = "acct-admin"

type fixedPrices struct {
	mu     sync.Mutex
	prices map[string]int64
	at     time.Time
}

func (f *fixedPrices) set(sym string, p int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.prices == nil {
		f.prices = make(map[string]int64)
	}
	f.prices[sym] = p
}

func (f *fixedPrices) CurrentPrice(sym string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.prices[sym]
	if !ok {
		return 0, fmt.Errorf("no price for %s", sym)
	}
	return p, nil
}

func (f *fixedPrices) Snapshot() (map[string]int64, time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]int64, len(f.prices))
	for k, v := range f.prices {
		out[k] = v
	}
	return out, f.at
}

type apiHarness struct {
	srv    *httptest.Server
	bank   *funds.InMemoryBank
	prices *fixedPrices
}

func newAPIHarness(t *testing.T) *apiHarness {
	t.Helper()
	cfg, err := engine.NewFeeAndLimits(adminAcct, 2, 5)
	require.NoError(t, err)

	bank := funds.NewInMemoryBank()
	prices := &fixedPrices{at: time.Now().UTC()}
	eng := engine.New(zap.NewNop(), bank, prices, nil, nil, cfg, engine.Options{MinStake: 100})

	api := NewServer(zap.NewNop(), eng, bank)
	srv := httptest.NewServer(api.Router())
	t.Cleanup(srv.Close)
	return &apiHarness{srv: srv, bank: bank, prices: prices}
}

func (h *apiHarness) post(t *testing.T, path string, body any) *http.Response {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(h.srv.URL+path, "application/json", bytes.NewReader(b))
	require.NoError(t, err)
	return resp
}

func (h *apiHarness) get(t *testing.T, path string) *http.Response {
	t.Helper()
	resp, err := http.Get(h.srv.URL + path)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func (h *apiHarness) createBet(t *testing.T, acct string) int64 {
	t.Helper()
	h.bank.Deposit(acct, 10_000)
	resp := h.post(t, "/bets", dto.CreateBetRequest{
		AccountID:      acct,
		Amount:         10_000,
		Token:          "BTC",
		PredictedPrice: 20_000,
		IsGt:           true,
		SpecifiedDate:  time.Now().Add(2 * time.Hour),
		ExpirationDate: time.Now().Add(time.Hour),
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out := decode[dto.CreateBetResponse](t, resp)
	require.NotZero(t, out.BetID)
	return out.BetID
}

func TestAPI_CreateBet(t *testing.T) {
	h := newAPIHarness(t)
	id := h.createBet(t, "alice")

	resp := h.get(t, fmt.Sprintf("/bets/%d", id))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	bet := decode[engine.Bet](t, resp)
	assert.Equal(t, engine.StatusPending, bet.Status)
	assert.Equal(t, "alice", bet.Requester)
	assert.EqualValues(t, 10_000, bet.Amount)
}

func TestAPI_CreateBet_BadPayload(t *testing.T) {
	h := newAPIHarness(t)

	resp := h.post(t, "/bets", map[string]any{"accountId": "alice"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = h.post(t, "/bets", dto.CreateBetRequest{
		AccountID:      "alice",
		Amount:         10_000,
		Token:          "DOGE",
		PredictedPrice: 1,
		SpecifiedDate:  time.Now().Add(2 * time.Hour),
		ExpirationDate: time.Now().Add(time.Hour),
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestAPI_CreateBet_InsufficientFunds(t *testing.T) {
	h := newAPIHarness(t)

	resp := h.post(t, "/bets", dto.CreateBetRequest{
		AccountID:      "broke",
		Amount:         10_000,
		Token:          "BTC",
		PredictedPrice: 20_000,
		SpecifiedDate:  time.Now().Add(2 * time.Hour),
		ExpirationDate: time.Now().Add(time.Hour),
	})
	// transferência recusada vira 502, não 500
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	resp.Body.Close()
}

func TestAPI_AcceptBet(t *testing.T) {
	h := newAPIHarness(t)
	id := h.createBet(t, "alice")
	h.bank.Deposit("bob", 10_000)

	resp := h.post(t, fmt.Sprintf("/bets/%d/accept", id), dto.AcceptBetRequest{AccountID: "bob", Amount: 10_000})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out := decode[dto.StatusResponse](t, resp)
	assert.Equal(t, string(engine.StatusAccepted), out.Status)

	// valor divergente: 409
	id2 := h.createBet(t, "alice")
	h.bank.Deposit("bob", 10_000)
	resp = h.post(t, fmt.Sprintf("/bets/%d/accept", id2), dto.AcceptBetRequest{AccountID: "bob", Amount: 9_999})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()
}

func TestAPI_CancelBet(t *testing.T) {
	h := newAPIHarness(t)
	id := h.createBet(t, "alice")

	// só o requester cancela
	resp := h.post(t, fmt.Sprintf("/bets/%d/cancel", id), dto.CancelBetRequest{AccountID: "bob"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	resp = h.post(t, fmt.Sprintf("/bets/%d/cancel", id), dto.CancelBetRequest{AccountID: "alice"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out := decode[dto.StatusResponse](t, resp)
	assert.Equal(t, string(engine.StatusCanceled), out.Status)
	assert.EqualValues(t, 10_000, h.bank.Balance("alice"))
}

func TestAPI_CheckBet_NotDue(t *testing.T) {
	h := newAPIHarness(t)
	id := h.createBet(t, "alice")

	resp := h.post(t, fmt.Sprintf("/bets/%d/check", id), struct{}{})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()
}

func TestAPI_GetBet_NotFound(t *testing.T) {
	h := newAPIHarness(t)
	resp := h.get(t, "/bets/42")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	resp = h.get(t, "/bets/abc")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestAPI_OpenBets(t *testing.T) {
	h := newAPIHarness(t)
	id1 := h.createBet(t, "alice")
	id2 := h.createBet(t, "bob")

	resp := h.post(t, fmt.Sprintf("/bets/%d/cancel", id2), dto.CancelBetRequest{AccountID: "bob"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	got := decode[dto.OpenBetsResponse](t, h.get(t, "/bets/open"))
	assert.Equal(t, []int64{id1}, got.BetIDs)
}

func TestAPI_Prices(t *testing.T) {
	h := newAPIHarness(t)
	h.prices.set("BTC", 2_100_000_000_000)

	got := decode[dto.PricesResponse](t, h.get(t, "/prices"))
	assert.EqualValues(t, 2_100_000_000_000, got.Prices["BTC"])
}

func TestAPI_AccountOps(t *testing.T) {
	h := newAPIHarness(t)

	resp := h.post(t, "/accounts/alice/deposit", dto.DepositRequest{Amount: 500})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	bal := decode[dto.BalanceResponse](t, resp)
	assert.EqualValues(t, 500, bal.Balance)

	bal = decode[dto.BalanceResponse](t, h.get(t, "/accounts/alice/balance"))
	assert.EqualValues(t, 500, bal.Balance)

	stats := decode[dto.AccountStatsResponse](t, h.get(t, "/accounts/alice/stats"))
	assert.EqualValues(t, 0, stats.Wins)
	assert.EqualValues(t, 0, stats.Losses)

	resp = h.post(t, "/accounts/alice/deposit", dto.DepositRequest{Amount: -1})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestAPI_AdminGuards(t *testing.T) {
	h := newAPIHarness(t)

	resp := h.post(t, "/admin/fee", dto.SetFeeRequest{AccountID: "alice", FeePercentage: 10})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	resp = h.post(t, "/admin/fee", dto.SetFeeRequest{AccountID: adminAcct, FeePercentage: 10})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = h.post(t, "/admin/max-pending", dto.SetMaxPendingRequest{AccountID: adminAcct, MaxPendingBets: 3})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = h.post(t, "/admin/fees/withdraw", dto.AdminRequest{AccountID: adminAcct})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out := decode[dto.WithdrawFeesResponse](t, resp)
	assert.EqualValues(t, 0, out.Withdrawn)
}

func TestAPI_MetricCallbacks(t *testing.T) {
	h := newAPIHarness(t)

	var created, canceled int
	// acessa o Server por baixo do httptest para plugar as callbacks
	cfg, err := engine.NewFeeAndLimits(adminAcct, 2, 5)
	require.NoError(t, err)
	bank := funds.NewInMemoryBank()
	eng := engine.New(zap.NewNop(), bank, h.prices, nil, nil, cfg, engine.Options{MinStake: 100})
	api := NewServer(zap.NewNop(), eng, bank)
	api.OnCreated = func() { created++ }
	api.OnCanceled = func() { canceled++ }
	srv := httptest.NewServer(api.Router())
	defer srv.Close()

	bank.Deposit("alice", 10_000)
	body, _ := json.Marshal(dto.CreateBetRequest{
		AccountID:      "alice",
		Amount:         10_000,
		Token:          "ETH",
		PredictedPrice: 3_000,
		SpecifiedDate:  time.Now().Add(2 * time.Hour),
		ExpirationDate: time.Now().Add(time.Hour),
	})
	resp, err := http.Post(srv.URL+"/bets", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	var out dto.CreateBetResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	resp.Body.Close()

	body, _ = json.Marshal(dto.CancelBetRequest{AccountID: "alice"})
	resp, err = http.Post(fmt.Sprintf("%s/bets/%d/cancel", srv.URL, out.BetID), "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, 1, created)
	assert.Equal(t, 1, canceled)
}
