package engine

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/crypto-wager-platform-poc/internal/wager-service/funds"
	"github.com/radieske/crypto-wager-platform-poc/internal/wager-service/stats"
	"github.com/radieske/crypto-wager-platform-poc/pkg/contracts/events"
)

// maxStake limita o valor apostado para que 2*amount nunca estoure int64;
// o fee usa settlementFee, que não forma o produto amount*pct
const maxStake = math.MaxInt64 / 4

// PriceSource é o snapshot de preços consultado pela liquidação.
// CurrentPrice é um lookup puro, sem chamada externa: liquidação usa valor
// cacheado, não ao vivo.
type PriceSource interface {
	CurrentPrice(symbol string) (int64, error)
	Snapshot() (map[string]int64, time.Time)
}

// PriceRefresher puxa os preços do agregador externo e substitui o snapshot
type PriceRefresher interface {
	Refresh(ctx context.Context) error
}

// Notifier publica as notificações de cada transição (bet_events).
// Falha de publicação não desfaz a transição: é logada e seguimos.
type Notifier interface {
	PublishBetCreated(ctx context.Context, betID int64, ev events.BetCreated) error
	PublishBetAccepted(ctx context.Context, betID int64, ev events.BetAccepted) error
	PublishBetCanceled(ctx context.Context, betID int64, ev events.BetCanceled) error
	PublishBetStatusChanged(ctx context.Context, betID int64, ev events.BetStatusChanged) error
}

// Engine é a máquina de estados do ciclo de vida das apostas e o motor de
// liquidação. Cada operação executa como uma seção crítica única (um mutex
// global): duas chamadas concorrentes sobre o mesmo betId jamais passam
// ambas da checagem de precondição. A transferência de valor é sempre o
// último passo falível; se ela falhar, nenhuma mutação de estado é aplicada.
type Engine struct {
	mu     sync.Mutex
	log    *zap.Logger
	ledger *Ledger
	bank   funds.Bank
	prices PriceSource
	refr   PriceRefresher
	notif  Notifier
	stats  *stats.Tracker
	cfg    *FeeAndLimits

	vault    string // conta de custódia do pote e dos fees retidos
	minStake int64

	escrowed     int64 // total em custódia de apostas vivas
	feesRetained int64 // fees acumulados, sacáveis pelo owner

	now func() time.Time
}

// Options agrupa os parâmetros fixos de construção do engine
type Options struct {
	Vault    string
	MinStake int64
	Now      func() time.Time // injetável nos testes
}

func New(log *zap.Logger, bank funds.Bank, prices PriceSource, refr PriceRefresher, notif Notifier, cfg *FeeAndLimits, opt Options) *Engine {
	if opt.Vault == "" {
		opt.Vault = "wager-vault"
	}
	if opt.Now == nil {
		opt.Now = time.Now
	}
	return &Engine{
		log:      log,
		ledger:   NewLedger(),
		bank:     bank,
		prices:   prices,
		refr:     refr,
		notif:    notif,
		stats:    stats.NewTracker(),
		cfg:      cfg,
		vault:    opt.Vault,
		minStake: opt.MinStake,
		now:      opt.Now,
	}
}

// CreateParams são os argumentos do createBet
type CreateParams struct {
	Requester      string
	Amount         int64
	Token          Token
	PredictedPrice int64
	IsGt           bool
	SpecifiedDate  time.Time
	ExpirationDate time.Time
}

// CreateBet custodia o valor do requester e registra a aposta como PENDING.
// A captura do valor é atômica com a criação do registro: não existe passo
// de depósito separado, e uma transferência recusada significa nenhuma
// aposta criada.
func (e *Engine) CreateBet(ctx context.Context, p CreateParams) (int64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := ParseToken(string(p.Token)); err != nil {
		return 0, err
	}
	if p.Amount < e.minStake {
		return 0, fmt.Errorf("%w: stake %d below minimum %d", ErrLimitExceeded, p.Amount, e.minStake)
	}
	if p.Amount > maxStake {
		return 0, fmt.Errorf("%w: stake %d above maximum %d", ErrValueMismatch, p.Amount, int64(maxStake))
	}
	if p.PredictedPrice <= 0 || p.PredictedPrice > math.MaxInt64/PriceScale {
		return 0, fmt.Errorf("%w: predicted price %d out of range", ErrValueMismatch, p.PredictedPrice)
	}
	// Rejeita apenas quando a conta já ultrapassou o máximo configurado;
	// o teto admite chegar a max+1 pendências
	if e.ledger.PendingCount(p.Requester) > e.cfg.MaxPendingBets() {
		return 0, fmt.Errorf("%w: account %s has too many pending bets", ErrLimitExceeded, p.Requester)
	}

	now := e.now()
	if !p.ExpirationDate.After(now) {
		return 0, fmt.Errorf("%w: expiration date must be in the future", ErrExpired)
	}
	if !p.SpecifiedDate.After(now) {
		return 0, fmt.Errorf("%w: specified date must be in the future", ErrExpired)
	}
	if !p.ExpirationDate.Before(p.SpecifiedDate) {
		return 0, fmt.Errorf("%w: expiration date must precede the specified date", ErrExpired)
	}

	// Custódia: valor sai do requester para o vault antes de qualquer mutação
	if err := e.bank.Transfer(ctx, p.Requester, e.vault, p.Amount); err != nil {
		return 0, fmt.Errorf("%w: escrow stake: %v", ErrTransferFailed, err)
	}

	bet := &Bet{
		Requester:      p.Requester,
		Amount:         p.Amount,
		Token:          p.Token,
		PredictedPrice: p.PredictedPrice,
		IsGt:           p.IsGt,
		SpecifiedDate:  p.SpecifiedDate,
		ExpirationDate: p.ExpirationDate,
		Status:         StatusPending,
		Winner:         WinnerUnknown,
		CreatedAt:      now,
	}
	id := e.ledger.Append(bet)
	e.escrowed += p.Amount

	e.notifyCreated(ctx, id, events.BetCreated{
		Requester:      p.Requester,
		Token:          string(p.Token),
		Amount:         p.Amount,
		PredictedPrice: p.PredictedPrice,
		IsGt:           p.IsGt,
		SpecifiedDate:  p.SpecifiedDate,
		ExpirationDate: p.ExpirationDate,
	})

	e.log.Info("bet created",
		zap.Int64("betId", id),
		zap.String("requester", p.Requester),
		zap.String("token", string(p.Token)),
		zap.Int64("amount", p.Amount),
	)
	return id, nil
}

// CancelBet devolve o stake ao requester e encerra a aposta como CANCELED.
// Só o requester pode cancelar, só enquanto PENDING e antes da expiração.
func (e *Engine) CancelBet(ctx context.Context, betID int64, caller string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	b, err := e.ledger.Get(betID)
	if err != nil {
		return err
	}
	if b.Status != StatusPending {
		return fmt.Errorf("%w: bet %d is %s, not PENDING", ErrInvalidState, betID, b.Status)
	}
	if e.now().After(b.ExpirationDate) {
		return fmt.Errorf("%w: bet %d is past its expiration date", ErrExpired, betID)
	}
	if caller != b.Requester {
		return fmt.Errorf("%w: caller %q is not the requester", ErrPermissionDenied, caller)
	}

	if err := e.bank.Transfer(ctx, e.vault, b.Requester, b.Amount); err != nil {
		return fmt.Errorf("%w: refund stake: %v", ErrTransferFailed, err)
	}

	_ = e.ledger.Mutate(betID, func(m *Bet) { m.Status = StatusCanceled })
	e.ledger.releasePending(b.Requester)
	e.escrowed -= b.Amount

	e.notifyCanceled(ctx, betID, events.BetCanceled{
		Requester: b.Requester,
		Refunded:  b.Amount,
	})

	e.log.Info("bet canceled", zap.Int64("betId", betID), zap.String("requester", b.Requester))
	return nil
}

// AcceptBet casa uma aposta PENDING. O valor do acceptor precisa bater
// exatamente com o stake (sem casamento parcial nem excedente) e entra em
// custódia junto com o do requester: pote = 2x o stake até a liquidação.
func (e *Engine) AcceptBet(ctx context.Context, betID int64, caller string, matched int64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	b, err := e.ledger.Get(betID)
	if err != nil {
		return err
	}
	if b.Status != StatusPending {
		return fmt.Errorf("%w: bet %d is %s, not PENDING", ErrInvalidState, betID, b.Status)
	}
	if matched != b.Amount {
		return fmt.Errorf("%w: matched value %d != bet amount %d", ErrValueMismatch, matched, b.Amount)
	}
	if caller == b.Requester {
		return fmt.Errorf("%w: requester cannot accept its own bet", ErrPermissionDenied)
	}
	// As duas datas precisam estar estritamente no futuro no momento do
	// aceite, a mesma regra da criação
	now := e.now()
	if !now.Before(b.ExpirationDate) || !now.Before(b.SpecifiedDate) {
		return fmt.Errorf("%w: bet %d can no longer be accepted", ErrExpired, betID)
	}

	if err := e.bank.Transfer(ctx, caller, e.vault, matched); err != nil {
		return fmt.Errorf("%w: escrow matched stake: %v", ErrTransferFailed, err)
	}

	_ = e.ledger.Mutate(betID, func(m *Bet) {
		m.Status = StatusAccepted
		m.Acceptor = caller
	})
	// A aposta deixa de contar como pendente assim que casada
	e.ledger.releasePending(b.Requester)
	e.escrowed += matched

	e.notifyAccepted(ctx, betID, events.BetAccepted{
		Requester: b.Requester,
		Acceptor:  caller,
		Amount:    matched,
	})

	e.log.Info("bet accepted", zap.Int64("betId", betID), zap.String("acceptor", caller))
	return nil
}

// CheckBet é o gatilho administrativo/periódico da máquina de estados.
// No-op em status terminal; PENDING vencida expira; ACCEPTED cuja data
// especificada já chegou liquida. Fora disso, ErrNotYetMatured.
// A liquidação acontece a partir da data especificada, nunca antes dela.
func (e *Engine) CheckBet(ctx context.Context, betID int64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	b, err := e.ledger.Get(betID)
	if err != nil {
		return err
	}

	switch b.Status {
	case StatusCompleted, StatusExpired, StatusCanceled:
		return nil // terminal: idempotente, sem payout nem notificação duplicada
	case StatusPending:
		if e.now().After(b.ExpirationDate) {
			return e.expire(ctx, b)
		}
		return fmt.Errorf("%w: bet %d has not reached its expiration date", ErrNotYetMatured, betID)
	case StatusAccepted:
		if !e.now().Before(b.SpecifiedDate) {
			return e.settle(ctx, b)
		}
		return fmt.Errorf("%w: bet %d has not reached its specified date", ErrNotYetMatured, betID)
	}
	return fmt.Errorf("%w: bet %d has unknown status %q", ErrInvalidState, betID, b.Status)
}

// GetBet é leitura pura do ledger
func (e *Engine) GetBet(betID int64) (Bet, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ledger.Get(betID)
}

// OpenBets lista os ids ainda não terminais, para o worker de checagem
func (e *Engine) OpenBets() []int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ledger.OpenBets()
}

// PendingCount expõe o contador derivado de apostas pendentes da conta
func (e *Engine) PendingCount(account string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ledger.PendingCount(account)
}

// LedgerLen retorna o total de apostas já registradas
func (e *Engine) LedgerLen() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ledger.Len()
}

// StatsFor retorna vitórias e derrotas acumuladas da conta
func (e *Engine) StatsFor(account string) (wins, losses int64) {
	return e.stats.Wins(account), e.stats.Losses(account)
}

// TokenPrices retorna o snapshot corrente do feed (os seis ativos)
func (e *Engine) TokenPrices() (map[string]int64, time.Time) {
	return e.prices.Snapshot()
}

// EscrowedTotal é o valor total em custódia de apostas vivas
func (e *Engine) EscrowedTotal() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.escrowed
}

// RetainedFees é o acumulado de fees ainda não sacado pelo owner
func (e *Engine) RetainedFees() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.feesRetained
}

func (e *Engine) notifyCreated(ctx context.Context, betID int64, ev events.BetCreated) {
	if e.notif == nil {
		return
	}
	if err := e.notif.PublishBetCreated(ctx, betID, ev); err != nil {
		e.log.Warn("publish bet_created", zap.Int64("betId", betID), zap.Error(err))
	}
}

func (e *Engine) notifyAccepted(ctx context.Context, betID int64, ev events.BetAccepted) {
	if e.notif == nil {
		return
	}
	if err := e.notif.PublishBetAccepted(ctx, betID, ev); err != nil {
		e.log.Warn("publish bet_accepted", zap.Int64("betId", betID), zap.Error(err))
	}
}

func (e *Engine) notifyCanceled(ctx context.Context, betID int64, ev events.BetCanceled) {
	if e.notif == nil {
		return
	}
	if err := e.notif.PublishBetCanceled(ctx, betID, ev); err != nil {
		e.log.Warn("publish bet_canceled", zap.Int64("betId", betID), zap.Error(err))
	}
}

func (e *Engine) notifyStatus(ctx context.Context, betID int64, ev events.BetStatusChanged) {
	if e.notif == nil {
		return
	}
	if err := e.notif.PublishBetStatusChanged(ctx, betID, ev); err != nil {
		e.log.Warn("publish bet_status_changed", zap.Int64("betId", betID), zap.Error(err))
	}
}
