package engine

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/radieske/crypto-wager-platform-poc/pkg/contracts/events"
)

// expire encerra uma aposta PENDING vencida devolvendo o stake integral ao
// requester. O refund é o passo falível: se a transferência for recusada a
// operação inteira falha e o status permanece PENDING (nada de fundos
// queimados). Chamado com o mutex do engine já em posse.
func (e *Engine) expire(ctx context.Context, b Bet) error {
	if err := e.bank.Transfer(ctx, e.vault, b.Requester, b.Amount); err != nil {
		return fmt.Errorf("%w: refund expired stake: %v", ErrTransferFailed, err)
	}

	_ = e.ledger.Mutate(b.ID, func(m *Bet) { m.Status = StatusExpired })
	e.ledger.releasePending(b.Requester)
	e.escrowed -= b.Amount

	e.notifyStatus(ctx, b.ID, events.BetStatusChanged{
		OldStatus: string(StatusPending),
		NewStatus: string(StatusExpired),
		Refunded:  b.Amount,
	})

	e.log.Info("bet expired", zap.Int64("betId", b.ID), zap.String("requester", b.Requester))
	return nil
}

// settle liquida uma aposta ACCEPTED contra o snapshot do feed.
//
// Regra de vencedor: o requester vence por padrão; o acceptor vence somente
// quando isGt é true E o preço real superou o previsto. isGt == false não
// tem tratamento simétrico.
//
// Payout = 2*amount - fee, com fee = floor(amount * feePct / 100). O payout
// é transferido antes de qualquer mutação: falha de transferência aborta a
// liquidação inteira (status, stats e fee permanecem intactos).
func (e *Engine) settle(ctx context.Context, b Bet) error {
	actual, err := e.prices.CurrentPrice(string(b.Token))
	if err != nil {
		return fmt.Errorf("current price for %s: %w", b.Token, err)
	}

	// Previsto em unidades inteiras, escalado para a precisão do feed
	predicted := b.PredictedPrice * PriceScale
	cmp := comparePrices(actual, predicted)

	winner := WinnerRequester
	winnerAcct, loserAcct := b.Requester, b.Acceptor
	if b.IsGt && cmp == comparisonPredictedLower {
		winner = WinnerAcceptor
		winnerAcct, loserAcct = b.Acceptor, b.Requester
	}

	fee := settlementFee(b.Amount, e.cfg.FeePercentage())
	payout := 2*b.Amount - fee

	if err := e.bank.Transfer(ctx, e.vault, winnerAcct, payout); err != nil {
		return fmt.Errorf("%w: pay winner: %v", ErrTransferFailed, err)
	}

	_ = e.ledger.Mutate(b.ID, func(m *Bet) {
		m.Status = StatusCompleted
		m.Winner = winner
	})
	e.stats.RecordWin(winnerAcct)
	e.stats.RecordLoss(loserAcct)
	e.escrowed -= 2 * b.Amount
	e.feesRetained += fee

	e.notifyStatus(ctx, b.ID, events.BetStatusChanged{
		OldStatus: string(StatusAccepted),
		NewStatus: string(StatusCompleted),
		Winner:    string(winner),
		Payout:    payout,
		Fee:       fee,
	})

	e.log.Info("bet settled",
		zap.Int64("betId", b.ID),
		zap.String("winner", string(winner)),
		zap.Int64("actualPrice", actual),
		zap.Int64("predictedPrice", predicted),
		zap.Int64("payout", payout),
		zap.Int64("fee", fee),
	)
	return nil
}

// settlementFee calcula floor(amount * pct / 100). O produto é decomposto
// em quociente e resto de 100 para que amount*pct nunca estoure int64,
// mesmo no stake máximo com fee de 100%
func settlementFee(amount, pct int64) int64 {
	return amount/100*pct + amount%100*pct/100
}

// comparePrices devolve a comparação do preço real contra o previsto,
// ambos na escala do feed
func comparePrices(actual, predicted int64) comparison {
	switch {
	case actual < predicted:
		return comparisonPredictedHigher
	case actual > predicted:
		return comparisonPredictedLower
	}
	return comparisonEqual
}
