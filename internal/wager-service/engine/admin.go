package engine

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// RefreshPrices puxa os seis preços do agregador externo e substitui o
// snapshot usado pela liquidação. Restrito ao owner; preço defasado entre
// refreshes é limitação conhecida e aceita.
func (e *Engine) RefreshPrices(ctx context.Context, caller string) error {
	if !e.cfg.IsOwner(caller) {
		return fmt.Errorf("%w: caller %q is not the owner", ErrPermissionDenied, caller)
	}
	if e.refr == nil {
		return fmt.Errorf("%w: no price refresher configured", ErrNotFound)
	}
	if err := e.refr.Refresh(ctx); err != nil {
		return fmt.Errorf("refresh prices: %w", err)
	}
	e.log.Info("prices refreshed", zap.String("caller", caller))
	return nil
}

// WithdrawFees transfere para o owner todo o fee retido até aqui.
// Retorna o valor sacado; zero é um no-op sem transferência.
func (e *Engine) WithdrawFees(ctx context.Context, caller string) (int64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.cfg.IsOwner(caller) {
		return 0, fmt.Errorf("%w: caller %q is not the owner", ErrPermissionDenied, caller)
	}
	amount := e.feesRetained
	if amount == 0 {
		return 0, nil
	}

	if err := e.bank.Transfer(ctx, e.vault, caller, amount); err != nil {
		return 0, fmt.Errorf("%w: withdraw fees: %v", ErrTransferFailed, err)
	}
	e.feesRetained = 0

	e.log.Info("fees withdrawn", zap.String("owner", caller), zap.Int64("amount", amount))
	return amount, nil
}

// SetFeePercentage repassa para a config com o guard de owner
func (e *Engine) SetFeePercentage(caller string, pct int64) error {
	return e.cfg.SetFeePercentage(caller, pct)
}

// SetMaxPendingBets repassa para a config com o guard de owner
func (e *Engine) SetMaxPendingBets(caller string, n int) error {
	return e.cfg.SetMaxPendingBets(caller, n)
}
