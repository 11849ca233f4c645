package engine

import (
	"fmt"
	"sync"
)

// FeeAndLimits guarda a configuração mutável do processo: percentual de fee
// cobrado na liquidação e máximo de apostas pendentes por conta. Mutadores
// são restritos à conta administrativa dona do engine.
type FeeAndLimits struct {
	mu         sync.RWMutex
	owner      string
	feePct     int64 // 0..100
	maxPending int
}

func NewFeeAndLimits(owner string, feePct int64, maxPending int) (*FeeAndLimits, error) {
	if feePct < 0 || feePct > 100 {
		return nil, fmt.Errorf("%w: fee percentage %d out of range", ErrValueMismatch, feePct)
	}
	if maxPending < 0 {
		return nil, fmt.Errorf("%w: max pending bets %d negative", ErrValueMismatch, maxPending)
	}
	return &FeeAndLimits{owner: owner, feePct: feePct, maxPending: maxPending}, nil
}

// requireOwner é o guard explícito de acesso administrativo
func (c *FeeAndLimits) requireOwner(caller string) error {
	if caller != c.owner {
		return fmt.Errorf("%w: caller %q is not the owner", ErrPermissionDenied, caller)
	}
	return nil
}

// IsOwner expõe o guard para operações administrativas fora deste pacote
func (c *FeeAndLimits) IsOwner(caller string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return caller == c.owner
}

func (c *FeeAndLimits) Owner() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.owner
}

// SetFeePercentage altera o fee (0..100); somente o owner
func (c *FeeAndLimits) SetFeePercentage(caller string, pct int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requireOwner(caller); err != nil {
		return err
	}
	if pct < 0 || pct > 100 {
		return fmt.Errorf("%w: fee percentage %d out of range", ErrValueMismatch, pct)
	}
	c.feePct = pct
	return nil
}

// SetMaxPendingBets altera o teto de apostas pendentes por conta; somente o owner
func (c *FeeAndLimits) SetMaxPendingBets(caller string, n int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requireOwner(caller); err != nil {
		return err
	}
	if n < 0 {
		return fmt.Errorf("%w: max pending bets %d negative", ErrValueMismatch, n)
	}
	c.maxPending = n
	return nil
}

func (c *FeeAndLimits) FeePercentage() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.feePct
}

func (c *FeeAndLimits) MaxPendingBets() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.maxPending
}
