package funds

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrAccountClosed     = errors.New("account closed")
)

// Bank é a costura com a camada de identidade/valor: toda conta é um
// identificador opaco capaz de enviar e receber valor. O engine trata a
// transferência de saída como o último passo falível de cada seção crítica.
type Bank interface {
	Transfer(ctx context.Context, from, to string, amount int64) error
	Balance(account string) int64
}

// InMemoryBank implementa Bank em memória para o PoC. Contas podem ser
// fechadas para recusa de fundos, o que exercita o caminho de rollback
// das transições (TransferFailed).
type InMemoryBank struct {
	mu       sync.Mutex
	balances map[string]int64
	closed   map[string]bool
}

func NewInMemoryBank() *InMemoryBank {
	return &InMemoryBank{
		balances: make(map[string]int64),
		closed:   make(map[string]bool),
	}
}

// Deposit credita saldo em uma conta (faucet do PoC)
func (b *InMemoryBank) Deposit(account string, amount int64) int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.balances[account] += amount
	return b.balances[account]
}

// Transfer move valor entre contas; débito e crédito acontecem como uma
// unidade única sob o lock do banco
func (b *InMemoryBank) Transfer(ctx context.Context, from, to string, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("transfer amount %d must be positive", amount)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed[to] {
		return fmt.Errorf("%w: %s", ErrAccountClosed, to)
	}
	if b.balances[from] < amount {
		return fmt.Errorf("%w: account %s has %d, needs %d", ErrInsufficientFunds, from, b.balances[from], amount)
	}

	b.balances[from] -= amount
	b.balances[to] += amount
	return nil
}

// Balance retorna o saldo atual da conta (0 para contas desconhecidas)
func (b *InMemoryBank) Balance(account string) int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.balances[account]
}

// Close marca a conta como recusando fundos; transferências para ela falham
func (b *InMemoryBank) Close(account string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed[account] = true
}

// Reopen volta a aceitar fundos na conta
func (b *InMemoryBank) Reopen(account string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.closed, account)
}
