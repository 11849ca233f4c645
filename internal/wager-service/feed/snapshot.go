package feed

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

var ErrPriceUnavailable = errors.New("price unavailable")

// Snapshot guarda os preços correntes dos ativos (escala 1e8) em memória.
// É a fonte consultada pela liquidação: lookup puro, sem chamada externa.
type Snapshot struct {
	mu        sync.RWMutex
	prices    map[string]int64
	updatedAt time.Time
}

func NewSnapshot() *Snapshot {
	return &Snapshot{prices: make(map[string]int64)}
}

// CurrentPrice retorna o preço corrente do símbolo; falha se o snapshot
// ainda não foi populado ou se o símbolo não está nele
func (s *Snapshot) CurrentPrice(symbol string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.prices[symbol]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrPriceUnavailable, symbol)
	}
	return p, nil
}

// Snapshot retorna uma cópia do mapa corrente e o instante do último refresh
func (s *Snapshot) Snapshot() (map[string]int64, time.Time) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]int64, len(s.prices))
	for k, v := range s.prices {
		out[k] = v
	}
	return out, s.updatedAt
}

// Replace substitui o snapshot inteiro em uma única troca
func (s *Snapshot) Replace(prices map[string]int64, at time.Time) {
	cp := make(map[string]int64, len(prices))
	for k, v := range prices {
		cp[k] = v
	}
	s.mu.Lock()
	s.prices = cp
	s.updatedAt = at
	s.mu.Unlock()
}
