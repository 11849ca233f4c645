package stats

import "sync"

// Tracker mantém os contadores de vitórias e derrotas por conta.
// Ambos são monotônicos e atualizados exclusivamente pela liquidação,
// dentro da seção crítica do engine e somente após o payout ter sucesso.
type Tracker struct {
	mu     sync.RWMutex
	wins   map[string]int64
	losses map[string]int64
}

func NewTracker() *Tracker {
	return &Tracker{
		wins:   make(map[string]int64),
		losses: make(map[string]int64),
	}
}

func (t *Tracker) RecordWin(account string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.wins[account]++
}

func (t *Tracker) RecordLoss(account string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.losses[account]++
}

func (t *Tracker) Wins(account string) int64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.wins[account]
}

func (t *Tracker) Losses(account string) int64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.losses[account]
}
