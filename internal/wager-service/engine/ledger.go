package engine

import "fmt"

// Ledger é a coleção ordenada de todas as apostas já criadas, indexada por id
// sequencial a partir de 1 (ids nunca são reutilizados), mais os mapas
// derivados betOwner e pendingCount.
//
// O Ledger não tem lock próprio: o Engine serializa todo acesso dentro da sua
// seção crítica, preservando a execução sequencial por operação.
type Ledger struct {
	bets    []*Bet
	owner   map[int64]string // betID -> requester
	pending map[string]int   // conta -> apostas PENDING
}

func NewLedger() *Ledger {
	return &Ledger{
		owner:   make(map[int64]string),
		pending: make(map[string]int),
	}
}

// Append registra uma nova aposta, atribui o próximo id sequencial e
// incrementa o contador de pendências do requester
func (l *Ledger) Append(b *Bet) int64 {
	b.ID = int64(len(l.bets)) + 1
	l.bets = append(l.bets, b)
	l.owner[b.ID] = b.Requester
	l.pending[b.Requester]++
	return b.ID
}

// Get retorna uma cópia do registro; falha com ErrNotFound se o id estiver
// fora do intervalo
func (l *Ledger) Get(id int64) (Bet, error) {
	if id < 1 || id > int64(len(l.bets)) {
		return Bet{}, fmt.Errorf("%w: bet %d", ErrNotFound, id)
	}
	return *l.bets[id-1], nil
}

// Mutate dá acesso exclusivo de escrita a um registro (status/winner/acceptor)
func (l *Ledger) Mutate(id int64, fn func(*Bet)) error {
	if id < 1 || id > int64(len(l.bets)) {
		return fmt.Errorf("%w: bet %d", ErrNotFound, id)
	}
	fn(l.bets[id-1])
	return nil
}

// Owner retorna o requester dono do betID
func (l *Ledger) Owner(id int64) (string, bool) {
	acct, ok := l.owner[id]
	return acct, ok
}

// PendingCount retorna quantas apostas da conta estão PENDING
func (l *Ledger) PendingCount(acct string) int {
	return l.pending[acct]
}

// releasePending decrementa o contador quando uma aposta sai de PENDING
// (cancel, expire ou accept); exatamente uma vez por aposta
func (l *Ledger) releasePending(acct string) {
	if l.pending[acct] > 0 {
		l.pending[acct]--
	}
}

// Len retorna o total de apostas já criadas
func (l *Ledger) Len() int {
	return len(l.bets)
}

// OpenBets lista os ids ainda vivos (PENDING ou ACCEPTED), na ordem de criação
func (l *Ledger) OpenBets() []int64 {
	ids := make([]int64, 0)
	for _, b := range l.bets {
		if !b.Status.Terminal() {
			ids = append(ids, b.ID)
		}
	}
	return ids
}
