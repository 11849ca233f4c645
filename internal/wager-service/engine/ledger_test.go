package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBet(requester string) *Bet {
	return &Bet{
		Requester:      requester,
		Amount:         stake,
		Token:          TokenETH,
		PredictedPrice: 3_000,
		Status:         StatusPending,
		Winner:         WinnerUnknown,
	}
}

func TestLedger_AppendAssignsSequentialIDs(t *testing.T) {
	l := NewLedger()
	assert.EqualValues(t, 1, l.Append(newBet("alice")))
	assert.EqualValues(t, 2, l.Append(newBet("alice")))
	assert.EqualValues(t, 3, l.Append(newBet("bob")))

	assert.Equal(t, 3, l.Len())
	assert.Equal(t, 2, l.PendingCount("alice"))
	assert.Equal(t, 1, l.PendingCount("bob"))

	owner, ok := l.Owner(1)
	require.True(t, ok)
	assert.Equal(t, "alice", owner)
}

func TestLedger_GetReturnsCopy(t *testing.T) {
	l := NewLedger()
	id := l.Append(newBet("alice"))

	b, err := l.Get(id)
	require.NoError(t, err)
	b.Status = StatusCanceled // não pode vazar para o ledger

	again, err := l.Get(id)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, again.Status)
}

func TestLedger_GetOutOfRange(t *testing.T) {
	l := NewLedger()
	_, err := l.Get(0)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = l.Get(1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLedger_Mutate(t *testing.T) {
	l := NewLedger()
	id := l.Append(newBet("alice"))

	require.NoError(t, l.Mutate(id, func(b *Bet) { b.Status = StatusAccepted }))
	b, _ := l.Get(id)
	assert.Equal(t, StatusAccepted, b.Status)

	assert.ErrorIs(t, l.Mutate(99, func(*Bet) {}), ErrNotFound)
}

func TestLedger_ReleasePendingNeverNegative(t *testing.T) {
	l := NewLedger()
	l.Append(newBet("alice"))
	l.releasePending("alice")
	l.releasePending("alice")
	assert.Equal(t, 0, l.PendingCount("alice"))
}

func TestLedger_OpenBetsSkipsTerminal(t *testing.T) {
	l := NewLedger()
	id1 := l.Append(newBet("alice"))
	id2 := l.Append(newBet("bob"))
	id3 := l.Append(newBet("carol"))

	_ = l.Mutate(id2, func(b *Bet) { b.Status = StatusCanceled })
	_ = l.Mutate(id3, func(b *Bet) { b.Status = StatusAccepted })

	assert.Equal(t, []int64{id1, id3}, l.OpenBets())
}

func TestStatusTerminal(t *testing.T) {
	assert.False(t, StatusPending.Terminal())
	assert.False(t, StatusAccepted.Terminal())
	assert.True(t, StatusCanceled.Terminal())
	assert.True(t, StatusExpired.Terminal())
	assert.True(t, StatusCompleted.Terminal())
}

func TestParseToken(t *testing.T) {
	for _, tok := range Tokens() {
		got, err := ParseToken(string(tok))
		require.NoError(t, err)
		assert.Equal(t, tok, got)
	}
	_, err := ParseToken("DOGE")
	assert.ErrorIs(t, err, ErrValueMismatch)
	_, err = ParseToken("btc") // símbolos são case-sensitive
	assert.ErrorIs(t, err, ErrValueMismatch)
}
