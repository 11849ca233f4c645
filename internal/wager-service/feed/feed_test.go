package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSnapshot_CurrentPrice(t *testing.T) {
	s := NewSnapshot()

	_, err := s.CurrentPrice("BTC")
	assert.ErrorIs(t, err, ErrPriceUnavailable)

	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.Replace(map[string]int64{"BTC": 6_500_000_000_000, "ETH": 340_000_000_000}, at)

	p, err := s.CurrentPrice("BTC")
	require.NoError(t, err)
	assert.EqualValues(t, 6_500_000_000_000, p)

	_, err = s.CurrentPrice("SOL")
	assert.ErrorIs(t, err, ErrPriceUnavailable)
}

func TestSnapshot_ReturnsCopy(t *testing.T) {
	s := NewSnapshot()
	s.Replace(map[string]int64{"BTC": 1}, time.Now())

	m, at := s.Snapshot()
	m["BTC"] = 999 // não pode vazar para o snapshot

	p, err := s.CurrentPrice("BTC")
	require.NoError(t, err)
	assert.EqualValues(t, 1, p)
	assert.False(t, at.IsZero())
}

func TestSnapshot_ReplaceSwapsWholeMap(t *testing.T) {
	s := NewSnapshot()
	s.Replace(map[string]int64{"BTC": 1, "ETH": 2}, time.Now())
	s.Replace(map[string]int64{"SOL": 3}, time.Now())

	_, err := s.CurrentPrice("BTC")
	assert.ErrorIs(t, err, ErrPriceUnavailable)
	p, err := s.CurrentPrice("SOL")
	require.NoError(t, err)
	assert.EqualValues(t, 3, p)
}

func TestClient_FetchPrices(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/prices", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"prices":{"BTC":6500000000000,"ETH":340000000000},"updated_at":"2026-03-01T12:00:00Z","source":"oracle-simulator"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	snap, err := c.FetchPrices(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 6_500_000_000_000, snap.Prices["BTC"])
	assert.EqualValues(t, 340_000_000_000, snap.Prices["ETH"])
	assert.True(t, snap.UpdatedAt.Equal(at))
}

func TestClient_FetchPrices_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).FetchPrices(context.Background())
	assert.Error(t, err)
}

func TestService_Refresh(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"prices":{"BTC":100,"SOL":200},"updated_at":"2026-03-01T12:00:00Z"}`))
	}))
	defer srv.Close()

	snap := NewSnapshot()
	svc := NewService(zap.NewNop(), NewClient(srv.URL), snap, nil, time.Minute)

	require.NoError(t, svc.Refresh(context.Background()))
	p, err := snap.CurrentPrice("SOL")
	require.NoError(t, err)
	assert.EqualValues(t, 200, p)
}

func TestService_Refresh_RejectsEmptySnapshot(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"prices":{}}`))
	}))
	defer srv.Close()

	snap := NewSnapshot()
	snap.Replace(map[string]int64{"BTC": 1}, time.Now())
	svc := NewService(zap.NewNop(), NewClient(srv.URL), snap, nil, time.Minute)

	assert.Error(t, svc.Refresh(context.Background()))

	// snapshot anterior preservado
	p, err := snap.CurrentPrice("BTC")
	require.NoError(t, err)
	assert.EqualValues(t, 1, p)
}

func TestService_Refresh_AggregatorDown(t *testing.T) {
	snap := NewSnapshot()
	svc := NewService(zap.NewNop(), NewClient("http://127.0.0.1:1"), snap, nil, time.Minute)
	assert.Error(t, svc.Refresh(context.Background()))
}
