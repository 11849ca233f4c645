package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/radieske/crypto-wager-platform-poc/pkg/contracts/events"
)

// Client consulta o agregador externo de preços via HTTP (GET /prices)
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: baseURL,
		HTTP:    &http.Client{Timeout: 5 * time.Second},
	}
}

// FetchPrices lê o snapshot dos seis ativos no agregador
func (c *Client) FetchPrices(ctx context.Context) (events.PricesSnapshot, error) {
	var out events.PricesSnapshot

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/prices", nil)
	if err != nil {
		return out, err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return out, fmt.Errorf("aggregator request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return out, fmt.Errorf("aggregator http %s", resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return out, fmt.Errorf("decode prices: %w", err)
	}
	return out, nil
}
