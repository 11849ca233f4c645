package dto

import "time"

type CreateBetResponse struct {
	BetID  int64  `json:"betId"`
	Status string `json:"status"`
}

type StatusResponse struct {
	BetID  int64  `json:"betId"`
	Status string `json:"status"`
}

type OpenBetsResponse struct {
	BetIDs []int64 `json:"bet_ids"`
}

type PricesResponse struct {
	Prices    map[string]int64 `json:"prices"` // escala 1e8
	UpdatedAt time.Time        `json:"updated_at"`
}

type AccountStatsResponse struct {
	AccountID string `json:"accountId"`
	Wins      int64  `json:"wins"`
	Losses    int64  `json:"losses"`
}

type BalanceResponse struct {
	AccountID string `json:"accountId"`
	Balance   int64  `json:"balance"`
}

type WithdrawFeesResponse struct {
	Withdrawn int64 `json:"withdrawn"`
}
