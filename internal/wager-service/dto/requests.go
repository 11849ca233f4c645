package dto

import "time"

type CreateBetRequest struct {
	AccountID      string    `json:"accountId"`
	Amount         int64     `json:"amount"`
	Token          string    `json:"token"`
	PredictedPrice int64     `json:"predicted_price"`
	IsGt           bool      `json:"is_gt"`
	SpecifiedDate  time.Time `json:"specified_date"`
	ExpirationDate time.Time `json:"expiration_date"`
}

type AcceptBetRequest struct {
	AccountID string `json:"accountId"`
	Amount    int64  `json:"amount"` // precisa bater exatamente com o stake
}

type CancelBetRequest struct {
	AccountID string `json:"accountId"`
}

type DepositRequest struct {
	Amount int64 `json:"amount"`
}

// AdminRequest identifica o chamador das operações restritas ao owner
type AdminRequest struct {
	AccountID string `json:"accountId"`
}

type SetFeeRequest struct {
	AccountID     string `json:"accountId"`
	FeePercentage int64  `json:"fee_percentage"`
}

type SetMaxPendingRequest struct {
	AccountID      string `json:"accountId"`
	MaxPendingBets int    `json:"max_pending_bets"`
}
