package dto

// BetRow é a visão de leitura de uma aposta na projeção
type BetRow struct {
	BetID          int64  `json:"betId"`
	Requester      string `json:"requester"`
	Acceptor       string `json:"acceptor,omitempty"`
	Token          string `json:"token"`
	Amount         int64  `json:"amount"`
	PredictedPrice int64  `json:"predictedPrice"`
	IsGt           bool   `json:"isGt"`
	SpecifiedDate  string `json:"specifiedDate"`
	ExpirationDate string `json:"expirationDate"`
	Status         string `json:"status"`
	Winner         string `json:"winner"`
	UpdatedAt      string `json:"updatedAt"`
}

// StatusChange é uma linha do histórico de transições de uma aposta
type StatusChange struct {
	BetID     int64  `json:"betId"`
	EventType string `json:"eventType"`
	OldStatus string `json:"oldStatus,omitempty"`
	NewStatus string `json:"newStatus"`
	Winner    string `json:"winner,omitempty"`
	Payout    int64  `json:"payout,omitempty"`
	Fee       int64  `json:"fee,omitempty"`
	Refunded  int64  `json:"refunded,omitempty"`
	EventTs   string `json:"eventTs"`
}

// PricePoint é uma amostra do histórico de preços de um ativo
type PricePoint struct {
	Token     string `json:"token"`
	Price     int64  `json:"price"` // escala 1e8
	Version   int    `json:"version"`
	UpdatedAt string `json:"updatedAt"`
}
