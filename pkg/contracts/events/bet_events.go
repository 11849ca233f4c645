package events

import "time"

// Tipos possíveis do envelope BetEvent publicado no tópico "bet_events"
const (
	TypeBetCreated       = "bet_created"
	TypeBetAccepted      = "bet_accepted"
	TypeBetCanceled      = "bet_canceled"
	TypeBetStatusChanged = "bet_status_changed"
)

// BetEvent é o envelope único do tópico bet_events; exatamente um dos
// payloads é preenchido conforme Type
type BetEvent struct {
	EventID  string            `json:"event_id"`
	Type     string            `json:"type"`
	BetID    int64             `json:"bet_id"`
	TsUnixMs int64             `json:"ts_unix_ms"`
	Created  *BetCreated       `json:"created,omitempty"`
	Accepted *BetAccepted      `json:"accepted,omitempty"`
	Canceled *BetCanceled      `json:"canceled,omitempty"`
	Status   *BetStatusChanged `json:"status,omitempty"`
}

// BetCreated é emitido quando uma aposta entra no ledger como PENDING
type BetCreated struct {
	Requester      string    `json:"requester"`
	Token          string    `json:"token"`
	Amount         int64     `json:"amount"`
	PredictedPrice int64     `json:"predicted_price"`
	IsGt           bool      `json:"is_gt"`
	SpecifiedDate  time.Time `json:"specified_date"`
	ExpirationDate time.Time `json:"expiration_date"`
}

// BetAccepted é emitido quando a aposta é casada (PENDING -> ACCEPTED)
type BetAccepted struct {
	Requester string `json:"requester"`
	Acceptor  string `json:"acceptor"`
	Amount    int64  `json:"amount"`
}

// BetCanceled é emitido no cancelamento pelo requester antes da expiração
type BetCanceled struct {
	Requester string `json:"requester"`
	Refunded  int64  `json:"refunded"`
}

// BetStatusChanged cobre as transições disparadas pelo checkBet
// (EXPIRED e COMPLETED); Winner/Payout/Fee só fazem sentido em COMPLETED
type BetStatusChanged struct {
	OldStatus string `json:"old_status"`
	NewStatus string `json:"new_status"`
	Winner    string `json:"winner,omitempty"`
	Payout    int64  `json:"payout,omitempty"`
	Fee       int64  `json:"fee,omitempty"`
	Refunded  int64  `json:"refunded,omitempty"`
}
