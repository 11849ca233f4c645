package engine

import (
	"fmt"
	"time"
)

// PriceScale é a precisão de ponto fixo do feed de preços (8 casas decimais).
// O preço previsto é informado em unidades inteiras e escalado por esse fator
// antes de comparar com o preço reportado pelo oráculo.
const PriceScale int64 = 100_000_000

// Token identifica os ativos suportados pelo feed
type Token string

const (
	TokenBTC Token = "BTC"
	TokenETH Token = "ETH"
	TokenBNB Token = "BNB"
	TokenXRP Token = "XRP"
	TokenADA Token = "ADA"
	TokenSOL Token = "SOL"
)

// Tokens retorna os seis ativos suportados, na ordem canônica do feed
func Tokens() []Token {
	return []Token{TokenBTC, TokenETH, TokenBNB, TokenXRP, TokenADA, TokenSOL}
}

// ParseToken valida um símbolo vindo da API
func ParseToken(s string) (Token, error) {
	switch Token(s) {
	case TokenBTC, TokenETH, TokenBNB, TokenXRP, TokenADA, TokenSOL:
		return Token(s), nil
	}
	return "", fmt.Errorf("%w: unknown token %q", ErrValueMismatch, s)
}

// Status do ciclo de vida de uma aposta.
// PENDING -> {CANCELED, ACCEPTED, EXPIRED}; ACCEPTED -> COMPLETED.
// CANCELED, EXPIRED e COMPLETED são terminais
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusExpired   Status = "EXPIRED"
	StatusCanceled  Status = "CANCELED"
	StatusAccepted  Status = "ACCEPTED"
	StatusCompleted Status = "COMPLETED"
)

// Terminal informa se o status não admite mais transições
func (s Status) Terminal() bool {
	switch s {
	case StatusExpired, StatusCanceled, StatusCompleted:
		return true
	case StatusPending, StatusAccepted:
		return false
	}
	return false
}

// Winner é definido apenas na liquidação (COMPLETED)
type Winner string

const (
	WinnerUnknown   Winner = "UNKNOWN"
	WinnerRequester Winner = "REQUESTER"
	WinnerAcceptor  Winner = "ACCEPTOR"
)

// comparison é o resultado da comparação preço real vs previsto
type comparison int

const (
	comparisonEqual           comparison = iota
	comparisonPredictedHigher            // real < previsto
	comparisonPredictedLower             // real > previsto
)

// Bet é a entidade central do ledger. Uma vez terminal o registro é imutável
// e permanece no ledger para auditoria; nunca é removido.
type Bet struct {
	ID             int64     `json:"id"`
	Requester      string    `json:"requester"`
	Acceptor       string    `json:"acceptor,omitempty"` // vazio até o aceite
	Amount         int64     `json:"amount"`
	Token          Token     `json:"token"`
	PredictedPrice int64     `json:"predicted_price"` // unidades inteiras (sem escala)
	IsGt           bool      `json:"is_gt"`
	SpecifiedDate  time.Time `json:"specified_date"`
	ExpirationDate time.Time `json:"expiration_date"`
	Status         Status    `json:"status"`
	Winner         Winner    `json:"winner"`
	CreatedAt      time.Time `json:"created_at"`
}
