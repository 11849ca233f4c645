package events

import "time"

// Evento publicado no tópico "price_updates" e transmitido no WS do oráculo.
// Price usa ponto fixo com 8 casas decimais (escala 1e8), o mesmo formato
// que o motor de liquidação compara contra o preço previsto.
type PriceUpdate struct {
	Token     string    `json:"token"`
	Price     int64     `json:"price"` // escala 1e8
	UpdatedAt time.Time `json:"updated_at"`
	Source    string    `json:"source"`
	Version   int       `json:"version"` // incrementado a cada tick do oráculo
}

// PricesSnapshot é a resposta de GET /prices do agregador: os seis ativos
// suportados em uma única leitura, usada pelo refreshPrices do engine
type PricesSnapshot struct {
	Prices    map[string]int64 `json:"prices"` // símbolo -> preço (escala 1e8)
	UpdatedAt time.Time        `json:"updated_at"`
	Source    string           `json:"source"`
}
