package ws

// ClientMsg representa uma mensagem recebida do cliente WebSocket
// Type: subscribe | unsubscribe | ping
// BetID: "*" inscreve em todos os eventos de aposta
type ClientMsg struct {
	Type  string `json:"type"`  // subscribe | unsubscribe | ping
	BetID string `json:"betId"` // requerido em subscribe/unsubscribe
}

// BetUpdate representa um evento de aposta enviado para clientes WebSocket
type BetUpdate struct {
	BetID   string      `json:"betId"`
	Payload interface{} `json:"payload"`
}
