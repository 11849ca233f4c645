package topics

const (
	// Ciclo de vida das apostas (envelope BetEvent)
	BetEvents = "bet_events"

	// Preços dos ativos publicados pelo ingest do oráculo
	PriceUpdates = "price_updates"

	// DLQs
	BetEventsDLQ    = "bet_events_dlq"
	PriceUpdatesDLQ = "price_updates_dlq"
)
