package producer

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/radieske/crypto-wager-platform-poc/pkg/contracts/events"
)

// KafkaNotifier publica o envelope BetEvent no tópico bet_events.
// A chave da mensagem é o betId, preservando a ordem por aposta na partição.
type KafkaNotifier struct {
	Writer *kafka.Writer
}

func NewKafkaNotifier(w *kafka.Writer) *KafkaNotifier {
	return &KafkaNotifier{Writer: w}
}

func (n *KafkaNotifier) PublishBetCreated(ctx context.Context, betID int64, ev events.BetCreated) error {
	return n.publish(ctx, events.BetEvent{
		Type:    events.TypeBetCreated,
		BetID:   betID,
		Created: &ev,
	})
}

func (n *KafkaNotifier) PublishBetAccepted(ctx context.Context, betID int64, ev events.BetAccepted) error {
	return n.publish(ctx, events.BetEvent{
		Type:     events.TypeBetAccepted,
		BetID:    betID,
		Accepted: &ev,
	})
}

func (n *KafkaNotifier) PublishBetCanceled(ctx context.Context, betID int64, ev events.BetCanceled) error {
	return n.publish(ctx, events.BetEvent{
		Type:     events.TypeBetCanceled,
		BetID:    betID,
		Canceled: &ev,
	})
}

func (n *KafkaNotifier) PublishBetStatusChanged(ctx context.Context, betID int64, ev events.BetStatusChanged) error {
	return n.publish(ctx, events.BetEvent{
		Type:   events.TypeBetStatusChanged,
		BetID:  betID,
		Status: &ev,
	})
}

func (n *KafkaNotifier) publish(ctx context.Context, env events.BetEvent) error {
	env.EventID = uuid.NewString()
	env.TsUnixMs = time.Now().UnixMilli()
	b, _ := json.Marshal(env)
	return n.Writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatInt(env.BetID, 10)),
		Value: b,
	})
}
