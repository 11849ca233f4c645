package pubsub

import (
	"context"

	"github.com/redis/go-redis/v9"
)

const ChannelBetBroadcast = "bet_events_broadcast"

// RedisBroadcaster repassa os eventos de aposta para o canal Pub/Sub
// consumido pelo hub WebSocket do history-service
type RedisBroadcaster struct {
	r *redis.Client
}

func NewRedisBroadcaster(r *redis.Client) *RedisBroadcaster {
	return &RedisBroadcaster{r: r}
}

func (b *RedisBroadcaster) Publish(ctx context.Context, channel string, payload []byte) error {
	return b.r.Publish(ctx, channel, payload).Err()
}
