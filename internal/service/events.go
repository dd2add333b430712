package service

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const authEventStream = "auth:events"

// StreamPublisher pushes auth events onto a redis stream for external
// consumers (audit trail, SIEM forwarders). It is a boundary hand-off,
// not a notification system.
type StreamPublisher struct {
	client *redis.Client
	log    zerolog.Logger
}

func NewStreamPublisher(client *redis.Client, log zerolog.Logger) *StreamPublisher {
	return &StreamPublisher{client: client, log: log}
}

func (p *StreamPublisher) Publish(ctx context.Context, event string, fields map[string]any) {
	if p == nil || p.client == nil {
		return
	}

	values := map[string]any{
		"event": event,
		"at":    time.Now().UTC().Format(time.RFC3339),
	}
	for k, v := range fields {
		values[k] = v
	}

	if err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: authEventStream,
		Values: values,
	}).Err(); err != nil {
		p.log.Warn().Err(err).Str("event", event).Msg("publish auth event failed")
	}
}
