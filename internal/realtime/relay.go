package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	"anoa.com/alienvault/pkg/logger"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const channelPrefix = "realtime:"

// RedisTransport publishes envelopes on realtime:<room> so every server
// instance running a Relay can deliver them to its own clients.
type RedisTransport struct {
	rdb *redis.Client
}

func NewRedisTransport(rdb *redis.Client) *RedisTransport {
	return &RedisTransport{rdb: rdb}
}

func (t *RedisTransport) Deliver(ctx context.Context, env Envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}
	return t.rdb.Publish(ctx, channelPrefix+env.Room, data).Err()
}

// Relay feeds envelopes published by any instance into the local router.
type Relay struct {
	rdb    *redis.Client
	router *Router
	log    *logrus.Entry
}

func NewRelay(rdb *redis.Client, router *Router) *Relay {
	return &Relay{
		rdb:    rdb,
		router: router,
		log:    logger.WithComponent("realtime.relay"),
	}
}

// Run blocks until ctx is cancelled.
func (r *Relay) Run(ctx context.Context) error {
	pubsub := r.rdb.PSubscribe(ctx, channelPrefix+"*")
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe to %s*: %w", channelPrefix, err)
	}
	r.log.Info("relay subscribed")

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			relayEnvelope(r.router, r.log, []byte(msg.Payload))
		}
	}
}

func relayEnvelope(router *Router, log *logrus.Entry, raw []byte) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		log.WithError(err).Warn("discarding malformed envelope")
		return
	}
	router.Broadcast(env.Room, env.Payload, env.Except)
}
