package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"anoa.com/alienvault/pkg/logger"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

// KafkaTransport writes envelopes to a shared topic keyed by room, so events
// for one room stay on one partition and keep their order.
type KafkaTransport struct {
	writer *kafka.Writer
}

func NewKafkaTransport(brokers []string, topic string) *KafkaTransport {
	return &KafkaTransport{
		writer: kafka.NewWriter(kafka.WriterConfig{
			Brokers:  brokers,
			Topic:    topic,
			Balancer: &kafka.Hash{},
		}),
	}
}

func (t *KafkaTransport) Deliver(ctx context.Context, env Envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}
	return t.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(env.Room),
		Value: data,
	})
}

func (t *KafkaTransport) Close() error {
	return t.writer.Close()
}

// KafkaRelay consumes the topic with a consumer group unique to this process,
// so every instance sees every envelope. It starts at the tail: clients that
// were not connected when an event was written never receive it.
type KafkaRelay struct {
	reader *kafka.Reader
	router *Router
	log    *logrus.Entry
}

func NewKafkaRelay(brokers []string, topic string, router *Router) *KafkaRelay {
	groupID := "alienvault-realtime-" + uuid.NewString()
	return &KafkaRelay{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:     brokers,
			Topic:       topic,
			GroupID:     groupID,
			StartOffset: kafka.LastOffset,
			MinBytes:    1,
			MaxBytes:    10e6,
		}),
		router: router,
		log:    logger.WithComponent("realtime.kafka_relay").WithField("group_id", groupID),
	}
}

// Run blocks until ctx is cancelled.
func (r *KafkaRelay) Run(ctx context.Context) error {
	defer r.reader.Close()
	r.log.Info("relay consuming")

	for {
		msg, err := r.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return nil
			}
			return fmt.Errorf("read realtime topic: %w", err)
		}
		relayEnvelope(r.router, r.log, msg.Value)
	}
}
