package events

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"
)

const TypeMessageCreated = "message.created"

type MessageCreated struct {
	Type           string    `json:"type"`
	MessageID      string    `json:"messageId"`
	ConversationID string    `json:"conversationId"`
	SenderID       uint      `json:"senderId"`
	CreatedAt      time.Time `json:"createdAt"`
}

type Publisher interface {
	PublishMessageCreated(ctx context.Context, ev MessageCreated) error
	Close() error
}

// KafkaPublisher keys records by conversation id so one conversation's
// events stay on one partition, in order.
type KafkaPublisher struct {
	w *kafka.Writer
}

func NewKafkaPublisher(brokers, topic string) *KafkaPublisher {
	var addrs []string
	for _, b := range strings.Split(brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			addrs = append(addrs, b)
		}
	}
	return &KafkaPublisher{w: &kafka.Writer{
		Addr:         kafka.TCP(addrs...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 50 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
		Async:        true,
	}}
}

func (p *KafkaPublisher) PublishMessageCreated(ctx context.Context, ev MessageCreated) error {
	ev.Type = TypeMessageCreated
	value, err := json.Marshal(ev)
	if err != nil {
		return errors.Wrap(err, "marshal message.created")
	}
	err = p.w.WriteMessages(ctx, kafka.Message{
		Key:   []byte(ev.ConversationID),
		Value: value,
		Time:  ev.CreatedAt,
	})
	return errors.Wrap(err, "kafka write")
}

func (p *KafkaPublisher) Close() error { return p.w.Close() }

type NopPublisher struct{}

func (NopPublisher) PublishMessageCreated(context.Context, MessageCreated) error { return nil }
func (NopPublisher) Close() error                                                { return nil }
