package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"storefront-web/internal/config"
	"storefront-web/internal/model"

	"github.com/segmentio/kafka-go"
	log "github.com/sirupsen/logrus"
)

const headerEventType = "event_type"

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher emits checkout events keyed by order id so one order's events stay ordered.
type KafkaPublisher struct {
	writer messageWriter
	topic  string
}

func NewKafkaPublisher(cfg config.Kafka) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(cfg.Brokers...),
			Topic:                  cfg.Topic,
			Balancer:               &kafka.LeastBytes{},
			RequiredAcks:           kafka.RequireOne,
			AllowAutoTopicCreation: true,
			BatchTimeout:           cfg.BatchTimeout,
			WriteTimeout:           cfg.WriteTimeout,
		},
		topic: cfg.Topic,
	}
}

func (p *KafkaPublisher) PublishOrderPlaced(ctx context.Context, event model.OrderPlaced) error {
	msg, err := orderPlacedMessage(event)
	if err != nil {
		return err
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write %s to %s: %w", model.EventTypeOrderPlaced, p.topic, err)
	}

	log.WithFields(log.Fields{
		"topic":    p.topic,
		"order_id": event.OrderID,
	}).Debug("order placed event published")
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

func orderPlacedMessage(event model.OrderPlaced) (kafka.Message, error) {
	if event.Items == nil {
		event.Items = model.Cart{}
	}
	if event.PlacedAt.IsZero() {
		event.PlacedAt = time.Now().UTC()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("marshal order placed event: %w", err)
	}

	return kafka.Message{
		Key:   []byte(strconv.FormatInt(event.OrderID, 10)),
		Value: payload,
		Time:  event.PlacedAt,
		Headers: []kafka.Header{
			{Key: headerEventType, Value: []byte(model.EventTypeOrderPlaced)},
		},
	}, nil
}

// Noop drops events. Used when no broker is configured.
type Noop struct{}

func (Noop) PublishOrderPlaced(ctx context.Context, event model.OrderPlaced) error {
	log.WithField("order_id", event.OrderID).Debug("no broker configured, order placed event dropped")
	return nil
}

func (Noop) Close() error { return nil }

// Publisher is what the checkout needs plus a way to flush on shutdown.
type Publisher interface {
	PublishOrderPlaced(ctx context.Context, event model.OrderPlaced) error
	Close() error
}

func New(cfg config.Kafka) Publisher {
	if len(cfg.Brokers) == 0 {
		return Noop{}
	}
	return NewKafkaPublisher(cfg)
}
