package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
	"github.com/sony/gobreaker/v2"
)

const (
	DefaultTopic          = "order-events"
	EventTypeOrderCreated = "order.created"
	eventTypeHeader       = "event_type"
)

type OrderItem struct {
	ProductID string `json:"product_id"`
	Size      string `json:"size"`
	Quantity  int    `json:"quantity"`
}

// OrderCreated is published once an order has been stored and its stock consumed.
type OrderCreated struct {
	OrderID     string      `json:"order_id"`
	UserID      string      `json:"user_id"`
	Items       []OrderItem `json:"items"`
	TotalAmount string      `json:"total_amount"`
	CreatedAt   time.Time   `json:"created_at"`
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher writes order events to Kafka behind a circuit breaker.
type Publisher struct {
	writer  messageWriter
	breaker *gobreaker.CircuitBreaker[struct{}]
}

func NewPublisher(topic string, brokers ...string) *Publisher {
	if topic == "" {
		topic = DefaultTopic
	}
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	return newPublisher(w)
}

func newPublisher(w messageWriter) *Publisher {
	cb := gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        "kafka-order-events",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state changed")
		},
	})
	return &Publisher{writer: w, breaker: cb}
}

func (p *Publisher) PublishOrderCreated(ctx context.Context, event OrderCreated) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal order event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(event.OrderID), // order id for ordering
		Value: payload,
		Headers: []kafka.Header{
			{Key: eventTypeHeader, Value: []byte(EventTypeOrderCreated)},
		},
	}

	_, err = p.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, p.writer.WriteMessages(ctx, msg)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("order events unavailable: %w", err)
	}
	if err != nil {
		return fmt.Errorf("failed to publish order event %s: %w", event.OrderID, err)
	}
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// EventType returns the event_type header of m, or "" if absent.
func EventType(m kafka.Message) string {
	for _, h := range m.Headers {
		if h.Key == eventTypeHeader {
			return string(h.Value)
		}
	}
	return ""
}
