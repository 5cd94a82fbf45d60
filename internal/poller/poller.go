package poller

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"time"

	"github.com/fjod/storefront/internal/events"
	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	ConsumerGroup = "storefront-cart"

	defaultRetryDelay = 200 * time.Millisecond
	maxRetryDelay     = 10 * time.Second
)

// ProductInvalidator drops cached cart views that embed a product.
type ProductInvalidator interface {
	InvalidateProduct(ctx context.Context, productID primitive.ObjectID)
}

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// Poller consumes order events. An order consumes stock of the products it
// lists, so every cached cart holding one of them is invalidated. Carts
// themselves are never modified.
type Poller struct {
	carts      ProductInvalidator
	reader     messageReader
	retryDelay time.Duration
}

func NewPoller(carts ProductInvalidator, topic string, brokers ...string) *Poller {
	if topic == "" {
		topic = events.DefaultTopic
	}
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  ConsumerGroup,
		MaxBytes: 10e6, // 10MB
	})
	return newPoller(carts, reader)
}

func newPoller(carts ProductInvalidator, reader messageReader) *Poller {
	return &Poller{carts: carts, reader: reader, retryDelay: defaultRetryDelay}
}

// Run reads until ctx is cancelled. Read errors back off exponentially up to
// maxRetryDelay; a successful read resets the delay.
func (p *Poller) Run(ctx context.Context) {
	delay := p.retryDelay
	for {
		if ctx.Err() != nil {
			return
		}
		m, err := p.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
				return
			}
			log.Error().Err(err).Dur("retry_in", delay).Msg("error reading message")
			select {
			case <-ctx.Done():
				return
			case <-time.After(delay):
			}
			delay = min(delay*2, maxRetryDelay)
			continue
		}
		delay = p.retryDelay
		p.handle(ctx, m)
	}
}

func (p *Poller) Close() {
	if err := p.reader.Close(); err != nil {
		log.Error().Err(err).Msg("error closing reader")
	}
}

func (p *Poller) handle(ctx context.Context, m kafka.Message) {
	if t := events.EventType(m); t != "" && t != events.EventTypeOrderCreated {
		return
	}

	var event events.OrderCreated
	if err := json.Unmarshal(m.Value, &event); err != nil {
		log.Error().Err(err).Str("key", string(m.Key)).Msg("error parsing order event")
		return
	}

	seen := make(map[primitive.ObjectID]struct{}, len(event.Items))
	for _, item := range event.Items {
		pid, err := primitive.ObjectIDFromHex(item.ProductID)
		if err != nil {
			log.Warn().Str("order_id", event.OrderID).Str("product_id", item.ProductID).Msg("order event with malformed product_id")
			continue
		}
		if _, ok := seen[pid]; ok {
			continue
		}
		seen[pid] = struct{}{}
		p.carts.InvalidateProduct(ctx, pid)
	}
	log.Info().Str("order_id", event.OrderID).Int("products", len(seen)).Msg("cart views invalidated after order")
}
