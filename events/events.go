package events

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
)

// OrdersTopic carries every order lifecycle event, keyed by order id so
// consumers see one order's events in sequence.
const OrdersTopic = "soraxi.orders"

// Event names.
const (
	OrderPlaced    = "order.placed"
	OrderShipped   = "order.shipped"
	OrderDelivered = "order.delivered"
	EscrowReleased = "escrow.released"
)

// OrderEvent is the payload published on the orders topic. Amounts in kobo.
type OrderEvent struct {
	Name       string    `json:"name"`
	OrderID    string    `json:"order_id"`
	SubOrderID string    `json:"sub_order_id,omitempty"`
	StoreID    string    `json:"store_id,omitempty"`
	UserID     string    `json:"user_id,omitempty"`
	Amount     int64     `json:"amount,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher writes order events to Kafka. With no brokers configured it is
// disabled and publishing is a silent no-op, so the platform runs without a
// broker in development.
type Publisher struct {
	brokers []string
	writer  *kafka.Writer
}

func NewPublisher(brokersCSV string) *Publisher {
	brokers := []string{}
	for _, b := range strings.Split(brokersCSV, ",") {
		b = strings.TrimSpace(b)
		if b != "" {
			brokers = append(brokers, b)
		}
	}

	p := &Publisher{brokers: brokers}
	if p.Enabled() {
		p.writer = &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        OrdersTopic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
		}
	}
	return p
}

func (p *Publisher) Enabled() bool {
	return len(p.brokers) > 0
}

// Publish writes one event, keyed by order id. Disabled publishers return nil
// without writing anything.
func (p *Publisher) Publish(ctx context.Context, event OrderEvent) error {
	if !p.Enabled() {
		return nil
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.OrderID),
		Value: data,
		Time:  event.OccurredAt,
	})
}

// PublishAsync publishes off the request path. Failures are logged, never
// surfaced; order events are advisory.
func (p *Publisher) PublishAsync(event OrderEvent) {
	if !p.Enabled() {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := p.Publish(ctx, event); err != nil {
			log.Printf("publish %s for order %s failed: %v", event.Name, event.OrderID, err)
		}
	}()
}

func (p *Publisher) Close() error {
	if p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
