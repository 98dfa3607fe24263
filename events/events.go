// Package events publishes order lifecycle notifications.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"food-ordering-api/models"

	"github.com/segmentio/kafka-go"
)

const (
	OrderPlaced        = "order_placed"
	OrderStatusChanged = "order_status_changed"
	OrderUpdated       = "order_updated"
	OrderDeleted       = "order_deleted"
)

const publishTimeout = 5 * time.Second

type Event struct {
	Type       string             `json:"type"`
	OrderID    uint               `json:"order_id"`
	ShopID     uint               `json:"shop_id"`
	CustomerID uint               `json:"customer_id"`
	Status     models.OrderStatus `json:"status"`
	PrevStatus models.OrderStatus `json:"previous_status,omitempty"`
	Actor      models.AccountKind `json:"actor"`
	At         time.Time          `json:"at"`
}

// NewOrderEvent fills an event from the order's current state.
func NewOrderEvent(typ string, o *models.Order, actor models.AccountKind, prev models.OrderStatus) Event {
	return Event{
		Type:       typ,
		OrderID:    o.ID,
		ShopID:     o.ShopID,
		CustomerID: o.CustomerID,
		Status:     o.Status,
		PrevStatus: prev,
		Actor:      actor,
		At:         time.Now().UTC(),
	}
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// Nop drops every event. Used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes events keyed by order id so one order's events stay
// on one partition.
type KafkaPublisher struct {
	writer messageWriter
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{writer: &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		BatchTimeout:           10 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}}
}

func (p *KafkaPublisher) Publish(ctx context.Context, e Event) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("kafka: marshal %s: %w", e.Type, err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatUint(uint64(e.OrderID), 10)),
		Value: data,
		Time:  e.At,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(e.Type)},
		},
	})
	if err != nil {
		return fmt.Errorf("kafka: write %s: %w", e.Type, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
