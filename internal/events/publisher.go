// Package events emits checkout lifecycle events once a payment reaches a
// terminal state. Publishing is best-effort: a failed publish never undoes
// a settled payment.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/Abdelhameed97/bookshare-sub001/internal/domain"
)

const (
	TypeCheckoutCompleted = "checkout.completed"
	TypePaymentFailed     = "payment.failed"
)

type Sink interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

func NewKafkaWriter(brokers ...string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  "checkout-events",
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
}

type Publisher struct {
	sink   Sink
	logger *zap.Logger
}

func NewPublisher(sink Sink, logger *zap.Logger) *Publisher {
	return &Publisher{sink: sink, logger: logger}
}

func (p *Publisher) CheckoutCompleted(ctx context.Context, payment domain.Payment) error {
	payload := map[string]interface{}{
		"order_id":    payment.OrderID,
		"payment_id":  payment.ID,
		"method":      payment.Method,
		"amount":      payment.Amount,
		"status":      payment.Status,
		"occurred_at": time.Now().UTC(),
	}
	return p.publish(ctx, TypeCheckoutCompleted, payment.OrderID, payload)
}

func (p *Publisher) PaymentFailed(ctx context.Context, orderID string, method domain.PaymentMethod, reason string) error {
	payload := map[string]interface{}{
		"order_id":    orderID,
		"method":      method,
		"reason":      reason,
		"occurred_at": time.Now().UTC(),
	}
	return p.publish(ctx, TypePaymentFailed, orderID, payload)
}

func (p *Publisher) publish(ctx context.Context, eventType, orderID string, payload map[string]interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", eventType, err)
	}

	msg := kafka.Message{
		Key:   []byte(orderID), // order id keys the partition for ordering
		Value: data,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(eventType)},
		},
	}
	if err := p.sink.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish %s: %w", eventType, err)
	}

	p.logger.Info("event published",
		zap.String("event_type", eventType),
		zap.String("order_id", orderID))
	return nil
}
