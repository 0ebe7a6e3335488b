// Package events publishes order lifecycle events to a message broker.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

const (
	TypeOrderCreated       = "order.created"
	TypeOrderStatusChanged = "order.status_changed"
)

type OrderEvent struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	OrderID     uint      `json:"orderId"`
	UserID      uint      `json:"userId"`
	Status      string    `json:"status"`
	PrevStatus  string    `json:"prevStatus,omitempty"`
	TotalAmount string    `json:"totalAmount,omitempty"`
	PaymentID   string    `json:"paymentId,omitempty"`
	OccurredAt  time.Time `json:"occurredAt"`
}

func NewOrderEvent(eventType string, orderID, userID uint, status string) OrderEvent {
	return OrderEvent{
		ID:         uuid.New().String(),
		Type:       eventType,
		OrderID:    orderID,
		UserID:     userID,
		Status:     status,
		OccurredAt: time.Now().UTC(),
	}
}

type Publisher interface {
	PublishEvent(ctx context.Context, topic, key string, event interface{}) error
	Close() error
}

type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(brokers []string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireOne,
			AllowAutoTopicCreation: true,
			WriteTimeout:           5 * time.Second,
		},
	}
}

func (p *KafkaPublisher) PublishEvent(ctx context.Context, topic, key string, event interface{}) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("kafka: json.Marshal failed: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := p.writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: data,
	}); err != nil {
		return fmt.Errorf("kafka: write failed: %w", err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// LogPublisher is used when no broker is configured.
type LogPublisher struct {
	logger *logrus.Logger
}

func NewLogPublisher(logger *logrus.Logger) *LogPublisher {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) PublishEvent(ctx context.Context, topic, key string, event interface{}) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("events: json.Marshal failed: %w", err)
	}
	p.logger.WithFields(logrus.Fields{
		"topic": topic,
		"key":   key,
		"event": string(data),
	}).Info("Event published")
	return nil
}

func (p *LogPublisher) Close() error { return nil }
