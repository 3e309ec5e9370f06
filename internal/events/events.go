package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"expense-service/internal/models"
)

const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// Event describes a change to an expense row. Expense is nil for deletions.
type Event struct {
	Action     string          `json:"action"`
	ExpenseID  int64           `json:"expense_id"`
	UserID     int64           `json:"user_id"`
	Expense    *models.Expense `json:"expense,omitempty"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// Key is the message key the event is published under.
func (e Event) Key() string {
	return fmt.Sprintf("expense-%s-%d", e.Action, e.ExpenseID)
}

// Publisher delivers expense events to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// NopPublisher discards every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
func (NopPublisher) Close() error                         { return nil }

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes events as JSON messages to a Kafka topic.
type KafkaPublisher struct {
	w messageWriter
}

// NewKafkaPublisher returns a publisher writing to topic on brokers.
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{w: &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		BatchTimeout:           10 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}}
}

func (p *KafkaPublisher) Publish(ctx context.Context, e Event) error {
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}
	value, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(e.Key()),
		Value: value,
	}
	if err := p.w.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write %s: %w", e.Key(), err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.w.Close()
}
