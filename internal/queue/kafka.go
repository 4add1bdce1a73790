// kdcpay-gateway/internal/queue/kafka.go
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/example/kdcpay-gateway/internal/kdcpay"
)

// OutcomeEvent is published once the order system has recorded an outcome.
type OutcomeEvent struct {
	EventID      string    `json:"event_id"`
	PaymentToken string    `json:"payment_token"`
	Outcome      string    `json:"outcome"`
	OccurredAt   time.Time `json:"occurred_at"`
}

func NewOutcomeEvent(token string, outcome kdcpay.Outcome, now time.Time) OutcomeEvent {
	return OutcomeEvent{
		EventID:      uuid.NewString(),
		PaymentToken: token,
		Outcome:      outcome.String(),
		OccurredAt:   now.UTC(),
	}
}

// Bus writes outcome events keyed by payment token, so every event of one
// order lands on the same partition.
type Bus struct {
	Brokers []string
	Topic   string
	w       *kafka.Writer
}

func New(brokers []string, topic string) *Bus {
	return &Bus{
		Brokers: brokers,
		Topic:   topic,
		w: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
			WriteTimeout: 5 * time.Second,
			// Publish runs before the callback redirect; flush each event at once.
			BatchSize:    1,
			BatchTimeout: 5 * time.Millisecond,
		},
	}
}

func (b *Bus) Publish(ctx context.Context, ev OutcomeEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return b.w.WriteMessages(ctx, kafka.Message{
		Key:   []byte(ev.PaymentToken),
		Value: payload,
		Time:  ev.OccurredAt,
	})
}

func (b *Bus) Close() error { return b.w.Close() }

// Reader is the consuming side used by the audit worker.
func NewReader(brokers []string, topic, group string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  group,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
}

// DecodeOutcomeEvent parses one message value.
func DecodeOutcomeEvent(value []byte) (OutcomeEvent, error) {
	var ev OutcomeEvent
	if err := json.Unmarshal(value, &ev); err != nil {
		return OutcomeEvent{}, err
	}
	if _, ok := kdcpay.ParseOutcome(ev.Outcome); !ok || ev.PaymentToken == "" {
		return OutcomeEvent{}, fmt.Errorf("outcome event without token or known outcome: %s", value)
	}
	return ev, nil
}
