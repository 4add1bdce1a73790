package queue

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/example/kdcpay-gateway/internal/kdcpay"
	"github.com/example/kdcpay-gateway/internal/tickets"
)

type Publisher interface {
	Publish(ctx context.Context, ev OutcomeEvent) error
}

// PublishingStore announces every outcome the wrapped store accepts. The
// event goes out after the write commits; a failed publish is logged and
// does not undo or fail the write. Repeated outcomes are published again,
// consumers dedupe on payment token and outcome.
type PublishingStore struct {
	tickets.Store
	Pub Publisher
	Log logrus.FieldLogger
	Now func() time.Time
}

func NewPublishingStore(inner tickets.Store, pub Publisher, log logrus.FieldLogger) *PublishingStore {
	return &PublishingStore{Store: inner, Pub: pub, Log: log, Now: time.Now}
}

func (s *PublishingStore) SetPaymentOutcome(ctx context.Context, token string, outcome kdcpay.Outcome) error {
	if err := s.Store.SetPaymentOutcome(ctx, token, outcome); err != nil {
		return err
	}
	ev := NewOutcomeEvent(token, outcome, s.Now())
	if err := s.Pub.Publish(ctx, ev); err != nil {
		s.Log.WithFields(logrus.Fields{
			"payment_token": token,
			"outcome":       outcome.String(),
			"event_id":      ev.EventID,
		}).WithError(err).Warn("publish outcome event")
	}
	return nil
}
