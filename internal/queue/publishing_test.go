package queue

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/kdcpay-gateway/internal/kdcpay"
	"github.com/example/kdcpay-gateway/internal/tickets"
	perrors "github.com/example/kdcpay-gateway/pkg/errors"
)

type fakePublisher struct {
	events []OutcomeEvent
	err    error
}

func (f *fakePublisher) Publish(_ context.Context, ev OutcomeEvent) error {
	f.events = append(f.events, ev)
	return f.err
}

func newStore(t *testing.T) tickets.Store {
	t.Helper()
	s := tickets.NewMemoryStore("https://x.org/tickets/")
	_, err := s.Save(context.Background(), tickets.Attendee{PaymentToken: "abc123", Price: decimal.NewFromInt(500), Currency: "INR"})
	require.NoError(t, err)
	return s
}

func TestPublishingStore_PublishesAfterWrite(t *testing.T) {
	inner := newStore(t)
	pub := &fakePublisher{}
	log, _ := test.NewNullLogger()
	at := time.Date(2026, 10, 15, 12, 0, 0, 0, time.FixedZone("IST", 19800))
	s := NewPublishingStore(inner, pub, log)
	s.Now = func() time.Time { return at }

	require.NoError(t, s.SetPaymentOutcome(context.Background(), "abc123", kdcpay.OutcomeCompleted))

	require.Len(t, pub.events, 1)
	ev := pub.events[0]
	assert.Equal(t, "abc123", ev.PaymentToken)
	assert.Equal(t, "completed", ev.Outcome)
	assert.NotEmpty(t, ev.EventID)
	assert.Equal(t, at.UTC(), ev.OccurredAt)

	a, err := inner.FindAttendeeByPaymentToken(context.Background(), "abc123")
	require.NoError(t, err)
	assert.Equal(t, kdcpay.OutcomeCompleted, a.Outcome)
}

func TestPublishingStore_PublishFailureIsLoggedOnly(t *testing.T) {
	pub := &fakePublisher{err: errors.New("broker down")}
	log, hook := test.NewNullLogger()
	s := NewPublishingStore(newStore(t), pub, log)

	err := s.SetPaymentOutcome(context.Background(), "abc123", kdcpay.OutcomePending)

	assert.NoError(t, err)
	require.Len(t, hook.Entries, 1)
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	assert.Equal(t, "abc123", hook.LastEntry().Data["payment_token"])
}

func TestPublishingStore_NothingPublishedWhenWriteFails(t *testing.T) {
	pub := &fakePublisher{}
	log, _ := test.NewNullLogger()
	s := NewPublishingStore(newStore(t), pub, log)

	err := s.SetPaymentOutcome(context.Background(), "unknown-token", kdcpay.OutcomeFailed)

	assert.True(t, errors.Is(err, perrors.ErrOrderNotFound))
	assert.Empty(t, pub.events)
}

func TestDecodeOutcomeEvent(t *testing.T) {
	ev, err := DecodeOutcomeEvent([]byte(`{"event_id":"e1","payment_token":"abc123","outcome":"cancelled","occurred_at":"2026-10-15T06:30:00Z"}`))
	require.NoError(t, err)
	assert.Equal(t, "cancelled", ev.Outcome)

	_, err = DecodeOutcomeEvent([]byte(`{"payment_token":"abc123","outcome":"refunded"}`))
	assert.Error(t, err)
	_, err = DecodeOutcomeEvent([]byte(`not json`))
	assert.Error(t, err)
}
