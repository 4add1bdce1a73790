package tickets

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/example/kdcpay-gateway/internal/kdcpay"
	perrors "github.com/example/kdcpay-gateway/pkg/errors"
)

// MemoryStore keeps attendees in process. It backs local runs and tests.
type MemoryStore struct {
	mu         sync.RWMutex
	ticketsURL string
	byToken    map[string][]*Attendee
	now        func() time.Time
}

func NewMemoryStore(ticketsURL string) *MemoryStore {
	return &MemoryStore{
		ticketsURL: ticketsURL,
		byToken:    make(map[string][]*Attendee),
		now:        time.Now,
	}
}

// Save upserts a by ID, filling in ID and AccessToken when empty.
func (s *MemoryStore) Save(_ context.Context, a Attendee) (Attendee, error) {
	if a.PaymentToken == "" {
		return Attendee{}, perrors.ErrMissingToken
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.AccessToken == "" {
		a.AccessToken = uuid.NewString()
	}
	a.UpdatedAt = s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.byToken[a.PaymentToken]
	for i, cur := range list {
		if cur.ID == a.ID {
			stored := a
			list[i] = &stored
			return a, nil
		}
	}
	stored := a
	s.byToken[a.PaymentToken] = append(list, &stored)
	return a, nil
}

func (s *MemoryStore) FindAttendeeByPaymentToken(_ context.Context, token string) (Attendee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := s.byToken[token]
	if len(list) == 0 {
		return Attendee{}, notFound(token)
	}
	return *list[0], nil
}

func (s *MemoryStore) OrderSummary(_ context.Context, token string) (kdcpay.OrderSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := s.byToken[token]
	if len(list) == 0 {
		return kdcpay.OrderSummary{}, notFound(token)
	}
	attendees := make([]Attendee, 0, len(list))
	for _, a := range list {
		attendees = append(attendees, *a)
	}
	return summarize(attendees), nil
}

func (s *MemoryStore) AccessURL(_ context.Context, a Attendee) (string, error) {
	return kdcpay.AccessURL(s.ticketsURL, a.AccessToken), nil
}

// SetPaymentOutcome moves every attendee of token to outcome. Attendees
// already in that state are left untouched.
func (s *MemoryStore) SetPaymentOutcome(_ context.Context, token string, outcome kdcpay.Outcome) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.byToken[token]
	if len(list) == 0 {
		return notFound(token)
	}
	now := s.now()
	for _, a := range list {
		if a.Outcome == outcome {
			continue
		}
		a.Outcome = outcome
		a.UpdatedAt = now
	}
	return nil
}

func notFound(token string) error {
	return perrors.Wrap(perrors.CodeOrderNotFound, "no attendee for payment token "+token, nil)
}
