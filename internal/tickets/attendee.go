package tickets

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/example/kdcpay-gateway/internal/kdcpay"
)

// Attendee is one ticket holder. Attendees bought in the same checkout share
// a PaymentToken and are paid for together.
type Attendee struct {
	ID           string
	PaymentToken string
	AccessToken  string
	Price        decimal.Decimal
	Currency     string
	Outcome      kdcpay.Outcome
	UpdatedAt    time.Time
}

// Store is the order system as seen by the gateway adapter. Both the memory
// and Postgres stores satisfy it.
type Store interface {
	Save(ctx context.Context, a Attendee) (Attendee, error)
	FindAttendeeByPaymentToken(ctx context.Context, token string) (Attendee, error)
	OrderSummary(ctx context.Context, token string) (kdcpay.OrderSummary, error)
	AccessURL(ctx context.Context, a Attendee) (string, error)
	SetPaymentOutcome(ctx context.Context, token string, outcome kdcpay.Outcome) error
}

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*PostgresStore)(nil)
)

// summarize adds up the ticket prices of one order. The currency of the
// first attendee wins.
func summarize(attendees []Attendee) kdcpay.OrderSummary {
	var sum kdcpay.OrderSummary
	sum.Total = decimal.Zero
	for i, a := range attendees {
		if i == 0 {
			sum.Currency = a.Currency
		}
		sum.Total = sum.Total.Add(a.Price)
	}
	return sum
}
