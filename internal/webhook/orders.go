package webhook

import (
	"context"

	"github.com/example/kdcpay-gateway/internal/kdcpay"
	"github.com/example/kdcpay-gateway/internal/tickets"
)

// Orders is the slice of the order system the handlers need.
// SetPaymentOutcome must be idempotent: the same token may be reported by a
// return redirect and a notify at the same time.
type Orders interface {
	FindAttendeeByPaymentToken(ctx context.Context, token string) (tickets.Attendee, error)
	OrderSummary(ctx context.Context, token string) (kdcpay.OrderSummary, error)
	AccessURL(ctx context.Context, a tickets.Attendee) (string, error)
	SetPaymentOutcome(ctx context.Context, token string, outcome kdcpay.Outcome) error
}
