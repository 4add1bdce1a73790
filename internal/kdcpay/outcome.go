package kdcpay

import "strings"

// Outcome is the payment result reported to the order system.
type Outcome int

const (
	// OutcomeUnknown means the gateway status could not be classified and the
	// order's prior state must be left alone.
	OutcomeUnknown Outcome = iota
	OutcomeCompleted
	OutcomePending
	OutcomeFailed
	OutcomeCancelled
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCompleted:
		return "completed"
	case OutcomePending:
		return "pending"
	case OutcomeFailed:
		return "failed"
	case OutcomeCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

func ParseOutcome(s string) (Outcome, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "completed":
		return OutcomeCompleted, true
	case "pending":
		return OutcomePending, true
	case "failed":
		return OutcomeFailed, true
	case "cancelled":
		return OutcomeCancelled, true
	case "unknown":
		return OutcomeUnknown, true
	}
	return OutcomeUnknown, false
}

// outcomeForStatus maps the gateway's status string. ok is false for any
// status KDCpay does not document.
func outcomeForStatus(status string) (Outcome, bool) {
	switch strings.ToLower(status) {
	case "success":
		return OutcomeCompleted, true
	case "pending":
		return OutcomePending, true
	case "fail":
		return OutcomeFailed, true
	}
	return OutcomeUnknown, false
}
