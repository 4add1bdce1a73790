package kdcpay

import (
	"crypto/subtle"
	"strconv"

	perrors "github.com/example/kdcpay-gateway/pkg/errors"
)

// Inbound field names set by the gateway on return and notify.
const (
	FieldStatus              = "status"
	FieldChecksum            = "checksum"
	FieldTrackID             = "trackId"
	FieldPGID                = "pgId"
	FieldBankID              = "bankId"
	FieldPaidBy              = "paidBy"
	FieldResponseCode        = "responseCode"
	FieldResponseDescription = "responseDescription"
	FieldAmount              = "amount"
	FieldOrderID             = "orderId"
)

// Verdict is the classification of one inbound callback.
type Verdict struct {
	Outcome       Outcome
	ChecksumValid bool
	Status        string

	TrackID             string
	PGID                string
	BankID              string
	PaidBy              string
	ResponseCode        string
	ResponseDescription string

	// Err is ErrChecksumMismatch or ErrUnrecognizedStatus when set.
	Err error
}

// Verify reports whether the inbound checksum equals the one recomputed over
// the callback whitelist. The comparison is exact and case-sensitive.
func Verify(in *Payload, secret string) bool {
	got, ok := in.Lookup(FieldChecksum)
	if !ok {
		return false
	}
	want := Checksum(in, RoleCallback, secret)
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}

// Evaluate authenticates a return or notify payload and maps its status.
// A checksum mismatch always yields OutcomeFailed whatever status is claimed.
func Evaluate(in *Payload, secret string) Verdict {
	v := Verdict{
		Status:              in.Get(FieldStatus),
		TrackID:             in.Get(FieldTrackID),
		PGID:                in.Get(FieldPGID),
		BankID:              in.Get(FieldBankID),
		PaidBy:              in.Get(FieldPaidBy),
		ResponseCode:        in.Get(FieldResponseCode),
		ResponseDescription: in.Get(FieldResponseDescription),
	}

	if !Verify(in, secret) {
		v.Outcome = OutcomeFailed
		v.Err = perrors.ErrChecksumMismatch
		return v
	}
	v.ChecksumValid = true

	outcome, ok := outcomeForStatus(v.Status)
	if !ok {
		v.Outcome = OutcomeUnknown
		v.Err = perrors.Wrap(perrors.CodeUnrecognizedStatus, "status "+strconv.Quote(v.Status)+" has no payment outcome", nil)
		return v
	}
	v.Outcome = outcome
	return v
}
