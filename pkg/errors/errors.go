// kdcpay-gateway/pkg/errors/errors.go
package errors

import (
	stderrors "errors"
	"fmt"
)

const (
	CodeUnsupportedCurrency = "UNSUPPORTED_CURRENCY"
	CodeMissingToken        = "MISSING_TOKEN"
	CodeChecksumMismatch    = "CHECKSUM_MISMATCH"
	CodeUnrecognizedStatus  = "UNRECOGNIZED_STATUS"
	CodeOrderNotFound       = "ORDER_NOT_FOUND"
	CodeInvalidConfig       = "INVALID_CONFIG"
)

// Sentinels for errors.Is. Matching is by Code only, so a wrapped E with a
// different message or cause still matches its sentinel.
var (
	ErrUnsupportedCurrency = E{Code: CodeUnsupportedCurrency, Message: "the selected currency is not supported by this payment method"}
	ErrMissingToken        = E{Code: CodeMissingToken, Message: "empty token"}
	ErrChecksumMismatch    = E{Code: CodeChecksumMismatch, Message: "checksum does not match payload"}
	ErrUnrecognizedStatus  = E{Code: CodeUnrecognizedStatus, Message: "unrecognized gateway status"}
	ErrOrderNotFound       = E{Code: CodeOrderNotFound, Message: "no order for payment token"}
	ErrInvalidConfig       = E{Code: CodeInvalidConfig, Message: "invalid configuration"}
)

type E struct {
	Code    string
	Message string
	Err     error
}

func (e E) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e E) Unwrap() error { return e.Err }

func (e E) Is(target error) bool {
	var t E
	if !stderrors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

func Wrap(code, msg string, err error) error {
	return E{Code: code, Message: msg, Err: err}
}

// CodeOf returns the code of the first E in err's chain, or "" if there is none.
func CodeOf(err error) string {
	var e E
	if stderrors.As(err, &e) {
		return e.Code
	}
	return ""
}
