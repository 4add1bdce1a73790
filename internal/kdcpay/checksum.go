package kdcpay

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Role selects which whitelist of fields participates in a checksum.
type Role int

const (
	RoleCheckout Role = iota
	RoleCallback
)

func (r Role) String() string {
	switch r {
	case RoleCheckout:
		return "checkout"
	case RoleCallback:
		return "callback"
	default:
		return "unknown"
	}
}

// ParseRole accepts "checkout", or "callback", "return" or "notify" for the
// inbound role.
func ParseRole(s string) (Role, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "checkout":
		return RoleCheckout, true
	case "callback", "return", "notify":
		return RoleCallback, true
	}
	return 0, false
}

const FieldReturnURL = "returnUrl"

var checkoutWhitelist = whitelist(
	"mid", "orderId", FieldReturnURL,
	"buyerEmail", "buyerName", "buyerAddress", "buyerAddress2", "buyerCity", "buyerState",
	"buyerCountry", "buyerPincode", "buyerDialCode", "buyerPhoneNumber",
	"txnType", "payOption", "mode", "currency", "totalAmount", "ipAddress", "purpose",
	"productDescription", "productAmount", "productQuantity",
	"productTwoDescription", "productTwoAmount", "productTwoQuantity",
	"productThreeDescription", "productThreeAmount", "productThreeQuantity",
	"productFourDescription", "productFourAmount", "productFourQuantity",
	"productFiveDescription", "productFiveAmount", "productFiveQuantity",
	"txnDate", "payby",
)

var callbackWhitelist = whitelist(
	"status", "orderId", "responseCode", "responseDescription",
	"amount", "trackId", "pgId", "bankId", "paidBy",
)

func whitelist(names ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(names))
	for _, n := range names {
		m[n] = struct{}{}
	}
	return m
}

func (r Role) whitelist() map[string]struct{} {
	if r == RoleCheckout {
		return checkoutWhitelist
	}
	return callbackWhitelist
}

// ChecksumInput builds the string KDCpay hashes: every whitelisted value, in
// payload order, sanitized and wrapped in single quotes.
func ChecksumInput(p *Payload, role Role) string {
	allowed := role.whitelist()

	var b strings.Builder
	for _, f := range p.fields {
		if _, ok := allowed[f.Name]; !ok {
			continue
		}
		b.WriteByte('\'')
		if f.Name == FieldReturnURL {
			b.WriteString(SanitizeURL(f.Value))
		} else {
			b.WriteString(SanitizeParam(f.Value))
		}
		b.WriteByte('\'')
	}
	return b.String()
}

// Checksum is the hex HMAC-SHA256 of ChecksumInput keyed by the merchant secret.
func Checksum(p *Payload, role Role, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(ChecksumInput(p, role)))
	return hex.EncodeToString(mac.Sum(nil))
}
