package webhook

import (
	"bytes"
	"io"
	"mime"
	"net"
	"net/http"
	"strings"

	"github.com/example/kdcpay-gateway/internal/kdcpay"
)

const maxFormBytes = 1 << 20

// Request fields the ticketing site sets on callback URLs.
const (
	paramAction        = "tix_action"
	paramPaymentToken  = "tix_payment_token"
	paramPaymentMethod = "tix_payment_method"
)

// ReadPayload merges the raw query string and a urlencoded body into one
// payload in transport order. The body is put back so a fallback handler can
// still read it. A body over maxFormBytes is not parsed and is handed on
// whole.
func ReadPayload(r *http.Request) (*kdcpay.Payload, error) {
	body, err := readForm(r)
	if err != nil {
		return nil, err
	}
	return kdcpay.ParsePayload(r.URL.RawQuery, body), nil
}

func readForm(r *http.Request) (string, error) {
	if r.Body == nil || r.Body == http.NoBody {
		return "", nil
	}
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct != "application/x-www-form-urlencoded" {
		return "", nil
	}
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxFormBytes+1))
	if err != nil {
		return "", err
	}
	if len(raw) > maxFormBytes {
		r.Body = readCloser{io.MultiReader(bytes.NewReader(raw), r.Body), r.Body}
		return "", nil
	}
	_ = r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(raw))
	return string(raw), nil
}

// readCloser replays consumed bytes ahead of the rest of the original body.
type readCloser struct {
	io.Reader
	io.Closer
}

// ClientIP is the first X-Forwarded-For hop, or the peer address.
func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
