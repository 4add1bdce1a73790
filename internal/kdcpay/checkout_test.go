package kdcpay

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	perrors "github.com/example/kdcpay-gateway/pkg/errors"
)

const checkoutChecksum = "c492bfab090daf50a3c9455fdf5c0ffcc64caf8c5aaa93805c88304887253f78"

func testBuilder() *Builder {
	return &Builder{
		Credentials: Credentials{MerchantID: "M100", Secret: testSecret, Sandbox: true},
		EventName:   "WordCamp Pune",
		TicketsURL:  "https://tickets.example.org/tickets/",
		Currency:    "INR",
		// 01:30 on the 16th in IST.
		Now: func() time.Time { return time.Date(2026, 10, 15, 20, 0, 0, 0, time.UTC) },
	}
}

func inr(amount int64) OrderSummary {
	return OrderSummary{Total: decimal.NewFromInt(amount), Currency: "INR"}
}

func TestBuild_SignedPayload(t *testing.T) {
	req, err := testBuilder().Build("abc123", inr(500), "203.0.113.7")
	require.NoError(t, err)

	assert.Equal(t, GatewayURL, req.Action)
	assert.Equal(t, "POST", req.Method)
	assert.Equal(t, "abc123", req.OrderID)

	p := req.Fields
	assert.Equal(t, []string{
		"mid", "orderId", "returnUrl", "txnType", "payOption", "currency", "totalAmount",
		"ipAddress", "purpose", "productDescription", "productAmount", "productQuantity",
		"txnDate", "udf1", "callBack", "mode", "checksum",
	}, names(p))
	assert.Equal(t, "https://tickets.example.org/tickets/?tix_action=payment_return&tix_payment_token=abc123&tix_payment_method=camptix_kdcpay",
		p.Get(FieldReturnURL))
	assert.Equal(t, "500.00", p.Get("totalAmount"))
	assert.Equal(t, "500.00", p.Get("productAmount"))
	assert.Equal(t, "WordCamp Pune, Order abc123", p.Get("productDescription"))
	assert.Equal(t, "2026-10-16", p.Get("txnDate"))
	assert.Equal(t, "abc123", p.Get("udf1"))
	assert.Equal(t, "0", p.Get("mode"))
	assert.Equal(t, checkoutChecksum, p.Get(FieldChecksum))
}

func TestBuild_ChecksumMatchesRecomputation(t *testing.T) {
	req, err := testBuilder().Build("abc123", inr(500), "203.0.113.7")
	require.NoError(t, err)

	assert.Equal(t, req.Fields.Get(FieldChecksum), Checksum(req.Fields, RoleCheckout, testSecret))
}

func TestBuild_LiveMode(t *testing.T) {
	b := testBuilder()
	b.Credentials.Sandbox = false

	req, err := b.Build("abc123", inr(500), "203.0.113.7")
	require.NoError(t, err)
	assert.Equal(t, "1", req.Fields.Get("mode"))
}

func TestBuild_UnsupportedCurrency(t *testing.T) {
	_, err := testBuilder().Build("abc123", OrderSummary{Total: decimal.NewFromInt(10), Currency: "USD"}, "203.0.113.7")

	assert.True(t, errors.Is(err, perrors.ErrUnsupportedCurrency))
	assert.Contains(t, err.Error(), "USD")
}

func TestBuild_FallsBackToSiteCurrency(t *testing.T) {
	b := testBuilder()
	b.Currency = "USD"
	_, err := b.Build("abc123", OrderSummary{Total: decimal.NewFromInt(10)}, "")
	assert.True(t, errors.Is(err, perrors.ErrUnsupportedCurrency))

	b.Currency = "INR"
	req, err := b.Build("abc123", OrderSummary{Total: decimal.NewFromInt(10)}, "")
	require.NoError(t, err)
	assert.Equal(t, "INR", req.Fields.Get("currency"))
}

func TestBuild_RequiresTokenAndCredentials(t *testing.T) {
	_, err := testBuilder().Build("", inr(1), "")
	assert.True(t, errors.Is(err, perrors.ErrMissingToken))

	b := testBuilder()
	b.Credentials.Secret = ""
	_, err = b.Build("abc123", inr(1), "")
	assert.True(t, errors.Is(err, perrors.ErrInvalidConfig))
}

func TestBuild_LongTokenIsTruncatedButKeptInUDF1(t *testing.T) {
	token := "ABCDEFGHIJKLMNOPQRSTUVWXY"

	req, err := testBuilder().Build(token, inr(500), "203.0.113.7")
	require.NoError(t, err)

	assert.Equal(t, "ABCDEFGHIJKLMNOPQR_X", req.OrderID)
	assert.Equal(t, req.OrderID, req.Fields.Get("orderId"))
	assert.Equal(t, token, req.Fields.Get("udf1"))
	assert.Contains(t, req.ReturnURL, "tix_payment_token="+token)
}

func TestOrderID(t *testing.T) {
	assert.Equal(t, "ABCDEFGHIJKLMNO", OrderID("ABCDEFGHIJKLMNO"))
	assert.Equal(t, strings.Repeat("a", 20), OrderID(strings.Repeat("a", 20)))

	long := OrderID(strings.Repeat("b", 21))
	assert.Len(t, long, 20)
	assert.True(t, strings.HasSuffix(long, "_X"))
	assert.Equal(t, OrderID(strings.Repeat("c", 18)+"one-more"), OrderID(strings.Repeat("c", 18)+"another"))
}

func TestCallbackURL(t *testing.T) {
	assert.Equal(t,
		"https://x.org/tickets/?tix_action=payment_cancel&tix_payment_token=t1&tix_payment_method=camptix_kdcpay",
		CallbackURL("https://x.org/tickets/", ActionCancel, "t1"))
	assert.Equal(t,
		"https://x.org/?page_id=7&tix_action=payment_notify&tix_payment_token=t1&tix_payment_method=camptix_kdcpay#tix",
		CallbackURL("https://x.org/?page_id=7#tix", ActionNotify, "t1"))
}

func TestRender_AutoSubmitForm(t *testing.T) {
	req, err := testBuilder().Build("abc123", inr(500), "203.0.113.7")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, req.Render(&buf))
	html := buf.String()

	assert.Contains(t, html, `action="https://kdcpay.in/secure/transact.php"`)
	assert.Contains(t, html, `id="kdcpay_payment_form"`)
	assert.Contains(t, html, `name="checksum" value="`+checkoutChecksum+`"`)
	assert.Contains(t, html, `name="productDescription" value="WordCamp Pune, Order abc123"`)
	assert.Contains(t, html, "tix_action=payment_cancel")
	assert.Contains(t, html, `.submit()`)
}

func TestAccessURL(t *testing.T) {
	assert.Equal(t,
		"https://x.org/tickets/?tix_action=access_tickets&tix_access_token=acc-1",
		AccessURL("https://x.org/tickets/", "acc-1"))
}
