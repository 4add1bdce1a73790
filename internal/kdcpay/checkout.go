package kdcpay

import (
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	perrors "github.com/example/kdcpay-gateway/pkg/errors"
)

const (
	// MethodID is the value of tix_payment_method that routes a request here.
	MethodID = "camptix_kdcpay"

	GatewayURL = "https://kdcpay.in/secure/transact.php"

	// KDCpay accepts at most 20 characters in orderId.
	maxOrderIDLen   = 20
	orderIDPrefix   = 18
	orderIDTruncTag = "_X"
)

// Fixed codes sent on every checkout.
const (
	txnTypeNetBanking = "3" // {0:credit_card,1:debit_card,2:cash_wallet,3:net_banking,4:EMI,5:COD}
	payOptionWidget   = "2" // {0:on_kdcpay,1:button_redirect,2:widget_plugin,3:API}
	purposeOthers     = "3" // {0:service,1:goods,2:auction,3:others}
	callBackNotify    = "0"
)

// Actions carried in tix_action.
const (
	ActionCancel = "payment_cancel"
	ActionReturn = "payment_return"
	ActionNotify = "payment_notify"
	ActionAccess = "access_tickets"
)

// IST is the gateway's business timezone; txnDate is always expressed in it.
var IST = time.FixedZone("IST", 5*60*60+30*60)

var SupportedCurrencies = []string{"INR"}

// Credentials identify the merchant to KDCpay.
type Credentials struct {
	MerchantID string
	Secret     string
	Sandbox    bool
}

// Mode is the gateway's mode flag: "0" sandbox, "1" live.
func (c Credentials) Mode() string {
	if c.Sandbox {
		return "0"
	}
	return "1"
}

// OrderSummary is what the order system reports for a payment token.
type OrderSummary struct {
	Total    decimal.Decimal
	Currency string
}

// OrderID derives the gateway order id from a payment token. Tokens of 21
// characters or more keep their first 18 and get the "_X" tag; distinct
// tokens sharing that prefix collide, which the gateway contract forces.
func OrderID(token string) string {
	if len(token) <= maxOrderIDLen {
		return token
	}
	return token[:orderIDPrefix] + orderIDTruncTag
}

// CallbackURL appends the routing args for action to ticketsURL, preserving
// an existing query string and the arg order the gateway will echo back.
func CallbackURL(ticketsURL, action, token string) string {
	return addQueryArgs(ticketsURL,
		Field{Name: "tix_action", Value: action},
		Field{Name: "tix_payment_token", Value: token},
		Field{Name: "tix_payment_method", Value: MethodID},
	)
}

// AccessURL is the page where an attendee holding accessToken sees their tickets.
func AccessURL(ticketsURL, accessToken string) string {
	return addQueryArgs(ticketsURL,
		Field{Name: "tix_action", Value: ActionAccess},
		Field{Name: "tix_access_token", Value: accessToken},
	)
}

func addQueryArgs(base string, args ...Field) string {
	base, fragment, hasFragment := strings.Cut(base, "#")

	var b strings.Builder
	b.WriteString(base)
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
		if strings.HasSuffix(base, "?") || strings.HasSuffix(base, "&") {
			sep = ""
		}
	}
	for _, a := range args {
		b.WriteString(sep)
		b.WriteString(url.QueryEscape(a.Name))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(a.Value))
		sep = "&"
	}
	if hasFragment {
		b.WriteByte('#')
		b.WriteString(fragment)
	}
	return b.String()
}

// CheckoutRequest is a signed payload ready to be posted to the gateway.
type CheckoutRequest struct {
	Action    string
	Method    string
	OrderID   string
	Fields    *Payload
	ReturnURL string
	CancelURL string
	NotifyURL string
}

// Builder assembles checkout requests for one merchant configuration.
type Builder struct {
	Credentials Credentials
	EventName   string
	TicketsURL  string
	// Currency is the site-wide currency, used when an order does not name one.
	Currency   string
	Currencies []string
	Now        func() time.Time
}

func (b *Builder) now() time.Time {
	if b.Now != nil {
		return b.Now()
	}
	return time.Now()
}

func (b *Builder) supports(currency string) bool {
	supported := b.Currencies
	if len(supported) == 0 {
		supported = SupportedCurrencies
	}
	return slices.Contains(supported, currency)
}

// Build produces the signed checkout for token. It fails with
// ErrUnsupportedCurrency before anything is signed when the currency is not
// accepted by KDCpay.
func (b *Builder) Build(token string, order OrderSummary, clientIP string) (*CheckoutRequest, error) {
	if strings.TrimSpace(token) == "" {
		return nil, perrors.ErrMissingToken
	}
	currency := order.Currency
	if currency == "" {
		currency = b.Currency
	}
	if !b.supports(currency) {
		return nil, perrors.Wrap(perrors.CodeUnsupportedCurrency,
			"the selected currency is not supported by this payment method: "+currency, nil)
	}
	if b.Credentials.MerchantID == "" || b.Credentials.Secret == "" {
		return nil, perrors.Wrap(perrors.CodeInvalidConfig, "merchant id and merchant key are required", nil)
	}

	orderID := OrderID(token)
	total := order.Total.StringFixed(2)
	req := &CheckoutRequest{
		Action:    GatewayURL,
		Method:    "POST",
		OrderID:   orderID,
		ReturnURL: CallbackURL(b.TicketsURL, ActionReturn, token),
		CancelURL: CallbackURL(b.TicketsURL, ActionCancel, token),
		NotifyURL: CallbackURL(b.TicketsURL, ActionNotify, token),
	}

	p := NewPayload()
	p.Set("mid", b.Credentials.MerchantID)
	p.Set("orderId", orderID)
	p.Set(FieldReturnURL, req.ReturnURL)
	p.Set("txnType", txnTypeNetBanking)
	p.Set("payOption", payOptionWidget)
	p.Set("currency", currency)
	p.Set("totalAmount", total)
	p.Set("ipAddress", clientIP)
	p.Set("purpose", purposeOthers)
	// All tickets of an order are billed as a single line item.
	p.Set("productDescription", b.EventName+", Order "+token)
	p.Set("productAmount", total)
	p.Set("productQuantity", "1")
	p.Set("txnDate", b.now().In(IST).Format("2006-01-02"))
	// orderId may be truncated, udf1 carries the full token.
	p.Set("udf1", token)
	p.Set("callBack", callBackNotify)
	p.Set("mode", b.Credentials.Mode())
	p.Set(FieldChecksum, Checksum(p, RoleCheckout, b.Credentials.Secret))

	req.Fields = p
	return req, nil
}
