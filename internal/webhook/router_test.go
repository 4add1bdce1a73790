package webhook

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/kdcpay-gateway/internal/kdcpay"
)

func newTestRouter(t *testing.T, orders *fakeOrders) http.Handler {
	t.Helper()
	h, _ := newLoggedRouter(t, orders)
	return h
}

func newLoggedRouter(t *testing.T, orders *fakeOrders) (http.Handler, *test.Hook) {
	t.Helper()
	log, hook := test.NewNullLogger()
	b := &kdcpay.Builder{
		Credentials: kdcpay.Credentials{MerchantID: "M100", Secret: testSecret, Sandbox: true},
		EventName:   "WordCamp Pune",
		TicketsURL:  ticketsURL,
		Currency:    "INR",
		Now:         func() time.Time { return time.Date(2026, 10, 15, 20, 0, 0, 0, time.UTC) },
	}
	h := &Handlers{Orders: orders, Secret: testSecret, TicketsURL: ticketsURL, Log: log}
	return NewRouter(RouterConfig{
		CallbackPath: "/tickets/",
		Dispatcher:   NewDispatcher(h, nil, log),
		Checkout:     &CheckoutHandler{Orders: orders, Builder: b, Log: log},
	}), hook
}

func TestRouter_CheckoutForm(t *testing.T) {
	rec := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/checkout/abc123", nil)
	r.Header.Set("X-Forwarded-For", "203.0.113.7")

	newTestRouter(t, newFakeOrders()).ServeHTTP(rec, r)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	body := rec.Body.String()
	assert.Contains(t, body, `name="ipAddress" value="203.0.113.7"`)
	assert.Contains(t, body, `name="checksum" value="c492bfab090daf50a3c9455fdf5c0ffcc64caf8c5aaa93805c88304887253f78"`)
}

func TestRouter_CheckoutLogsCallbackURLs(t *testing.T) {
	router, logs := newLoggedRouter(t, newFakeOrders())
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/checkout/abc123", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	e := logs.LastEntry()
	require.NotNil(t, e)
	assert.Equal(t, "checkout form served", e.Message)
	assert.Equal(t, "abc123", e.Data["payment_token"])
	assert.Equal(t, "500.00", e.Data["amount"])
	assert.Equal(t,
		kdcpay.CallbackURL(ticketsURL, kdcpay.ActionNotify, "abc123"),
		e.Data["notify_url"])
}

func TestRouter_CheckoutErrors(t *testing.T) {
	router := newTestRouter(t, newFakeOrders())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/checkout/usd1", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "not supported")

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/checkout/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_CallbackAndPassthrough(t *testing.T) {
	orders := newFakeOrders()
	router := newTestRouter(t, orders)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, post(returnQuery, successBody+"&checksum="+successChecksum))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, accessURL+"#tix", rec.Header().Get("Location"))

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tickets/?tix_action=payment_return&tix_payment_method=paypal", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_RequestIDIsKept(t *testing.T) {
	rec := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	r.Header.Set("X-Request-ID", "req-42")

	newTestRouter(t, newFakeOrders()).ServeHTTP(rec, r)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "req-42", rec.Header().Get("X-Request-ID"))
	assert.Contains(t, rec.Body.String(), `"service":"kdcpay-gateway"`)
}

func TestRouter_Metrics(t *testing.T) {
	router := newTestRouter(t, newFakeOrders())
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "kdcpay_requests_total")
}

func TestNewFallback(t *testing.T) {
	h, err := NewFallback("")
	require.NoError(t, err)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("site:" + r.URL.Path))
	}))
	defer upstream.Close()

	h, err = NewFallback(upstream.URL)
	require.NoError(t, err)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tickets/", nil))
	assert.Equal(t, "site:/tickets/", rec.Body.String())

	_, err = NewFallback("not a url")
	assert.Error(t, err)
}
