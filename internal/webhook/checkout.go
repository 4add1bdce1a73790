package webhook

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/example/kdcpay-gateway/internal/kdcpay"
	perrors "github.com/example/kdcpay-gateway/pkg/errors"
	m "github.com/example/kdcpay-gateway/pkg/metrics"
)

// CheckoutHandler serves the auto-submitting gateway form for
// /checkout/{token}.
type CheckoutHandler struct {
	Orders  Orders
	Builder *kdcpay.Builder
	Log     logrus.FieldLogger
}

func (h *CheckoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	token := mux.Vars(r)["token"]
	log := h.Log.WithFields(logrus.Fields{
		"request_id":    r.Header.Get(requestIDHeader),
		"payment_token": token,
	})

	order, err := h.Orders.OrderSummary(r.Context(), token)
	if err != nil {
		if errors.Is(err, perrors.ErrOrderNotFound) {
			m.IncCheckout("not_found")
			http.Error(w, "order not found", http.StatusNotFound)
			return
		}
		log.WithError(err).Error("load order summary")
		m.IncCheckout("error")
		http.Error(w, "could not load order", http.StatusInternalServerError)
		return
	}

	req, err := h.Builder.Build(token, order, ClientIP(r))
	switch {
	case err == nil:
	case errors.Is(err, perrors.ErrUnsupportedCurrency):
		log.WithError(err).WithField("currency", order.Currency).Warn("checkout refused")
		m.IncCheckout("unsupported_currency")
		http.Error(w, perrors.ErrUnsupportedCurrency.Message, http.StatusBadRequest)
		return
	case errors.Is(err, perrors.ErrMissingToken):
		m.IncCheckout("rejected")
		http.Error(w, perrors.ErrMissingToken.Message, http.StatusBadRequest)
		return
	default:
		log.WithError(err).Error("build checkout")
		m.IncCheckout("error")
		http.Error(w, "payment method is not configured", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := req.Render(w); err != nil {
		log.WithError(err).Error("render checkout form")
		m.IncCheckout("error")
		return
	}
	log.WithFields(logrus.Fields{
		"order_id":   req.OrderID,
		"amount":     order.Total.StringFixed(2),
		"notify_url": req.NotifyURL,
	}).Info("checkout form served")
	m.IncCheckout("rendered")
}
