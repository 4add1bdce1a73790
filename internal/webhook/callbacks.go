package webhook

import (
	"errors"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/example/kdcpay-gateway/internal/kdcpay"
	perrors "github.com/example/kdcpay-gateway/pkg/errors"
	m "github.com/example/kdcpay-gateway/pkg/metrics"
)

const anchor = "#tix"

// Handlers reacts to gateway callbacks for one merchant.
type Handlers struct {
	Orders     Orders
	Secret     string
	TicketsURL string
	Log        logrus.FieldLogger
}

// Cancel records a cancelled checkout. The gateway does not sign the cancel
// link, so no checksum is checked.
func (h *Handlers) Cancel(w http.ResponseWriter, r *http.Request, in *kdcpay.Payload) bool {
	log := h.entry(r, in, kdcpay.ActionCancel)

	token := strings.TrimSpace(in.Get(paramPaymentToken))
	if token == "" {
		log.WithError(perrors.ErrMissingToken).Warn("cancel without payment token")
		m.IncCallback(kdcpay.ActionCancel, "rejected")
		http.Error(w, perrors.ErrMissingToken.Message, http.StatusBadRequest)
		return true
	}

	if err := h.Orders.SetPaymentOutcome(r.Context(), token, kdcpay.OutcomeCancelled); err != nil {
		if errors.Is(err, perrors.ErrOrderNotFound) {
			log.WithError(err).Warn("cancel for unknown payment token")
			m.IncCallback(kdcpay.ActionCancel, "passthrough")
			return false
		}
		log.WithError(err).Error("record cancelled payment")
		http.Error(w, "could not record payment outcome", http.StatusInternalServerError)
		return true
	}

	log.Info("payment cancelled")
	m.IncCallback(kdcpay.ActionCancel, kdcpay.OutcomeCancelled.String())
	http.Redirect(w, r, h.TicketsURL+anchor, http.StatusFound)
	return true
}

// Return handles both the browser return and the notify call. The outcome is
// written before the redirect is sent.
func (h *Handlers) Return(w http.ResponseWriter, r *http.Request, in *kdcpay.Payload) bool {
	action := r.URL.Query().Get(paramAction)
	log := h.entry(r, in, action)
	ctx := r.Context()

	token := strings.TrimSpace(in.Get(paramPaymentToken))
	if token == "" {
		log.WithError(perrors.ErrMissingToken).Warn("callback without payment token")
		m.IncCallback(action, "passthrough")
		return false
	}

	attendee, err := h.Orders.FindAttendeeByPaymentToken(ctx, token)
	if err != nil {
		if errors.Is(err, perrors.ErrOrderNotFound) {
			log.WithError(err).Warn("callback for unknown payment token")
			m.IncCallback(action, "passthrough")
			return false
		}
		log.WithError(err).Error("look up attendee")
		http.Error(w, "could not load order", http.StatusInternalServerError)
		return true
	}
	accessURL, err := h.Orders.AccessURL(ctx, attendee)
	if err != nil {
		log.WithError(err).Error("build access url")
		http.Error(w, "could not load order", http.StatusInternalServerError)
		return true
	}

	v := kdcpay.Evaluate(in, h.Secret)
	logVerdict(log, in, v, action)

	if v.Outcome != kdcpay.OutcomeUnknown {
		if err := h.Orders.SetPaymentOutcome(ctx, token, v.Outcome); err != nil {
			log.WithError(err).WithField("outcome", v.Outcome.String()).Error("record payment outcome")
			http.Error(w, "could not record payment outcome", http.StatusInternalServerError)
			return true
		}
	}

	m.IncCallback(action, v.Outcome.String())
	http.Redirect(w, r, accessURL+anchor, http.StatusFound)
	return true
}

func logVerdict(log logrus.FieldLogger, in *kdcpay.Payload, v kdcpay.Verdict, action string) {
	fields := logrus.Fields{
		"status":   v.Status,
		"track_id": v.TrackID,
		"pg_id":    v.PGID,
		"bank_id":  v.BankID,
		"paid_by":  v.PaidBy,
	}
	if v.Err != nil {
		fields["error_code"] = perrors.CodeOf(v.Err)
	}
	switch {
	case !v.ChecksumValid:
		m.IncChecksumMismatch(action)
		log.WithFields(fields).WithField("payload", in.Map()).WithError(v.Err).Warn("checksum failed")
	case v.Outcome == kdcpay.OutcomeUnknown:
		log.WithFields(fields).WithError(v.Err).Warn("unrecognized gateway status, order left unchanged")
	case v.Outcome == kdcpay.OutcomeCompleted:
		log.WithFields(fields).Info("payment succeeded")
	case v.Outcome == kdcpay.OutcomePending:
		log.WithFields(fields).Info("payment pending")
	case v.Outcome == kdcpay.OutcomeFailed:
		fields["response_code"] = v.ResponseCode
		fields["response_description"] = v.ResponseDescription
		log.WithFields(fields).Warn("payment failed")
	}
}

// entry logs the inbound request and returns a logger carrying its identity.
func (h *Handlers) entry(r *http.Request, in *kdcpay.Payload, action string) logrus.FieldLogger {
	log := h.Log.WithFields(logrus.Fields{
		"request_id":    r.Header.Get(requestIDHeader),
		"action":        action,
		"payment_token": in.Get(paramPaymentToken),
	})
	log.WithFields(logrus.Fields{
		"method":      r.Method,
		"remote_addr": r.RemoteAddr,
		"user_agent":  r.UserAgent(),
		"request":     in.Map(),
	}).Debug("callback received")
	return log
}
