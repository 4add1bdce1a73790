package webhook

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/example/kdcpay-gateway/internal/kdcpay"
)

// ActionFunc handles one tix_action. Returning false hands the request to the
// fallback untouched.
type ActionFunc func(w http.ResponseWriter, r *http.Request, in *kdcpay.Payload) bool

// Dispatcher is the single entry point for callback URLs. Requests for other
// payment methods or actions go to the fallback.
type Dispatcher struct {
	routes   map[string]ActionFunc
	fallback http.Handler
	log      logrus.FieldLogger
}

func NewDispatcher(h *Handlers, fallback http.Handler, log logrus.FieldLogger) *Dispatcher {
	if fallback == nil {
		fallback = http.NotFoundHandler()
	}
	return &Dispatcher{
		routes: map[string]ActionFunc{
			kdcpay.ActionCancel: h.Cancel,
			kdcpay.ActionReturn: h.Return,
			// Notify is the server-to-server copy of the return redirect.
			kdcpay.ActionNotify: h.Return,
		},
		fallback: fallback,
		log:      log,
	}
}

func (d *Dispatcher) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	in, err := ReadPayload(r)
	if err != nil {
		d.log.WithError(err).WithField("path", r.URL.Path).Warn("unreadable callback payload")
		d.fallback.ServeHTTP(w, r)
		return
	}
	if in.Get(paramPaymentMethod) != kdcpay.MethodID {
		d.fallback.ServeHTTP(w, r)
		return
	}
	route, ok := d.routes[r.URL.Query().Get(paramAction)]
	if !ok || !route(w, r, in) {
		d.fallback.ServeHTTP(w, r)
	}
}
