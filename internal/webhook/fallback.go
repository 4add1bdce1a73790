package webhook

import (
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
)

// NewFallback returns the handler for requests the dispatcher does not own:
// a reverse proxy to the ticketing site when upstream is set, 404 otherwise.
func NewFallback(upstream string) (http.Handler, error) {
	if upstream == "" {
		return http.NotFoundHandler(), nil
	}
	u, err := url.Parse(upstream)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid upstream url %q", upstream)
	}
	return httputil.NewSingleHostReverseProxy(u), nil
}
