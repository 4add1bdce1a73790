package webhook

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
)

type RouterConfig struct {
	CallbackPath   string
	Dispatcher     http.Handler
	Checkout       http.Handler
	AllowedOrigins []string
}

func NewRouter(c RouterConfig) http.Handler {
	r := mux.NewRouter()
	r.Use(requestIDMiddleware, metricsMiddleware)

	// metrics & health
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"ok":      true,
			"service": serviceName,
			"ts":      time.Now().UTC(),
		})
	}).Methods(http.MethodGet)

	r.Handle("/checkout/{token}", c.Checkout).Methods(http.MethodGet)
	r.Handle(c.CallbackPath, c.Dispatcher).Methods(http.MethodGet, http.MethodPost)

	if len(c.AllowedOrigins) == 0 {
		return cors.AllowAll().Handler(r)
	}
	return cors.New(cors.Options{
		AllowedOrigins: c.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
	}).Handler(r)
}
