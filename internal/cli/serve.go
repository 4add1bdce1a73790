package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/example/kdcpay-gateway/internal/config"
	"github.com/example/kdcpay-gateway/internal/grpcserver"
	"github.com/example/kdcpay-gateway/internal/kdcpay"
	"github.com/example/kdcpay-gateway/internal/logging"
	"github.com/example/kdcpay-gateway/internal/queue"
	"github.com/example/kdcpay-gateway/internal/tickets"
	"github.com/example/kdcpay-gateway/internal/webhook"
)

func newServeCmd(configFile *string) *cobra.Command {
	var seeds []string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve checkout forms and gateway callbacks",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configFile)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			log := logging.New(cfg.LogLevel, cfg.LogFormat)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			store, closeStore, err := openStore(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer closeStore()
			if err := seed(ctx, store, seeds); err != nil {
				return err
			}

			var orders tickets.Store = store
			if len(cfg.Kafka.Brokers) > 0 {
				bus := queue.New(cfg.Kafka.Brokers, cfg.Kafka.Topic)
				defer bus.Close()
				orders = queue.NewPublishingStore(store, bus, log)
				log.WithField("topic", cfg.Kafka.Topic).Info("publishing payment outcomes")
			}

			handler, err := newHandler(cfg, orders, log)
			if err != nil {
				return err
			}
			return run(ctx, cfg, handler, log)
		},
	}
	cmd.Flags().StringSliceVar(&seeds, "seed", nil, "register a development order as token:amount:currency")
	return cmd
}

// newHandler wires the public HTTP surface over orders.
func newHandler(cfg *config.Config, orders webhook.Orders, log logrus.FieldLogger) (http.Handler, error) {
	fallback, err := webhook.NewFallback(cfg.FallbackURL)
	if err != nil {
		return nil, err
	}
	handlers := &webhook.Handlers{
		Orders:     orders,
		Secret:     cfg.Merchant.Key,
		TicketsURL: cfg.Event.TicketsURL,
		Log:        log,
	}
	builder := &kdcpay.Builder{
		Credentials: cfg.Credentials(),
		EventName:   cfg.Event.Name,
		TicketsURL:  cfg.Event.TicketsURL,
		Currency:    cfg.Event.Currency,
	}
	return webhook.NewRouter(webhook.RouterConfig{
		CallbackPath:   cfg.CallbackPath,
		Dispatcher:     webhook.NewDispatcher(handlers, fallback, log),
		Checkout:       &webhook.CheckoutHandler{Orders: orders, Builder: builder, Log: log},
		AllowedOrigins: cfg.AllowedOrigins,
	}), nil
}

func openStore(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (tickets.Store, func(), error) {
	if cfg.DatabaseURL == "" {
		log.Warn("no database_url, attendees are kept in memory")
		return tickets.NewMemoryStore(cfg.Event.TicketsURL), func() {}, nil
	}

	policy := backoff.WithContext(backoff.NewExponentialBackOff(backoff.WithMaxElapsedTime(30*time.Second)), ctx)
	var pg *tickets.PostgresStore
	err := backoff.RetryNotify(func() error {
		var err error
		pg, err = tickets.OpenPostgres(ctx, cfg.DatabaseURL, cfg.Event.TicketsURL)
		return err
	}, policy, func(err error, wait time.Duration) {
		log.WithError(err).WithField("retry_in", wait.String()).Warn("database not ready")
	})
	if err != nil {
		return nil, nil, fmt.Errorf("connect database: %w", err)
	}
	if err := pg.EnsureSchema(ctx); err != nil {
		pg.Close()
		return nil, nil, fmt.Errorf("ensure schema: %w", err)
	}
	return pg, pg.Close, nil
}

// seed registers development orders given as token:amount:currency.
func seed(ctx context.Context, store tickets.Store, entries []string) error {
	for _, entry := range entries {
		a, err := parseSeed(entry)
		if err != nil {
			return err
		}
		if _, err := store.Save(ctx, a); err != nil {
			return fmt.Errorf("seed %s: %w", entry, err)
		}
	}
	return nil
}

func parseSeed(entry string) (tickets.Attendee, error) {
	parts := strings.Split(entry, ":")
	if len(parts) != 3 || parts[0] == "" {
		return tickets.Attendee{}, fmt.Errorf("seed %q: want token:amount:currency", entry)
	}
	price, err := decimal.NewFromString(parts[1])
	if err != nil {
		return tickets.Attendee{}, fmt.Errorf("seed %q: amount: %w", entry, err)
	}
	return tickets.Attendee{
		PaymentToken: parts[0],
		Price:        price,
		Currency:     strings.ToUpper(parts[2]),
	}, nil
}

func run(ctx context.Context, cfg *config.Config, handler http.Handler, log logrus.FieldLogger) error {
	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	errs := make(chan error, 2)

	var health *grpcserver.Server
	if cfg.GRPCAddr != "" {
		lis, err := net.Listen("tcp", cfg.GRPCAddr)
		if err != nil {
			return fmt.Errorf("listen grpc: %w", err)
		}
		health = grpcserver.New()
		go func() { errs <- health.Serve(lis) }()
		health.SetServing(true)
		log.WithField("addr", cfg.GRPCAddr).Info("grpc health listening")
	}

	go func() {
		log.WithField("addr", cfg.HTTPAddr).Info("kdcpay-gateway listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		log.Info("shutting down server")
	case runErr = <-errs:
		log.WithError(runErr).Error("server stopped")
	}

	if health != nil {
		health.Stop()
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("http server shutdown")
	}
	return runErr
}
