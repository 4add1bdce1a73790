package tickets

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/example/kdcpay-gateway/internal/kdcpay"
	perrors "github.com/example/kdcpay-gateway/pkg/errors"
)

// PostgresStore keeps attendees in the kdcpay_attendees table.
type PostgresStore struct {
	pool       *pgxpool.Pool
	ticketsURL string
}

// OpenPostgres connects and pings. The caller owns Close.
func OpenPostgres(ctx context.Context, dsn, ticketsURL string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	cfg.MaxConnIdleTime = 5 * time.Minute
	cfg.MaxConnLifetime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, err
	}
	return &PostgresStore{pool: pool, ticketsURL: ticketsURL}, nil
}

func (s *PostgresStore) Close() { s.pool.Close() }

func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS kdcpay_attendees (
			id TEXT PRIMARY KEY,
			payment_token TEXT NOT NULL,
			access_token TEXT NOT NULL,
			price NUMERIC(18,2) NOT NULL DEFAULT 0,
			currency TEXT NOT NULL,
			outcome TEXT NOT NULL DEFAULT 'unknown',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_kdcpay_attendees_token ON kdcpay_attendees (payment_token, created_at, id)`,
	}
	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *PostgresStore) Save(ctx context.Context, a Attendee) (Attendee, error) {
	if a.PaymentToken == "" {
		return Attendee{}, perrors.ErrMissingToken
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.AccessToken == "" {
		a.AccessToken = uuid.NewString()
	}
	const q = `INSERT INTO kdcpay_attendees (id, payment_token, access_token, price, currency, outcome)
		VALUES ($1, $2, $3, $4::numeric, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			payment_token = EXCLUDED.payment_token,
			access_token = EXCLUDED.access_token,
			price = EXCLUDED.price,
			currency = EXCLUDED.currency,
			outcome = EXCLUDED.outcome,
			updated_at = now()
		RETURNING updated_at`
	err := s.pool.QueryRow(ctx, q,
		a.ID, a.PaymentToken, a.AccessToken, a.Price.StringFixed(2), a.Currency, a.Outcome.String(),
	).Scan(&a.UpdatedAt)
	if err != nil {
		return Attendee{}, err
	}
	return a, nil
}

func (s *PostgresStore) FindAttendeeByPaymentToken(ctx context.Context, token string) (Attendee, error) {
	list, err := s.attendees(ctx, token, 1)
	if err != nil {
		return Attendee{}, err
	}
	return list[0], nil
}

func (s *PostgresStore) OrderSummary(ctx context.Context, token string) (kdcpay.OrderSummary, error) {
	list, err := s.attendees(ctx, token, 0)
	if err != nil {
		return kdcpay.OrderSummary{}, err
	}
	return summarize(list), nil
}

func (s *PostgresStore) AccessURL(_ context.Context, a Attendee) (string, error) {
	return kdcpay.AccessURL(s.ticketsURL, a.AccessToken), nil
}

// SetPaymentOutcome only touches rows not already in outcome, so a repeated
// callback is a no-op.
func (s *PostgresStore) SetPaymentOutcome(ctx context.Context, token string, outcome kdcpay.Outcome) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE kdcpay_attendees SET outcome = $2, updated_at = now()
		WHERE payment_token = $1 AND outcome IS DISTINCT FROM $2`,
		token, outcome.String())
	if err != nil {
		return err
	}
	if tag.RowsAffected() > 0 {
		return nil
	}
	var exists bool
	if err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM kdcpay_attendees WHERE payment_token = $1)`, token,
	).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return notFound(token)
	}
	return nil
}

// attendees lists the attendees of token oldest first; limit 0 means all.
func (s *PostgresStore) attendees(ctx context.Context, token string, limit int) ([]Attendee, error) {
	q := `SELECT id, payment_token, access_token, price::text, currency, outcome, updated_at
		FROM kdcpay_attendees WHERE payment_token = $1 ORDER BY created_at, id`
	args := []any{token}
	if limit > 0 {
		q += ` LIMIT $2`
		args = append(args, limit)
	}
	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	list, err := pgx.CollectRows(rows, scanAttendee)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, notFound(token)
	}
	return list, nil
}

func scanAttendee(row pgx.CollectableRow) (Attendee, error) {
	var (
		a       Attendee
		price   string
		outcome string
	)
	if err := row.Scan(&a.ID, &a.PaymentToken, &a.AccessToken, &price, &a.Currency, &outcome, &a.UpdatedAt); err != nil {
		return Attendee{}, err
	}
	p, err := decimal.NewFromString(price)
	if err != nil {
		return Attendee{}, fmt.Errorf("attendee %s price %q: %w", a.ID, price, err)
	}
	a.Price = p
	o, ok := kdcpay.ParseOutcome(outcome)
	if !ok {
		return Attendee{}, errors.New("attendee " + a.ID + " has unknown outcome " + outcome)
	}
	a.Outcome = o
	return a, nil
}
