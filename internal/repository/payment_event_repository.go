package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ontimely/admin-portal/internal/domain"
)

// PaymentEventRepository stores payment provider webhook deliveries.
type PaymentEventRepository interface {
	// Insert stores the event and reports false when the provider event id was already recorded.
	Insert(ctx context.Context, event *domain.PaymentEvent) (bool, error)
}

type paymentEventRepository struct {
	pool *pgxpool.Pool
}

// NewPaymentEventRepository constructs repository.
func NewPaymentEventRepository(pool *pgxpool.Pool) PaymentEventRepository {
	return &paymentEventRepository{pool: pool}
}

func (r *paymentEventRepository) Insert(ctx context.Context, event *domain.PaymentEvent) (bool, error) {
	const query = `
        INSERT INTO payment_events (provider_event_id, event_type, customer_email, amount_cents, currency, payload)
        VALUES ($1,$2,$3,$4,$5,$6)
        ON CONFLICT (provider_event_id) DO NOTHING
        RETURNING id, received_at`
	err := r.pool.QueryRow(ctx, query,
		event.ProviderEventID,
		event.EventType,
		event.CustomerEmail,
		event.AmountCents,
		event.Currency,
		event.Payload,
	).Scan(&event.ID, &event.ReceivedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
