package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CheckinEvent is one row of the check-in audit log.
type CheckinEvent struct {
	ID            string
	EventID       string
	EventType     string
	SessionHandle string
	CompanyID     *string
	ContactID     *string
	TicketID      *string
	Payload       map[string]any
	CreatedAt     time.Time
}

// CheckinRepository stores audit entries.
type CheckinRepository interface {
	Create(ctx context.Context, event *CheckinEvent) error
	ListByTicket(ctx context.Context, ticketID string) ([]CheckinEvent, error)
}

type checkinRepository struct {
	pool *pgxpool.Pool
}

// NewCheckinRepository builds repository.
func NewCheckinRepository(pool *pgxpool.Pool) CheckinRepository {
	return &checkinRepository{pool: pool}
}

func (r *checkinRepository) Create(ctx context.Context, event *CheckinEvent) error {
	const query = `
        INSERT INTO checkin_events (event_id, event_type, session_handle, company_id, contact_id, ticket_id, payload)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        ON CONFLICT (event_id) DO NOTHING
        RETURNING id::text, created_at`
	err := r.pool.QueryRow(ctx, query,
		event.EventID,
		event.EventType,
		event.SessionHandle,
		event.CompanyID,
		event.ContactID,
		event.TicketID,
		event.Payload,
	).Scan(&event.ID, &event.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		// duplicate event id, already recorded
		return nil
	}
	return err
}

func (r *checkinRepository) ListByTicket(ctx context.Context, ticketID string) ([]CheckinEvent, error) {
	const query = `
        SELECT id::text, event_id, event_type, session_handle, company_id, contact_id, ticket_id, payload, created_at
        FROM checkin_events WHERE ticket_id=$1 ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []CheckinEvent
	for rows.Next() {
		var event CheckinEvent
		if err := rows.Scan(
			&event.ID,
			&event.EventID,
			&event.EventType,
			&event.SessionHandle,
			&event.CompanyID,
			&event.ContactID,
			&event.TicketID,
			&event.Payload,
			&event.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, event)
	}
	return result, rows.Err()
}
