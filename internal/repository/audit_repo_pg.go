package repository

import (
	"context"

	"github.com/Domenick1991/travelbook/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AuditRepository is the durable, append-only archive of booking events,
// written by the worker for back-office reporting. The in-memory store stays
// the state of record; nothing on the hot path reads from here.
type AuditRepository interface {
	Append(ctx context.Context, event domain.BookingEvent) error
	RecentByBooking(ctx context.Context, bookingID string, limit int) ([]domain.BookingEvent, error)
}

type PGAuditRepository struct {
	db *pgxpool.Pool
}

func NewAuditRepository(db *pgxpool.Pool) AuditRepository {
	return &PGAuditRepository{db: db}
}

func (r *PGAuditRepository) Append(ctx context.Context, event domain.BookingEvent) error {
	_, err := r.db.Exec(ctx, `INSERT INTO booking_audit_log (id, booking_id, event_type, status, payment_status, customer_email, amount, refund_required, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		uuid.NewString(), event.BookingID, event.Type, event.Status, event.PaymentStatus,
		event.CustomerEmail, event.Amount, event.RefundRequired, event.OccurredAt)
	return err
}

func (r *PGAuditRepository) RecentByBooking(ctx context.Context, bookingID string, limit int) ([]domain.BookingEvent, error) {
	rows, err := r.db.Query(ctx, `SELECT booking_id, event_type, status, payment_status, customer_email, amount, refund_required, occurred_at
		FROM booking_audit_log WHERE booking_id=$1 ORDER BY occurred_at DESC LIMIT $2`, bookingID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []domain.BookingEvent
	for rows.Next() {
		var e domain.BookingEvent
		if err := rows.Scan(&e.BookingID, &e.Type, &e.Status, &e.PaymentStatus, &e.CustomerEmail, &e.Amount, &e.RefundRequired, &e.OccurredAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

var _ AuditRepository = (*PGAuditRepository)(nil)
