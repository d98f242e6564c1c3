package cancellation

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carelink/carelink/internal/platform/apperr"
	"github.com/carelink/carelink/internal/platform/db"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) db.Queryable {
	return db.FromContext(ctx, r.pool)
}

const cols = `id, appointment_id, requested_by, reason, status, refund_amount, reviewed_by, reviewed_at, review_note, created_at, updated_at`

func scan(row pgx.Row) (*Request, error) {
	var req Request
	err := row.Scan(&req.ID, &req.AppointmentID, &req.RequestedBy, &req.Reason, &req.Status,
		&req.RefundAmount, &req.ReviewedBy, &req.ReviewedAt, &req.ReviewNote, &req.CreatedAt, &req.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("cancellation request: %w", apperr.ErrNotFound)
	}
	return &req, err
}

// A partial unique index on (appointment_id) WHERE status = 'PENDING'
// makes the one-pending-per-appointment rule atomic at insert time.
func (r *repoPG) Create(ctx context.Context, req *Request) error {
	req.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO cancellation_request (id, appointment_id, requested_by, reason, status)
		VALUES ($1,$2,$3,$4,$5)`,
		req.ID, req.AppointmentID, req.RequestedBy, req.Reason, req.Status)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("appointment %s already has a pending cancellation: %w",
			req.AppointmentID, apperr.ErrConflict)
	}
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Request, error) {
	return scan(r.conn(ctx).QueryRow(ctx, `SELECT `+cols+` FROM cancellation_request WHERE id = $1`, id))
}

// Resolve guards the transition with a status predicate so only one of
// two racing reviewers wins.
func (r *repoPG) Resolve(ctx context.Context, req *Request) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE cancellation_request
		SET status = $2, refund_amount = $3, reviewed_by = $4, reviewed_at = $5,
		    review_note = $6, updated_at = NOW()
		WHERE id = $1 AND status = 'PENDING'`,
		req.ID, req.Status, req.RefundAmount, req.ReviewedBy, req.ReviewedAt, req.ReviewNote)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("cancellation request %s: %w", req.ID, apperr.ErrAlreadyResolved)
	}
	return nil
}

func (r *repoPG) ListByStatus(ctx context.Context, status Status, limit, offset int) ([]*Request, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM cancellation_request WHERE status = $1`, status).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+cols+` FROM cancellation_request WHERE status = $1 ORDER BY created_at ASC LIMIT $2 OFFSET $3`,
		status, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Request
	for rows.Next() {
		req, err := scan(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, req)
	}
	return items, total, rows.Err()
}

func (r *repoPG) ListByAppointment(ctx context.Context, appointmentID uuid.UUID) ([]*Request, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+cols+` FROM cancellation_request WHERE appointment_id = $1 ORDER BY created_at DESC`,
		appointmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Request
	for rows.Next() {
		req, err := scan(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, req)
	}
	return items, rows.Err()
}
