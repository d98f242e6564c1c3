package appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carelink/carelink/internal/platform/apperr"
	"github.com/carelink/carelink/internal/platform/db"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) db.Queryable {
	return db.FromContext(ctx, r.pool)
}

const cols = `id, patient_id, doctor_id, status, appointment_date, payment_status, fee, reason, created_at, updated_at`

func scan(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(&a.ID, &a.PatientID, &a.DoctorID, &a.Status, &a.AppointmentDate,
		&a.PaymentStatus, &a.Fee, &a.Reason, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("appointment: %w", apperr.ErrNotFound)
	}
	return &a, err
}

func (r *repoPG) Create(ctx context.Context, a *Appointment) error {
	a.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO appointment (id, patient_id, doctor_id, status, appointment_date, payment_status, fee, reason)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		a.ID, a.PatientID, a.DoctorID, a.Status, a.AppointmentDate, a.PaymentStatus, a.Fee, a.Reason)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return scan(r.conn(ctx).QueryRow(ctx, `SELECT `+cols+` FROM appointment WHERE id = $1`, id))
}

func (r *repoPG) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error {
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE appointment SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("appointment %s: %w", id, apperr.ErrNotFound)
	}
	return nil
}

func (r *repoPG) list(ctx context.Context, where string, arg uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM appointment WHERE `+where, arg).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+cols+` FROM appointment WHERE `+where+` ORDER BY appointment_date DESC LIMIT $2 OFFSET $3`,
		arg, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Appointment
	for rows.Next() {
		a, err := scan(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, a)
	}
	return items, total, rows.Err()
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return r.list(ctx, `patient_id = $1`, patientID, limit, offset)
}

func (r *repoPG) ListByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return r.list(ctx, `doctor_id = $1`, doctorID, limit, offset)
}

func (r *repoPG) PairHasStatus(ctx context.Context, patientID, doctorID uuid.UUID, statuses []Status) (bool, error) {
	vals := make([]string, len(statuses))
	for i, s := range statuses {
		vals[i] = string(s)
	}
	var exists bool
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM appointment
			WHERE patient_id = $1 AND doctor_id = $2 AND status = ANY($3)
		)`, patientID, doctorID, vals).Scan(&exists)
	return exists, err
}

func (r *repoPG) PairHasUpcoming(ctx context.Context, patientID, doctorID uuid.UUID, now time.Time) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM appointment
			WHERE patient_id = $1 AND doctor_id = $2
			  AND appointment_date >= $3 AND status <> 'CANCELLED'
		)`, patientID, doctorID, now).Scan(&exists)
	return exists, err
}

func (r *repoPG) AssignedDoctor(ctx context.Context, patientID uuid.UUID) (*uuid.UUID, error) {
	var doctorID uuid.UUID
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT doctor_id FROM appointment
		WHERE patient_id = $1 AND status <> 'CANCELLED'
		ORDER BY appointment_date DESC LIMIT 1`, patientID).Scan(&doctorID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &doctorID, nil
}
