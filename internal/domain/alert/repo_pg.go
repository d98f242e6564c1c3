package alert

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

const cols = `id, patient_id, doctor_id, type, severity, status, title, message, expires_at, acknowledged_at, acknowledged_by, created_at, updated_at`

func scan(row pgx.Row) (*Alert, error) {
	var a Alert
	err := row.Scan(&a.ID, &a.PatientID, &a.DoctorID, &a.Type, &a.Severity, &a.Status,
		&a.Title, &a.Message, &a.ExpiresAt, &a.AcknowledgedAt, &a.AcknowledgedBy, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("alert: %w", apperr.ErrNotFound)
	}
	return &a, err
}

func (r *repoPG) Create(ctx context.Context, a *Alert) error {
	a.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO alert (id, patient_id, doctor_id, type, severity, status, title, message, expires_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		a.ID, a.PatientID, a.DoctorID, a.Type, a.Severity, a.Status, a.Title, a.Message, a.ExpiresAt)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Alert, error) {
	return scan(r.conn(ctx).QueryRow(ctx, `SELECT `+cols+` FROM alert WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, a *Alert) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE alert
		SET severity = $2, status = $3, expires_at = $4,
		    acknowledged_at = $5, acknowledged_by = $6, updated_at = NOW()
		WHERE id = $1`,
		a.ID, a.Severity, a.Status, a.ExpiresAt, a.AcknowledgedAt, a.AcknowledgedBy)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("alert %s: %w", a.ID, apperr.ErrNotFound)
	}
	return nil
}

func (r *repoPG) FindActiveByPatientAndType(ctx context.Context, patientID uuid.UUID, typ Type, now time.Time) (*Alert, error) {
	a, err := scan(r.conn(ctx).QueryRow(ctx, `
		SELECT `+cols+` FROM alert
		WHERE patient_id = $1 AND type = $2 AND status = 'ACTIVE'
		  AND (expires_at IS NULL OR expires_at > $3)
		ORDER BY created_at DESC LIMIT 1`, patientID, typ, now))
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, nil
	}
	return a, err
}

func (r *repoPG) list(ctx context.Context, where string, arg uuid.UUID, limit, offset int) ([]*Alert, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM alert WHERE `+where, arg).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+cols+` FROM alert WHERE `+where+` ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		arg, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Alert
	for rows.Next() {
		a, err := scan(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, a)
	}
	return items, total, rows.Err()
}

func (r *repoPG) ListByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*Alert, int, error) {
	return r.list(ctx, `doctor_id = $1`, doctorID, limit, offset)
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Alert, int, error) {
	return r.list(ctx, `patient_id = $1`, patientID, limit, offset)
}

func (r *repoPG) ActiveCriticalExists(ctx context.Context, patientID, doctorID uuid.UUID, now time.Time) (bool, error) {
	types := make([]string, len(ChatUnlockTypes))
	for i, t := range ChatUnlockTypes {
		types[i] = string(t)
	}
	var exists bool
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM alert
			WHERE patient_id = $1 AND doctor_id = $2
			  AND type = ANY($4)
			  AND severity = 'CRITICAL' AND status = 'ACTIVE'
			  AND (expires_at IS NULL OR expires_at > $3)
		)`, patientID, doctorID, now, types).Scan(&exists)
	return exists, err
}

func (r *repoPG) MarkExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE alert SET status = 'EXPIRED', updated_at = NOW()
		WHERE status = 'ACTIVE' AND expires_at IS NOT NULL AND expires_at <= $1`, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
