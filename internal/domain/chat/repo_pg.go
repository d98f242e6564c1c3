package chat

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carelink/carelink/internal/platform/db"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) db.Queryable {
	return db.FromContext(ctx, r.pool)
}

func (r *repoPG) Create(ctx context.Context, m *Message) error {
	m.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO chat_message (id, patient_id, doctor_id, sender_role, body)
		VALUES ($1,$2,$3,$4,$5)`,
		m.ID, m.PatientID, m.DoctorID, m.SenderRole, m.Body)
	return err
}

func (r *repoPG) ListByPair(ctx context.Context, patientID, doctorID uuid.UUID, limit, offset int) ([]*Message, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM chat_message WHERE patient_id = $1 AND doctor_id = $2`,
		patientID, doctorID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, patient_id, doctor_id, sender_role, body, created_at
		FROM chat_message
		WHERE patient_id = $1 AND doctor_id = $2
		ORDER BY created_at DESC LIMIT $3 OFFSET $4`,
		patientID, doctorID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.PatientID, &m.DoctorID, &m.SenderRole, &m.Body, &m.CreatedAt); err != nil {
			return nil, 0, err
		}
		items = append(items, &m)
	}
	return items, total, rows.Err()
}
