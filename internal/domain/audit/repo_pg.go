package audit

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carelink/carelink/internal/platform/db"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) db.Queryable {
	return db.FromContext(ctx, r.pool)
}

const cols = `id, actor_id, action, entity_type, entity_id, description, recorded_at`

func (r *repoPG) Create(ctx context.Context, e *Entry) error {
	e.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO audit_log (id, actor_id, action, entity_type, entity_id, description)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		e.ID, e.ActorID, e.Action, e.EntityType, e.EntityID, e.Description)
	return err
}

func collect(rows pgx.Rows) ([]*Entry, error) {
	defer rows.Close()
	var items []*Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.ActorID, &e.Action, &e.EntityType, &e.EntityID, &e.Description, &e.RecordedAt); err != nil {
			return nil, err
		}
		items = append(items, &e)
	}
	return items, rows.Err()
}

func (r *repoPG) ListByEntity(ctx context.Context, entityID uuid.UUID, limit, offset int) ([]*Entry, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM audit_log WHERE entity_id = $1`, entityID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+cols+` FROM audit_log WHERE entity_id = $1 ORDER BY recorded_at DESC LIMIT $2 OFFSET $3`,
		entityID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	items, err := collect(rows)
	return items, total, err
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Entry, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM audit_log`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+cols+` FROM audit_log ORDER BY recorded_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	items, err := collect(rows)
	return items, total, err
}
