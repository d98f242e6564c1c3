package audit

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, e *Entry) error
	ListByEntity(ctx context.Context, entityID uuid.UUID, limit, offset int) ([]*Entry, int, error)
	List(ctx context.Context, limit, offset int) ([]*Entry, int, error)
}
