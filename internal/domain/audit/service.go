package audit

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type Service struct {
	repo Repository
	log  zerolog.Logger
}

func NewService(repo Repository, log zerolog.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// Record writes an audit entry. A failed write is logged and dropped
// so auditing never fails the operation it describes.
func (s *Service) Record(ctx context.Context, actorID uuid.UUID, action, entityType string, entityID uuid.UUID, description string) {
	e := &Entry{
		ActorID:     actorID,
		Action:      action,
		EntityType:  entityType,
		EntityID:    entityID,
		Description: description,
	}
	if err := s.repo.Create(ctx, e); err != nil {
		s.log.Error().Err(err).
			Str("action", action).
			Str("entity_id", entityID.String()).
			Msg("audit record dropped")
	}
}

func (s *Service) ListByEntity(ctx context.Context, entityID uuid.UUID, limit, offset int) ([]*Entry, int, error) {
	return s.repo.ListByEntity(ctx, entityID, limit, offset)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Entry, int, error) {
	return s.repo.List(ctx, limit, offset)
}
