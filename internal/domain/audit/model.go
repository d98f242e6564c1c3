package audit

import (
	"time"

	"github.com/google/uuid"
)

// Entry is one immutable line in the audit trail.
type Entry struct {
	ID          uuid.UUID `db:"id" json:"id"`
	ActorID     uuid.UUID `db:"actor_id" json:"actor_id"`
	Action      string    `db:"action" json:"action"`
	EntityType  string    `db:"entity_type" json:"entity_type"`
	EntityID    uuid.UUID `db:"entity_id" json:"entity_id"`
	Description string    `db:"description" json:"description"`
	RecordedAt  time.Time `db:"recorded_at" json:"recorded_at"`
}
