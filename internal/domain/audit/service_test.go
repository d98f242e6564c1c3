package audit

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type mockRepo struct {
	entries []*Entry
	err     error
}

func (m *mockRepo) Create(_ context.Context, e *Entry) error {
	if m.err != nil {
		return m.err
	}
	e.ID = uuid.New()
	m.entries = append(m.entries, e)
	return nil
}

func (m *mockRepo) ListByEntity(_ context.Context, entityID uuid.UUID, limit, offset int) ([]*Entry, int, error) {
	var result []*Entry
	for _, e := range m.entries {
		if e.EntityID == entityID {
			result = append(result, e)
		}
	}
	return result, len(result), nil
}

func (m *mockRepo) List(_ context.Context, limit, offset int) ([]*Entry, int, error) {
	return m.entries, len(m.entries), nil
}

func TestRecord(t *testing.T) {
	repo := &mockRepo{}
	svc := NewService(repo, zerolog.Nop())

	entityID := uuid.New()
	svc.Record(context.Background(), uuid.New(), "cancellation.APPROVE", "cancellation_request", entityID, "approved")

	if len(repo.entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(repo.entries))
	}
	if repo.entries[0].EntityID != entityID {
		t.Error("entity id not recorded")
	}
}

func TestRecord_FailureIsSwallowed(t *testing.T) {
	repo := &mockRepo{err: errors.New("connection refused")}
	svc := NewService(repo, zerolog.Nop())

	// Must not panic or surface the error.
	svc.Record(context.Background(), uuid.New(), "cancellation.REJECT", "cancellation_request", uuid.New(), "rejected")
}
