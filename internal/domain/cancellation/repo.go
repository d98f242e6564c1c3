package cancellation

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	// Create inserts a PENDING request. A second PENDING request for
	// the same appointment fails with apperr.ErrConflict.
	Create(ctx context.Context, r *Request) error
	GetByID(ctx context.Context, id uuid.UUID) (*Request, error)
	// Resolve moves a PENDING request to its final state. It fails
	// with apperr.ErrAlreadyResolved when the request is no longer
	// PENDING, deciding the race between concurrent reviewers.
	Resolve(ctx context.Context, r *Request) error
	ListByStatus(ctx context.Context, status Status, limit, offset int) ([]*Request, int, error)
	ListByAppointment(ctx context.Context, appointmentID uuid.UUID) ([]*Request, error)
}
