package certification

import (
	"context"

	"github.com/google/uuid"
)

// Repository is append-only: certifications are never updated or deleted.
type Repository interface {
	Append(ctx context.Context, c *Certification) error
	GetByID(ctx context.Context, id uuid.UUID) (*Certification, error)
	// ListByVisit returns the visit's certifications newest first.
	ListByVisit(ctx context.Context, visitID uuid.UUID) ([]*Certification, error)
}
