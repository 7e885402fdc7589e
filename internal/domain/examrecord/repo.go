package examrecord

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, e *ExamRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*ExamRecord, error)
	// Update persists the record only when the stored version still matches
	// e.VersionID, incrementing it on success. A stale version is a conflict.
	Update(ctx context.Context, e *ExamRecord) error
	ListByVisit(ctx context.Context, visitID uuid.UUID) ([]*ExamRecord, error)
	DeleteByVisit(ctx context.Context, visitID uuid.UUID) error
}
