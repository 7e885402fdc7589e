package jobrole

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, j *JobRole) error
	GetByID(ctx context.Context, id uuid.UUID) (*JobRole, error)
	GetByName(ctx context.Context, name string) (*JobRole, error)
	Update(ctx context.Context, j *JobRole) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*JobRole, int, error)
}
