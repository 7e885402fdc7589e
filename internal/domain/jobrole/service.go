package jobrole

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/occfit/occfit/internal/platform/errs"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func validateLimits(limits []Limit) error {
	seen := make(map[string]bool, len(limits))
	for _, l := range limits {
		if !KnownParams[l.Param] {
			return errs.Validationf("unknown limit parameter %q", l.Param)
		}
		if seen[l.Param] {
			return errs.Validationf("duplicate limit parameter %q", l.Param)
		}
		seen[l.Param] = true
		if l.Max <= 0 {
			return errs.Validationf("limit %q: max must be positive", l.Param)
		}
		if l.RemediationMargin < 0 {
			return errs.Validationf("limit %q: remediation margin must not be negative", l.Param)
		}
	}
	return nil
}

func (s *Service) Create(ctx context.Context, j *JobRole) error {
	if j.Name == "" {
		return errs.Validationf("name is required")
	}
	if err := validateLimits(j.Limits); err != nil {
		return err
	}
	return s.repo.Create(ctx, j)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*JobRole, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByName(ctx context.Context, name string) (*JobRole, error) {
	return s.repo.GetByName(ctx, name)
}

func (s *Service) Update(ctx context.Context, j *JobRole) error {
	if j.Name == "" {
		return errs.Validationf("name is required")
	}
	if err := validateLimits(j.Limits); err != nil {
		return err
	}
	return s.repo.Update(ctx, j)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*JobRole, int, error) {
	return s.repo.List(ctx, limit, offset)
}

// Loader hands out immutable snapshots of job-role reference data for
// adjudication. Snapshots are cached until the embedding application calls
// Invalidate; the adjudicator itself never reloads.
type Loader struct {
	repo Repository

	mu    sync.RWMutex
	cache map[uuid.UUID]Snapshot
}

func NewLoader(repo Repository) *Loader {
	return &Loader{repo: repo, cache: make(map[uuid.UUID]Snapshot)}
}

// Snapshot returns the cached snapshot for the role, loading it on first use.
func (l *Loader) Snapshot(ctx context.Context, roleID uuid.UUID) (Snapshot, error) {
	l.mu.RLock()
	snap, ok := l.cache[roleID]
	l.mu.RUnlock()
	if ok {
		return snap, nil
	}

	j, err := l.repo.GetByID(ctx, roleID)
	if err != nil {
		return Snapshot{}, err
	}
	snap = j.Snapshot()

	l.mu.Lock()
	l.cache[roleID] = snap
	l.mu.Unlock()
	return snap, nil
}

// Invalidate discards the cached snapshot for one role.
func (l *Loader) Invalidate(roleID uuid.UUID) {
	l.mu.Lock()
	delete(l.cache, roleID)
	l.mu.Unlock()
}

// InvalidateAll discards every cached snapshot.
func (l *Loader) InvalidateAll() {
	l.mu.Lock()
	l.cache = make(map[uuid.UUID]Snapshot)
	l.mu.Unlock()
}
