package visit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/occfit/occfit/internal/domain/examrecord"
	"github.com/occfit/occfit/internal/domain/station"
	"github.com/occfit/occfit/internal/platform/errs"
)

// CompletionCache caches the visit completion projection. Implementations
// must treat it as advisory: a miss just recomputes.
type CompletionCache interface {
	Get(ctx context.Context, visitID uuid.UUID) (complete bool, ok bool)
	Set(ctx context.Context, visitID uuid.UUID, complete bool)
	Invalidate(ctx context.Context, visitID uuid.UUID)
}

// Atomic runs fn so that every repository write inside it commits or rolls
// back as one unit. The wired implementation is db.WithTx over the pool;
// repositories join the transaction through the context.
type Atomic func(ctx context.Context, fn func(ctx context.Context) error) error

type Service struct {
	repo   Repository
	exams  *examrecord.Service
	router *station.Router
	cache  CompletionCache
	atomic Atomic
}

func NewService(repo Repository, exams *examrecord.Service, router *station.Router) *Service {
	return &Service{repo: repo, exams: exams, router: router}
}

// SetCompletionCache attaches an optional completion cache. The exam workflow
// service must share the same cache so transitions invalidate it.
func (s *Service) SetCompletionCache(c CompletionCache) { s.cache = c }

// SetAtomic attaches the transaction runner multi-write operations use. When
// unset they run unguarded, which only in-memory repositories should accept.
func (s *Service) SetAtomic(a Atomic) { s.atomic = a }

func (s *Service) runAtomic(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.atomic != nil {
		return s.atomic(ctx, fn)
	}
	return fn(ctx)
}

// Admit creates a visit in the pending state together with its required exam
// records. The visit row and every record are written in one atomic unit; a
// failure part-way leaves nothing behind. Only admission roles may admit.
func (s *Service) Admit(ctx context.Context, actor station.Actor, v *Visit, procs []examrecord.Procedure) ([]*examrecord.ExamRecord, error) {
	if actor.Role != station.RoleAdmin && actor.Role != station.RoleClinical {
		return nil, errs.Permissionf("role %q may not admit visits", actor.Role)
	}
	if v.PatientID == uuid.Nil {
		return nil, errs.Validationf("patient id is required")
	}
	if v.EmployerID == uuid.Nil {
		return nil, errs.Validationf("employer id is required")
	}
	if v.JobRoleID == uuid.Nil {
		return nil, errs.Validationf("job role id is required")
	}
	if len(procs) == 0 {
		return nil, errs.Validationf("a visit needs at least one required exam")
	}
	if v.VisitedAt.IsZero() {
		v.VisitedAt = time.Now().UTC()
	}
	v.Aptitude = AptitudePending
	var records []*examrecord.ExamRecord
	err := s.runAtomic(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, v); err != nil {
			return err
		}
		var err error
		records, err = s.exams.CreateForVisit(ctx, v.ID, procs)
		return err
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Visit, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Visit, int, error) {
	return s.repo.List(ctx, limit, offset)
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Visit, int, error) {
	return s.repo.ListByPatient(ctx, patientID, limit, offset)
}

// Completion reports whether every required exam record of the visit is
// finalized. The projection is pure; the cache only saves the round trip.
func (s *Service) Completion(ctx context.Context, visitID uuid.UUID) (bool, error) {
	if s.cache != nil {
		if complete, ok := s.cache.Get(ctx, visitID); ok {
			return complete, nil
		}
	}
	records, err := s.exams.ListAll(ctx, visitID)
	if err != nil {
		return false, err
	}
	complete := examrecord.IsComplete(records)
	if s.cache != nil {
		s.cache.Set(ctx, visitID, complete)
	}
	return complete, nil
}

func (s *Service) transition(ctx context.Context, id uuid.UUID, expectedVersion int, from []AptitudeState, to AptitudeState) (*Visit, error) {
	v, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	allowed := false
	for _, f := range from {
		if v.Aptitude == f {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, errs.Validationf("visit %s: cannot move from %q to %q", id, v.Aptitude, to)
	}
	if v.VersionID != expectedVersion {
		return nil, errs.Conflictf("visit %s: expected version %d, have %d", id, expectedVersion, v.VersionID)
	}
	v.Aptitude = to
	if err := s.repo.Update(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

// MarkInQueue moves a pending visit into the exam queue.
func (s *Service) MarkInQueue(ctx context.Context, actor station.Actor, id uuid.UUID, expectedVersion int) (*Visit, error) {
	if actor.Role != station.RoleAdmin && actor.Role != station.RoleClinical {
		return nil, errs.Permissionf("role %q may not queue visits", actor.Role)
	}
	return s.transition(ctx, id, expectedVersion, []AptitudeState{AptitudePending}, AptitudeInQueue)
}

// MarkInProgress records that stations have started working the visit.
func (s *Service) MarkInProgress(ctx context.Context, actor station.Actor, id uuid.UUID, expectedVersion int) (*Visit, error) {
	if _, err := station.Parse(string(actor.Role)); err != nil {
		return nil, err
	}
	return s.transition(ctx, id, expectedVersion,
		[]AptitudeState{AptitudePending, AptitudeInQueue}, AptitudeInProgress)
}

// ApplyVerdict copies an accepted verdict onto the visit. Callers (the
// verdict service or an explicit override) are responsible for authorization;
// this method enforces the terminal-state invariant.
func (s *Service) ApplyVerdict(ctx context.Context, id uuid.UUID, expectedVersion int, av AcceptedVerdict) (*Visit, error) {
	if !ValidOutcome(av.Outcome) {
		return nil, errs.Validationf("%q is not a verdict outcome", av.Outcome)
	}
	v, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if v.Aptitude.Terminal() {
		return nil, errs.Immutabilityf("visit %s already has outcome %q; reopen it first", id, v.Aptitude)
	}
	if v.VersionID != expectedVersion {
		return nil, errs.Conflictf("visit %s: expected version %d, have %d", id, expectedVersion, v.VersionID)
	}
	v.Aptitude = av.Outcome
	v.Verdict = &av
	if err := s.repo.Update(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

// Override lets a physician set the outcome directly, bypassing the
// adjudicator. The override is still subject to the terminal-state invariant.
func (s *Service) Override(ctx context.Context, actor station.Actor, id uuid.UUID, expectedVersion int, outcome AptitudeState, rationale string) (*Visit, error) {
	if actor.Role != station.RolePhysician {
		return nil, errs.Permissionf("role %q may not override verdicts", actor.Role)
	}
	if rationale == "" {
		return nil, errs.Validationf("an override requires a rationale")
	}
	payload, err := json.Marshal(map[string]string{"override_rationale": rationale})
	if err != nil {
		return nil, err
	}
	av := AcceptedVerdict{
		Outcome:    outcome,
		Payload:    payload,
		AcceptedBy: actor.UserID,
		AcceptedAt: time.Now().UTC(),
	}
	return s.ApplyVerdict(ctx, id, expectedVersion, av)
}

// Reopen returns a terminal visit to in_progress so results can be revised.
// Elevated roles only; the accepted verdict is cleared, prior certifications
// remain in the audit trail.
func (s *Service) Reopen(ctx context.Context, actor station.Actor, id uuid.UUID, expectedVersion int) (*Visit, error) {
	if !s.router.Elevated(actor.Role) {
		return nil, errs.Permissionf("role %q may not reopen visits", actor.Role)
	}
	v, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !v.Aptitude.Terminal() {
		return nil, errs.Validationf("visit %s is not in a terminal state", id)
	}
	if v.VersionID != expectedVersion {
		return nil, errs.Conflictf("visit %s: expected version %d, have %d", id, expectedVersion, v.VersionID)
	}
	v.Aptitude = AptitudeInProgress
	v.Verdict = nil
	if err := s.repo.Update(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

// Delete removes a visit. Exam records go with it (cascade); admin only.
func (s *Service) Delete(ctx context.Context, actor station.Actor, id uuid.UUID) error {
	if actor.Role != station.RoleAdmin {
		return errs.Permissionf("role %q may not delete visits", actor.Role)
	}
	if s.cache != nil {
		s.cache.Invalidate(ctx, id)
	}
	return s.repo.Delete(ctx, id)
}
