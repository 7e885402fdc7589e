package examrecord

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/occfit/occfit/internal/domain/station"
	"github.com/occfit/occfit/internal/platform/errs"
)

// CompletionInvalidator drops any cached visit completion projection. Called
// on every state transition so cached completeness can never go stale.
type CompletionInvalidator interface {
	Invalidate(ctx context.Context, visitID uuid.UUID)
}

// Service is the workflow controller for exam records: it owns the
// new → in_progress → finalized state machine, authorization against the
// station router, and the optimistic-concurrency discipline.
type Service struct {
	repo   Repository
	router *station.Router
	cache  CompletionInvalidator
}

func NewService(repo Repository, router *station.Router) *Service {
	return &Service{repo: repo, router: router}
}

// SetCompletionCache attaches an optional completion cache invalidator.
func (s *Service) SetCompletionCache(c CompletionInvalidator) { s.cache = c }

func (s *Service) invalidate(ctx context.Context, visitID uuid.UUID) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, visitID)
	}
}

// CreateForVisit materializes the required exam records for a new visit.
func (s *Service) CreateForVisit(ctx context.Context, visitID uuid.UUID, procs []Procedure) ([]*ExamRecord, error) {
	if visitID == uuid.Nil {
		return nil, errs.Validationf("visit id is required")
	}
	var out []*ExamRecord
	for _, p := range procs {
		if p.Name == "" {
			return nil, errs.Validationf("procedure name is required")
		}
		if _, ok := inputFactories[p.FormKind]; !ok {
			return nil, errs.Validationf("procedure %q: unknown form kind %q", p.Name, p.FormKind)
		}
		if _, err := station.ParseRecordRole(string(p.ResponsibleRole)); err != nil {
			return nil, err
		}
		e := &ExamRecord{VisitID: visitID, Procedure: p, State: StateNew}
		if err := s.repo.Create(ctx, e); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	s.invalidate(ctx, visitID)
	return out, nil
}

// Get returns a record the acting role is allowed to see.
func (s *Service) Get(ctx context.Context, actor station.Actor, id uuid.UUID) (*ExamRecord, error) {
	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.router.CanView(actor.Role, e.Procedure.ResponsibleRole) {
		return nil, errs.Permissionf("role %q may not view %q records",
			actor.Role, e.Procedure.ResponsibleRole)
	}
	return e, nil
}

// ListVisible returns the subset of a visit's records the acting role may see.
func (s *Service) ListVisible(ctx context.Context, actor station.Actor, visitID uuid.UUID) ([]*ExamRecord, error) {
	all, err := s.repo.ListByVisit(ctx, visitID)
	if err != nil {
		return nil, err
	}
	var out []*ExamRecord
	for _, e := range all {
		if s.router.CanView(actor.Role, e.Procedure.ResponsibleRole) {
			out = append(out, e)
		}
	}
	return out, nil
}

// ListAll returns every record of a visit regardless of role. For internal
// collaborators (adjudication, completion) only; handlers use ListVisible.
func (s *Service) ListAll(ctx context.Context, visitID uuid.UUID) ([]*ExamRecord, error) {
	return s.repo.ListByVisit(ctx, visitID)
}

func (s *Service) loadForWrite(ctx context.Context, actor station.Actor, id uuid.UUID, expectedVersion int) (*ExamRecord, error) {
	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.router.CanEdit(actor.Role, e.Procedure.ResponsibleRole) {
		return nil, errs.Permissionf("role %q may not edit %q records",
			actor.Role, e.Procedure.ResponsibleRole)
	}
	if e.VersionID != expectedVersion {
		return nil, errs.Conflictf("exam record %s: expected version %d, have %d",
			e.ID, expectedVersion, e.VersionID)
	}
	return e, nil
}

// WriteRaw merges a raw-input patch into the record's typed variant,
// revalidates, recomputes the derived outputs and moves a new record to
// in_progress. Writes against finalized records always fail.
func (s *Service) WriteRaw(ctx context.Context, actor station.Actor, id uuid.UUID, expectedVersion int, patch json.RawMessage) (*ExamRecord, error) {
	e, err := s.loadForWrite(ctx, actor, id, expectedVersion)
	if err != nil {
		return nil, err
	}
	if e.State == StateFinalized {
		return nil, errs.Immutabilityf("exam record %s is finalized", e.ID)
	}

	if e.Raw == nil {
		e.Raw, err = NewInput(e.Procedure.FormKind)
		if err != nil {
			return nil, err
		}
	}
	if err := json.Unmarshal(patch, e.Raw); err != nil {
		return nil, errs.Wrap(errs.KindValidation, "malformed raw input patch", err)
	}
	if err := e.Raw.Validate(); err != nil {
		return nil, err
	}
	if e.Derived, err = Derive(e.Raw); err != nil {
		return nil, err
	}

	if e.State == StateNew {
		e.State = StateInProgress
	}
	if err := s.repo.Update(ctx, e); err != nil {
		return nil, err
	}
	s.invalidate(ctx, e.VisitID)
	return e, nil
}

// AttachDocument stores an opaque document reference on the record. The
// document itself lives in the document store; the record never interprets it.
func (s *Service) AttachDocument(ctx context.Context, actor station.Actor, id uuid.UUID, expectedVersion int, ref string) (*ExamRecord, error) {
	if ref == "" {
		return nil, errs.Validationf("document reference is required")
	}
	e, err := s.loadForWrite(ctx, actor, id, expectedVersion)
	if err != nil {
		return nil, err
	}
	if e.State == StateFinalized {
		return nil, errs.Immutabilityf("exam record %s is finalized", e.ID)
	}
	e.DocumentRef = &ref
	if e.State == StateNew {
		e.State = StateInProgress
	}
	if err := s.repo.Update(ctx, e); err != nil {
		return nil, err
	}
	s.invalidate(ctx, e.VisitID)
	return e, nil
}

// Finalize moves an in-progress record to its terminal state. An empty record
// cannot be finalized.
func (s *Service) Finalize(ctx context.Context, actor station.Actor, id uuid.UUID, expectedVersion int) (*ExamRecord, error) {
	e, err := s.loadForWrite(ctx, actor, id, expectedVersion)
	if err != nil {
		return nil, err
	}
	if e.State == StateFinalized {
		return nil, errs.Immutabilityf("exam record %s is already finalized", e.ID)
	}
	if !e.HasContent() {
		return nil, errs.Validationf("exam record %s has no results to finalize", e.ID)
	}
	e.State = StateFinalized
	if err := s.repo.Update(ctx, e); err != nil {
		return nil, err
	}
	s.invalidate(ctx, e.VisitID)
	return e, nil
}

// Reopen returns a finalized record to in_progress. Only elevated roles may
// do this, and only explicitly; results are never silently overwritten.
func (s *Service) Reopen(ctx context.Context, actor station.Actor, id uuid.UUID, expectedVersion int) (*ExamRecord, error) {
	if !s.router.Elevated(actor.Role) {
		return nil, errs.Permissionf("role %q may not reopen finalized records", actor.Role)
	}
	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if e.State != StateFinalized {
		return nil, errs.Validationf("exam record %s is not finalized", e.ID)
	}
	if e.VersionID != expectedVersion {
		return nil, errs.Conflictf("exam record %s: expected version %d, have %d",
			e.ID, expectedVersion, e.VersionID)
	}
	e.State = StateInProgress
	if err := s.repo.Update(ctx, e); err != nil {
		return nil, err
	}
	s.invalidate(ctx, e.VisitID)
	return e, nil
}

// AppendNote adds an annotation. On finalized records only elevated roles may
// annotate; results themselves stay immutable.
func (s *Service) AppendNote(ctx context.Context, actor station.Actor, id uuid.UUID, expectedVersion int, text string) (*ExamRecord, error) {
	if text == "" {
		return nil, errs.Validationf("note text is required")
	}
	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	canEdit := s.router.CanEdit(actor.Role, e.Procedure.ResponsibleRole)
	elevated := s.router.Elevated(actor.Role)
	if e.State == StateFinalized {
		if !elevated {
			return nil, errs.Immutabilityf("exam record %s is finalized", e.ID)
		}
	} else if !canEdit {
		return nil, errs.Permissionf("role %q may not annotate %q records",
			actor.Role, e.Procedure.ResponsibleRole)
	}
	if e.VersionID != expectedVersion {
		return nil, errs.Conflictf("exam record %s: expected version %d, have %d",
			e.ID, expectedVersion, e.VersionID)
	}
	e.Notes = append(e.Notes, Note{
		AuthorID: actor.UserID,
		Role:     actor.Role,
		Text:     text,
		At:       time.Now().UTC(),
	})
	if err := s.repo.Update(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// VisitCompletion computes the aggregate completion projection for a visit.
func (s *Service) VisitCompletion(ctx context.Context, visitID uuid.UUID) (finalized, total int, err error) {
	records, err := s.repo.ListByVisit(ctx, visitID)
	if err != nil {
		return 0, 0, err
	}
	finalized, total = Completion(records)
	return finalized, total, nil
}
