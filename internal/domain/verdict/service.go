package verdict

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/occfit/occfit/internal/domain/examrecord"
	"github.com/occfit/occfit/internal/domain/jobrole"
	"github.com/occfit/occfit/internal/domain/station"
	"github.com/occfit/occfit/internal/domain/visit"
	"github.com/occfit/occfit/internal/platform/errs"
)

// Service glues the pure adjudicator to the visit, exam record and job role
// aggregates.
type Service struct {
	visits *visit.Service
	exams  *examrecord.Service
	roles  *jobrole.Loader
}

func NewService(visits *visit.Service, exams *examrecord.Service, roles *jobrole.Loader) *Service {
	return &Service{visits: visits, exams: exams, roles: roles}
}

// compute loads everything the adjudicator needs and runs it.
func (s *Service) compute(ctx context.Context, visitID uuid.UUID) (*visit.Visit, *Verdict, error) {
	v, err := s.visits.Get(ctx, visitID)
	if err != nil {
		return nil, nil, err
	}
	role, err := s.roles.Snapshot(ctx, v.JobRoleID)
	if err != nil {
		return nil, nil, err
	}
	records, err := s.exams.ListAll(ctx, visitID)
	if err != nil {
		return nil, nil, err
	}
	verdict, err := Adjudicate(visitID, role, records)
	if err != nil {
		return nil, nil, err
	}
	return v, verdict, nil
}

// Preview computes the verdict without touching the visit. Physicians and
// admins review verdicts; nobody else sees them before acceptance.
func (s *Service) Preview(ctx context.Context, actor station.Actor, visitID uuid.UUID) (*Verdict, error) {
	if actor.Role != station.RolePhysician && actor.Role != station.RoleAdmin {
		return nil, errs.Permissionf("role %q may not review verdicts", actor.Role)
	}
	_, verdict, err := s.compute(ctx, visitID)
	return verdict, err
}

// Accept recomputes the verdict and, when the physician confirms it, copies
// the outcome and serialized verdict onto the visit. An optional note is
// appended to the rationale before acceptance.
func (s *Service) Accept(ctx context.Context, actor station.Actor, visitID uuid.UUID, expectedVersion int, note string) (*visit.Visit, *Verdict, error) {
	if actor.Role != station.RolePhysician {
		return nil, nil, errs.Permissionf("role %q may not accept verdicts", actor.Role)
	}
	_, verdict, err := s.compute(ctx, visitID)
	if err != nil {
		return nil, nil, err
	}
	if note != "" {
		verdict.Rationale += "; physician note: " + note
	}
	payload, err := json.Marshal(verdict)
	if err != nil {
		return nil, nil, err
	}
	updated, err := s.visits.ApplyVerdict(ctx, visitID, expectedVersion, visit.AcceptedVerdict{
		Outcome:    verdict.Outcome,
		Payload:    payload,
		AcceptedBy: actor.UserID,
		AcceptedAt: time.Now().UTC(),
	})
	if err != nil {
		return nil, nil, err
	}
	return updated, verdict, nil
}
