package certification

import (
	"context"
	"crypto/subtle"
	"time"

	"github.com/google/uuid"

	"github.com/occfit/occfit/internal/domain/station"
	"github.com/occfit/occfit/internal/domain/visit"
	"github.com/occfit/occfit/internal/platform/errs"
)

type Service struct {
	repo   Repository
	visits *visit.Service
	signer Signer
}

func NewService(repo Repository, visits *visit.Service, signer Signer) *Service {
	if signer == nil {
		signer = SHA256Signer{}
	}
	return &Service{repo: repo, visits: visits, signer: signer}
}

// Seal serializes the visit's accepted verdict into canonical bytes, signs
// them and appends a certification. The visit must carry an accepted verdict.
// Re-sealing appends a new certification that supersedes the latest one; the
// old seal stays in the trail untouched.
func (s *Service) Seal(ctx context.Context, actor station.Actor, visitID uuid.UUID) (*Certification, error) {
	if actor.Role != station.RolePhysician && actor.Role != station.RoleAdmin {
		return nil, errs.Permissionf("role %q may not seal certifications", actor.Role)
	}
	v, err := s.visits.Get(ctx, visitID)
	if err != nil {
		return nil, err
	}
	if v.Verdict == nil || !v.Aptitude.Terminal() {
		return nil, errs.IncompleteDataf("visit %s has no accepted verdict to seal", visitID)
	}

	var supersedes *uuid.UUID
	prior, err := s.repo.ListByVisit(ctx, visitID)
	if err != nil {
		return nil, err
	}
	if len(prior) > 0 {
		id := prior[0].ID
		supersedes = &id
	}

	sealedAt := time.Now().UTC()
	payload, err := canonicalPayload(sealPayload{
		VisitID:    visitID,
		Verdict:    *v.Verdict,
		SignedBy:   actor.UserID,
		SealedAt:   sealedAt,
		Supersedes: supersedes,
	})
	if err != nil {
		return nil, err
	}
	digest, err := s.signer.Sign(payload)
	if err != nil {
		return nil, err
	}

	cert := &Certification{
		VisitID:    visitID,
		Payload:    payload,
		Digest:     digest,
		Algorithm:  s.signer.Algorithm(),
		SignedBy:   actor.UserID,
		SealedAt:   sealedAt,
		Supersedes: supersedes,
	}
	if err := s.repo.Append(ctx, cert); err != nil {
		return nil, err
	}
	return cert, nil
}

// List returns a visit's certifications, newest first.
func (s *Service) List(ctx context.Context, visitID uuid.UUID) ([]*Certification, error) {
	return s.repo.ListByVisit(ctx, visitID)
}

// Verify recomputes the digest over the stored payload's canonical form and
// compares it with the stored one. Canonicalizing first keeps verification
// honest across stores that re-encode JSON; any change to a sealed value
// still changes the canonical bytes and breaks the digest.
func (s *Service) Verify(ctx context.Context, id uuid.UUID) (*Certification, bool, error) {
	cert, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, false, err
	}
	canonical, err := canonicalJSON(cert.Payload)
	if err != nil {
		return nil, false, err
	}
	recomputed, err := s.signer.Sign(canonical)
	if err != nil {
		return nil, false, err
	}
	ok := subtle.ConstantTimeCompare([]byte(recomputed), []byte(cert.Digest)) == 1
	return cert, ok, nil
}
