// Package visit owns the aggregate root of an occupational-health
// attendance: one patient, one employer, one job role, a set of required exam
// records and the overall aptitude state. The aptitude state is only ever set
// by verdict acceptance or an explicit override, and never regresses from a
// terminal state without an explicit reopen.
package visit

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// AptitudeState is the overall fitness state of a visit.
type AptitudeState string

const (
	AptitudePending            AptitudeState = "pending"
	AptitudeInQueue            AptitudeState = "in_queue"
	AptitudeInProgress         AptitudeState = "in_progress"
	AptitudeFit                AptitudeState = "fit"
	AptitudeFitWithRemediation AptitudeState = "fit_with_remediation"
	AptitudeUnfit              AptitudeState = "unfit"
	AptitudeUnfitRemediable    AptitudeState = "unfit_remediable"
)

// Terminal reports whether the state is a final verdict outcome.
func (s AptitudeState) Terminal() bool {
	switch s {
	case AptitudeFit, AptitudeFitWithRemediation, AptitudeUnfit, AptitudeUnfitRemediable:
		return true
	}
	return false
}

// Outcome states the adjudicator may produce (the aptitude domain minus the
// workflow states).
var outcomeStates = map[AptitudeState]bool{
	AptitudeFit:                true,
	AptitudeFitWithRemediation: true,
	AptitudeUnfit:              true,
	AptitudeUnfitRemediable:    true,
}

// ValidOutcome reports whether s may be written as a verdict outcome.
func ValidOutcome(s AptitudeState) bool { return outcomeStates[s] }

// AcceptedVerdict is the verdict snapshot copied onto the visit when a
// physician accepts it. The payload is the adjudicator's serialized verdict;
// the visit does not interpret it beyond the outcome.
type AcceptedVerdict struct {
	Outcome    AptitudeState   `json:"outcome"`
	Payload    json.RawMessage `json:"payload"`
	AcceptedBy string          `json:"accepted_by"`
	AcceptedAt time.Time       `json:"accepted_at"`
}

// Visit is the aggregate root. It exclusively owns its exam records and
// references, never owns, the job role.
type Visit struct {
	ID         uuid.UUID        `db:"id" json:"id"`
	PatientID  uuid.UUID        `db:"patient_id" json:"patient_id"`
	EmployerID uuid.UUID        `db:"employer_id" json:"employer_id"`
	JobRoleID  uuid.UUID        `db:"job_role_id" json:"job_role_id"`
	WorkOrder  *string          `db:"work_order" json:"work_order,omitempty"`
	Aptitude   AptitudeState    `db:"aptitude" json:"aptitude"`
	Verdict    *AcceptedVerdict `json:"verdict,omitempty"`
	VisitedAt  time.Time        `db:"visited_at" json:"visited_at"`
	VersionID  int              `db:"version_id" json:"version_id"`
	CreatedAt  time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time        `db:"updated_at" json:"updated_at"`
}

// GetVersionID returns the current version.
func (v *Visit) GetVersionID() int { return v.VersionID }

// SetVersionID sets the current version.
func (v *Visit) SetVersionID(ver int) { v.VersionID = ver }
