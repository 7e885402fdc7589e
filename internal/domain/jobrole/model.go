package jobrole

import (
	"time"

	"github.com/google/uuid"
)

// Limit is one named numeric safety threshold on a job role. Max is the hard
// ceiling for the observed parameter; RemediationMargin is the fraction above
// Max still considered remediable (0.10 means breaches up to Max×1.10 are
// remediable, anything above is severe).
type Limit struct {
	Param             string  `json:"param"`
	Max               float64 `json:"max"`
	RemediationMargin float64 `json:"remediation_margin"`
}

// Known limit parameters. The adjudicator resolves these against the derived
// and raw metrics of a visit; anything else is rejected at role creation.
const (
	ParamSystolicMax    = "systolic_max"
	ParamDiastolicMax   = "diastolic_max"
	ParamGlycemiaMax    = "glycemia_max"
	ParamBMIMax         = "bmi_max"
	ParamCholesterolMax = "cholesterol_max"
	ParamRiskPctMax     = "risk_pct_max"
	ParamSleepinessMax  = "sleepiness_max"
	ParamRuffierMax     = "ruffier_max"
)

// KnownParams is the closed set of limit parameters.
var KnownParams = map[string]bool{
	ParamSystolicMax:    true,
	ParamDiastolicMax:   true,
	ParamGlycemiaMax:    true,
	ParamBMIMax:         true,
	ParamCholesterolMax: true,
	ParamRiskPctMax:     true,
	ParamSleepinessMax:  true,
	ParamRuffierMax:     true,
}

// JobRole is the occupational position a visit evaluates fitness for. It is
// reference data: immutable during a visit's lifetime and only referenced,
// never owned, by visits.
type JobRole struct {
	ID              uuid.UUID `db:"id" json:"id"`
	Name            string    `db:"name" json:"name"`
	ExtremeAltitude bool      `db:"extreme_altitude" json:"extreme_altitude"`
	Limits          []Limit   `db:"limits" json:"limits"`
	VersionID       int       `db:"version_id" json:"version_id"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// GetVersionID returns the current version.
func (j *JobRole) GetVersionID() int { return j.VersionID }

// SetVersionID sets the current version.
func (j *JobRole) SetVersionID(v int) { j.VersionID = v }

// Snapshot is an immutable copy of a job role's adjudication inputs, safe to
// pass into the adjudicator while the underlying row may be edited.
type Snapshot struct {
	RoleID          uuid.UUID
	Name            string
	ExtremeAltitude bool
	Limits          []Limit
}

// Snapshot copies the role's limits into a detached value.
func (j *JobRole) Snapshot() Snapshot {
	limits := make([]Limit, len(j.Limits))
	copy(limits, j.Limits)
	return Snapshot{
		RoleID:          j.ID,
		Name:            j.Name,
		ExtremeAltitude: j.ExtremeAltitude,
		Limits:          limits,
	}
}

// LimitFor returns the limit for param, if the snapshot defines one.
func (s Snapshot) LimitFor(param string) (Limit, bool) {
	for _, l := range s.Limits {
		if l.Param == param {
			return l, true
		}
	}
	return Limit{}, false
}
