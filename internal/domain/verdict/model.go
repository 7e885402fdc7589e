// Package verdict computes the aptitude verdict for a visit from its
// finalized exam records and the job role's safety limits. A verdict is not
// a persisted entity: it is recomputed on demand and only becomes durable
// when a physician accepts it onto the visit.
package verdict

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/occfit/occfit/internal/domain/visit"
)

// Severity classifies one evaluated parameter against its limit.
type Severity string

const (
	SeverityOK         Severity = "ok"
	SeverityRemediable Severity = "breach_remediable"
	SeveritySevere     Severity = "breach_severe"
)

// rank orders severities for worst-of aggregation and factor sorting.
func (s Severity) rank() int {
	switch s {
	case SeveritySevere:
		return 2
	case SeverityRemediable:
		return 1
	}
	return 0
}

// Factor is one evaluated parameter: what was observed, the ceiling it was
// held against and how badly it breached, if at all.
type Factor struct {
	Param    string   `json:"param"`
	Observed float64  `json:"observed"`
	Limit    float64  `json:"limit"`
	Severity Severity `json:"severity"`
}

// Verdict is the adjudicator's output for one visit. Factors are sorted by
// severity descending, then parameter name, so equal inputs always produce
// byte-equal output.
type Verdict struct {
	VisitID    uuid.UUID           `json:"visit_id"`
	RoleID     uuid.UUID           `json:"role_id"`
	RoleName   string              `json:"role_name"`
	Outcome    visit.AptitudeState `json:"outcome"`
	Factors    []Factor            `json:"factors"`
	Rationale  string              `json:"rationale"`
	ComputedAt time.Time           `json:"computed_at"`
}

// buildRationale lists every breaching factor with its observed value and
// limit, in factor order.
func buildRationale(factors []Factor) string {
	var parts []string
	for _, f := range factors {
		if f.Severity == SeverityOK {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: observed %.2f exceeds limit %.2f (%s)",
			f.Param, f.Observed, f.Limit, f.Severity))
	}
	if len(parts) == 0 {
		return "all evaluated parameters within limits"
	}
	return strings.Join(parts, "; ")
}
