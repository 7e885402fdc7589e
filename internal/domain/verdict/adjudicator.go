package verdict

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/occfit/occfit/internal/domain/examrecord"
	"github.com/occfit/occfit/internal/domain/jobrole"
	"github.com/occfit/occfit/internal/domain/visit"
	"github.com/occfit/occfit/internal/platform/errs"
)

// ParamAltitude is the synthetic factor emitted for the extreme-altitude
// check; it is not a configurable job-role limit.
const ParamAltitude = "altitude_check"

// observed collects, per limit parameter, the worst value found across the
// finalized records. Absent metrics simply never enter the map.
func observed(records []*examrecord.ExamRecord) map[string]float64 {
	out := make(map[string]float64)
	worst := func(param string, v float64) {
		if cur, ok := out[param]; !ok || v > cur {
			out[param] = v
		}
	}
	for _, r := range records {
		switch in := r.Raw.(type) {
		case *examrecord.VitalsInput:
			if in.Systolic > 0 {
				worst(jobrole.ParamSystolicMax, in.Systolic)
			}
			if in.Diastolic > 0 {
				worst(jobrole.ParamDiastolicMax, in.Diastolic)
			}
		case *examrecord.LaboratoryInput:
			if in.GlycemiaMgDL > 0 {
				worst(jobrole.ParamGlycemiaMax, in.GlycemiaMgDL)
			}
			if in.TotalCholesterol > 0 {
				worst(jobrole.ParamCholesterolMax, in.TotalCholesterol)
			}
		}
		if r.Derived == nil {
			continue
		}
		if r.Derived.BMI != nil {
			worst(jobrole.ParamBMIMax, *r.Derived.BMI)
		}
		if r.Derived.RiskPct != nil {
			worst(jobrole.ParamRiskPctMax, *r.Derived.RiskPct)
		}
		if r.Derived.SleepinessScore != nil {
			worst(jobrole.ParamSleepinessMax, float64(*r.Derived.SleepinessScore))
		}
		if r.Derived.RuffierIndex != nil {
			worst(jobrole.ParamRuffierMax, *r.Derived.RuffierIndex)
		}
	}
	return out
}

// classify holds an observed value against its limit. Values up to
// Max×(1+margin) breach remediably; beyond that the breach is severe.
func classify(v float64, l jobrole.Limit) Severity {
	switch {
	case v <= l.Max:
		return SeverityOK
	case v <= l.Max*(1+l.RemediationMargin):
		return SeverityRemediable
	default:
		return SeveritySevere
	}
}

// altitudeFactor evaluates the mandatory extreme-altitude check. A finalized
// answered questionnaire yields ok when it passes and severe otherwise,
// including an answered score of zero; no answered score at all is a
// remediable gap pending data.
func altitudeFactor(records []*examrecord.ExamRecord) Factor {
	f := Factor{Param: ParamAltitude, Limit: examrecord.AltitudePassScore, Severity: SeverityRemediable}
	for _, r := range records {
		in, ok := r.Raw.(*examrecord.AltitudeInput)
		if !ok || in.Score == nil {
			continue
		}
		f.Observed = float64(*in.Score)
		if *in.Score >= examrecord.AltitudePassScore {
			f.Severity = SeverityOK
		} else {
			f.Severity = SeveritySevere
		}
	}
	return f
}

// outcomeFor maps the evaluated factors to the overall aptitude outcome. A
// severe breach is disqualifying; a single remediable breach is fit with
// remediation; accumulating remediable breaches is remediable unfitness.
func outcomeFor(factors []Factor) visit.AptitudeState {
	severe, remediable := 0, 0
	for _, f := range factors {
		switch f.Severity {
		case SeveritySevere:
			severe++
		case SeverityRemediable:
			remediable++
		}
	}
	switch {
	case severe > 0:
		return visit.AptitudeUnfit
	case remediable > 1:
		return visit.AptitudeUnfitRemediable
	case remediable == 1:
		return visit.AptitudeFitWithRemediation
	default:
		return visit.AptitudeFit
	}
}

// atLeast raises outcome to floor if it currently ranks better.
func atLeast(outcome, floor visit.AptitudeState) visit.AptitudeState {
	rank := map[visit.AptitudeState]int{
		visit.AptitudeFit:                0,
		visit.AptitudeFitWithRemediation: 1,
		visit.AptitudeUnfitRemediable:    2,
		visit.AptitudeUnfit:              3,
	}
	if rank[outcome] < rank[floor] {
		return floor
	}
	return outcome
}

// Adjudicate computes the verdict for one visit from its exam records and
// the job role's limits. It is pure and deterministic: the same records and
// limits always produce the same factors, outcome and rationale.
//
// Every record must be finalized and at least one must exist; anything less
// is incomplete data. Limits whose metric was never observed are skipped,
// never treated as breaches.
func Adjudicate(visitID uuid.UUID, role jobrole.Snapshot, records []*examrecord.ExamRecord) (*Verdict, error) {
	if !examrecord.IsComplete(records) {
		finalized, total := examrecord.Completion(records)
		return nil, errs.IncompleteDataf("visit %s: %d of %d exam records finalized", visitID, finalized, total)
	}

	values := observed(records)
	var factors []Factor
	for _, l := range role.Limits {
		v, ok := values[l.Param]
		if !ok {
			continue
		}
		factors = append(factors, Factor{
			Param:    l.Param,
			Observed: v,
			Limit:    l.Max,
			Severity: classify(v, l),
		})
	}

	outcome := outcomeFor(factors)
	if role.ExtremeAltitude {
		af := altitudeFactor(records)
		factors = append(factors, af)
		if af.Severity == SeveritySevere {
			outcome = visit.AptitudeUnfit
		} else if af.Severity == SeverityRemediable {
			outcome = atLeast(outcome, visit.AptitudeUnfitRemediable)
		}
	}

	sort.Slice(factors, func(i, j int) bool {
		if factors[i].Severity.rank() != factors[j].Severity.rank() {
			return factors[i].Severity.rank() > factors[j].Severity.rank()
		}
		return factors[i].Param < factors[j].Param
	})

	return &Verdict{
		VisitID:    visitID,
		RoleID:     role.RoleID,
		RoleName:   role.Name,
		Outcome:    outcome,
		Factors:    factors,
		Rationale:  buildRationale(factors),
		ComputedAt: time.Now().UTC(),
	}, nil
}
