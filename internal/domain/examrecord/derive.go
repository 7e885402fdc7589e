package examrecord

import (
	"errors"

	"github.com/occfit/occfit/internal/domain/metrics"
)

// Derived holds the outputs the metrics engine computed from a record's raw
// inputs. Nil fields mean the value is undefined, never zero.
type Derived struct {
	BMI             *float64      `json:"bmi,omitempty"`
	BMIBand         *metrics.Band `json:"bmi_band,omitempty"`
	MAP             *float64      `json:"map,omitempty"`
	PressureBand    *metrics.Band `json:"pressure_band,omitempty"`
	RuffierIndex    *float64      `json:"ruffier_index,omitempty"`
	RuffierBand     *metrics.Band `json:"ruffier_band,omitempty"`
	SleepinessScore *int          `json:"sleepiness_score,omitempty"`
	SleepinessBand  *metrics.Band `json:"sleepiness_band,omitempty"`
	RiskPct         *float64      `json:"risk_pct,omitempty"`
	RiskBand        *metrics.Band `json:"risk_band,omitempty"`
	AltitudePass    *bool         `json:"altitude_pass,omitempty"`
}

// Empty reports whether nothing has been derived yet.
func (d *Derived) Empty() bool {
	return d == nil || (d.BMI == nil && d.MAP == nil && d.PressureBand == nil &&
		d.RuffierIndex == nil && d.SleepinessScore == nil && d.RiskPct == nil &&
		d.AltitudePass == nil)
}

// Derive recomputes the derived outputs for a raw input variant. Incomputable
// metrics are simply left unset; only genuinely bad inputs return an error,
// and validation should have caught those already.
func Derive(raw RawInput) (*Derived, error) {
	if raw == nil {
		return nil, nil
	}
	d := &Derived{}
	switch in := raw.(type) {
	case *AnthropometryInput:
		v, band, err := metrics.BMI(in.WeightKg, in.HeightM)
		if err := skippable(err); err != nil {
			return nil, err
		} else if band != "" {
			d.BMI, d.BMIBand = &v, &band
		}
	case *VitalsInput:
		if v, err := metrics.MAP(in.Systolic, in.Diastolic); err == nil {
			d.MAP = &v
		}
		band, err := metrics.PressureBand(in.Systolic, in.Diastolic)
		if err := skippable(err); err != nil {
			return nil, err
		} else if band != "" {
			d.PressureBand = &band
		}
	case *ExertionInput:
		v, band, err := metrics.RuffierIndex(in.RestingPulse, in.EffortPulse, in.RecoveryPulse)
		if err := skippable(err); err != nil {
			return nil, err
		} else if band != "" {
			d.RuffierIndex, d.RuffierBand = &v, &band
		}
	case *SleepinessInput:
		score, band, err := metrics.SleepinessScore(in.Ratings)
		if err := skippable(err); err != nil {
			return nil, err
		} else if band != "" {
			d.SleepinessScore, d.SleepinessBand = &score, &band
		}
	case *CardioRiskInput:
		v, band, err := metrics.CardioRisk(metrics.CardioRiskInput{
			AgeYears:         in.AgeYears,
			Sex:              in.Sex,
			TotalCholesterol: in.TotalCholesterol,
			HDL:              in.HDL,
			Systolic:         in.Systolic,
			TreatedPressure:  in.TreatedPressure,
			Smoker:           in.Smoker,
			Diabetic:         in.Diabetic,
		})
		if err := skippable(err); err != nil {
			return nil, err
		} else if band != "" {
			d.RiskPct, d.RiskBand = &v, &band
		}
	case *AltitudeInput:
		if in.Score != nil {
			pass := *in.Score >= AltitudePassScore
			d.AltitudePass = &pass
		}
	}
	if d.Empty() {
		return nil, nil
	}
	return d, nil
}

// skippable swallows ErrIncomputable: an absent metric stays undefined.
func skippable(err error) error {
	if err == nil || errors.Is(err, metrics.ErrIncomputable) {
		return nil
	}
	return err
}
