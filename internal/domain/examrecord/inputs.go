package examrecord

import (
	"encoding/json"

	"github.com/go-playground/validator/v10"

	"github.com/occfit/occfit/internal/platform/errs"
)

// FormKind selects the typed raw-input variant for an exam record.
type FormKind string

const (
	FormAnthropometry FormKind = "anthropometry"
	FormVitals        FormKind = "vitals"
	FormExertion      FormKind = "exertion"
	FormSleepiness    FormKind = "sleepiness"
	FormLaboratory    FormKind = "laboratory"
	FormCardioRisk    FormKind = "cardiorisk"
	FormAudiometry    FormKind = "audiometry"
	FormVision        FormKind = "vision"
	FormPsychology    FormKind = "psychology"
	FormRadiology     FormKind = "radiology"
	FormAltitude      FormKind = "altitude"
)

// RawInput is the tagged union over form-kind specific raw fields. A zero
// field means the station has not captured that value yet; Validate rejects
// values that are present but out of range.
type RawInput interface {
	Kind() FormKind
	Validate() error
	Empty() bool
}

var validate = validator.New()

func checkStruct(kind FormKind, in interface{}) error {
	if err := validate.Struct(in); err != nil {
		return errs.Wrap(errs.KindValidation, string(kind)+" input out of range", err)
	}
	return nil
}

// AnthropometryInput captures weight and height for the BMI computation.
type AnthropometryInput struct {
	WeightKg float64 `json:"weight_kg,omitempty" validate:"omitempty,gt=0,lt=400"`
	HeightM  float64 `json:"height_m,omitempty" validate:"omitempty,gt=0,lt=2.6"`
}

func (i *AnthropometryInput) Kind() FormKind  { return FormAnthropometry }
func (i *AnthropometryInput) Validate() error { return checkStruct(FormAnthropometry, i) }
func (i *AnthropometryInput) Empty() bool     { return i.WeightKg == 0 && i.HeightM == 0 }

// VitalsInput captures the blood-pressure pair and resting pulse.
type VitalsInput struct {
	Systolic  float64 `json:"systolic,omitempty" validate:"omitempty,gt=0,lt=300"`
	Diastolic float64 `json:"diastolic,omitempty" validate:"omitempty,gt=0,lt=200"`
	PulseBPM  float64 `json:"pulse_bpm,omitempty" validate:"omitempty,gt=0,lt=250"`
}

func (i *VitalsInput) Kind() FormKind  { return FormVitals }
func (i *VitalsInput) Validate() error { return checkStruct(FormVitals, i) }
func (i *VitalsInput) Empty() bool {
	return i.Systolic == 0 && i.Diastolic == 0 && i.PulseBPM == 0
}

// ExertionInput captures the three pulse readings of the step test.
type ExertionInput struct {
	RestingPulse  float64 `json:"resting_pulse,omitempty" validate:"omitempty,gt=0,lt=250"`
	EffortPulse   float64 `json:"effort_pulse,omitempty" validate:"omitempty,gt=0,lt=280"`
	RecoveryPulse float64 `json:"recovery_pulse,omitempty" validate:"omitempty,gt=0,lt=250"`
}

func (i *ExertionInput) Kind() FormKind  { return FormExertion }
func (i *ExertionInput) Validate() error { return checkStruct(FormExertion, i) }
func (i *ExertionInput) Empty() bool {
	return i.RestingPulse == 0 && i.EffortPulse == 0 && i.RecoveryPulse == 0
}

// SleepinessInput captures the eight ordinal ratings of the daytime
// sleepiness questionnaire. Ratings are all-or-nothing.
type SleepinessInput struct {
	Ratings []int `json:"ratings,omitempty" validate:"omitempty,len=8,dive,gte=0,lte=3"`
}

func (i *SleepinessInput) Kind() FormKind  { return FormSleepiness }
func (i *SleepinessInput) Validate() error { return checkStruct(FormSleepiness, i) }
func (i *SleepinessInput) Empty() bool     { return len(i.Ratings) == 0 }

// LaboratoryInput captures the blood panel values the adjudicator reads.
type LaboratoryInput struct {
	GlycemiaMgDL     float64 `json:"glycemia_mg_dl,omitempty" validate:"omitempty,gt=0,lt=1000"`
	TotalCholesterol float64 `json:"total_cholesterol,omitempty" validate:"omitempty,gt=0,lt=1000"`
	HDL              float64 `json:"hdl,omitempty" validate:"omitempty,gt=0,lt=300"`
}

func (i *LaboratoryInput) Kind() FormKind  { return FormLaboratory }
func (i *LaboratoryInput) Validate() error { return checkStruct(FormLaboratory, i) }
func (i *LaboratoryInput) Empty() bool {
	return i.GlycemiaMgDL == 0 && i.TotalCholesterol == 0 && i.HDL == 0
}

// CardioRiskInput captures the risk-factor questionnaire for the 10-year
// cardiovascular risk estimate.
type CardioRiskInput struct {
	AgeYears         int     `json:"age_years,omitempty" validate:"omitempty,gt=0,lt=120"`
	Sex              string  `json:"sex,omitempty" validate:"omitempty,oneof=male female"`
	TotalCholesterol float64 `json:"total_cholesterol,omitempty" validate:"omitempty,gt=0,lt=1000"`
	HDL              float64 `json:"hdl,omitempty" validate:"omitempty,gt=0,lt=300"`
	Systolic         float64 `json:"systolic,omitempty" validate:"omitempty,gt=0,lt=300"`
	TreatedPressure  bool    `json:"treated_pressure,omitempty"`
	Smoker           bool    `json:"smoker,omitempty"`
	Diabetic         bool    `json:"diabetic,omitempty"`
}

func (i *CardioRiskInput) Kind() FormKind  { return FormCardioRisk }
func (i *CardioRiskInput) Validate() error { return checkStruct(FormCardioRisk, i) }
func (i *CardioRiskInput) Empty() bool {
	return i.AgeYears == 0 && i.Sex == "" && i.TotalCholesterol == 0 &&
		i.HDL == 0 && i.Systolic == 0 && !i.TreatedPressure && !i.Smoker && !i.Diabetic
}

// AudiometryInput captures average hearing thresholds per ear in dB.
type AudiometryInput struct {
	LeftThresholdDB  float64 `json:"left_threshold_db,omitempty" validate:"omitempty,gte=-10,lte=120"`
	RightThresholdDB float64 `json:"right_threshold_db,omitempty" validate:"omitempty,gte=-10,lte=120"`
}

func (i *AudiometryInput) Kind() FormKind  { return FormAudiometry }
func (i *AudiometryInput) Validate() error { return checkStruct(FormAudiometry, i) }
func (i *AudiometryInput) Empty() bool {
	return i.LeftThresholdDB == 0 && i.RightThresholdDB == 0
}

// VisionInput captures decimal visual acuity per eye.
type VisionInput struct {
	LeftAcuity  float64 `json:"left_acuity,omitempty" validate:"omitempty,gt=0,lte=2"`
	RightAcuity float64 `json:"right_acuity,omitempty" validate:"omitempty,gt=0,lte=2"`
}

func (i *VisionInput) Kind() FormKind  { return FormVision }
func (i *VisionInput) Validate() error { return checkStruct(FormVision, i) }
func (i *VisionInput) Empty() bool     { return i.LeftAcuity == 0 && i.RightAcuity == 0 }

// PsychologyInput captures the psychology station's score and assessment.
type PsychologyInput struct {
	Score      int    `json:"score,omitempty" validate:"omitempty,gte=0,lte=100"`
	Assessment string `json:"assessment,omitempty" validate:"omitempty,max=4000"`
}

func (i *PsychologyInput) Kind() FormKind  { return FormPsychology }
func (i *PsychologyInput) Validate() error { return checkStruct(FormPsychology, i) }
func (i *PsychologyInput) Empty() bool     { return i.Score == 0 && i.Assessment == "" }

// RadiologyInput carries the radiologist's findings; the image itself lives
// in the document store and is referenced from the record.
type RadiologyInput struct {
	Findings string `json:"findings,omitempty" validate:"omitempty,max=4000"`
}

func (i *RadiologyInput) Kind() FormKind  { return FormRadiology }
func (i *RadiologyInput) Validate() error { return checkStruct(FormRadiology, i) }
func (i *RadiologyInput) Empty() bool     { return i.Findings == "" }

// AltitudePassScore is the minimum acclimatization questionnaire score
// considered passing for extreme-altitude job roles.
const AltitudePassScore = 70

// AltitudeInput captures the altitude-exposure questionnaire score. Score is
// a pointer so an answered score of zero is distinguishable from an
// unanswered questionnaire.
type AltitudeInput struct {
	Score *int `json:"score,omitempty" validate:"omitempty,gte=0,lte=100"`
}

func (i *AltitudeInput) Kind() FormKind  { return FormAltitude }
func (i *AltitudeInput) Validate() error { return checkStruct(FormAltitude, i) }
func (i *AltitudeInput) Empty() bool     { return i.Score == nil }

// inputFactories dispatches form kind to its variant. Closed table: an
// unknown kind is a validation error, never a fallback to an untyped bag.
var inputFactories = map[FormKind]func() RawInput{
	FormAnthropometry: func() RawInput { return &AnthropometryInput{} },
	FormVitals:        func() RawInput { return &VitalsInput{} },
	FormExertion:      func() RawInput { return &ExertionInput{} },
	FormSleepiness:    func() RawInput { return &SleepinessInput{} },
	FormLaboratory:    func() RawInput { return &LaboratoryInput{} },
	FormCardioRisk:    func() RawInput { return &CardioRiskInput{} },
	FormAudiometry:    func() RawInput { return &AudiometryInput{} },
	FormVision:        func() RawInput { return &VisionInput{} },
	FormPsychology:    func() RawInput { return &PsychologyInput{} },
	FormRadiology:     func() RawInput { return &RadiologyInput{} },
	FormAltitude:      func() RawInput { return &AltitudeInput{} },
}

// NewInput returns an empty input variant for the form kind.
func NewInput(kind FormKind) (RawInput, error) {
	f, ok := inputFactories[kind]
	if !ok {
		return nil, errs.Validationf("unknown form kind %q", kind)
	}
	return f(), nil
}

// DecodeInput unmarshals stored raw JSON into the typed variant for kind.
func DecodeInput(kind FormKind, data []byte) (RawInput, error) {
	in, err := NewInput(kind)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return in, nil
	}
	if err := json.Unmarshal(data, in); err != nil {
		return nil, errs.Wrap(errs.KindValidation, "decode "+string(kind)+" input", err)
	}
	return in, nil
}
