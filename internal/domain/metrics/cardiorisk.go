package metrics

const (
	BandRiskLow      Band = "low"
	BandRiskModerate Band = "moderate"
	BandRiskHigh     Band = "high"
)

// MaxRiskPercent caps the estimate at the highest plausible 10-year figure.
const MaxRiskPercent = 30.0

// CardioRiskInput carries the factors for the 10-year cardiovascular risk
// estimate. Cholesterol values are mg/dL, pressure is mmHg.
type CardioRiskInput struct {
	AgeYears         int
	Sex              string // "male" or "female"
	TotalCholesterol float64
	HDL              float64
	Systolic         float64
	TreatedPressure  bool
	Smoker           bool
	Diabetic         bool
}

// CardioRisk estimates the 10-year cardiovascular risk percentage from a
// tiered base rate keyed by (age bucket, sex), adjusted by independent
// multiplicative factors for cholesterol, HDL, systolic pressure, smoking and
// diabetes, with an additive penalty for treated hypertension. The
// coefficients are a documented approximation of a published scoring table,
// not a certified clinical score.
func CardioRisk(in CardioRiskInput) (float64, Band, error) {
	if in.AgeYears <= 0 || in.TotalCholesterol <= 0 || in.HDL <= 0 || in.Systolic <= 0 {
		return 0, "", ErrIncomputable
	}
	if in.Sex != "male" && in.Sex != "female" {
		return 0, "", ErrIncomputable
	}

	risk := baseRate(in.AgeYears, in.Sex)
	risk *= cholesterolFactor(in.TotalCholesterol)
	risk *= hdlFactor(in.HDL)
	risk *= systolicFactor(in.Systolic)
	if in.Smoker {
		risk *= 1.6
	}
	if in.Diabetic {
		risk *= 1.8
	}
	if in.TreatedPressure {
		risk += 2.0
	}
	if risk > MaxRiskPercent {
		risk = MaxRiskPercent
	}
	return risk, riskBand(risk), nil
}

func baseRate(age int, sex string) float64 {
	male := map[int]float64{0: 1.5, 40: 3.0, 50: 6.0, 60: 10.0, 70: 14.0}
	female := map[int]float64{0: 1.0, 40: 2.0, 50: 4.0, 60: 7.0, 70: 10.0}
	table := male
	if sex == "female" {
		table = female
	}
	bucket := 0
	for _, b := range []int{40, 50, 60, 70} {
		if age >= b {
			bucket = b
		}
	}
	return table[bucket]
}

func cholesterolFactor(chol float64) float64 {
	switch {
	case chol < 200:
		return 1.0
	case chol < 240:
		return 1.3
	default:
		return 1.6
	}
}

func hdlFactor(hdl float64) float64 {
	switch {
	case hdl >= 60:
		return 0.8
	case hdl >= 40:
		return 1.0
	default:
		return 1.3
	}
}

func systolicFactor(sys float64) float64 {
	switch {
	case sys < 120:
		return 1.0
	case sys < 140:
		return 1.2
	default:
		return 1.5
	}
}

func riskBand(pct float64) Band {
	switch {
	case pct < 10:
		return BandRiskLow
	case pct < 20:
		return BandRiskModerate
	default:
		return BandRiskHigh
	}
}
