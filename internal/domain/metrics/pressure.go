package metrics

const (
	BandPressureNormal   Band = "normal"
	BandPressureElevated Band = "elevated"
	BandPressureStage1   Band = "stage_1"
	BandPressureStage2   Band = "stage_2"
)

// MAP computes the mean arterial pressure (systolic + 2×diastolic) / 3.
func MAP(systolic, diastolic float64) (float64, error) {
	if systolic <= 0 || diastolic <= 0 {
		return 0, ErrIncomputable
	}
	return (systolic + 2*diastolic) / 3, nil
}

// PressureBand classifies a blood-pressure pair independently of MAP.
// Stage boundaries follow the AHA scheme: normal <120/<80, elevated
// 120–129/<80, stage-1 130–139 or 80–89, stage-2 ≥140 or ≥90.
func PressureBand(systolic, diastolic float64) (Band, error) {
	if systolic <= 0 || diastolic <= 0 {
		return "", ErrIncomputable
	}
	switch {
	case systolic >= 140 || diastolic >= 90:
		return BandPressureStage2, nil
	case systolic >= 130 || diastolic >= 80:
		return BandPressureStage1, nil
	case systolic >= 120:
		return BandPressureElevated, nil
	default:
		return BandPressureNormal, nil
	}
}
