package metrics

const (
	BandUnderweight Band = "underweight"
	BandNormal      Band = "normal"
	BandOverweight  Band = "overweight"
	BandObesityI    Band = "obesity_1"
	BandObesityII   Band = "obesity_2"
	BandObesityIII  Band = "obesity_3"
)

// BMI computes the body-mass index weight_kg / height_m² and its WHO band.
func BMI(weightKg, heightM float64) (float64, Band, error) {
	if weightKg <= 0 || heightM <= 0 {
		return 0, "", ErrIncomputable
	}
	bmi := weightKg / (heightM * heightM)
	return bmi, bmiBand(bmi), nil
}

func bmiBand(bmi float64) Band {
	switch {
	case bmi < 18.5:
		return BandUnderweight
	case bmi < 25:
		return BandNormal
	case bmi < 30:
		return BandOverweight
	case bmi < 35:
		return BandObesityI
	case bmi < 40:
		return BandObesityII
	default:
		return BandObesityIII
	}
}
