package metrics

const (
	BandRecoveryExcellent    Band = "excellent"
	BandRecoveryGood         Band = "good"
	BandRecoveryFair         Band = "fair"
	BandRecoveryInsufficient Band = "insufficient"
	BandRecoveryPoor         Band = "poor"
)

// RuffierIndex computes the cardiac-recovery index (P1+P2+P3−200)/10 from the
// resting pulse P1, the post-exertion pulse P2 and the one-minute recovery
// pulse P3.
func RuffierIndex(p1, p2, p3 float64) (float64, Band, error) {
	if p1 <= 0 || p2 <= 0 || p3 <= 0 {
		return 0, "", ErrIncomputable
	}
	idx := (p1 + p2 + p3 - 200) / 10
	return idx, ruffierBand(idx), nil
}

func ruffierBand(idx float64) Band {
	switch {
	case idx < 0:
		return BandRecoveryExcellent
	case idx <= 5:
		return BandRecoveryGood
	case idx <= 10:
		return BandRecoveryFair
	case idx <= 15:
		return BandRecoveryInsufficient
	default:
		return BandRecoveryPoor
	}
}
