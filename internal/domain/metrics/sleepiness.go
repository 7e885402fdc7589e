package metrics

const (
	BandSleepinessNormal   Band = "normal"
	BandSleepinessMild     Band = "mild"
	BandSleepinessModerate Band = "moderate"
	BandSleepinessSevere   Band = "severe"
)

// SleepinessPrompts is the number of situational prompts in the daytime
// sleepiness questionnaire. Each prompt is rated 0–3.
const SleepinessPrompts = 8

// SleepinessScore sums the eight ordinal ratings into a 0–24 score. The score
// is undefined unless all eight prompts are answered; a rating outside 0–3 is
// rejected.
func SleepinessScore(ratings []int) (int, Band, error) {
	if len(ratings) != SleepinessPrompts {
		return 0, "", ErrIncomputable
	}
	score := 0
	for _, r := range ratings {
		if r < 0 || r > 3 {
			return 0, "", ErrOutOfRange
		}
		score += r
	}
	return score, sleepinessBand(score), nil
}

func sleepinessBand(score int) Band {
	switch {
	case score <= 5:
		return BandSleepinessNormal
	case score <= 9:
		return BandSleepinessMild
	case score <= 15:
		return BandSleepinessModerate
	default:
		return BandSleepinessSevere
	}
}
