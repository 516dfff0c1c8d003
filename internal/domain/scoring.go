package domain

import "math"

// Award is the outcome of scoring one answer.
type Award struct {
	Base  int
	Bonus int
	Total int
}

// Score derives the speed bonus and total for an answer given elapsed seconds
// against the question's time limit. The bonus is half the base points at
// elapsed=0 and falls linearly to zero at the time limit. Incorrect answers
// are worth nothing.
func Score(correct bool, basePoints int, timeLimit, elapsed float64) Award {
	if !correct {
		return Award{}
	}
	if elapsed < 0 {
		elapsed = 0
	}
	factor := 0.0
	if timeLimit > 0 {
		factor = math.Max(0, 1-elapsed/timeLimit) * 0.5
	}
	bonus := int(math.Round(float64(basePoints) * factor))
	return Award{
		Base:  basePoints,
		Bonus: bonus,
		Total: basePoints + bonus,
	}
}
