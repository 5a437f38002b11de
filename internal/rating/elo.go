// Package rating computes updated skill ratings from pairwise match
// outcomes. Ratings are plain Elo on the classic 400-point logistic scale;
// there is no persisted intermediate state, so the function must be called
// once per side within a single match settlement.
package rating

import "math"

// DefaultK is the K-factor applied when the caller has no reason to use
// another one.
const DefaultK = 32

// Elo returns the new rating for the "self" side given both current
// ratings and both final scores. A strictly higher score counts as a win,
// an exact tie as a draw.
func Elo(ratingSelf, ratingOpponent, scoreSelf, scoreOpponent, k int) int {
	expected := 1 / (1 + math.Pow(10, float64(ratingOpponent-ratingSelf)/400))

	var actual float64
	switch {
	case scoreSelf > scoreOpponent:
		actual = 1
	case scoreSelf == scoreOpponent:
		actual = 0.5
	default:
		actual = 0
	}

	return int(math.Round(float64(ratingSelf) + float64(k)*(actual-expected)))
}
