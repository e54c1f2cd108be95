package matchmaking

import "math"

// eloExpected returns the logistic expected score for self against other.
func eloExpected(self, other float64) float64 {
	return 1 / (1 + math.Pow(10, (other-self)/400))
}

// eloUpdate returns the post-match ratings for winner and loser. The
// update is zero-sum for a shared K factor.
func eloUpdate(winner, loser, k float64) (float64, float64) {
	expectedWin := eloExpected(winner, loser)
	expectedLose := eloExpected(loser, winner)
	return winner + k*(1-expectedWin), loser + k*(0-expectedLose)
}
