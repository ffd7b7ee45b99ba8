package matchup

import (
	"math"

	"github.com/gridironhq/fantasy-dashboard/internal/domain/roster"
)

// Week-to-week scoring noise for a fantasy lineup, in points. The
// differential of two independent lineups then has variance 2*sigma^2.
const scoringStdDev = 18.0

// WinProbability estimates the chance, in percent, that the first
// starter set outscores the second. The normal CDF is approximated by
// 0.5*(1+tanh(z*sqrt(pi/8))) and the result is clamped to [5,95] so
// the display never shows certainty.
func WinProbability(mine, opponent []roster.NormalizedPlayer) float64 {
	myProjected := projectedSum(mine)
	oppProjected := projectedSum(opponent)

	z := (myProjected - oppProjected) / (scoringStdDev * math.Sqrt2)
	probability := 0.5 * (1 + math.Tanh(z*math.Sqrt(math.Pi/8))) * 100

	if probability < 5 {
		return 5
	}
	if probability > 95 {
		return 95
	}
	return probability
}

func projectedSum(players []roster.NormalizedPlayer) float64 {
	var total float64
	for _, p := range players {
		if !p.IsStarter {
			continue
		}
		total += p.ProjectedPoints
	}
	return total
}
