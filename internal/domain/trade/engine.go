// Package trade proposes one-for-one player swaps between the user's
// team and the rest of the league, scored by fairness and mutual
// benefit. Suggestions are ephemeral: recomputed per request, never
// persisted.
package trade

import (
	"fmt"
	"math"
	"sort"

	"github.com/gridironhq/fantasy-dashboard/internal/domain/roster"
)

const (
	// Value floor for depth counting and for a player to be tradeable.
	depthValueFloor = 5.0
	// Both sides of an accepted pairing must be worth more than this.
	minPairValue = 4.0
	// FairnessThreshold is tunable but its literal value is load-bearing
	// for ranking parity with older dashboards.
	FairnessThreshold = 0.65

	winWinGainFloor = 1.0
	maxSuggestions  = 15
)

// Positions the engine trades across. Kickers and defenses are
// excluded: their week-to-week value is too noisy to rank.
var tradePositions = []string{"QB", "RB", "WR", "TE"}

// TeamRoster is one team's normalized roster plus identity metadata.
type TeamRoster struct {
	TeamID   int64
	TeamName string
	Players  []roster.NormalizedPlayer
}

// PlayerLine is one side of a proposed swap with its stat line.
type PlayerLine struct {
	PlayerID        string  `json:"playerId"`
	Name            string  `json:"name"`
	Position        string  `json:"position"`
	NFLTeam         string  `json:"nflTeam"`
	Value           float64 `json:"value"`
	TotalPoints     float64 `json:"totalPoints"`
	ProjectedPoints float64 `json:"projectedPoints"`
}

// Suggestion is a proposed swap with the partner team, annotated with
// fairness and each side's improvement.
type Suggestion struct {
	WithTeamID   int64      `json:"withTeamId"`
	WithTeamName string     `json:"withTeamName"`
	Give         PlayerLine `json:"give"`
	Receive      PlayerLine `json:"receive"`
	Fairness     float64    `json:"fairness"`
	UserGain     float64    `json:"userGain"`
	TheirGain    float64    `json:"theirGain"`
	Label        string     `json:"label"`
	Rationale    string     `json:"rationale"`
	Score        float64    `json:"score"`
}

// PlayerValue blends rest-of-season outlook with realized performance:
// 0.6 x projected points plus 0.4 x points per elapsed week.
func PlayerValue(p roster.NormalizedPlayer, currentWeek int) float64 {
	if currentWeek < 1 {
		currentWeek = 1
	}
	return 0.6*p.ProjectedPoints + 0.4*(p.TotalPoints/float64(currentWeek))
}

// PositionStrength scores one position group: half the best player's
// value, a third-weight on the group average, and two points per
// player above the depth floor.
func PositionStrength(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	top := values[0]
	var sum float64
	depth := 0
	for _, v := range values {
		if v > top {
			top = v
		}
		sum += v
		if v > depthValueFloor {
			depth++
		}
	}
	avg := sum / float64(len(values))
	return 0.5*top + 0.3*avg + 2*float64(depth)
}

type ratedPlayer struct {
	player roster.NormalizedPlayer
	value  float64
}

// positionBook groups a roster's QB/RB/WR/TE players by position with
// values precomputed, sorted best-first within each group.
type positionBook struct {
	byPosition map[string][]ratedPlayer
}

func buildBook(players []roster.NormalizedPlayer, currentWeek int) positionBook {
	book := positionBook{byPosition: make(map[string][]ratedPlayer, len(tradePositions))}
	for _, p := range players {
		tradable := false
		for _, pos := range tradePositions {
			if p.Position == pos {
				tradable = true
				break
			}
		}
		if !tradable {
			continue
		}
		book.byPosition[p.Position] = append(book.byPosition[p.Position], ratedPlayer{
			player: p,
			value:  PlayerValue(p, currentWeek),
		})
	}
	for pos := range book.byPosition {
		group := book.byPosition[pos]
		sort.SliceStable(group, func(i, j int) bool { return group[i].value > group[j].value })
	}
	return book
}

func (b positionBook) strength(pos string) float64 {
	group := b.byPosition[pos]
	values := make([]float64, len(group))
	for i, rp := range group {
		values[i] = rp.value
	}
	return PositionStrength(values)
}

func (b positionBook) average(pos string) float64 {
	group := b.byPosition[pos]
	if len(group) == 0 {
		return 0
	}
	var sum float64
	for _, rp := range group {
		sum += rp.value
	}
	return sum / float64(len(group))
}

func (b positionBook) depth(pos string) int {
	depth := 0
	for _, rp := range b.byPosition[pos] {
		if rp.value > depthValueFloor {
			depth++
		}
	}
	return depth
}

// tradeable players are worth giving up: above the value floor and
// either riding the bench or part of a position with surplus depth.
func (b positionBook) tradeable(pos string) []ratedPlayer {
	out := make([]ratedPlayer, 0, len(b.byPosition[pos]))
	surplus := b.depth(pos) > 2
	for _, rp := range b.byPosition[pos] {
		if rp.value <= depthValueFloor {
			continue
		}
		if !rp.player.IsStarter || surplus {
			out = append(out, rp)
		}
	}
	return out
}

// weakestAndStrongest returns the user's two weakest and two strongest
// trade positions by strength score.
func (b positionBook) weakestAndStrongest() (weakest, strongest []string) {
	ordered := append([]string(nil), tradePositions...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return b.strength(ordered[i]) < b.strength(ordered[j])
	})
	return ordered[:2], ordered[len(ordered)-2:]
}

// Suggestions compares the user's roster against every other team and
// emits up to 15 ranked swap proposals. An empty user roster yields an
// empty list.
func Suggestions(user TeamRoster, others []TeamRoster, currentWeek int) []Suggestion {
	if len(user.Players) == 0 {
		return []Suggestion{}
	}

	userBook := buildBook(user.Players, currentWeek)
	weakPositions, strongPositions := userBook.weakestAndStrongest()

	var out []Suggestion
	for _, opponent := range others {
		if opponent.TeamID == user.TeamID {
			continue
		}
		oppBook := buildBook(opponent.Players, currentWeek)

		for _, weakPos := range weakPositions {
			for _, strongPos := range strongPositions {
				if weakPos == strongPos {
					continue
				}
				for _, give := range userBook.tradeable(strongPos) {
					for _, receive := range oppBook.tradeable(weakPos) {
						suggestion, ok := evaluatePair(opponent, give, receive, weakPos, userBook, oppBook, strongPos)
						if ok {
							out = append(out, suggestion)
						}
					}
				}
			}
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		if out[i].Fairness != out[j].Fairness {
			return out[i].Fairness > out[j].Fairness
		}
		if out[i].Give.PlayerID != out[j].Give.PlayerID {
			return out[i].Give.PlayerID < out[j].Give.PlayerID
		}
		return out[i].Receive.PlayerID < out[j].Receive.PlayerID
	})

	if len(out) > maxSuggestions {
		out = out[:maxSuggestions]
	}
	if out == nil {
		out = []Suggestion{}
	}
	return out
}

// Fairness measures how close two player values sit, in [0,1]:
// 1 - |difference| / average.
func Fairness(giveValue, receiveValue float64) float64 {
	avg := (giveValue + receiveValue) / 2
	if avg <= 0 {
		return 0
	}
	return 1 - math.Abs(giveValue-receiveValue)/avg
}

func evaluatePair(
	opponent TeamRoster,
	give, receive ratedPlayer,
	weakPos string,
	userBook, oppBook positionBook,
	strongPos string,
) (Suggestion, bool) {
	fairness := Fairness(give.value, receive.value)
	if fairness <= FairnessThreshold {
		return Suggestion{}, false
	}
	if give.value <= minPairValue || receive.value <= minPairValue {
		return Suggestion{}, false
	}

	// Each side's improvement: the incoming player's value against the
	// receiving side's current average at that position.
	userGain := receive.value - userBook.average(weakPos)
	theirGain := give.value - oppBook.average(strongPos)

	var label string
	switch {
	case userGain > winWinGainFloor && theirGain > winWinGainFloor:
		label = "Win-Win"
	case userGain > 0:
		label = "Favorable"
	default:
		return Suggestion{}, false
	}

	score := fairness*50 + (userGain+theirGain)*5
	if label == "Win-Win" {
		score += 20
	}

	rationale := fmt.Sprintf(
		"Trade %s for %s to upgrade %s (%.0f%% fair)",
		give.player.PlayerName, receive.player.PlayerName, weakPos, fairness*100,
	)

	return Suggestion{
		WithTeamID:   opponent.TeamID,
		WithTeamName: opponent.TeamName,
		Give:         playerLine(give),
		Receive:      playerLine(receive),
		Fairness:     fairness,
		UserGain:     userGain,
		TheirGain:    theirGain,
		Label:        label,
		Rationale:    rationale,
		Score:        score,
	}, true
}

func playerLine(rp ratedPlayer) PlayerLine {
	return PlayerLine{
		PlayerID:        rp.player.PlayerID,
		Name:            rp.player.PlayerName,
		Position:        rp.player.Position,
		NFLTeam:         rp.player.NFLTeam,
		Value:           rp.value,
		TotalPoints:     rp.player.TotalPoints,
		ProjectedPoints: rp.player.ProjectedPoints,
	}
}
