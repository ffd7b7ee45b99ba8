package roster

// ESPN lineup slot codes. Anything >= SlotBench is not an active slot.
const (
	SlotQB      = 0
	SlotRB      = 2
	SlotWR      = 4
	SlotTE      = 6
	SlotDefense = 16
	SlotKicker  = 17
	SlotBench   = 20
	SlotIR      = 21
	SlotFlex    = 23
)

var slotLabels = map[int]string{
	SlotQB:      "QB",
	SlotRB:      "RB",
	SlotWR:      "WR",
	SlotTE:      "TE",
	SlotDefense: "D/ST",
	SlotKicker:  "K",
	SlotBench:   "BE",
	SlotIR:      "IR",
	SlotFlex:    "FLEX",
}

var slotIDsByLabel = map[string]int{
	"QB":   SlotQB,
	"RB":   SlotRB,
	"WR":   SlotWR,
	"TE":   SlotTE,
	"D/ST": SlotDefense,
	"DST":  SlotDefense,
	"DEF":  SlotDefense,
	"K":    SlotKicker,
	"BE":   SlotBench,
	"BN":   SlotBench,
	"IR":   SlotIR,
	"FLEX": SlotFlex,
}

// ESPN defaultPositionId codes differ from lineup slot codes.
var positionsByDefaultID = map[int]string{
	1:  "QB",
	2:  "RB",
	3:  "WR",
	4:  "TE",
	5:  "K",
	16: "D/ST",
}

// Dedicated position slots allow inferring a position from the slot alone.
var positionsBySlot = map[int]string{
	SlotQB:      "QB",
	SlotRB:      "RB",
	SlotWR:      "WR",
	SlotTE:      "TE",
	SlotDefense: "D/ST",
	SlotKicker:  "K",
}

var proTeamAbbrevs = map[int]string{
	1:  "ATL",
	2:  "BUF",
	3:  "CHI",
	4:  "CIN",
	5:  "CLE",
	6:  "DAL",
	7:  "DEN",
	8:  "DET",
	9:  "GB",
	10: "TEN",
	11: "IND",
	12: "KC",
	13: "LV",
	14: "LAR",
	15: "MIA",
	16: "MIN",
	17: "NE",
	18: "NO",
	19: "NYG",
	20: "NYJ",
	21: "PHI",
	22: "ARI",
	23: "PIT",
	24: "LAC",
	25: "SF",
	26: "SEA",
	27: "TB",
	28: "WSH",
	29: "CAR",
	30: "JAX",
	33: "BAL",
	34: "HOU",
}

// SlotLabel returns the display label for a lineup slot id, or "SLOT"
// for codes outside the known table.
func SlotLabel(slotID int) string {
	if label, ok := slotLabels[slotID]; ok {
		return label
	}
	return "SLOT"
}

// ProTeamAbbrev maps an ESPN pro-team id to its three-letter code,
// returning "FA" for zero or unknown ids.
func ProTeamAbbrev(teamID int) string {
	if abbrev, ok := proTeamAbbrevs[teamID]; ok {
		return abbrev
	}
	return "FA"
}

func slotIDForLabel(label string) (int, bool) {
	id, ok := slotIDsByLabel[label]
	return id, ok
}
