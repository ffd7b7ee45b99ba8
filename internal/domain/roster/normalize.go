package roster

import (
	"sort"
	"strconv"
	"strings"
)

// NormalizedPlayer is the canonical record derived from one raw roster
// entry. Normalization never fails: absent or malformed fields degrade
// to the documented defaults instead of surfacing an error.
type NormalizedPlayer struct {
	PlayerID        string  `json:"playerId,omitempty"`
	PlayerName      string  `json:"playerName"`
	Position        string  `json:"position"`
	LineupSlotID    int     `json:"lineupSlotId"`
	IsStarter       bool    `json:"isStarter"`
	NFLTeam         string  `json:"nflTeam"`
	Opponent        string  `json:"opponent,omitempty"`
	TotalPoints     float64 `json:"totalPoints"`
	ProjectedPoints float64 `json:"projectedPoints"`
}

// ProjectionBreakdown is the per-stat projected point object some
// payload shapes carry instead of a flat projectedPoints number. The
// usesPoints flag key rides along in the raw map and must not be
// summed.
type ProjectionBreakdown struct {
	PerStat    map[string]float64
	UsesPoints bool
}

func (b ProjectionBreakdown) Sum() float64 {
	var total float64
	for _, v := range b.PerStat {
		total += v
	}
	return total
}

// Normalize converts one raw roster entry, in any of the upstream
// shapes, into a NormalizedPlayer. The entry may nest the player object
// at entry.player, entry.playerPoolEntry.player, directly on the entry,
// or at entry.entry.playerPoolEntry.player.
func Normalize(entry map[string]any) NormalizedPlayer {
	player := locatePlayer(entry)
	slotID := locateSlotID(entry)

	proTeamID := 0
	if player != nil {
		if id, ok := getInt(player, "proTeamId", "proTeam"); ok {
			proTeamID = id
		}
	}
	if proTeamID == 0 {
		if id, ok := getInt(entry, "proTeamId"); ok {
			proTeamID = id
		}
	}
	nflTeam := ProTeamAbbrev(proTeamID)

	out := NormalizedPlayer{
		PlayerID:        resolvePlayerID(entry, player),
		PlayerName:      resolveName(player, slotID, proTeamID, nflTeam),
		Position:        resolvePosition(player, slotID),
		LineupSlotID:    slotID,
		IsStarter:       slotID < SlotBench && slotID != SlotIR,
		NFLTeam:         nflTeam,
		Opponent:        resolveOpponent(entry, player),
		TotalPoints:     resolveTotalPoints(entry, player),
		ProjectedPoints: resolveProjectedPoints(entry, player),
	}
	return out
}

// SortRoster orders players starters-first, then ascending by lineup
// slot id within each group. The sort is stable so upstream order
// breaks remaining ties.
func SortRoster(players []NormalizedPlayer) {
	sort.SliceStable(players, func(i, j int) bool {
		if players[i].IsStarter != players[j].IsStarter {
			return players[i].IsStarter
		}
		return players[i].LineupSlotID < players[j].LineupSlotID
	})
}

func locatePlayer(entry map[string]any) map[string]any {
	if entry == nil {
		return nil
	}
	if p := getMap(entry, "player"); p != nil {
		return p
	}
	if p := getMap(getMap(entry, "playerPoolEntry"), "player"); p != nil {
		return p
	}
	// Teams-endpoint shape: name fields flattened onto the entry.
	if hasNameFields(entry) {
		return entry
	}
	return getMap(getMap(getMap(entry, "entry"), "playerPoolEntry"), "player")
}

func hasNameFields(m map[string]any) bool {
	return getString(m, "fullName") != "" ||
		getString(m, "firstName") != "" ||
		getString(m, "lastName") != ""
}

func locateSlotID(entry map[string]any) int {
	if slot, ok := getInt(entry, "lineupSlotId", "slot", "lineupSlot", "slotCategoryId"); ok {
		return slot
	}
	if label := getString(entry, "rosteredPosition"); label != "" {
		if slot, ok := slotIDForLabel(strings.ToUpper(strings.TrimSpace(label))); ok {
			return slot
		}
	}
	return SlotBench
}

func resolvePlayerID(entry, player map[string]any) string {
	// The entry's own "id" is the roster-entry id, not the player id,
	// so the entry is only probed for the explicit playerId key.
	probes := []struct {
		source map[string]any
		keys   []string
	}{
		{player, []string{"id", "playerId"}},
		{entry, []string{"playerId"}},
		{getMap(entry, "playerPoolEntry"), []string{"id"}},
	}
	for _, probe := range probes {
		if probe.source == nil {
			continue
		}
		if id, ok := getInt64(probe.source, probe.keys...); ok && id != 0 {
			return strconv.FormatInt(id, 10)
		}
		if id := getString(probe.source, probe.keys...); id != "" {
			return id
		}
	}
	return ""
}

func resolveName(player map[string]any, slotID, proTeamID int, nflTeam string) string {
	if full := getString(player, "fullName"); full != "" {
		return full
	}

	first := getString(player, "firstName")
	last := getString(player, "lastName")
	if first != "" && last != "" {
		return first + " " + last
	}

	if slotID == SlotDefense && proTeamID > 0 && nflTeam != "FA" {
		return nflTeam + " D/ST"
	}
	if last != "" {
		return last
	}
	if proTeamID > 0 && nflTeam != "FA" {
		return nflTeam + " D/ST"
	}
	return "Empty Slot"
}

// resolvePosition finds the player's real position independently of the
// lineup slot, since a player may occupy FLEX.
func resolvePosition(player map[string]any, slotID int) string {
	if label := getString(player, "defaultPosition", "position"); label != "" {
		if pos := positionFromLabel(label); pos != "" {
			return pos
		}
	}
	if id, ok := getInt(player, "defaultPositionId"); ok {
		if pos, found := positionsByDefaultID[id]; found {
			return pos
		}
	}
	if eligible, ok := player["eligiblePositions"].([]any); ok {
		for _, item := range eligible {
			label, isString := item.(string)
			if !isString {
				continue
			}
			if pos := positionFromLabel(label); pos != "" {
				return pos
			}
		}
	}
	if pos, ok := positionsBySlot[slotID]; ok {
		return pos
	}
	return "N/A"
}

func positionFromLabel(label string) string {
	normalized := strings.ToUpper(strings.TrimSpace(label))
	switch normalized {
	case "D/ST", "DST", "DEF", "DEFENSE":
		return "D/ST"
	}
	for _, part := range strings.Split(normalized, "/") {
		switch strings.TrimSpace(part) {
		case "QB", "RB", "WR", "TE", "K":
			return strings.TrimSpace(part)
		}
	}
	return ""
}

func resolveTotalPoints(entry, player map[string]any) float64 {
	sources := []map[string]any{entry, getMap(entry, "playerPoolEntry"), player}
	for _, m := range sources {
		if m == nil {
			continue
		}
		if pts, ok := getFloat(m, "totalPoints", "appliedStatTotal", "appliedTotal"); ok {
			return pts
		}
	}
	return 0
}

func resolveProjectedPoints(entry, player map[string]any) float64 {
	sources := []map[string]any{entry, player, getMap(getMap(entry, "playerPoolEntry"), "player")}
	for _, m := range sources {
		if breakdown, ok := projectionBreakdownFrom(m); ok {
			return breakdown.Sum()
		}
	}
	for _, m := range sources {
		if m == nil {
			continue
		}
		if pts, ok := getFloat(m, "projectedPoints"); ok {
			return pts
		}
	}
	return 0
}

func projectionBreakdownFrom(m map[string]any) (ProjectionBreakdown, bool) {
	raw := getMap(m, "projectedPointBreakdown")
	if raw == nil {
		return ProjectionBreakdown{}, false
	}

	out := ProjectionBreakdown{PerStat: make(map[string]float64, len(raw))}
	for key, value := range raw {
		if key == "usesPoints" {
			if flag, ok := value.(bool); ok {
				out.UsesPoints = flag
			}
			continue
		}
		if num, ok := asFloat64(value); ok {
			out.PerStat[key] = num
		}
	}
	return out, true
}

func resolveOpponent(entry, player map[string]any) string {
	for _, m := range []map[string]any{entry, player} {
		if m == nil {
			continue
		}
		if id, ok := getInt(m, "opponentProTeamId"); ok && id > 0 {
			return ProTeamAbbrev(id)
		}
		if abbrev := getString(m, "opponent"); abbrev != "" {
			return abbrev
		}
	}
	return ""
}

func getMap(m map[string]any, keys ...string) map[string]any {
	if m == nil {
		return nil
	}
	for _, key := range keys {
		if nested, ok := m[key].(map[string]any); ok {
			return nested
		}
	}
	return nil
}

func getString(m map[string]any, keys ...string) string {
	if m == nil {
		return ""
	}
	for _, key := range keys {
		if value, ok := m[key].(string); ok {
			trimmed := strings.TrimSpace(value)
			if trimmed != "" {
				return trimmed
			}
		}
	}
	return ""
}

func getInt(m map[string]any, keys ...string) (int, bool) {
	if v, ok := getInt64(m, keys...); ok {
		return int(v), true
	}
	return 0, false
}

func getInt64(m map[string]any, keys ...string) (int64, bool) {
	if m == nil {
		return 0, false
	}
	for _, key := range keys {
		value, present := m[key]
		if !present {
			continue
		}
		switch typed := value.(type) {
		case int64:
			return typed, true
		case int:
			return int64(typed), true
		case float64:
			return int64(typed), true
		case string:
			if parsed, err := strconv.ParseInt(strings.TrimSpace(typed), 10, 64); err == nil {
				return parsed, true
			}
		}
	}
	return 0, false
}

func getFloat(m map[string]any, keys ...string) (float64, bool) {
	if m == nil {
		return 0, false
	}
	for _, key := range keys {
		value, present := m[key]
		if !present {
			continue
		}
		if num, ok := asFloat64(value); ok {
			return num, true
		}
	}
	return 0, false
}

func asFloat64(value any) (float64, bool) {
	switch typed := value.(type) {
	case float64:
		return typed, true
	case float32:
		return float64(typed), true
	case int:
		return float64(typed), true
	case int64:
		return float64(typed), true
	case string:
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(typed), 64); err == nil {
			return parsed, true
		}
	}
	return 0, false
}
