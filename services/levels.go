package services

// Level curve: three flat XP-cost tiers instead of a power curve, capped at 50.
// Levels 1-10 cost 100 XP each, 11-25 cost 200 XP each, 26-50 cost 500 XP each.
// All functions here are pure — every component that needs "did the user just
// level up" goes through these and nothing else.

const MaxLevel = 50

// RequiredXPForLevel returns the XP cost to advance past the given level.
func RequiredXPForLevel(level int) int64 {
	switch {
	case level <= 10:
		return 100
	case level <= 25:
		return 200
	default:
		return 500
	}
}

// LevelForXP maps cumulative XP to a level (1..MaxLevel). Surplus XP beyond the
// level-50 threshold never raises the level further.
func LevelForXP(xp int64) int {
	level := 1
	remaining := xp
	for level < MaxLevel && remaining >= RequiredXPForLevel(level) {
		remaining -= RequiredXPForLevel(level)
		level++
	}
	return level
}

// xpFloorForLevel sums the tier costs for all levels strictly below level.
func xpFloorForLevel(level int) int64 {
	var total int64
	for l := 1; l < level; l++ {
		total += RequiredXPForLevel(l)
	}
	return total
}

// LevelProgress is the progress-within-level pair used by the UI.
type LevelProgress struct {
	ConsumedSoFar int64 `json:"consumed_so_far"`
	Required      int64 `json:"required"`
}

// ProgressWithinLevel reports how far into `level` the given cumulative XP sits.
func ProgressWithinLevel(xp int64, level int) LevelProgress {
	return LevelProgress{
		ConsumedSoFar: xp - xpFloorForLevel(level),
		Required:      RequiredXPForLevel(level),
	}
}
