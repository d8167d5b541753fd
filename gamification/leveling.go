// gamification/leveling.go - level, tier and progress derivation
package gamification

// Tier is the coarse rank band derived deterministically from level.
type Tier string

const (
	TierCalouro  Tier = "calouro"
	TierVeterano Tier = "veterano"
	TierExpert   Tier = "expert"
	TierLenda    Tier = "lenda"
)

// band is one segment of the piecewise leveling staircase. Levels in
// [StartLevel, nextBand.StartLevel) each cost Cost XP; StartXP is the
// cumulative total at the band's first level.
type band struct {
	StartLevel int
	StartXP    float64
	Cost       float64
}

// The staircase: 100 XP/level through 10, 167.5/level through 20, then a
// flat 400/level from the 2675 threshold onward. The last band is
// unbounded; level has no hard cap.
var bands = []band{
	{StartLevel: 1, StartXP: 0, Cost: 100},
	{StartLevel: 11, StartXP: 1000, Cost: 167.5},
	{StartLevel: 21, StartXP: 2675, Cost: 400},
	{StartLevel: 31, StartXP: 6675, Cost: 400},
	{StartLevel: 41, StartXP: 10675, Cost: 400},
	{StartLevel: 51, StartXP: 14675, Cost: 400},
}

// LevelForXP derives the level from total experience. Pure, deterministic
// and monotonically non-decreasing in totalXP.
func LevelForXP(totalXP int) int {
	if totalXP <= 0 {
		return 1
	}
	xp := float64(totalXP)
	b := bands[0]
	for i := 1; i < len(bands); i++ {
		if xp < bands[i].StartXP {
			break
		}
		b = bands[i]
	}
	return b.StartLevel + int((xp-b.StartXP)/b.Cost)
}

// XPAtLevelStart returns the cumulative experience at which the given
// level begins.
func XPAtLevelStart(level int) float64 {
	if level <= 1 {
		return 0
	}
	b := bands[0]
	for i := 1; i < len(bands); i++ {
		if level < bands[i].StartLevel {
			break
		}
		b = bands[i]
	}
	return b.StartXP + float64(level-b.StartLevel)*b.Cost
}

// LevelProgress returns the percentage of XP earned within the current
// level's band, clamped to [0,100].
func LevelProgress(totalXP int) float64 {
	level := LevelForXP(totalXP)
	start := XPAtLevelStart(level)
	end := XPAtLevelStart(level + 1)
	if end <= start {
		return 0
	}
	pct := (float64(totalXP) - start) / (end - start) * 100
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

// TierForLevel maps a level to its tier. Tier is never stored on its own
// authority; callers recompute it from level on every read.
func TierForLevel(level int) Tier {
	switch {
	case level <= 10:
		return TierCalouro
	case level <= 25:
		return TierVeterano
	case level <= 50:
		return TierExpert
	default:
		return TierLenda
	}
}

// TierName returns the display name for a tier.
func TierName(t Tier) string {
	switch t {
	case TierCalouro:
		return "Calouro"
	case TierVeterano:
		return "Veterano"
	case TierExpert:
		return "Expert"
	case TierLenda:
		return "Lenda"
	default:
		return string(t)
	}
}
