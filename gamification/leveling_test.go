package gamification

import "testing"

func TestLevelForXP(t *testing.T) {
	tests := []struct {
		xp    int
		level int
	}{
		{-50, 1},
		{0, 1},
		{99, 1},
		{100, 2},
		{999, 10},
		{1000, 11},
		{2674, 20},
		{2675, 21},
		{6675, 31},
		{10675, 41},
		{14674, 50},
		{14675, 51},
		{50000, 139},
	}
	for _, tt := range tests {
		if got := LevelForXP(tt.xp); got != tt.level {
			t.Errorf("LevelForXP(%d) = %d, want %d", tt.xp, got, tt.level)
		}
	}
}

func TestLevelForXPMonotonic(t *testing.T) {
	prev := 0
	for xp := 0; xp <= 20000; xp += 7 {
		level := LevelForXP(xp)
		if level < prev {
			t.Fatalf("level dropped from %d to %d at %d xp", prev, level, xp)
		}
		prev = level
	}
}

func TestXPAtLevelStart(t *testing.T) {
	tests := []struct {
		level int
		xp    float64
	}{
		{0, 0},
		{1, 0},
		{2, 100},
		{10, 900},
		{11, 1000},
		{12, 1167.5},
		{20, 2507.5},
		{21, 2675},
		{31, 6675},
		{51, 14675},
		{52, 15075},
	}
	for _, tt := range tests {
		if got := XPAtLevelStart(tt.level); got != tt.xp {
			t.Errorf("XPAtLevelStart(%d) = %v, want %v", tt.level, got, tt.xp)
		}
	}
}

// Every level's start must round-trip: the xp at a level's start resolves
// back to that level.
func TestLevelBoundariesRoundTrip(t *testing.T) {
	for level := 2; level <= 80; level++ {
		start := int(XPAtLevelStart(level))
		if XPAtLevelStart(level) > float64(start) {
			start++ // first whole xp total inside the level
		}
		if got := LevelForXP(start); got != level {
			t.Errorf("LevelForXP(%d) = %d, want %d", start, got, level)
		}
		if got := LevelForXP(start - 1); got != level-1 {
			t.Errorf("LevelForXP(%d) = %d, want %d", start-1, got, level-1)
		}
	}
}

func TestLevelProgress(t *testing.T) {
	if got := LevelProgress(0); got != 0 {
		t.Errorf("LevelProgress(0) = %v, want 0", got)
	}
	if got := LevelProgress(50); got != 50 {
		t.Errorf("LevelProgress(50) = %v, want 50", got)
	}
	if got := LevelProgress(100); got != 0 {
		t.Errorf("LevelProgress(100) = %v, want 0 at a fresh level", got)
	}
	for xp := 0; xp <= 20000; xp += 13 {
		p := LevelProgress(xp)
		if p < 0 || p > 100 {
			t.Fatalf("LevelProgress(%d) = %v out of range", xp, p)
		}
	}
}

func TestTierForLevel(t *testing.T) {
	tests := []struct {
		level int
		tier  Tier
	}{
		{1, TierCalouro},
		{10, TierCalouro},
		{11, TierVeterano},
		{25, TierVeterano},
		{26, TierExpert},
		{50, TierExpert},
		{51, TierLenda},
		{200, TierLenda},
	}
	for _, tt := range tests {
		if got := TierForLevel(tt.level); got != tt.tier {
			t.Errorf("TierForLevel(%d) = %s, want %s", tt.level, got, tt.tier)
		}
	}
}

func TestTierName(t *testing.T) {
	if got := TierName(TierLenda); got != "Lenda" {
		t.Errorf("TierName(lenda) = %q", got)
	}
	if got := TierName(Tier("custom")); got != "custom" {
		t.Errorf("TierName(custom) = %q", got)
	}
}
