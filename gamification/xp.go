// gamification/xp.go - experience amounts for in-app actions
package gamification

import "faltula/achievements"

// XP awards for semantic user actions. These are granted only after the
// primary write for the action has succeeded.
const (
	XPAbsenceLogged   = 5
	XPNoteCreated     = 5
	XPScheduleSlot    = 10
	XPSubjectCreated  = 10
	XPClassJoined     = 15
	XPGradesImported  = 25
	XPProfileUpdated  = 10
	XPSectionExplored = 2
)

// AchievementXP returns the XP award for unlocking an achievement of the
// given rarity.
func AchievementXP(rarity achievements.Rarity) int {
	switch rarity {
	case achievements.RarityCommon:
		return 10
	case achievements.RarityRare:
		return 25
	case achievements.RarityEpic:
		return 50
	case achievements.RarityLegendary:
		return 100
	default:
		return 10
	}
}
