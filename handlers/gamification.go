// handlers/gamification.go
package handlers

import (
	"faltula/gamification"
	"faltula/middleware"

	"github.com/gofiber/fiber/v2"
)

// GetProgression returns the caller's level, tier and XP progress
func GetProgression(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"success": false, "error": "Unauthorized"})
	}

	sess := session(c, userID)
	if sess == nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Progress unavailable"})
	}

	record, err := sess.XP.Progression(c.Context())
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Failed to load progression"})
	}

	nextLevelXP := gamification.XPAtLevelStart(record.Level + 1)

	return c.JSON(fiber.Map{
		"success":        true,
		"level":          record.Level,
		"total_xp":       record.TotalXP,
		"tier":           gamification.TierName(record.Tier),
		"level_progress": record.LevelProgress,
		"level_start_xp": gamification.XPAtLevelStart(record.Level),
		"next_level_xp":  nextLevelXP,
	})
}
