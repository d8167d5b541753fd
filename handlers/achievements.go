// handlers/achievements.go
package handlers

import (
	"faltula/achievements"
	"faltula/database"
	"faltula/middleware"
	"faltula/models"

	"github.com/gofiber/fiber/v2"
)

type achievementView struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Category    string `json:"category"`
	Rarity      string `json:"rarity"`
	Secret      bool   `json:"is_secret"`
	Unlocked    bool   `json:"unlocked"`
	UnlockedAt  string `json:"unlocked_at,omitempty"`
}

// GetAchievements returns the full catalog annotated with the user's
// unlock state. Locked secret entries are masked.
func GetAchievements(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"success": false, "error": "Unauthorized"})
	}

	db := database.GetDB()
	if db == nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Database not available"})
	}

	var rows []models.UserAchievement
	if err := db.Where("user_id = ?", userID).Find(&rows).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Failed to load achievements"})
	}

	unlockedAt := make(map[string]string, len(rows))
	for _, r := range rows {
		unlockedAt[r.AchievementID] = r.UnlockedAt.Format("2006-01-02T15:04:05Z07:00")
	}

	catalog := achievements.Catalog()
	views := make([]achievementView, 0, len(catalog))
	total := 0
	unlocked := 0

	for _, a := range catalog {
		when, isUnlocked := unlockedAt[a.ID]
		total++
		if isUnlocked {
			unlocked++
		}

		view := achievementView{
			ID:          a.ID,
			Name:        a.Name,
			Description: a.Description,
			Icon:        a.Icon,
			Category:    string(a.Category),
			Rarity:      string(a.Rarity),
			Secret:      a.Secret,
			Unlocked:    isUnlocked,
			UnlockedAt:  when,
		}

		// Locked secrets show up as anonymous placeholders
		if a.Secret && !isUnlocked {
			view.Name = "???"
			view.Description = "Conquista secreta"
			view.Icon = "🔒"
		}

		views = append(views, view)
	}

	return c.JSON(fiber.Map{
		"success":      true,
		"achievements": views,
		"total":        total,
		"unlocked":     unlocked,
	})
}

// GetUnlockedAchievements returns only the user's unlocked entries
func GetUnlockedAchievements(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"success": false, "error": "Unauthorized"})
	}

	db := database.GetDB()
	if db == nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Database not available"})
	}

	var rows []models.UserAchievement
	if err := db.Where("user_id = ?", userID).Order("unlocked_at DESC").Find(&rows).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Failed to load achievements"})
	}

	views := make([]achievementView, 0, len(rows))
	for _, r := range rows {
		a, ok := achievements.CatalogEntry(r.AchievementID)
		if !ok {
			continue
		}
		views = append(views, achievementView{
			ID:          a.ID,
			Name:        a.Name,
			Description: a.Description,
			Icon:        a.Icon,
			Category:    string(a.Category),
			Rarity:      string(a.Rarity),
			Secret:      a.Secret,
			Unlocked:    true,
			UnlockedAt:  r.UnlockedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}

	return c.JSON(fiber.Map{"success": true, "achievements": views})
}

// ResetAchievements wipes the caller's achievements, tracking state and
// cooldowns. The wipe is synchronous; when this returns, the slate is
// clean both in memory and in storage.
func ResetAchievements(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"success": false, "error": "Unauthorized"})
	}

	sess := session(c, userID)
	if sess == nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Progress unavailable"})
	}

	if err := sess.Achievements.Reset(c.Context()); err != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Failed to reset achievements"})
	}

	return c.JSON(fiber.Map{"success": true})
}
