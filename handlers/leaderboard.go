// handlers/leaderboard.go
package handlers

import (
	"os"
	"strconv"

	"faltula/database"
	"faltula/gamification"
	"faltula/middleware"
	"faltula/models"

	"github.com/gofiber/fiber/v2"
)

type leaderboardEntry struct {
	Rank        int    `json:"rank"`
	UserID      uint   `json:"user_id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Avatar      string `json:"avatar"`
	Level       int    `json:"level"`
	TotalXP     int    `json:"total_xp"`
	Tier        string `json:"tier"`
}

// rankingMaxLevel caps the level shown on the public ranking. The real
// level keeps growing past the cap; only the display clamps.
func rankingMaxLevel() int {
	if val := os.Getenv("RANKING_MAX_LEVEL"); val != "" {
		if n, err := strconv.Atoi(val); err == nil && n > 0 {
			return n
		}
	}
	return 99
}

// GetLeaderboard returns the global XP ranking
// GET /api/leaderboard?limit=100&offset=0
func GetLeaderboard(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 100)
	if limit < 1 {
		limit = 1
	}
	if limit > 100 {
		limit = 100
	}
	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}

	db := database.GetDB()
	if db == nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Database not available"})
	}

	type row struct {
		UserID      uint
		Username    string
		DisplayName string
		Avatar      string
		TotalXP     int `gorm:"column:total_experience"`
	}

	var rows []row
	err := db.Model(&models.UserLevel{}).
		Select("user_levels.user_id, users.username, users.display_name, users.avatar, user_levels.total_experience").
		Joins("JOIN users ON users.id = user_levels.user_id").
		Where("users.is_guest = ? AND users.is_banned = ?", false, false).
		Order("user_levels.total_experience DESC, user_levels.user_id ASC").
		Limit(limit).
		Offset(offset).
		Scan(&rows).Error
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Failed to fetch leaderboard"})
	}

	maxLevel := rankingMaxLevel()
	entries := make([]leaderboardEntry, 0, len(rows))
	for i, r := range rows {
		level := gamification.LevelForXP(r.TotalXP)
		if level > maxLevel {
			level = maxLevel
		}
		entries = append(entries, leaderboardEntry{
			Rank:        offset + i + 1,
			UserID:      r.UserID,
			Username:    r.Username,
			DisplayName: r.DisplayName,
			Avatar:      r.Avatar,
			Level:       level,
			TotalXP:     r.TotalXP,
			Tier:        gamification.TierName(gamification.TierForLevel(level)),
		})
	}

	var total int64
	db.Model(&models.UserLevel{}).
		Joins("JOIN users ON users.id = user_levels.user_id").
		Where("users.is_guest = ? AND users.is_banned = ?", false, false).
		Count(&total)

	return c.JSON(fiber.Map{
		"success": true,
		"entries": entries,
		"total":   total,
		"limit":   limit,
		"offset":  offset,
	})
}

// GetMyRank returns the caller's position on the global ranking
func GetMyRank(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"success": false, "error": "Unauthorized"})
	}

	db := database.GetDB()
	if db == nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Database not available"})
	}

	var myLevel models.UserLevel
	if err := db.Where("user_id = ?", userID).First(&myLevel).Error; err != nil {
		return c.JSON(fiber.Map{"success": true, "rank": 0, "total_xp": 0})
	}

	var ahead int64
	db.Model(&models.UserLevel{}).
		Joins("JOIN users ON users.id = user_levels.user_id").
		Where("users.is_guest = ? AND users.is_banned = ?", false, false).
		Where("user_levels.total_experience > ?", myLevel.TotalXP).
		Count(&ahead)

	level := gamification.LevelForXP(myLevel.TotalXP)
	if max := rankingMaxLevel(); level > max {
		level = max
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"rank":     ahead + 1,
		"level":    level,
		"total_xp": myLevel.TotalXP,
		"tier":     gamification.TierName(gamification.TierForLevel(level)),
	})
}
