// models/achievement.go - Gamification Persistence Models
package models

import "time"

// UserAchievement is one unlocked achievement, append-only per user. The
// achievement id references the static in-process catalog, not a table.
// The composite unique index enforces at-most-once unlock per user.
type UserAchievement struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserID        uint      `gorm:"not null;uniqueIndex:idx_user_achievement" json:"user_id"`
	AchievementID string    `gorm:"not null;size:50;uniqueIndex:idx_user_achievement" json:"achievement_id"`
	UnlockedAt    time.Time `json:"unlocked_at"`

	User *User `gorm:"foreignKey:UserID" json:"-"`
}

// AchievementTracking holds the engine's tracking counters as a single
// JSON document, one row per user, latest-wins.
type AchievementTracking struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex" json:"user_id"`
	Data      []byte    `gorm:"type:jsonb" json:"data"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserLevel is the leveling row. TotalXP is the source of truth; Level is
// derived from it on every write, and tier/progress are recomputed on
// every read rather than stored.
type UserLevel struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex" json:"user_id"`
	Level     int       `gorm:"default:1" json:"level"`
	TotalXP   int       `gorm:"column:total_experience;default:0" json:"total_experience"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (UserAchievement) TableName() string {
	return "user_achievements"
}

func (AchievementTracking) TableName() string {
	return "achievement_tracking"
}

func (UserLevel) TableName() string {
	return "user_levels"
}
