// services/achievement_store.go - GORM-backed persistence for the engine
package services

import (
	"context"
	"errors"
	"time"

	"faltula/achievements"
	"faltula/gamification"
	"faltula/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AchievementStore implements achievements.Store and gamification.LevelStore
// over PostgreSQL. Unlock uniqueness rests on the composite unique index of
// user_achievements; XP application is one transaction.
type AchievementStore struct {
	db *gorm.DB
}

func NewAchievementStore(db *gorm.DB) *AchievementStore {
	return &AchievementStore{db: db}
}

// UnlockedIDs loads the user's unlocked achievement ids.
func (s *AchievementStore) UnlockedIDs(ctx context.Context, userID uint) (map[string]bool, error) {
	var ids []string
	err := s.db.WithContext(ctx).
		Model(&models.UserAchievement{}).
		Where("user_id = ?", userID).
		Pluck("achievement_id", &ids).Error
	if err != nil {
		return nil, err
	}
	unlocked := make(map[string]bool, len(ids))
	for _, id := range ids {
		unlocked[id] = true
	}
	return unlocked, nil
}

// InsertUnlock appends one unlock row. A unique violation means another
// writer (e.g. a second tab) already unlocked it and is reported as
// achievements.ErrAlreadyUnlocked.
func (s *AchievementStore) InsertUnlock(ctx context.Context, userID uint, achievementID string) error {
	row := models.UserAchievement{
		UserID:        userID,
		AchievementID: achievementID,
		UnlockedAt:    time.Now().UTC(),
	}
	err := s.db.WithContext(ctx).Create(&row).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return achievements.ErrAlreadyUnlocked
	}
	return err
}

// LatestTracking returns the user's tracking blob, or nil if none exists.
func (s *AchievementStore) LatestTracking(ctx context.Context, userID uint) ([]byte, error) {
	var row models.AchievementTracking
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return row.Data, nil
}

// SaveTracking upserts the user's single tracking row, latest-wins.
func (s *AchievementStore) SaveTracking(ctx context.Context, userID uint, blob []byte) error {
	row := models.AchievementTracking{
		UserID:    userID,
		Data:      blob,
		UpdatedAt: time.Now().UTC(),
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
		}).
		Create(&row).Error
}

// Reset wipes the user's unlock rows and tracking blob in one transaction.
func (s *AchievementStore) Reset(ctx context.Context, userID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&models.UserAchievement{}).Error; err != nil {
			return err
		}
		return tx.Where("user_id = ?", userID).Delete(&models.AchievementTracking{}).Error
	})
}

// ApplyXPDelta atomically increments total_experience and recomputes the
// level. Tier is derived from the resulting level, never stored.
func (s *AchievementStore) ApplyXPDelta(ctx context.Context, userID uint, amount int) (gamification.LevelResult, error) {
	var result gamification.LevelResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row models.UserLevel
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ?", userID).
			First(&row).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			row = models.UserLevel{UserID: userID, Level: 1}
		} else if err != nil {
			return err
		}

		oldLevel := gamification.LevelForXP(row.TotalXP)
		row.TotalXP += amount
		row.Level = gamification.LevelForXP(row.TotalXP)
		row.UpdatedAt = time.Now().UTC()

		if row.ID == 0 {
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		} else if err := tx.Save(&row).Error; err != nil {
			return err
		}

		result = gamification.LevelResult{
			NewLevel:  row.Level,
			Tier:      gamification.TierForLevel(row.Level),
			TotalXP:   row.TotalXP,
			LeveledUp: row.Level > oldLevel,
		}
		return nil
	})
	return result, err
}

// Level reads the user's leveling row, creating a zero-valued one on
// first access. Derived fields are recomputed from total_experience so a
// desynced stored level can never leak out.
func (s *AchievementStore) Level(ctx context.Context, userID uint) (gamification.LevelRecord, error) {
	var row models.UserLevel
	err := s.db.WithContext(ctx).
		Where(models.UserLevel{UserID: userID}).
		Attrs(models.UserLevel{Level: 1}).
		FirstOrCreate(&row).Error
	if err != nil {
		return gamification.LevelRecord{}, err
	}

	level := gamification.LevelForXP(row.TotalXP)
	return gamification.LevelRecord{
		Level:         level,
		TotalXP:       row.TotalXP,
		Tier:          gamification.TierForLevel(level),
		LevelProgress: gamification.LevelProgress(row.TotalXP),
	}, nil
}
