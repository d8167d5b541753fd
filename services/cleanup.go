package services

import (
	"log"
	"time"

	"faltula/database"
	"faltula/models"
)

// CleanupService handles background cleanup tasks
type CleanupService struct {
	interval time.Duration
	stop     chan struct{}
	done     chan struct{}
}

var cleanupService *CleanupService

// InitCleanupService initializes the singleton cleanup service.
func InitCleanupService() {
	cleanupService = &CleanupService{
		interval: 6 * time.Hour,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// GetCleanupService returns the initialized cleanup service.
func GetCleanupService() *CleanupService {
	return cleanupService
}

// Start starts the background cleanup worker.
func (s *CleanupService) Start() {
	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.RunOnce()
			case <-s.stop:
				return
			}
		}
	}()
}

// Stop stops the cleanup worker and waits for it to exit.
func (s *CleanupService) Stop() {
	close(s.stop)
	<-s.done
}

// RunOnce executes all cleanup passes.
func (s *CleanupService) RunOnce() {
	if err := s.CleanupStaleGuests(); err != nil {
		log.Printf("Error cleaning up stale guests: %v", err)
	}
	if err := s.CleanupExpiredInvites(); err != nil {
		log.Printf("Error cleaning up expired invites: %v", err)
	}
	if err := s.CleanupOrphanedProgress(); err != nil {
		log.Printf("Error cleaning up orphaned progress rows: %v", err)
	}
}

// CleanupStaleGuests removes guest accounts inactive for more than 30 days,
// together with everything hanging off them.
func (s *CleanupService) CleanupStaleGuests() error {
	db := database.GetDB()
	if db == nil {
		return nil
	}

	cutoff := time.Now().AddDate(0, 0, -30)

	var stale []models.User
	if err := db.Where("is_guest = ? AND last_activity < ?", true, cutoff).
		Find(&stale).Error; err != nil {
		return err
	}

	if len(stale) == 0 {
		return nil
	}

	ids := make([]uint, len(stale))
	for i, u := range stale {
		ids[i] = u.ID
	}

	// Children first, users last
	db.Where("user_id IN ?", ids).Delete(&models.Absence{})
	db.Where("user_id IN ?", ids).Delete(&models.ScheduleSlot{})
	db.Where("user_id IN ?", ids).Delete(&models.Note{})
	db.Where("user_id IN ?", ids).Delete(&models.Subject{})
	db.Where("user_id IN ?", ids).Delete(&models.UserAchievement{})
	db.Where("user_id IN ?", ids).Delete(&models.AchievementTracking{})
	db.Where("user_id IN ?", ids).Delete(&models.UserLevel{})
	db.Where("user_id IN ?", ids).Delete(&models.ClassMember{})

	if err := db.Delete(&stale).Error; err != nil {
		return err
	}

	log.Printf("✅ Cleaned up %d stale guest accounts", len(stale))
	return nil
}

// CleanupExpiredInvites marks pending invites past their expiry as expired.
func (s *CleanupService) CleanupExpiredInvites() error {
	db := database.GetDB()
	if db == nil {
		return nil
	}

	res := db.Model(&models.ClassInvite{}).
		Where("status = ? AND expires_at < ?", models.InviteStatusPending, time.Now()).
		Update("status", models.InviteStatusExpired)
	if res.Error != nil {
		return res.Error
	}

	if res.RowsAffected > 0 {
		log.Printf("✅ Expired %d stale class invites", res.RowsAffected)
	}
	return nil
}

// CleanupOrphanedProgress removes achievement and level rows whose user is gone.
func (s *CleanupService) CleanupOrphanedProgress() error {
	db := database.GetDB()
	if db == nil {
		return nil
	}

	db.Where("user_id NOT IN (SELECT id FROM users)").Delete(&models.UserAchievement{})
	db.Where("user_id NOT IN (SELECT id FROM users)").Delete(&models.AchievementTracking{})
	db.Where("user_id NOT IN (SELECT id FROM users)").Delete(&models.UserLevel{})
	return nil
}
