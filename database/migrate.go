// database/migrate.go - Database Migration Runner
package database

import (
	"log"

	"faltula/models"
)

// RunMigrations runs all database migrations
func RunMigrations() {
	db := GetDB()
	log.Println("🔄 Running database migrations...")

	// Core application models
	if err := db.AutoMigrate(
		&models.User{},
		&models.Subject{},
		&models.ScheduleSlot{},
		&models.Absence{},
		&models.Note{},
		&models.UserAchievement{},
		&models.AchievementTracking{},
		&models.UserLevel{},
	); err != nil {
		log.Fatalf("❌ Failed to run core migrations: %v", err)
	}

	log.Println("✅ Core migrations completed")

	// Run class (study group) migrations
	if err := RunClassMigrations(db); err != nil {
		log.Fatalf("❌ Failed to run class migrations: %v", err)
	}

	// Create indexes for core tables
	createCoreIndexes()

	log.Println("✅ All migrations completed successfully")
}

// createCoreIndexes creates indexes for core tables
func createCoreIndexes() {
	db := GetDB()
	log.Println("Creating core indexes...")

	// User indexes
	db.Exec("CREATE INDEX IF NOT EXISTS idx_users_username ON users(username)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_users_email ON users(email)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_users_guest ON users(is_guest)")

	// Subject / schedule / absence indexes
	db.Exec("CREATE INDEX IF NOT EXISTS idx_subjects_user ON subjects(user_id)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_schedule_slots_user ON schedule_slots(user_id)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_schedule_slots_subject ON schedule_slots(subject_id)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_absences_user ON absences(user_id)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_absences_subject ON absences(subject_id)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_absences_date ON absences(date)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_notes_user ON notes(user_id)")

	// Gamification indexes
	db.Exec("CREATE INDEX IF NOT EXISTS idx_user_achievements_user ON user_achievements(user_id)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_achievement_tracking_user ON achievement_tracking(user_id)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_user_levels_user ON user_levels(user_id)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_user_levels_xp ON user_levels(total_experience DESC)")

	log.Println("✅ Core indexes created successfully")
}
