// database/class_migrations.go - Class (Study Group) Database Migrations
package database

import (
	"log"

	"faltula/models"

	"gorm.io/gorm"
)

// RunClassMigrations creates all class/study-group tables
func RunClassMigrations(db *gorm.DB) error {
	log.Println("Running class migrations...")

	if err := db.AutoMigrate(
		&models.Class{},
		&models.ClassMember{},
		&models.ClassInvite{},
	); err != nil {
		return err
	}

	if err := createClassIndexes(db); err != nil {
		return err
	}

	log.Println("✅ Class migrations completed successfully")
	return nil
}

// createClassIndexes creates database indexes for class tables
func createClassIndexes(db *gorm.DB) error {
	log.Println("Creating class indexes...")

	db.Exec("CREATE INDEX IF NOT EXISTS idx_classes_creator ON classes(creator_id)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_classes_code ON classes(class_code)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_classes_public ON classes(is_public)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_classes_active ON classes(is_active)")

	db.Exec("CREATE INDEX IF NOT EXISTS idx_class_members_class ON class_members(class_id)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_class_members_user ON class_members(user_id)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_class_members_active ON class_members(is_active)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_class_members_role ON class_members(role)")

	db.Exec("CREATE INDEX IF NOT EXISTS idx_class_invites_class ON class_invites(class_id)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_class_invites_to ON class_invites(to_user_id)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_class_invites_status ON class_invites(status)")

	log.Println("✅ Class indexes created successfully")
	return nil
}
