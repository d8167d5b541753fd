// services/class_service.go - Class (study group) business logic
package services

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"faltula/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ClassService struct {
	db *gorm.DB
}

func NewClassService(db *gorm.DB) *ClassService {
	return &ClassService{db: db}
}

// ================== CLASS CRUD OPERATIONS ==================

// CreateClass creates a new class with the user as leader
func (s *ClassService) CreateClass(name, description string, isPublic bool, creatorID uint) (*models.Class, error) {
	if name == "" {
		return nil, errors.New("class name is required")
	}

	classCode := s.generateUniqueClassCode()

	class := &models.Class{
		Name:        name,
		Description: description,
		ClassCode:   classCode,
		IsPublic:    isPublic,
		CreatorID:   creatorID,
		IsActive:    true,
		CreatedAt:   time.Now(),
	}

	// Create class and add creator as leader in a transaction
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(class).Error; err != nil {
			return err
		}

		member := &models.ClassMember{
			ClassID:  class.ID,
			UserID:   creatorID,
			Role:     models.ClassRoleLeader,
			JoinedAt: time.Now(),
			IsActive: true,
		}

		return tx.Create(member).Error
	})

	if err != nil {
		return nil, err
	}

	return class, nil
}

// GetClassByID retrieves a class by ID with members preloaded
func (s *ClassService) GetClassByID(classID uint) (*models.Class, error) {
	var class models.Class
	err := s.db.Where("id = ? AND is_active = ?", classID, true).
		Preload("Members", "is_active = ?", true).
		Preload("Members.User").
		First(&class).Error

	if err != nil {
		return nil, err
	}

	return &class, nil
}

// GetClassByCode retrieves a class by its join code
func (s *ClassService) GetClassByCode(code string) (*models.Class, error) {
	var class models.Class
	err := s.db.Where("class_code = ? AND is_active = ?", code, true).
		Preload("Members", "is_active = ?", true).
		First(&class).Error

	if err != nil {
		return nil, errors.New("class not found or inactive")
	}

	return &class, nil
}

// GetUserClasses retrieves all classes a user is a member of
func (s *ClassService) GetUserClasses(userID uint) ([]models.Class, error) {
	var classes []models.Class

	err := s.db.Joins("JOIN class_members ON class_members.class_id = classes.id").
		Where("class_members.user_id = ? AND class_members.is_active = ? AND classes.is_active = ?",
			userID, true, true).
		Preload("Members", "is_active = ?", true).
		Find(&classes).Error

	return classes, err
}

// UpdateClass updates class information (leader only)
func (s *ClassService) UpdateClass(classID uint, name, description string, isPublic bool, updaterID uint) error {
	if !s.IsClassLeader(updaterID, classID) {
		return errors.New("only the class leader can update the class")
	}

	updates := map[string]interface{}{
		"name":        name,
		"description": description,
		"is_public":   isPublic,
		"updated_at":  time.Now(),
	}

	return s.db.Model(&models.Class{}).Where("id = ?", classID).Updates(updates).Error
}

// DeleteClass soft deletes a class (leader only)
func (s *ClassService) DeleteClass(classID, leaderID uint) error {
	if !s.IsClassLeader(leaderID, classID) {
		return errors.New("only the class leader can delete the class")
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.ClassMember{}).Where("class_id = ?", classID).
			Update("is_active", false).Error; err != nil {
			return err
		}

		return tx.Model(&models.Class{}).Where("id = ?", classID).
			Update("is_active", false).Error
	})
}

// ================== MEMBERSHIP OPERATIONS ==================

// JoinClass adds a user to a class via its join code
func (s *ClassService) JoinClass(userID uint, classCode string) (*models.Class, error) {
	class, err := s.GetClassByCode(classCode)
	if err != nil {
		return nil, err
	}

	if s.IsClassMember(userID, class.ID) {
		return nil, errors.New("already a member of this class")
	}

	// Rejoining reactivates the old row instead of duplicating it
	var existing models.ClassMember
	err = s.db.Where("class_id = ? AND user_id = ?", class.ID, userID).First(&existing).Error
	if err == nil {
		updates := map[string]interface{}{
			"is_active": true,
			"joined_at": time.Now(),
			"role":      models.ClassRoleMember,
		}
		if err := s.db.Model(&existing).Updates(updates).Error; err != nil {
			return nil, err
		}
		return class, nil
	}

	member := &models.ClassMember{
		ClassID:  class.ID,
		UserID:   userID,
		Role:     models.ClassRoleMember,
		JoinedAt: time.Now(),
		IsActive: true,
	}

	if err := s.db.Create(member).Error; err != nil {
		return nil, err
	}

	return class, nil
}

// LeaveClass removes a user from a class
func (s *ClassService) LeaveClass(userID, classID uint) error {
	var member models.ClassMember
	if err := s.db.Where("class_id = ? AND user_id = ? AND is_active = ?", classID, userID, true).
		First(&member).Error; err != nil {
		return errors.New("not a member of this class")
	}

	// Leader cannot leave without transferring leadership
	if member.Role == models.ClassRoleLeader {
		return errors.New("class leader must transfer leadership before leaving")
	}

	return s.db.Model(&member).Update("is_active", false).Error
}

// RemoveMember removes a member from a class (leader only)
func (s *ClassService) RemoveMember(classID, leaderID, memberID uint) error {
	if !s.IsClassLeader(leaderID, classID) {
		return errors.New("only the class leader can remove members")
	}

	var target models.ClassMember
	if err := s.db.Where("class_id = ? AND user_id = ?", classID, memberID).First(&target).Error; err != nil {
		return errors.New("member not found")
	}

	if target.Role == models.ClassRoleLeader {
		return errors.New("cannot remove the class leader")
	}

	return s.db.Model(&target).Update("is_active", false).Error
}

// TransferLeadership hands the class over to another active member
func (s *ClassService) TransferLeadership(classID, currentLeaderID, newLeaderID uint) error {
	if !s.IsClassLeader(currentLeaderID, classID) {
		return errors.New("only the class leader can transfer leadership")
	}

	var newLeader models.ClassMember
	if err := s.db.Where("class_id = ? AND user_id = ? AND is_active = ?", classID, newLeaderID, true).
		First(&newLeader).Error; err != nil {
		return errors.New("new leader must be an active class member")
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.ClassMember{}).
			Where("class_id = ? AND user_id = ?", classID, currentLeaderID).
			Update("role", models.ClassRoleMember).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.ClassMember{}).
			Where("class_id = ? AND user_id = ?", classID, newLeaderID).
			Update("role", models.ClassRoleLeader).Error; err != nil {
			return err
		}

		return tx.Model(&models.Class{}).
			Where("id = ?", classID).
			Update("creator_id", newLeaderID).Error
	})
}

// TouchMember updates a member's last activity timestamp
func (s *ClassService) TouchMember(classID, userID uint) error {
	return s.db.Model(&models.ClassMember{}).
		Where("class_id = ? AND user_id = ?", classID, userID).
		Update("last_active", time.Now()).Error
}

// ================== INVITES ==================

// CreateInvite creates a single-use invite into a class (leader only)
func (s *ClassService) CreateInvite(classID, fromUserID uint, toUserID *uint, ttl time.Duration) (*models.ClassInvite, error) {
	if !s.IsClassLeader(fromUserID, classID) {
		return nil, errors.New("only the class leader can invite")
	}

	invite := &models.ClassInvite{
		ClassID:    classID,
		Code:       uuid.New().String(),
		FromUserID: fromUserID,
		ToUserID:   toUserID,
		Status:     models.InviteStatusPending,
		ExpiresAt:  time.Now().Add(ttl),
	}

	if err := s.db.Create(invite).Error; err != nil {
		return nil, err
	}

	return invite, nil
}

// AcceptInvite consumes a pending invite and joins the class
func (s *ClassService) AcceptInvite(userID uint, code string) (*models.Class, error) {
	var invite models.ClassInvite
	if err := s.db.Where("code = ?", code).First(&invite).Error; err != nil {
		return nil, errors.New("invite not found")
	}

	if invite.Status != models.InviteStatusPending {
		return nil, errors.New("invite is no longer valid")
	}

	if time.Now().After(invite.ExpiresAt) {
		s.db.Model(&invite).Update("status", models.InviteStatusExpired)
		return nil, errors.New("invite has expired")
	}

	if invite.ToUserID != nil && *invite.ToUserID != userID {
		return nil, errors.New("invite is addressed to another user")
	}

	class, err := s.GetClassByID(invite.ClassID)
	if err != nil {
		return nil, errors.New("class not found or inactive")
	}

	if s.IsClassMember(userID, class.ID) {
		return nil, errors.New("already a member of this class")
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		member := &models.ClassMember{
			ClassID:  class.ID,
			UserID:   userID,
			Role:     models.ClassRoleMember,
			JoinedAt: time.Now(),
			IsActive: true,
		}
		if err := tx.Create(member).Error; err != nil {
			return err
		}

		return tx.Model(&invite).Updates(map[string]interface{}{
			"status":     models.InviteStatusAccepted,
			"to_user_id": userID,
			"updated_at": time.Now(),
		}).Error
	})

	if err != nil {
		return nil, err
	}

	return class, nil
}

// DeclineInvite marks a pending invite as declined
func (s *ClassService) DeclineInvite(userID uint, code string) error {
	var invite models.ClassInvite
	if err := s.db.Where("code = ?", code).First(&invite).Error; err != nil {
		return errors.New("invite not found")
	}

	if invite.Status != models.InviteStatusPending {
		return errors.New("invite is no longer valid")
	}

	if invite.ToUserID != nil && *invite.ToUserID != userID {
		return errors.New("invite is addressed to another user")
	}

	return s.db.Model(&invite).Updates(map[string]interface{}{
		"status":     models.InviteStatusDeclined,
		"updated_at": time.Now(),
	}).Error
}

// ================== DISCOVERY ==================

// SearchPublicClasses searches for public classes by name or description
func (s *ClassService) SearchPublicClasses(query string, limit int) ([]models.Class, error) {
	var classes []models.Class

	searchQuery := s.db.Where("is_public = ? AND is_active = ?", true, true)

	if query != "" {
		searchQuery = searchQuery.Where("name ILIKE ? OR description ILIKE ?", "%"+query+"%", "%"+query+"%")
	}

	err := searchQuery.
		Preload("Members", "is_active = ?", true).
		Limit(limit).
		Order("created_at DESC").
		Find(&classes).Error

	return classes, err
}

// GetPopularClasses returns public classes with the most members
func (s *ClassService) GetPopularClasses(limit int) ([]models.Class, error) {
	var classes []models.Class

	err := s.db.
		Select("classes.*, COUNT(class_members.id) as member_count").
		Joins("LEFT JOIN class_members ON class_members.class_id = classes.id AND class_members.is_active = true").
		Where("classes.is_public = ? AND classes.is_active = ?", true, true).
		Group("classes.id").
		Order("member_count DESC").
		Limit(limit).
		Preload("Members", "is_active = ?", true).
		Find(&classes).Error

	return classes, err
}

// ================== HELPER FUNCTIONS ==================

// IsClassMember checks if a user is an active member of a class
func (s *ClassService) IsClassMember(userID, classID uint) bool {
	var count int64
	s.db.Model(&models.ClassMember{}).
		Where("class_id = ? AND user_id = ? AND is_active = ?", classID, userID, true).
		Count(&count)
	return count > 0
}

// IsClassLeader checks if a user is the active leader of a class
func (s *ClassService) IsClassLeader(userID, classID uint) bool {
	var member models.ClassMember
	err := s.db.Where("class_id = ? AND user_id = ? AND is_active = ?", classID, userID, true).
		First(&member).Error

	if err != nil {
		return false
	}

	return member.Role == models.ClassRoleLeader
}

// MemberCount returns the number of active members in a class
func (s *ClassService) MemberCount(classID uint) int64 {
	var count int64
	s.db.Model(&models.ClassMember{}).
		Where("class_id = ? AND is_active = ?", classID, true).
		Count(&count)
	return count
}

// generateUniqueClassCode generates a unique 6-character alphanumeric code
func (s *ClassService) generateUniqueClassCode() string {
	for {
		bytes := make([]byte, 3)
		rand.Read(bytes)
		code := hex.EncodeToString(bytes)[:6]

		var count int64
		s.db.Model(&models.Class{}).Where("class_code = ?", code).Count(&count)

		if count == 0 {
			return code
		}
	}
}
