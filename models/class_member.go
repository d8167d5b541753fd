// models/class_member.go
package models

import "time"

type ClassRole string

const (
	ClassRoleLeader ClassRole = "leader"
	ClassRoleMember ClassRole = "member"
)

type ClassMember struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	ClassID    uint      `json:"class_id" gorm:"not null;index"`
	Class      *Class    `json:"class,omitempty" gorm:"foreignKey:ClassID"`
	UserID     uint      `json:"user_id" gorm:"not null;index"`
	User       *User     `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Role       ClassRole `json:"role" gorm:"not null;default:'member'"`
	JoinedAt   time.Time `json:"joined_at" gorm:"not null"`
	IsActive   bool      `json:"is_active" gorm:"default:true;index"`
	LastActive time.Time `json:"last_active"`
}

func (ClassMember) TableName() string {
	return "class_members"
}
