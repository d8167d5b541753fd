// models/class_invite.go - Class Invite Data Model
package models

import "time"

// InviteStatus tracks the lifecycle of a class invite.
type InviteStatus string

const (
	InviteStatusPending  InviteStatus = "pending"
	InviteStatusAccepted InviteStatus = "accepted"
	InviteStatusDeclined InviteStatus = "declined"
	InviteStatusExpired  InviteStatus = "expired"
)

// ClassInvite is a single-use invitation into a class, addressed to a
// user and carried by an opaque uuid code.
type ClassInvite struct {
	ID         uint         `json:"id" gorm:"primaryKey"`
	ClassID    uint         `json:"class_id" gorm:"not null;index"`
	Class      *Class       `json:"class,omitempty" gorm:"foreignKey:ClassID"`
	Code       string       `json:"code" gorm:"uniqueIndex;not null;size:40"`
	FromUserID uint         `json:"from_user_id" gorm:"not null;index"`
	FromUser   *User        `json:"from_user,omitempty" gorm:"foreignKey:FromUserID"`
	ToUserID   *uint        `json:"to_user_id,omitempty" gorm:"index"`
	Status     InviteStatus `json:"status" gorm:"not null;default:'pending';index"`
	ExpiresAt  time.Time    `json:"expires_at"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

func (ClassInvite) TableName() string {
	return "class_invites"
}
