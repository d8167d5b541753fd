// models/class.go
package models

import "time"

// Class is a social study group with a leader, members and a join code.
type Class struct {
	ID          uint          `json:"id" gorm:"primaryKey"`
	Name        string        `json:"name" gorm:"not null;size:100"`
	Description string        `json:"description" gorm:"type:text"`
	ClassCode   string        `json:"class_code" gorm:"unique;size:10"`
	IsPublic    bool          `json:"is_public" gorm:"default:true"`
	IsActive    bool          `json:"is_active" gorm:"default:true;index"`
	CreatorID   uint          `json:"creator_id" gorm:"not null"`
	Creator     *User         `json:"creator,omitempty" gorm:"foreignKey:CreatorID"`
	Members     []ClassMember `json:"members,omitempty" gorm:"foreignKey:ClassID"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

func (Class) TableName() string {
	return "classes"
}
