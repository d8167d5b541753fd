// models/models.go - Academic Domain Models
package models

import (
	"time"
)

// Subject represents a course subject the user tracks absences for
type Subject struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	UserID          uint      `json:"user_id" gorm:"not null;index"`
	User            *User     `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Name            string    `json:"name" gorm:"not null;size:100"`
	Code            string    `json:"code" gorm:"size:20"`
	Professor       string    `json:"professor" gorm:"size:100"`
	Color           string    `json:"color" gorm:"size:20"`
	MaxAbsences     int       `json:"max_absences" gorm:"default:0"`
	CurrentAbsences int       `json:"current_absences" gorm:"default:0"`
	Grade           *float64  `json:"grade,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	Slots    []ScheduleSlot `json:"slots,omitempty" gorm:"foreignKey:SubjectID"`
	Absences []Absence      `json:"absences,omitempty" gorm:"foreignKey:SubjectID"`
}

// ScheduleSlot represents one weekly class occurrence on the user's grid
type ScheduleSlot struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"not null;index"`
	SubjectID uint      `json:"subject_id" gorm:"not null;index"`
	Subject   *Subject  `json:"subject,omitempty" gorm:"foreignKey:SubjectID"`
	Weekday   int       `json:"weekday" gorm:"not null"` // 0 = Sunday
	StartHour int       `json:"start_hour" gorm:"not null"`
	EndHour   int       `json:"end_hour" gorm:"not null"`
	Room      string    `json:"room" gorm:"size:50"`
	Color     string    `json:"color" gorm:"size:20"`
	CreatedAt time.Time `json:"created_at"`
}

// Absence represents a logged absence on a civil date
type Absence struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"not null;index"`
	SubjectID uint      `json:"subject_id" gorm:"not null;index"`
	Subject   *Subject  `json:"subject,omitempty" gorm:"foreignKey:SubjectID"`
	Date      string    `json:"date" gorm:"not null;size:10"` // YYYY-MM-DD
	Justified bool      `json:"justified" gorm:"default:false"`
	Reason    string    `json:"reason" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at"`
}

// Note is a free-form annotation attached to the user's planner
type Note struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"not null;index"`
	SubjectID *uint     `json:"subject_id,omitempty" gorm:"index"`
	Title     string    `json:"title" gorm:"size:100"`
	Content   string    `json:"content" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Subject) TableName() string {
	return "subjects"
}

func (ScheduleSlot) TableName() string {
	return "schedule_slots"
}

func (Absence) TableName() string {
	return "absences"
}

func (Note) TableName() string {
	return "notes"
}
