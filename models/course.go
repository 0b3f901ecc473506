package models

import (
	"time"

	"gorm.io/gorm"
)

// Course and Enrollment are owned by the rest of the platform; the quiz
// engine only reads them through the access gate to answer ownership and
// enrollment questions.
type Course struct {
	ID         string         `json:"id" gorm:"primaryKey;size:36"`
	Title      string         `json:"title" gorm:"not null"`
	EducatorID string         `json:"educator_id" gorm:"not null;index;size:36"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `json:"-" gorm:"index"`
}

type Enrollment struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	CourseID  string         `json:"course_id" gorm:"not null;size:36;uniqueIndex:idx_enrollments_course_user"`
	UserID    string         `json:"user_id" gorm:"not null;size:36;uniqueIndex:idx_enrollments_course_user"`
	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}
