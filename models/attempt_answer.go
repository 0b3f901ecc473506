package models

import (
	"time"

	"gorm.io/gorm"
)

// AttemptAnswer is one graded response inside an attempt. IsCorrect is
// computed at grading time and stored, never recomputed against a later
// edit of the question set.
type AttemptAnswer struct {
	ID             uint           `json:"id" gorm:"primaryKey"`
	AttemptID      string         `json:"attempt_id" gorm:"not null;index;size:36"`
	QuestionID     string         `json:"question_id" gorm:"not null;size:36"`
	SelectedOption *string        `json:"selected_option" gorm:"size:36"` // nil when explicitly unanswered
	IsCorrect      bool           `json:"is_correct" gorm:"not null"`
	CreatedAt      time.Time      `json:"created_at"`
	DeletedAt      gorm.DeletedAt `json:"-" gorm:"index"`
}
