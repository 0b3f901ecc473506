package models

import (
	"time"

	"gorm.io/gorm"
)

// Option belongs to exactly one question. Like questions, options carry a
// stable identifier independent of their position.
type Option struct {
	ID         string         `json:"option_id" gorm:"primaryKey;size:36"`
	QuestionID string         `json:"question_id" gorm:"not null;index;size:36"`
	Text       string         `json:"text" gorm:"not null"`
	Order      int            `json:"order" gorm:"not null"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `json:"-" gorm:"index"`
}
