package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	QuestionTypeMultipleChoice = "multiple-choice"
	QuestionTypeTrueFalse      = "true-false"
)

// Question belongs to exactly one quiz. Its ID is a stable identifier
// assigned at creation and preserved across question-set edits, so
// recorded attempt answers keep pointing at the right question.
type Question struct {
	ID            string         `json:"question_id" gorm:"primaryKey;size:36"`
	QuizID        string         `json:"quiz_id" gorm:"not null;index;size:36"`
	Text          string         `json:"text" gorm:"not null"`
	Type          string         `json:"type" gorm:"not null;default:'multiple-choice'"`
	CorrectAnswer *string        `json:"correct_answer" gorm:"size:36"` // option ID; nil only during authoring
	Points        int            `json:"points" gorm:"not null;default:1"`
	Order         int            `json:"order" gorm:"not null"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `json:"-" gorm:"index"`

	// Relationships
	Options []Option `json:"options,omitempty" gorm:"foreignKey:QuestionID"`
}

// OptionByID looks an option up by its stable identifier.
func (q *Question) OptionByID(optionID string) *Option {
	for i := range q.Options {
		if q.Options[i].ID == optionID {
			return &q.Options[i]
		}
	}
	return nil
}

// CorrectOption resolves the correct-answer reference, or nil when unset.
func (q *Question) CorrectOption() *Option {
	if q.CorrectAnswer == nil {
		return nil
	}
	return q.OptionByID(*q.CorrectAnswer)
}
