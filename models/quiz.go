package models

import (
	"time"

	"gorm.io/gorm"
)

// Quiz is the aggregate root: it owns its questions (and their options)
// and the append-only attempt history.
type Quiz struct {
	ID           string         `json:"id" gorm:"primaryKey;size:36"`
	Title        string         `json:"title" gorm:"not null"`
	Description  *string        `json:"description"`
	CourseID     string         `json:"course_id" gorm:"not null;index;size:36"`
	ChapterID    *string        `json:"chapter_id" gorm:"size:64"`
	EducatorID   string         `json:"educator_id" gorm:"not null;index;size:36"`
	TimeLimit    *int           `json:"time_limit"` // minutes; nil = unlimited
	PassingScore int            `json:"passing_score" gorm:"not null;default:70"`
	IsPublished  bool           `json:"is_published" gorm:"not null;default:false"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"-" gorm:"index"`

	// Relationships
	Questions []Question `json:"questions,omitempty" gorm:"foreignKey:QuizID"`
	Attempts  []Attempt  `json:"attempts,omitempty" gorm:"foreignKey:QuizID"`
}

// MaxScore sums the points of the current question set.
func (q *Quiz) MaxScore() int {
	total := 0
	for i := range q.Questions {
		total += q.Questions[i].Points
	}
	return total
}

// QuestionByID looks a question up by its stable identifier.
func (q *Quiz) QuestionByID(questionID string) *Question {
	for i := range q.Questions {
		if q.Questions[i].ID == questionID {
			return &q.Questions[i]
		}
	}
	return nil
}
