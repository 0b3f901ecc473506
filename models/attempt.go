package models

import (
	"time"

	"gorm.io/gorm"
)

// Attempt is one user's single graded submission for a quiz. It is
// written once and never mutated; MaxScore is frozen at submission time,
// so later question-set edits cannot change a recorded result. The
// composite unique index is what enforces one attempt per (quiz, user)
// at the storage layer.
type Attempt struct {
	ID          string         `json:"id" gorm:"primaryKey;size:36"`
	QuizID      string         `json:"quiz_id" gorm:"not null;size:36;uniqueIndex:idx_attempts_quiz_user"`
	UserID      string         `json:"user_id" gorm:"not null;size:36;uniqueIndex:idx_attempts_quiz_user"`
	UserName    string         `json:"user_name"`   // denormalized at submission time
	UserAvatar  string         `json:"user_avatar"` // denormalized at submission time
	Score       int            `json:"score" gorm:"not null"`
	MaxScore    int            `json:"max_score" gorm:"not null"`
	CompletedAt time.Time      `json:"completed_at" gorm:"not null"`
	CreatedAt   time.Time      `json:"created_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`

	// Relationships
	Answers []AttemptAnswer `json:"answers,omitempty" gorm:"foreignKey:AttemptID"`
}

// Percentage is the attempt's score as a percentage of its frozen max
// score. Zero, not NaN, when the quiz somehow had no points.
func (a *Attempt) Percentage() float64 {
	if a.MaxScore == 0 {
		return 0
	}
	return float64(a.Score) / float64(a.MaxScore) * 100
}

// Passed reports whether the attempt meets the given passing score.
// The boundary is inclusive: exactly the passing score passes.
func (a *Attempt) Passed(passingScore int) bool {
	return a.Percentage() >= float64(passingScore)
}

// AnswerFor returns the recorded answer for a question, or nil when the
// question was not answered in this attempt.
func (a *Attempt) AnswerFor(questionID string) *AttemptAnswer {
	for i := range a.Answers {
		if a.Answers[i].QuestionID == questionID {
			return &a.Answers[i]
		}
	}
	return nil
}
