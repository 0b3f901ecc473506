package storage

import (
	"context"

	"edulearn/models"
)

// QuizStore abstracts persistence for the quiz aggregate (Postgres in
// production, in-memory in tests). Questions and options are always
// loaded with the quiz; attempts are loaded on demand because the
// history grows without bound.
type QuizStore interface {
	// Create persists a new quiz together with its questions and options.
	Create(ctx context.Context, quiz *models.Quiz) error
	// Get loads a quiz with questions and options ordered by their
	// explicit order fields. Returns models.ErrQuizNotFound when absent.
	Get(ctx context.Context, quizID string) (*models.Quiz, error)
	// ListByCourse loads all quizzes of a course with questions and
	// attempts, newest quiz first.
	ListByCourse(ctx context.Context, courseID string) ([]models.Quiz, error)
	// Update persists metadata changes to an existing quiz and, when
	// questions is non-nil, swaps the quiz's entire question set in the
	// same transaction: either everything applies or nothing does.
	// Stable ids carried in the new set survive the swap.
	Update(ctx context.Context, quiz *models.Quiz, questions []models.Question) error
	// Delete removes a quiz and everything it owns.
	Delete(ctx context.Context, quizID string) error

	// AppendAttempt records a graded attempt. The append and the
	// one-attempt-per-(quiz,user) check are atomic: a concurrent
	// duplicate loses with models.ErrDuplicateAttempt.
	AppendAttempt(ctx context.Context, attempt *models.Attempt) error
	// GetAttempt loads one user's attempt with its answers. Returns
	// models.ErrAttemptNotFound when the user has not taken the quiz.
	GetAttempt(ctx context.Context, quizID, userID string) (*models.Attempt, error)
	// ListAttempts loads all attempts of a quiz with their answers.
	ListAttempts(ctx context.Context, quizID string) ([]models.Attempt, error)
}
