package storage

import (
	"context"
	"sort"
	"sync"

	"edulearn/models"
)

// MemoryStore is an in-memory QuizStore used by unit tests. It mirrors
// the GormStore contract, including the atomic duplicate-attempt check:
// everything happens under one mutex, so two concurrent submissions for
// the same (quiz, user) cannot both succeed.
type MemoryStore struct {
	mu      sync.Mutex
	quizzes map[string]*models.Quiz
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{quizzes: make(map[string]*models.Quiz)}
}

func (s *MemoryStore) Create(_ context.Context, quiz *models.Quiz) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quizzes[quiz.ID] = cloneQuiz(quiz)
	return nil
}

func (s *MemoryStore) Get(_ context.Context, quizID string) (*models.Quiz, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	quiz, ok := s.quizzes[quizID]
	if !ok {
		return nil, models.ErrQuizNotFound
	}
	clone := cloneQuiz(quiz)
	clone.Attempts = nil
	return clone, nil
}

func (s *MemoryStore) ListByCourse(_ context.Context, courseID string) ([]models.Quiz, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var quizzes []models.Quiz
	for _, quiz := range s.quizzes {
		if quiz.CourseID == courseID {
			quizzes = append(quizzes, *cloneQuiz(quiz))
		}
	}
	sort.Slice(quizzes, func(i, j int) bool {
		return quizzes[i].CreatedAt.After(quizzes[j].CreatedAt)
	})
	return quizzes, nil
}

func (s *MemoryStore) Update(_ context.Context, quiz *models.Quiz, questions []models.Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.quizzes[quiz.ID]
	if !ok {
		return models.ErrQuizNotFound
	}
	clone := cloneQuiz(quiz)
	clone.Attempts = existing.Attempts
	if questions == nil {
		clone.Questions = existing.Questions
	} else {
		clone.Questions = cloneQuestions(questions)
		for i := range clone.Questions {
			clone.Questions[i].QuizID = quiz.ID
		}
	}
	s.quizzes[quiz.ID] = clone
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, quizID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.quizzes[quizID]; !ok {
		return models.ErrQuizNotFound
	}
	delete(s.quizzes, quizID)
	return nil
}

func (s *MemoryStore) AppendAttempt(_ context.Context, attempt *models.Attempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	quiz, ok := s.quizzes[attempt.QuizID]
	if !ok {
		return models.ErrQuizNotFound
	}
	for i := range quiz.Attempts {
		if quiz.Attempts[i].UserID == attempt.UserID {
			return models.ErrDuplicateAttempt
		}
	}
	quiz.Attempts = append(quiz.Attempts, *cloneAttempt(attempt))
	return nil
}

func (s *MemoryStore) GetAttempt(_ context.Context, quizID, userID string) (*models.Attempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	quiz, ok := s.quizzes[quizID]
	if !ok {
		return nil, models.ErrQuizNotFound
	}
	for i := range quiz.Attempts {
		if quiz.Attempts[i].UserID == userID {
			return cloneAttempt(&quiz.Attempts[i]), nil
		}
	}
	return nil, models.ErrAttemptNotFound
}

func (s *MemoryStore) ListAttempts(_ context.Context, quizID string) ([]models.Attempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	quiz, ok := s.quizzes[quizID]
	if !ok {
		return nil, models.ErrQuizNotFound
	}
	attempts := make([]models.Attempt, 0, len(quiz.Attempts))
	for i := range quiz.Attempts {
		attempts = append(attempts, *cloneAttempt(&quiz.Attempts[i]))
	}
	return attempts, nil
}

// Clones keep callers from mutating stored state through returned
// pointers, the same isolation row round-trips give the gorm store.

func cloneQuiz(quiz *models.Quiz) *models.Quiz {
	clone := *quiz
	clone.Description = clonePtr(quiz.Description)
	clone.ChapterID = clonePtr(quiz.ChapterID)
	clone.TimeLimit = clonePtr(quiz.TimeLimit)
	clone.Questions = cloneQuestions(quiz.Questions)
	clone.Attempts = make([]models.Attempt, 0, len(quiz.Attempts))
	for i := range quiz.Attempts {
		clone.Attempts = append(clone.Attempts, *cloneAttempt(&quiz.Attempts[i]))
	}
	return &clone
}

func cloneQuestions(questions []models.Question) []models.Question {
	clones := make([]models.Question, 0, len(questions))
	for i := range questions {
		question := questions[i]
		question.CorrectAnswer = clonePtr(questions[i].CorrectAnswer)
		question.Options = append([]models.Option(nil), questions[i].Options...)
		clones = append(clones, question)
	}
	return clones
}

func cloneAttempt(attempt *models.Attempt) *models.Attempt {
	clone := *attempt
	clone.Answers = make([]models.AttemptAnswer, 0, len(attempt.Answers))
	for i := range attempt.Answers {
		answer := attempt.Answers[i]
		answer.SelectedOption = clonePtr(attempt.Answers[i].SelectedOption)
		clone.Answers = append(clone.Answers, answer)
	}
	return &clone
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
