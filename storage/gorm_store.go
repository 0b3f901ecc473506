package storage

import (
	"context"
	"errors"

	"edulearn/models"

	"gorm.io/gorm"
)

// GormStore is the Postgres-backed QuizStore. The database must be
// opened with TranslateError so unique-index violations surface as
// gorm.ErrDuplicatedKey.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Create(ctx context.Context, quiz *models.Quiz) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		questions := quiz.Questions
		quiz.Questions = nil
		if err := tx.Create(quiz).Error; err != nil {
			return err
		}
		quiz.Questions = questions
		return createQuestions(tx, quiz.ID, questions)
	})
}

func (s *GormStore) Get(ctx context.Context, quizID string) (*models.Quiz, error) {
	var quiz models.Quiz
	err := s.db.WithContext(ctx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("questions.order")
		}).
		Preload("Questions.Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("options.order")
		}).
		First(&quiz, "id = ?", quizID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.ErrQuizNotFound
	}
	if err != nil {
		return nil, err
	}
	return &quiz, nil
}

func (s *GormStore) ListByCourse(ctx context.Context, courseID string) ([]models.Quiz, error) {
	var quizzes []models.Quiz
	err := s.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("questions.order")
		}).
		Preload("Attempts").
		Order("created_at DESC").
		Find(&quizzes).Error
	return quizzes, err
}

func (s *GormStore) Update(ctx context.Context, quiz *models.Quiz, questions []models.Question) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Questions", "Attempts").Save(quiz).Error; err != nil {
			return err
		}
		if questions == nil {
			return nil
		}

		// Hard-delete the old rows: preserved stable ids are re-inserted
		// below and would collide with soft-deleted rows on the primary key.
		var questionIDs []string
		if err := tx.Model(&models.Question{}).
			Where("quiz_id = ?", quiz.ID).
			Pluck("id", &questionIDs).Error; err != nil {
			return err
		}
		if len(questionIDs) > 0 {
			if err := tx.Unscoped().
				Where("question_id IN ?", questionIDs).
				Delete(&models.Option{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Unscoped().
			Where("quiz_id = ?", quiz.ID).
			Delete(&models.Question{}).Error; err != nil {
			return err
		}
		return createQuestions(tx, quiz.ID, questions)
	})
}

func (s *GormStore) Delete(ctx context.Context, quizID string) error {
	result := s.db.WithContext(ctx).Delete(&models.Quiz{}, "id = ?", quizID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return models.ErrQuizNotFound
	}
	return nil
}

func (s *GormStore) AppendAttempt(ctx context.Context, attempt *models.Attempt) error {
	err := s.db.WithContext(ctx).Create(attempt).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return models.ErrDuplicateAttempt
	}
	return err
}

func (s *GormStore) GetAttempt(ctx context.Context, quizID, userID string) (*models.Attempt, error) {
	var attempt models.Attempt
	err := s.db.WithContext(ctx).
		Preload("Answers").
		First(&attempt, "quiz_id = ? AND user_id = ?", quizID, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.ErrAttemptNotFound
	}
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (s *GormStore) ListAttempts(ctx context.Context, quizID string) ([]models.Attempt, error) {
	var attempts []models.Attempt
	err := s.db.WithContext(ctx).
		Where("quiz_id = ?", quizID).
		Preload("Answers").
		Find(&attempts).Error
	return attempts, err
}

func createQuestions(tx *gorm.DB, quizID string, questions []models.Question) error {
	for i := range questions {
		question := questions[i]
		options := question.Options
		question.QuizID = quizID
		question.Options = nil
		if err := tx.Create(&question).Error; err != nil {
			return err
		}
		for j := range options {
			option := options[j]
			option.QuestionID = question.ID
			if err := tx.Create(&option).Error; err != nil {
				return err
			}
		}
	}
	return nil
}
