package services

import (
	"context"
	"errors"
	"time"

	"edulearn/models"
	"edulearn/storage"

	"go.uber.org/zap"
)

// AttemptService is the grader: one submission per (quiz, user), scored
// against the question set as currently defined and recorded immutably.
type AttemptService struct {
	store storage.QuizStore
	gate  AccessGate
	ids   IdentityGenerator
	stats *StatsService
	feed  *Hub
	log   *zap.Logger
	now   func() time.Time
}

func NewAttemptService(store storage.QuizStore, gate AccessGate, ids IdentityGenerator, stats *StatsService, feed *Hub, log *zap.Logger) *AttemptService {
	return &AttemptService{
		store: store,
		gate:  gate,
		ids:   ids,
		stats: stats,
		feed:  feed,
		log:   log,
		now:   time.Now,
	}
}

// Submitter identifies the student submitting an attempt. Name and
// avatar are denormalized into the attempt at submission time.
type Submitter struct {
	ID     string
	Name   string
	Avatar string
}

type AnswerInput struct {
	QuestionID     string  `json:"question_id" binding:"required"`
	SelectedOption *string `json:"selected_option"`
}

// AttemptResult is what the student sees right after grading, correct
// answers revealed.
type AttemptResult struct {
	Score      int            `json:"score"`
	MaxScore   int            `json:"max_score"`
	Percentage float64        `json:"percentage"`
	Passed     bool           `json:"passed"`
	Answers    []AnswerReview `json:"answers"`
}

type AnswerReview struct {
	QuestionID     string  `json:"question_id"`
	QuestionText   string  `json:"question_text"`
	SelectedOption *string `json:"selected_option"` // option text
	CorrectOption  *string `json:"correct_option"`  // option text
	IsCorrect      bool    `json:"is_correct"`
}

// AttemptSummary is the compact view carried in Conflict responses and
// the live feed.
type AttemptSummary struct {
	Score       int       `json:"score"`
	MaxScore    int       `json:"max_score"`
	Percentage  float64   `json:"percentage"`
	Passed      bool      `json:"passed"`
	CompletedAt time.Time `json:"completed_at"`
}

// AlreadyAttemptedError reports a duplicate submission together with the
// recorded result, so callers can render it without a second request.
type AlreadyAttemptedError struct {
	Summary AttemptSummary
}

func (e *AlreadyAttemptedError) Error() string { return models.ErrDuplicateAttempt.Error() }

func (e *AlreadyAttemptedError) Unwrap() error { return models.ErrDuplicateAttempt }

func newAttemptSummary(attempt *models.Attempt, passingScore int) AttemptSummary {
	return AttemptSummary{
		Score:       attempt.Score,
		MaxScore:    attempt.MaxScore,
		Percentage:  attempt.Percentage(),
		Passed:      attempt.Passed(passingScore),
		CompletedAt: attempt.CompletedAt,
	}
}

// Submit grades the answers against the quiz's current definition and
// appends the attempt. Submitted answers whose question id is unknown
// are kept with correctness=false and score zero rather than rejected;
// they never abort the grading pass.
func (s *AttemptService) Submit(ctx context.Context, user Submitter, quizID string, answers []AnswerInput) (*AttemptResult, error) {
	quiz, err := s.store.Get(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if !quiz.IsPublished {
		return nil, models.ErrQuizNotPublished
	}
	enrolled, err := s.gate.IsEnrolled(ctx, user.ID, quiz.CourseID)
	if err != nil {
		return nil, err
	}
	if !enrolled {
		return nil, models.ErrNotEnrolled
	}
	if existing, err := s.store.GetAttempt(ctx, quizID, user.ID); err == nil {
		return nil, &AlreadyAttemptedError{Summary: newAttemptSummary(existing, quiz.PassingScore)}
	} else if !errors.Is(err, models.ErrAttemptNotFound) {
		return nil, err
	}

	attempt := s.grade(quiz, user, answers)

	if err := s.store.AppendAttempt(ctx, attempt); err != nil {
		if errors.Is(err, models.ErrDuplicateAttempt) {
			// Lost a race with a concurrent submission from the same
			// user; the storage-level uniqueness check is authoritative.
			if existing, getErr := s.store.GetAttempt(ctx, quizID, user.ID); getErr == nil {
				return nil, &AlreadyAttemptedError{Summary: newAttemptSummary(existing, quiz.PassingScore)}
			}
			return nil, models.ErrDuplicateAttempt
		}
		return nil, err
	}

	s.stats.Invalidate(ctx, quiz.ID)
	if s.feed != nil {
		s.feed.BroadcastAttempt(quiz.ID, AttemptFeedEvent{
			UserID:   user.ID,
			UserName: user.Name,
			Summary:  newAttemptSummary(attempt, quiz.PassingScore),
		})
	}
	s.log.Info("attempt recorded",
		zap.String("quiz_id", quiz.ID),
		zap.String("user_id", user.ID),
		zap.Int("score", attempt.Score),
		zap.Int("max_score", attempt.MaxScore))

	return s.review(quiz, attempt), nil
}

func (s *AttemptService) grade(quiz *models.Quiz, user Submitter, answers []AnswerInput) *models.Attempt {
	score := 0
	graded := make([]models.AttemptAnswer, 0, len(answers))
	for _, answer := range answers {
		question := quiz.QuestionByID(answer.QuestionID)
		if question == nil {
			graded = append(graded, models.AttemptAnswer{
				QuestionID:     answer.QuestionID,
				SelectedOption: answer.SelectedOption,
				IsCorrect:      false,
			})
			continue
		}
		correct := question.CorrectAnswer != nil &&
			answer.SelectedOption != nil &&
			*question.CorrectAnswer == *answer.SelectedOption
		if correct {
			score += question.Points
		}
		graded = append(graded, models.AttemptAnswer{
			QuestionID:     answer.QuestionID,
			SelectedOption: answer.SelectedOption,
			IsCorrect:      correct,
		})
	}

	return &models.Attempt{
		ID:          s.ids.NewID(),
		QuizID:      quiz.ID,
		UserID:      user.ID,
		UserName:    user.Name,
		UserAvatar:  user.Avatar,
		Score:       score,
		MaxScore:    quiz.MaxScore(),
		CompletedAt: s.now(),
		Answers:     graded,
	}
}

func (s *AttemptService) review(quiz *models.Quiz, attempt *models.Attempt) *AttemptResult {
	result := &AttemptResult{
		Score:      attempt.Score,
		MaxScore:   attempt.MaxScore,
		Percentage: attempt.Percentage(),
		Passed:     attempt.Passed(quiz.PassingScore),
		Answers:    make([]AnswerReview, 0, len(attempt.Answers)),
	}
	for i := range attempt.Answers {
		answer := &attempt.Answers[i]
		review := AnswerReview{
			QuestionID: answer.QuestionID,
			IsCorrect:  answer.IsCorrect,
		}
		if question := quiz.QuestionByID(answer.QuestionID); question != nil {
			review.QuestionText = question.Text
			if answer.SelectedOption != nil {
				if opt := question.OptionByID(*answer.SelectedOption); opt != nil {
					review.SelectedOption = &opt.Text
				}
			}
			if correct := question.CorrectOption(); correct != nil {
				review.CorrectOption = &correct.Text
			}
		} else {
			review.QuestionText = "Unknown question"
		}
		result.Answers = append(result.Answers, review)
	}
	return result
}

// DetailedResult is a student's own recorded attempt, resolved against
// the current question texts for display.
type DetailedResult struct {
	QuizTitle   string           `json:"quiz_title"`
	Score       int              `json:"score"`
	MaxScore    int              `json:"max_score"`
	Percentage  float64          `json:"percentage"`
	Passed      bool             `json:"passed"`
	CompletedAt time.Time        `json:"completed_at"`
	Questions   []AnswerBreakdown `json:"questions"`
}

type AnswerBreakdown struct {
	QuestionID     string `json:"question_id"`
	QuestionText   string `json:"question_text"`
	SelectedOption string `json:"selected_option"`
	CorrectOption  string `json:"correct_option"`
	IsCorrect      bool   `json:"is_correct"`
	Points         int    `json:"points"`
	MaxPoints      int    `json:"max_points"`
}

// GetResult returns the caller's own recorded attempt for a quiz.
func (s *AttemptService) GetResult(ctx context.Context, userID, quizID string) (*DetailedResult, error) {
	quiz, err := s.store.Get(ctx, quizID)
	if err != nil {
		return nil, err
	}
	enrolled, err := s.gate.IsEnrolled(ctx, userID, quiz.CourseID)
	if err != nil {
		return nil, err
	}
	if !enrolled {
		return nil, models.ErrNotEnrolled
	}
	attempt, err := s.store.GetAttempt(ctx, quizID, userID)
	if err != nil {
		return nil, err
	}

	result := &DetailedResult{
		QuizTitle:   quiz.Title,
		Score:       attempt.Score,
		MaxScore:    attempt.MaxScore,
		Percentage:  attempt.Percentage(),
		Passed:      attempt.Passed(quiz.PassingScore),
		CompletedAt: attempt.CompletedAt,
		Questions:   make([]AnswerBreakdown, 0, len(attempt.Answers)),
	}
	for i := range attempt.Answers {
		answer := &attempt.Answers[i]
		breakdown := AnswerBreakdown{
			QuestionID:     answer.QuestionID,
			QuestionText:   "Unknown question",
			SelectedOption: "No answer",
			CorrectOption:  "Unknown",
			IsCorrect:      answer.IsCorrect,
		}
		if question := quiz.QuestionByID(answer.QuestionID); question != nil {
			breakdown.QuestionText = question.Text
			breakdown.MaxPoints = question.Points
			if answer.IsCorrect {
				breakdown.Points = question.Points
			}
			if answer.SelectedOption != nil {
				if opt := question.OptionByID(*answer.SelectedOption); opt != nil {
					breakdown.SelectedOption = opt.Text
				}
			}
			if correct := question.CorrectOption(); correct != nil {
				breakdown.CorrectOption = correct.Text
			}
		}
		result.Questions = append(result.Questions, breakdown)
	}
	return result, nil
}
