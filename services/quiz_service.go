package services

import (
	"context"
	"errors"
	"fmt"

	"edulearn/models"
	"edulearn/storage"

	"go.uber.org/zap"
)

// QuizService is the quiz definition manager: it owns authoring
// (create, update, delete) and the educator/student read views.
type QuizService struct {
	store storage.QuizStore
	gate  AccessGate
	ids   IdentityGenerator
	stats *StatsService
	log   *zap.Logger
}

func NewQuizService(store storage.QuizStore, gate AccessGate, ids IdentityGenerator, stats *StatsService, log *zap.Logger) *QuizService {
	return &QuizService{store: store, gate: gate, ids: ids, stats: stats, log: log}
}

type CreateQuizRequest struct {
	Title        string          `json:"title" binding:"required"`
	Description  *string         `json:"description"`
	CourseID     string          `json:"course_id" binding:"required"`
	ChapterID    *string         `json:"chapter_id"`
	TimeLimit    *int            `json:"time_limit" binding:"omitempty,min=1"`
	PassingScore *int            `json:"passing_score" binding:"omitempty,min=0,max=100"`
	Questions    []QuestionInput `json:"questions" binding:"required,min=1"`
}

type UpdateQuizRequest struct {
	Title        *string          `json:"title"`
	Description  Nullable[string] `json:"description"`
	TimeLimit    Nullable[int]    `json:"time_limit"`
	PassingScore *int             `json:"passing_score" binding:"omitempty,min=0,max=100"`
	IsPublished  *bool            `json:"is_published"`
	Questions    []QuestionInput  `json:"questions"` // nil leaves the question set untouched
}

type QuestionInput struct {
	QuestionID         string        `json:"question_id"` // preserved on update when re-supplied
	Text               string        `json:"text"`
	Type               string        `json:"type"`
	Options            []OptionInput `json:"options"`
	CorrectAnswerIndex *int          `json:"correct_answer_index"`
	CorrectAnswer      *string       `json:"correct_answer"` // existing option id, update path
	Points             *int          `json:"points"`
}

type OptionInput struct {
	OptionID string `json:"option_id"` // preserved on update when re-supplied
	Text     string `json:"text"`
}

// QuizSummary is the authoring response shape.
type QuizSummary struct {
	ID            string  `json:"id"`
	Title         string  `json:"title"`
	Description   *string `json:"description"`
	QuestionCount int     `json:"question_count"`
	IsPublished   bool    `json:"is_published"`
}

// CourseQuizSummary is one row of the owner's course dashboard.
type CourseQuizSummary struct {
	QuizSummary
	Attempts  int     `json:"attempts"`
	PassRate  float64 `json:"pass_rate"`
	CreatedAt string  `json:"created_at"`
	UpdatedAt string  `json:"updated_at"`
}

// StudentQuizView is the quiz as served to a student: no correct answers.
type StudentQuizView struct {
	ID             string            `json:"id"`
	Title          string            `json:"title"`
	Description    *string           `json:"description"`
	TimeLimit      *int              `json:"time_limit"`
	PassingScore   int               `json:"passing_score"`
	TotalQuestions int               `json:"total_questions"`
	TotalPoints    int               `json:"total_points"`
	Questions      []StudentQuestion `json:"questions"`
}

type StudentQuestion struct {
	QuestionID string          `json:"question_id"`
	Text       string          `json:"text"`
	Type       string          `json:"type"`
	Points     int             `json:"points"`
	Options    []StudentOption `json:"options"`
}

type StudentOption struct {
	OptionID string `json:"option_id"`
	Text     string `json:"text"`
}

// CreateQuiz persists a new unpublished quiz for a course the caller
// owns, assigning fresh stable ids to every question and option.
func (s *QuizService) CreateQuiz(ctx context.Context, educatorID string, req *CreateQuizRequest) (*QuizSummary, error) {
	exists, err := s.gate.CourseExists(ctx, req.CourseID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, models.ErrCourseNotFound
	}
	owner, err := s.gate.IsCourseOwner(ctx, educatorID, req.CourseID)
	if err != nil {
		return nil, err
	}
	if !owner {
		return nil, models.ErrNotCourseOwner
	}

	if req.PassingScore != nil && (*req.PassingScore < 0 || *req.PassingScore > 100) {
		return nil, fmt.Errorf("%w: passing score must be between 0 and 100", models.ErrInvalidInput)
	}

	// Create always mints fresh ids, even if the client echoed some back.
	questions, err := s.buildQuestions(req.Questions, false)
	if err != nil {
		return nil, err
	}

	quiz := &models.Quiz{
		ID:           s.ids.NewID(),
		Title:        req.Title,
		Description:  req.Description,
		CourseID:     req.CourseID,
		ChapterID:    req.ChapterID,
		EducatorID:   educatorID,
		TimeLimit:    req.TimeLimit,
		PassingScore: 70,
		IsPublished:  false,
		Questions:    questions,
	}
	if req.PassingScore != nil {
		quiz.PassingScore = *req.PassingScore
	}

	if err := s.store.Create(ctx, quiz); err != nil {
		return nil, err
	}

	s.log.Info("quiz created",
		zap.String("quiz_id", quiz.ID),
		zap.String("course_id", quiz.CourseID),
		zap.Int("questions", len(quiz.Questions)))

	return &QuizSummary{
		ID:            quiz.ID,
		Title:         quiz.Title,
		Description:   quiz.Description,
		QuestionCount: len(quiz.Questions),
		IsPublished:   quiz.IsPublished,
	}, nil
}

// UpdateQuiz applies a partial update. A supplied question set replaces
// the old one wholesale; re-supplied question/option ids survive the
// swap so recorded attempts keep their references.
func (s *QuizService) UpdateQuiz(ctx context.Context, educatorID, quizID string, req *UpdateQuizRequest) (*QuizSummary, error) {
	quiz, err := s.store.Get(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if err := s.requireOwner(ctx, educatorID, quiz.CourseID); err != nil {
		return nil, err
	}

	if req.Title != nil {
		if *req.Title == "" {
			return nil, fmt.Errorf("%w: title must not be empty", models.ErrInvalidInput)
		}
		quiz.Title = *req.Title
	}
	if req.Description.Set {
		quiz.Description = req.Description.Ptr()
	}
	if req.TimeLimit.Set {
		if req.TimeLimit.Valid && req.TimeLimit.Value < 1 {
			return nil, fmt.Errorf("%w: time limit must be at least one minute", models.ErrInvalidInput)
		}
		quiz.TimeLimit = req.TimeLimit.Ptr()
	}
	if req.PassingScore != nil {
		if *req.PassingScore < 0 || *req.PassingScore > 100 {
			return nil, fmt.Errorf("%w: passing score must be between 0 and 100", models.ErrInvalidInput)
		}
		quiz.PassingScore = *req.PassingScore
	}
	if req.IsPublished != nil {
		quiz.IsPublished = *req.IsPublished
	}

	var questions []models.Question
	if req.Questions != nil {
		questions, err = s.buildQuestions(req.Questions, true)
		if err != nil {
			return nil, err
		}
	}

	// Metadata and question set commit together or not at all. Replacing
	// questions under recorded attempts is allowed: attempts carry frozen
	// scores and answer correctness, so history is self-contained even
	// when the definition moves on.
	if err := s.store.Update(ctx, quiz, questions); err != nil {
		return nil, err
	}
	if questions != nil {
		quiz.Questions = questions
	}

	s.stats.Invalidate(ctx, quiz.ID)
	s.log.Info("quiz updated",
		zap.String("quiz_id", quiz.ID),
		zap.Bool("questions_replaced", questions != nil),
		zap.Bool("is_published", quiz.IsPublished))

	return &QuizSummary{
		ID:            quiz.ID,
		Title:         quiz.Title,
		Description:   quiz.Description,
		QuestionCount: len(quiz.Questions),
		IsPublished:   quiz.IsPublished,
	}, nil
}

// ListQuizzesForCourse returns the owner's dashboard rows for a course.
func (s *QuizService) ListQuizzesForCourse(ctx context.Context, educatorID, courseID string) ([]CourseQuizSummary, error) {
	exists, err := s.gate.CourseExists(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, models.ErrCourseNotFound
	}
	if err := s.requireOwner(ctx, educatorID, courseID); err != nil {
		return nil, err
	}

	quizzes, err := s.store.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	summaries := make([]CourseQuizSummary, 0, len(quizzes))
	for i := range quizzes {
		quiz := &quizzes[i]
		passed := 0
		for j := range quiz.Attempts {
			if quiz.Attempts[j].Passed(quiz.PassingScore) {
				passed++
			}
		}
		passRate := 0.0
		if len(quiz.Attempts) > 0 {
			passRate = float64(passed) / float64(len(quiz.Attempts)) * 100
		}
		summaries = append(summaries, CourseQuizSummary{
			QuizSummary: QuizSummary{
				ID:            quiz.ID,
				Title:         quiz.Title,
				Description:   quiz.Description,
				QuestionCount: len(quiz.Questions),
				IsPublished:   quiz.IsPublished,
			},
			Attempts:  len(quiz.Attempts),
			PassRate:  passRate,
			CreatedAt: quiz.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
			UpdatedAt: quiz.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	return summaries, nil
}

// GetQuizForEdit returns the full quiz, correct answers included.
func (s *QuizService) GetQuizForEdit(ctx context.Context, educatorID, quizID string) (*models.Quiz, error) {
	quiz, err := s.store.Get(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if err := s.requireOwner(ctx, educatorID, quiz.CourseID); err != nil {
		return nil, err
	}
	return quiz, nil
}

// GetQuizForStudent returns the quiz stripped of correct answers. A
// student who already took the quiz gets a Conflict carrying their
// recorded result instead, so the client can render it without another
// round trip.
func (s *QuizService) GetQuizForStudent(ctx context.Context, userID, quizID string) (*StudentQuizView, error) {
	quiz, err := s.store.Get(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if !quiz.IsPublished {
		return nil, models.ErrQuizNotPublished
	}
	enrolled, err := s.gate.IsEnrolled(ctx, userID, quiz.CourseID)
	if err != nil {
		return nil, err
	}
	if !enrolled {
		return nil, models.ErrNotEnrolled
	}

	if attempt, err := s.store.GetAttempt(ctx, quizID, userID); err == nil {
		return nil, &AlreadyAttemptedError{Summary: newAttemptSummary(attempt, quiz.PassingScore)}
	} else if !errors.Is(err, models.ErrAttemptNotFound) {
		return nil, err
	}

	view := &StudentQuizView{
		ID:             quiz.ID,
		Title:          quiz.Title,
		Description:    quiz.Description,
		TimeLimit:      quiz.TimeLimit,
		PassingScore:   quiz.PassingScore,
		TotalQuestions: len(quiz.Questions),
		TotalPoints:    quiz.MaxScore(),
		Questions:      make([]StudentQuestion, 0, len(quiz.Questions)),
	}
	for i := range quiz.Questions {
		question := &quiz.Questions[i]
		sq := StudentQuestion{
			QuestionID: question.ID,
			Text:       question.Text,
			Type:       question.Type,
			Points:     question.Points,
			Options:    make([]StudentOption, 0, len(question.Options)),
		}
		for j := range question.Options {
			sq.Options = append(sq.Options, StudentOption{
				OptionID: question.Options[j].ID,
				Text:     question.Options[j].Text,
			})
		}
		view.Questions = append(view.Questions, sq)
	}
	return view, nil
}

// DeleteQuiz removes a quiz. Owner-only, like every authoring operation.
func (s *QuizService) DeleteQuiz(ctx context.Context, educatorID, quizID string) error {
	quiz, err := s.store.Get(ctx, quizID)
	if err != nil {
		return err
	}
	if err := s.requireOwner(ctx, educatorID, quiz.CourseID); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, quizID); err != nil {
		return err
	}
	s.stats.Invalidate(ctx, quizID)
	s.log.Info("quiz deleted", zap.String("quiz_id", quizID))
	return nil
}

func (s *QuizService) requireOwner(ctx context.Context, educatorID, courseID string) error {
	owner, err := s.gate.IsCourseOwner(ctx, educatorID, courseID)
	if err != nil {
		return err
	}
	if !owner {
		return models.ErrNotCourseOwner
	}
	return nil
}

// buildQuestions validates authoring input and turns it into the owned
// question set. With preserveIDs set (update path), ids supplied by the
// client are kept; anything missing gets a fresh one.
func (s *QuizService) buildQuestions(inputs []QuestionInput, preserveIDs bool) ([]models.Question, error) {
	if len(inputs) == 0 {
		return nil, fmt.Errorf("%w: a quiz needs at least one question", models.ErrInvalidInput)
	}

	questions := make([]models.Question, 0, len(inputs))
	for i, input := range inputs {
		if input.Text == "" {
			return nil, fmt.Errorf("%w: question %d has no text", models.ErrInvalidInput, i+1)
		}

		questionType := input.Type
		if questionType == "" {
			questionType = models.QuestionTypeMultipleChoice
		}
		switch questionType {
		case models.QuestionTypeMultipleChoice, models.QuestionTypeTrueFalse:
		default:
			return nil, fmt.Errorf("%w: question %d has unknown type %q", models.ErrInvalidInput, i+1, input.Type)
		}

		if len(input.Options) < 2 {
			return nil, fmt.Errorf("%w: question %d needs at least two options", models.ErrInvalidInput, i+1)
		}
		if questionType == models.QuestionTypeTrueFalse && len(input.Options) != 2 {
			return nil, fmt.Errorf("%w: question %d is true-false and must have exactly two options", models.ErrInvalidInput, i+1)
		}

		points := 1
		if input.Points != nil {
			if *input.Points < 1 {
				return nil, fmt.Errorf("%w: question %d must be worth at least one point", models.ErrInvalidInput, i+1)
			}
			points = *input.Points
		}

		options := make([]models.Option, 0, len(input.Options))
		for j, opt := range input.Options {
			if opt.Text == "" {
				return nil, fmt.Errorf("%w: question %d option %d has no text", models.ErrInvalidInput, i+1, j+1)
			}
			optionID := opt.OptionID
			if optionID == "" || !preserveIDs {
				optionID = s.ids.NewID()
			}
			options = append(options, models.Option{
				ID:    optionID,
				Text:  opt.Text,
				Order: j + 1,
			})
		}

		var correct *string
		switch {
		case input.CorrectAnswerIndex != nil:
			idx := *input.CorrectAnswerIndex
			if idx < 0 || idx >= len(options) {
				return nil, fmt.Errorf("%w: question %d correct answer index %d is out of range", models.ErrInvalidInput, i+1, idx)
			}
			id := options[idx].ID
			correct = &id
		case input.CorrectAnswer != nil && preserveIDs:
			found := false
			for k := range options {
				if options[k].ID == *input.CorrectAnswer {
					found = true
					break
				}
			}
			if !found {
				return nil, fmt.Errorf("%w: question %d correct answer does not match any option", models.ErrInvalidInput, i+1)
			}
			correct = input.CorrectAnswer
		}

		questionID := input.QuestionID
		if questionID == "" || !preserveIDs {
			questionID = s.ids.NewID()
		}
		questions = append(questions, models.Question{
			ID:            questionID,
			Text:          input.Text,
			Type:          questionType,
			CorrectAnswer: correct,
			Points:        points,
			Order:         i + 1,
			Options:       options,
		})
	}
	return questions, nil
}
