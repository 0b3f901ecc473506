package services

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"edulearn/models"
	"edulearn/storage"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// StatsService is the read-side aggregator: it derives pass rate,
// averages, and per-question/per-option distributions from the attempt
// history and never mutates the aggregate. Computed views are cached in
// Redis and invalidated whenever the quiz or its attempts change.
//
// Correctness policy: per-question correct rates use the frozen
// Answer.IsCorrect recorded at grading time; only the is_correct flag on
// the option distribution reflects the live definition, so the two can
// disagree after an edit. That mirrors what the dashboards display.
type StatsService struct {
	store storage.QuizStore
	gate  AccessGate
	redis *redis.Client
	ttl   time.Duration
	log   *zap.Logger
}

func NewStatsService(store storage.QuizStore, gate AccessGate, redisClient *redis.Client, ttl time.Duration, log *zap.Logger) *StatsService {
	return &StatsService{store: store, gate: gate, redis: redisClient, ttl: ttl, log: log}
}

const recentAttemptLimit = 10

type QuizStatistics struct {
	TotalAttempts  int               `json:"total_attempts"`
	PassedAttempts int               `json:"passed_attempts"`
	FailedAttempts int               `json:"failed_attempts"`
	PassRate       float64           `json:"pass_rate"`
	AverageScore   float64           `json:"average_score"`
	QuestionStats  []QuestionStats   `json:"question_stats"`
	RecentAttempts []AttemptOverview `json:"recent_attempts"`
}

type QuestionStats struct {
	QuestionID         string       `json:"question_id"`
	Text               string       `json:"text"`
	CorrectPercentage  float64      `json:"correct_percentage"`
	OptionDistribution []OptionStat `json:"option_distribution"`
}

type OptionStat struct {
	OptionID   string  `json:"option_id"`
	Text       string  `json:"text"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
	IsCorrect  bool    `json:"is_correct"`
}

type AttemptOverview struct {
	UserID      string    `json:"user_id"`
	UserName    string    `json:"user_name"`
	UserAvatar  string    `json:"user_avatar"`
	Score       int       `json:"score"`
	MaxScore    int       `json:"max_score"`
	Percentage  float64   `json:"percentage"`
	Passed      bool      `json:"passed"`
	CompletedAt time.Time `json:"completed_at"`
}

// GetQuizStatistics computes (or serves from cache) the owner's
// statistics view for a quiz.
func (s *StatsService) GetQuizStatistics(ctx context.Context, educatorID, quizID string) (*QuizStatistics, error) {
	quiz, err := s.store.Get(ctx, quizID)
	if err != nil {
		return nil, err
	}
	owner, err := s.gate.IsCourseOwner(ctx, educatorID, quiz.CourseID)
	if err != nil {
		return nil, err
	}
	if !owner {
		return nil, models.ErrNotCourseOwner
	}

	if cached := s.fromCache(ctx, quizID); cached != nil {
		return cached, nil
	}

	attempts, err := s.store.ListAttempts(ctx, quizID)
	if err != nil {
		return nil, err
	}

	stats := Aggregate(quiz, attempts)
	s.toCache(ctx, quizID, stats)
	return stats, nil
}

// Aggregate is the pure computation over a quiz and its attempt history.
func Aggregate(quiz *models.Quiz, attempts []models.Attempt) *QuizStatistics {
	stats := &QuizStatistics{
		TotalAttempts:  len(attempts),
		QuestionStats:  make([]QuestionStats, 0, len(quiz.Questions)),
		RecentAttempts: []AttemptOverview{},
	}

	sumPercentage := 0.0
	for i := range attempts {
		if attempts[i].Passed(quiz.PassingScore) {
			stats.PassedAttempts++
		}
		sumPercentage += attempts[i].Percentage()
	}
	stats.FailedAttempts = stats.TotalAttempts - stats.PassedAttempts
	if stats.TotalAttempts > 0 {
		stats.PassRate = float64(stats.PassedAttempts) / float64(stats.TotalAttempts) * 100
		stats.AverageScore = sumPercentage / float64(stats.TotalAttempts)
	}

	for i := range quiz.Questions {
		question := &quiz.Questions[i]

		// Denominator is attempts that answered this question, not all
		// attempts, so skipped questions do not drag the rate down.
		answered := 0
		correct := 0
		selections := make(map[string]int, len(question.Options))
		for j := range attempts {
			answer := attempts[j].AnswerFor(question.ID)
			if answer == nil {
				continue
			}
			answered++
			if answer.IsCorrect {
				correct++
			}
			if answer.SelectedOption != nil {
				selections[*answer.SelectedOption]++
			}
		}

		qs := QuestionStats{
			QuestionID:         question.ID,
			Text:               question.Text,
			OptionDistribution: make([]OptionStat, 0, len(question.Options)),
		}
		if answered > 0 {
			qs.CorrectPercentage = float64(correct) / float64(answered) * 100
		}
		for k := range question.Options {
			option := &question.Options[k]
			count := selections[option.ID]
			percentage := 0.0
			if answered > 0 {
				percentage = float64(count) / float64(answered) * 100
			}
			qs.OptionDistribution = append(qs.OptionDistribution, OptionStat{
				OptionID:   option.ID,
				Text:       option.Text,
				Count:      count,
				Percentage: percentage,
				IsCorrect:  question.CorrectAnswer != nil && option.ID == *question.CorrectAnswer,
			})
		}
		stats.QuestionStats = append(stats.QuestionStats, qs)
	}

	recent := make([]models.Attempt, len(attempts))
	copy(recent, attempts)
	sort.Slice(recent, func(i, j int) bool {
		return recent[i].CompletedAt.After(recent[j].CompletedAt)
	})
	if len(recent) > recentAttemptLimit {
		recent = recent[:recentAttemptLimit]
	}
	for i := range recent {
		stats.RecentAttempts = append(stats.RecentAttempts, AttemptOverview{
			UserID:      recent[i].UserID,
			UserName:    recent[i].UserName,
			UserAvatar:  recent[i].UserAvatar,
			Score:       recent[i].Score,
			MaxScore:    recent[i].MaxScore,
			Percentage:  recent[i].Percentage(),
			Passed:      recent[i].Passed(quiz.PassingScore),
			CompletedAt: recent[i].CompletedAt,
		})
	}
	return stats
}

// Invalidate drops the cached view for a quiz. Called after any write
// that changes what the statistics would report.
func (s *StatsService) Invalidate(ctx context.Context, quizID string) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Del(ctx, statsCacheKey(quizID)).Err(); err != nil {
		s.log.Warn("failed to invalidate stats cache", zap.String("quiz_id", quizID), zap.Error(err))
	}
}

func (s *StatsService) fromCache(ctx context.Context, quizID string) *QuizStatistics {
	if s.redis == nil {
		return nil
	}
	data, err := s.redis.Get(ctx, statsCacheKey(quizID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			s.log.Warn("stats cache read failed", zap.String("quiz_id", quizID), zap.Error(err))
		}
		return nil
	}
	var stats QuizStatistics
	if err := json.Unmarshal(data, &stats); err != nil {
		s.log.Warn("stats cache entry corrupt", zap.String("quiz_id", quizID), zap.Error(err))
		return nil
	}
	return &stats
}

func (s *StatsService) toCache(ctx context.Context, quizID string, stats *QuizStatistics) {
	if s.redis == nil {
		return
	}
	data, err := json.Marshal(stats)
	if err != nil {
		return
	}
	if err := s.redis.Set(ctx, statsCacheKey(quizID), data, s.ttl).Err(); err != nil {
		s.log.Warn("stats cache write failed", zap.String("quiz_id", quizID), zap.Error(err))
	}
}

func statsCacheKey(quizID string) string {
	return "quiz:stats:" + quizID
}
