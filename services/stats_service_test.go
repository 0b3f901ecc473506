package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"edulearn/models"
	"edulearn/storage"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// statsQuiz builds the fixed quiz the aggregation tests run against:
// q1 (3 points, correct "opt-a") and q2 (2 points, correct "opt-y").
func statsQuiz() *models.Quiz {
	correctA := "opt-a"
	correctY := "opt-y"
	return &models.Quiz{
		ID:           "quiz-1",
		Title:        "Networking basics",
		CourseID:     "course-1",
		EducatorID:   "educator-1",
		PassingScore: 70,
		IsPublished:  true,
		Questions: []models.Question{
			{
				ID: "q1", QuizID: "quiz-1", Text: "Question one",
				Type: models.QuestionTypeMultipleChoice, CorrectAnswer: &correctA, Points: 3, Order: 1,
				Options: []models.Option{
					{ID: "opt-a", QuestionID: "q1", Text: "A", Order: 1},
					{ID: "opt-b", QuestionID: "q1", Text: "B", Order: 2},
					{ID: "opt-c", QuestionID: "q1", Text: "C", Order: 3},
				},
			},
			{
				ID: "q2", QuizID: "quiz-1", Text: "Question two",
				Type: models.QuestionTypeTrueFalse, CorrectAnswer: &correctY, Points: 2, Order: 2,
				Options: []models.Option{
					{ID: "opt-x", QuestionID: "q2", Text: "True", Order: 1},
					{ID: "opt-y", QuestionID: "q2", Text: "False", Order: 2},
				},
			},
		},
	}
}

func statsAttempt(user string, score, maxScore int, completedAt time.Time, answers ...models.AttemptAnswer) models.Attempt {
	return models.Attempt{
		ID:          "attempt-" + user,
		QuizID:      "quiz-1",
		UserID:      user,
		UserName:    "User " + user,
		Score:       score,
		MaxScore:    maxScore,
		CompletedAt: completedAt,
		Answers:     answers,
	}
}

func answered(question, option string, correct bool) models.AttemptAnswer {
	return models.AttemptAnswer{QuestionID: question, SelectedOption: &option, IsCorrect: correct}
}

func TestAggregateNoAttempts(t *testing.T) {
	stats := Aggregate(statsQuiz(), nil)

	if stats.TotalAttempts != 0 || stats.PassedAttempts != 0 || stats.FailedAttempts != 0 {
		t.Fatalf("expected zero counters, got %+v", stats)
	}
	if stats.PassRate != 0 || stats.AverageScore != 0 {
		t.Fatalf("rates over zero attempts must be zero, got pass=%v avg=%v", stats.PassRate, stats.AverageScore)
	}
	if len(stats.QuestionStats) != 2 {
		t.Fatalf("expected stats for every question, got %d", len(stats.QuestionStats))
	}
	for _, qs := range stats.QuestionStats {
		if qs.CorrectPercentage != 0 {
			t.Fatalf("question %s has nonzero rate with no attempts", qs.QuestionID)
		}
		for _, opt := range qs.OptionDistribution {
			if opt.Count != 0 || opt.Percentage != 0 {
				t.Fatalf("option %s has nonzero distribution with no attempts", opt.OptionID)
			}
		}
	}
	if len(stats.RecentAttempts) != 0 {
		t.Fatalf("expected no recent attempts")
	}
}

func TestAggregateRatesAndDistribution(t *testing.T) {
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	// Ten attempts answer q1 (six correctly); only four reach q2, three of
	// them correct. q2's rates are over four, not ten.
	var attempts []models.Attempt
	for i := 0; i < 10; i++ {
		user := fmt.Sprintf("u%02d", i)
		var answers []models.AttemptAnswer
		score := 0
		if i < 6 {
			answers = append(answers, answered("q1", "opt-a", true))
			score += 3
		} else {
			answers = append(answers, answered("q1", "opt-b", false))
		}
		if i < 4 {
			if i < 3 {
				answers = append(answers, answered("q2", "opt-y", true))
				score += 2
			} else {
				answers = append(answers, answered("q2", "opt-x", false))
			}
		}
		attempts = append(attempts, statsAttempt(user, score, 5, base.Add(time.Duration(i)*time.Minute), answers...))
	}

	stats := Aggregate(statsQuiz(), attempts)

	if stats.TotalAttempts != 10 {
		t.Fatalf("expected 10 attempts, got %d", stats.TotalAttempts)
	}
	// 100% scorers: correct on both questions, i.e. the first three.
	if stats.PassedAttempts != 3 || stats.FailedAttempts != 7 {
		t.Fatalf("expected 3 passed / 7 failed, got %d / %d", stats.PassedAttempts, stats.FailedAttempts)
	}
	if stats.PassRate != 30 {
		t.Fatalf("expected pass rate 30, got %v", stats.PassRate)
	}

	q1 := stats.QuestionStats[0]
	if q1.CorrectPercentage != 60 {
		t.Fatalf("expected q1 rate 60, got %v", q1.CorrectPercentage)
	}
	if q1.OptionDistribution[0].Count != 6 || q1.OptionDistribution[1].Count != 4 || q1.OptionDistribution[2].Count != 0 {
		t.Fatalf("unexpected q1 distribution: %+v", q1.OptionDistribution)
	}

	q2 := stats.QuestionStats[1]
	if q2.CorrectPercentage != 75 {
		t.Fatalf("expected q2 rate 75 over answered attempts, got %v", q2.CorrectPercentage)
	}
	if q2.OptionDistribution[0].Count != 1 || q2.OptionDistribution[1].Count != 3 {
		t.Fatalf("unexpected q2 distribution: %+v", q2.OptionDistribution)
	}
	if q2.OptionDistribution[0].Percentage != 25 || q2.OptionDistribution[1].Percentage != 75 {
		t.Fatalf("q2 percentages must use the answered denominator: %+v", q2.OptionDistribution)
	}
	if q2.OptionDistribution[0].IsCorrect || !q2.OptionDistribution[1].IsCorrect {
		t.Fatalf("q2 correct flags wrong: %+v", q2.OptionDistribution)
	}
}

func TestAggregatePassBoundary(t *testing.T) {
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	attempts := []models.Attempt{
		statsAttempt("u1", 7, 10, now),  // exactly 70%
		statsAttempt("u2", 6, 10, now),  // 60%
		statsAttempt("u3", 10, 10, now), // 100%
	}
	stats := Aggregate(statsQuiz(), attempts)
	if stats.PassedAttempts != 2 {
		t.Fatalf("exactly the threshold must pass; got %d passed", stats.PassedAttempts)
	}
}

func TestAggregateFrozenCorrectnessLiveFlag(t *testing.T) {
	// The attempt was graded before an edit moved the correct answer: its
	// frozen IsCorrect still counts toward the rate, while the option
	// flags reflect the current definition.
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	attempts := []models.Attempt{
		statsAttempt("u1", 3, 5, now, answered("q1", "opt-b", true)),
	}
	stats := Aggregate(statsQuiz(), attempts)

	q1 := stats.QuestionStats[0]
	if q1.CorrectPercentage != 100 {
		t.Fatalf("frozen correctness must drive the rate, got %v", q1.CorrectPercentage)
	}
	if q1.OptionDistribution[1].IsCorrect {
		t.Fatalf("option flag must follow the live definition")
	}
	if !q1.OptionDistribution[0].IsCorrect {
		t.Fatalf("live correct option not flagged")
	}
}

func TestAggregateRecentAttempts(t *testing.T) {
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	var attempts []models.Attempt
	for i := 0; i < 12; i++ {
		attempts = append(attempts, statsAttempt(fmt.Sprintf("u%02d", i), 5, 5, base.Add(time.Duration(i)*time.Hour)))
	}

	stats := Aggregate(statsQuiz(), attempts)
	if len(stats.RecentAttempts) != 10 {
		t.Fatalf("expected the 10 most recent attempts, got %d", len(stats.RecentAttempts))
	}
	if stats.RecentAttempts[0].UserID != "u11" {
		t.Fatalf("expected newest first, got %s", stats.RecentAttempts[0].UserID)
	}
	for i := 1; i < len(stats.RecentAttempts); i++ {
		if stats.RecentAttempts[i].CompletedAt.After(stats.RecentAttempts[i-1].CompletedAt) {
			t.Fatalf("recent attempts out of order at %d", i)
		}
	}
}

func TestGetQuizStatisticsOwnerOnly(t *testing.T) {
	store := storage.NewMemoryStore()
	if err := store.Create(context.Background(), statsQuiz()); err != nil {
		t.Fatalf("Create: %v", err)
	}
	svc := NewStatsService(store, stubGate{exists: true, owner: false}, nil, 0, zap.NewNop())

	_, err := svc.GetQuizStatistics(context.Background(), "intruder", "quiz-1")
	if !errors.Is(err, models.ErrNotCourseOwner) {
		t.Fatalf("expected ErrNotCourseOwner, got %v", err)
	}
}

func TestGetQuizStatisticsCaching(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	ctx := context.Background()
	store := storage.NewMemoryStore()
	if err := store.Create(ctx, statsQuiz()); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := store.AppendAttempt(ctx, &models.Attempt{
		ID: "attempt-u1", QuizID: "quiz-1", UserID: "u1", Score: 5, MaxScore: 5,
		CompletedAt: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
	}); err != nil {
		t.Fatalf("AppendAttempt: %v", err)
	}

	svc := NewStatsService(store, allowAll(), client, time.Minute, zap.NewNop())

	stats, err := svc.GetQuizStatistics(ctx, "educator-1", "quiz-1")
	if err != nil {
		t.Fatalf("GetQuizStatistics: %v", err)
	}
	if stats.TotalAttempts != 1 {
		t.Fatalf("expected 1 attempt, got %d", stats.TotalAttempts)
	}
	if !mr.Exists("quiz:stats:quiz-1") {
		t.Fatalf("statistics were not cached")
	}

	// A write that bypasses invalidation is still served from cache.
	if err := store.AppendAttempt(ctx, &models.Attempt{
		ID: "attempt-u2", QuizID: "quiz-1", UserID: "u2", Score: 3, MaxScore: 5,
		CompletedAt: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
	}); err != nil {
		t.Fatalf("AppendAttempt: %v", err)
	}
	stats, err = svc.GetQuizStatistics(ctx, "educator-1", "quiz-1")
	if err != nil {
		t.Fatalf("GetQuizStatistics: %v", err)
	}
	if stats.TotalAttempts != 1 {
		t.Fatalf("expected cached view, got %d attempts", stats.TotalAttempts)
	}

	svc.Invalidate(ctx, "quiz-1")
	if mr.Exists("quiz:stats:quiz-1") {
		t.Fatalf("Invalidate left the cache entry behind")
	}
	stats, err = svc.GetQuizStatistics(ctx, "educator-1", "quiz-1")
	if err != nil {
		t.Fatalf("GetQuizStatistics: %v", err)
	}
	if stats.TotalAttempts != 2 {
		t.Fatalf("expected recomputed view with 2 attempts, got %d", stats.TotalAttempts)
	}
}
