package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"edulearn/models"
)

func seedQuiz(id, courseID string) *models.Quiz {
	correct := id + "-q1-a"
	return &models.Quiz{
		ID:           id,
		Title:        "Quiz " + id,
		CourseID:     courseID,
		EducatorID:   "educator-1",
		PassingScore: 70,
		Questions: []models.Question{
			{
				ID: id + "-q1", QuizID: id, Text: "First question",
				Type: models.QuestionTypeMultipleChoice, CorrectAnswer: &correct, Points: 2, Order: 1,
				Options: []models.Option{
					{ID: id + "-q1-a", QuestionID: id + "-q1", Text: "A", Order: 1},
					{ID: id + "-q1-b", QuestionID: id + "-q1", Text: "B", Order: 2},
				},
			},
		},
	}
}

func TestMemoryStoreLifecycle(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if _, err := store.Get(ctx, "missing"); !errors.Is(err, models.ErrQuizNotFound) {
		t.Fatalf("expected ErrQuizNotFound, got %v", err)
	}

	if err := store.Create(ctx, seedQuiz("quiz-1", "course-1")); err != nil {
		t.Fatalf("Create: %v", err)
	}

	quiz, err := store.Get(ctx, "quiz-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(quiz.Questions) != 1 || len(quiz.Questions[0].Options) != 2 {
		t.Fatalf("quiz not stored fully: %+v", quiz)
	}

	quiz.Title = "changed"
	if err := store.Update(ctx, quiz, nil); err != nil {
		t.Fatalf("Update: %v", err)
	}
	saved, err := store.Get(ctx, "quiz-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if saved.Title != "changed" {
		t.Fatalf("Update did not persist, title %q", saved.Title)
	}
	if len(saved.Questions) != 1 {
		t.Fatalf("nil questions must leave the set untouched, got %d", len(saved.Questions))
	}

	if err := store.Delete(ctx, "quiz-1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := store.Delete(ctx, "quiz-1"); !errors.Is(err, models.ErrQuizNotFound) {
		t.Fatalf("expected ErrQuizNotFound on double delete, got %v", err)
	}
}

func TestMemoryStoreCloneIsolation(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if err := store.Create(ctx, seedQuiz("quiz-1", "course-1")); err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Mutating what Get returned must not leak into the store.
	quiz, err := store.Get(ctx, "quiz-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	quiz.Title = "mutated"
	quiz.Questions[0].Text = "mutated"
	quiz.Questions[0].Options[0].Text = "mutated"
	*quiz.Questions[0].CorrectAnswer = "mutated"

	fresh, err := store.Get(ctx, "quiz-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if fresh.Title == "mutated" || fresh.Questions[0].Text == "mutated" {
		t.Fatalf("stored quiz mutated through returned pointer")
	}
	if fresh.Questions[0].Options[0].Text == "mutated" {
		t.Fatalf("stored options mutated through returned pointer")
	}
	if *fresh.Questions[0].CorrectAnswer == "mutated" {
		t.Fatalf("stored correct answer mutated through returned pointer")
	}
}

func TestMemoryStoreUpdateReplacesQuestions(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if err := store.Create(ctx, seedQuiz("quiz-1", "course-1")); err != nil {
		t.Fatalf("Create: %v", err)
	}
	stored, err := store.Get(ctx, "quiz-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	correct := "quiz-1-q1-b"
	replacement := []models.Question{
		{
			ID: "quiz-1-q1", Text: "First question, reworded",
			Type: models.QuestionTypeMultipleChoice, CorrectAnswer: &correct, Points: 4, Order: 1,
			Options: []models.Option{
				{ID: "quiz-1-q1-a", Text: "A", Order: 1},
				{ID: "quiz-1-q1-b", Text: "B", Order: 2},
			},
		},
		{
			ID: "quiz-1-q2", Text: "Second question",
			Type: models.QuestionTypeTrueFalse, Points: 1, Order: 2,
			Options: []models.Option{
				{ID: "quiz-1-q2-a", Text: "True", Order: 1},
				{ID: "quiz-1-q2-b", Text: "False", Order: 2},
			},
		},
	}
	stored.Title = "retitled"
	if err := store.Update(ctx, stored, replacement); err != nil {
		t.Fatalf("Update: %v", err)
	}

	quiz, err := store.Get(ctx, "quiz-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if quiz.Title != "retitled" {
		t.Fatalf("metadata not applied alongside questions, title %q", quiz.Title)
	}
	if len(quiz.Questions) != 2 {
		t.Fatalf("expected 2 questions after replace, got %d", len(quiz.Questions))
	}
	if quiz.Questions[0].ID != "quiz-1-q1" || quiz.Questions[0].Points != 4 {
		t.Fatalf("preserved question not updated: %+v", quiz.Questions[0])
	}
	if quiz.Questions[0].QuizID != "quiz-1" || quiz.Questions[1].QuizID != "quiz-1" {
		t.Fatalf("replacement questions not bound to quiz")
	}

	missing := seedQuiz("missing", "course-1")
	if err := store.Update(ctx, missing, replacement); !errors.Is(err, models.ErrQuizNotFound) {
		t.Fatalf("expected ErrQuizNotFound, got %v", err)
	}
}

func TestMemoryStoreAttempts(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if err := store.Create(ctx, seedQuiz("quiz-1", "course-1")); err != nil {
		t.Fatalf("Create: %v", err)
	}

	attempt := &models.Attempt{
		ID: "attempt-1", QuizID: "quiz-1", UserID: "student-1",
		Score: 2, MaxScore: 2, CompletedAt: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
	}
	if err := store.AppendAttempt(ctx, attempt); err != nil {
		t.Fatalf("AppendAttempt: %v", err)
	}

	// Same user again is a duplicate regardless of the attempt id.
	dup := &models.Attempt{ID: "attempt-2", QuizID: "quiz-1", UserID: "student-1"}
	if err := store.AppendAttempt(ctx, dup); !errors.Is(err, models.ErrDuplicateAttempt) {
		t.Fatalf("expected ErrDuplicateAttempt, got %v", err)
	}

	// A different user is fine.
	other := &models.Attempt{ID: "attempt-3", QuizID: "quiz-1", UserID: "student-2", Score: 1, MaxScore: 2}
	if err := store.AppendAttempt(ctx, other); err != nil {
		t.Fatalf("AppendAttempt: %v", err)
	}

	got, err := store.GetAttempt(ctx, "quiz-1", "student-1")
	if err != nil {
		t.Fatalf("GetAttempt: %v", err)
	}
	if got.ID != "attempt-1" || got.Score != 2 {
		t.Fatalf("unexpected attempt: %+v", got)
	}
	if _, err := store.GetAttempt(ctx, "quiz-1", "student-9"); !errors.Is(err, models.ErrAttemptNotFound) {
		t.Fatalf("expected ErrAttemptNotFound, got %v", err)
	}

	attempts, err := store.ListAttempts(ctx, "quiz-1")
	if err != nil {
		t.Fatalf("ListAttempts: %v", err)
	}
	if len(attempts) != 2 {
		t.Fatalf("expected 2 attempts, got %d", len(attempts))
	}

	// Get never loads the attempt history.
	quiz, err := store.Get(ctx, "quiz-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(quiz.Attempts) != 0 {
		t.Fatalf("Get should not include attempts, got %d", len(quiz.Attempts))
	}

	if err := store.AppendAttempt(ctx, &models.Attempt{ID: "a", QuizID: "missing", UserID: "u"}); !errors.Is(err, models.ErrQuizNotFound) {
		t.Fatalf("expected ErrQuizNotFound, got %v", err)
	}
}

func TestMemoryStoreListByCourse(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	first := seedQuiz("quiz-1", "course-1")
	first.CreatedAt = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	second := seedQuiz("quiz-2", "course-1")
	second.CreatedAt = time.Date(2024, 3, 2, 9, 0, 0, 0, time.UTC)
	elsewhere := seedQuiz("quiz-3", "course-2")

	for _, quiz := range []*models.Quiz{first, second, elsewhere} {
		if err := store.Create(ctx, quiz); err != nil {
			t.Fatalf("Create %s: %v", quiz.ID, err)
		}
	}

	quizzes, err := store.ListByCourse(ctx, "course-1")
	if err != nil {
		t.Fatalf("ListByCourse: %v", err)
	}
	if len(quizzes) != 2 {
		t.Fatalf("expected 2 quizzes, got %d", len(quizzes))
	}
	if quizzes[0].ID != "quiz-2" || quizzes[1].ID != "quiz-1" {
		t.Fatalf("expected newest first, got %s then %s", quizzes[0].ID, quizzes[1].ID)
	}
}
