package models

import "errors"

var (
	// ErrQuizNotFound indicates the quiz does not exist.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrCourseNotFound indicates the referenced course does not exist.
	ErrCourseNotFound = errors.New("course not found")
	// ErrAttemptNotFound is returned when a user asks for results before taking the quiz.
	ErrAttemptNotFound = errors.New("attempt not found")
	// ErrNotCourseOwner is returned on educator operations by a non-owner.
	ErrNotCourseOwner = errors.New("you do not have permission to manage quizzes for this course")
	// ErrNotEnrolled is returned on student operations without enrollment.
	ErrNotEnrolled = errors.New("you are not enrolled in this course")
	// ErrQuizNotPublished is returned when a student reaches an unpublished quiz.
	ErrQuizNotPublished = errors.New("this quiz is not available yet")
	// ErrDuplicateAttempt is returned when a (quiz, user) pair already has an attempt.
	ErrDuplicateAttempt = errors.New("quiz already attempted")
	// ErrInvalidInput wraps authoring and submission validation failures.
	ErrInvalidInput = errors.New("invalid input")

	ErrEmailRegistered    = errors.New("email is already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
)
