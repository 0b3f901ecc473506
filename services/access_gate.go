package services

import (
	"context"

	"edulearn/models"

	"gorm.io/gorm"
)

// AccessGate answers the ownership and enrollment questions the quiz
// engine needs. Course and user records belong to the rest of the
// platform; this is the only surface the engine consumes them through.
type AccessGate interface {
	CourseExists(ctx context.Context, courseID string) (bool, error)
	IsCourseOwner(ctx context.Context, userID, courseID string) (bool, error)
	IsEnrolled(ctx context.Context, userID, courseID string) (bool, error)
}

// CourseAccessGate reads the platform's course and enrollment tables.
type CourseAccessGate struct {
	db *gorm.DB
}

func NewCourseAccessGate(db *gorm.DB) *CourseAccessGate {
	return &CourseAccessGate{db: db}
}

func (g *CourseAccessGate) CourseExists(ctx context.Context, courseID string) (bool, error) {
	var count int64
	err := g.db.WithContext(ctx).
		Model(&models.Course{}).
		Where("id = ?", courseID).
		Count(&count).Error
	return count > 0, err
}

func (g *CourseAccessGate) IsCourseOwner(ctx context.Context, userID, courseID string) (bool, error) {
	var count int64
	err := g.db.WithContext(ctx).
		Model(&models.Course{}).
		Where("id = ? AND educator_id = ?", courseID, userID).
		Count(&count).Error
	return count > 0, err
}

func (g *CourseAccessGate) IsEnrolled(ctx context.Context, userID, courseID string) (bool, error) {
	var count int64
	err := g.db.WithContext(ctx).
		Model(&models.Enrollment{}).
		Where("course_id = ? AND user_id = ?", courseID, userID).
		Count(&count).Error
	return count > 0, err
}
