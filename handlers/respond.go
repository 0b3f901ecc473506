package handlers

import (
	"errors"
	"net/http"

	"edulearn/models"
	"edulearn/services"
	"edulearn/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondError maps domain errors onto the HTTP status taxonomy:
// NotFound, Forbidden, Conflict, InvalidInput, Unauthorized; everything
// unrecognized is logged and reported as a 500.
func respondError(c *gin.Context, log *zap.Logger, err error) {
	var dup *services.AlreadyAttemptedError
	switch {
	case errors.As(err, &dup):
		c.JSON(http.StatusConflict, gin.H{
			"success":         false,
			"message":         "You have already taken this quiz",
			"attempt_details": dup.Summary,
		})
	case errors.Is(err, models.ErrQuizNotFound),
		errors.Is(err, models.ErrCourseNotFound),
		errors.Is(err, models.ErrAttemptNotFound),
		errors.Is(err, models.ErrUserNotFound):
		util.Error(c, http.StatusNotFound, err.Error())
	case errors.Is(err, models.ErrNotCourseOwner),
		errors.Is(err, models.ErrNotEnrolled),
		errors.Is(err, models.ErrQuizNotPublished):
		util.Error(c, http.StatusForbidden, err.Error())
	case errors.Is(err, models.ErrDuplicateAttempt),
		errors.Is(err, models.ErrEmailRegistered):
		util.Error(c, http.StatusConflict, err.Error())
	case errors.Is(err, models.ErrInvalidInput):
		util.Error(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, models.ErrInvalidCredentials):
		util.Error(c, http.StatusUnauthorized, err.Error())
	default:
		log.Error("internal error", zap.Error(err), zap.String("path", c.FullPath()))
		util.Error(c, http.StatusInternalServerError, "Internal server error")
	}
}
