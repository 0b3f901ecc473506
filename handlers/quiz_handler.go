package handlers

import (
	"edulearn/middleware"
	"edulearn/services"
	"edulearn/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type QuizHandler struct {
	quizService *services.QuizService
	log         *zap.Logger
}

func NewQuizHandler(quizService *services.QuizService, log *zap.Logger) *QuizHandler {
	return &QuizHandler{quizService: quizService, log: log}
}

func (h *QuizHandler) CreateQuiz(c *gin.Context) {
	claims := middleware.CurrentUser(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	var req services.CreateQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	quiz, err := h.quizService.CreateQuiz(c.Request.Context(), claims.UserID, &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	util.Created(c, "Quiz created successfully", gin.H{"quiz": quiz})
}

func (h *QuizHandler) UpdateQuiz(c *gin.Context) {
	claims := middleware.CurrentUser(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	var req services.UpdateQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	quiz, err := h.quizService.UpdateQuiz(c.Request.Context(), claims.UserID, c.Param("id"), &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	util.SuccessMessage(c, "Quiz updated successfully", gin.H{"quiz": quiz})
}

func (h *QuizHandler) ListCourseQuizzes(c *gin.Context) {
	claims := middleware.CurrentUser(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	quizzes, err := h.quizService.ListQuizzesForCourse(c.Request.Context(), claims.UserID, c.Param("courseId"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	util.Success(c, gin.H{"quizzes": quizzes})
}

func (h *QuizHandler) GetQuizForEdit(c *gin.Context) {
	claims := middleware.CurrentUser(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	quiz, err := h.quizService.GetQuizForEdit(c.Request.Context(), claims.UserID, c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	util.Success(c, gin.H{"quiz": quiz})
}

func (h *QuizHandler) GetQuizForStudent(c *gin.Context) {
	claims := middleware.CurrentUser(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	quiz, err := h.quizService.GetQuizForStudent(c.Request.Context(), claims.UserID, c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	util.Success(c, gin.H{"quiz": quiz})
}

func (h *QuizHandler) DeleteQuiz(c *gin.Context) {
	claims := middleware.CurrentUser(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	if err := h.quizService.DeleteQuiz(c.Request.Context(), claims.UserID, c.Param("id")); err != nil {
		respondError(c, h.log, err)
		return
	}

	util.SuccessMessage(c, "Quiz deleted successfully", nil)
}
