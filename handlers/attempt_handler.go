package handlers

import (
	"edulearn/middleware"
	"edulearn/services"
	"edulearn/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AttemptHandler struct {
	attemptService *services.AttemptService
	log            *zap.Logger
}

func NewAttemptHandler(attemptService *services.AttemptService, log *zap.Logger) *AttemptHandler {
	return &AttemptHandler{attemptService: attemptService, log: log}
}

// Answers may be empty: a student whose timer runs out with nothing
// selected still gets a zero-score attempt recorded.
type submitAttemptRequest struct {
	Answers []services.AnswerInput `json:"answers"`
}

func (h *AttemptHandler) SubmitAttempt(c *gin.Context) {
	claims := middleware.CurrentUser(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	var req submitAttemptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	user := services.Submitter{
		ID:     claims.UserID,
		Name:   claims.Name,
		Avatar: claims.Avatar,
	}
	result, err := h.attemptService.Submit(c.Request.Context(), user, c.Param("id"), req.Answers)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	util.SuccessMessage(c, "Quiz submitted successfully", gin.H{"result": result})
}

func (h *AttemptHandler) GetAttemptResult(c *gin.Context) {
	claims := middleware.CurrentUser(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	result, err := h.attemptService.GetResult(c.Request.Context(), claims.UserID, c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	util.Success(c, gin.H{"results": result})
}
