package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/grading-service/internal/services"
	"github.com/SAP-F-2025/grading-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type GradingHandler struct {
	BaseHandler
	gradingService services.GradingService
}

func NewGradingHandler(gradingService services.GradingService, logger utils.Logger) *GradingHandler {
	return &GradingHandler{
		BaseHandler:    NewBaseHandler(logger),
		gradingService: gradingService,
	}
}

// GradeAnswer grades a specific answer
// @Summary Grade answer
// @Description Multiple choice answers are graded automatically unless an override is given; other types need a grade.
// @Tags grading
// @Accept json
// @Produce json
// @Param answer_id path uint true "Answer ID"
// @Param grade body services.GradeAnswerRequest false "Grading data"
// @Success 200 {object} services.GradeAnswerResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /grading/answers/{answer_id} [post]
func (h *GradingHandler) GradeAnswer(c *gin.Context) {
	answerID := h.parseIDParam(c, "answer_id")
	if answerID == 0 {
		return
	}
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}

	var req services.GradeAnswerRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Grading answer", "answer_id", answerID)

	result, err := h.gradingService.GradeAnswer(c.Request.Context(), answerID, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// AutoGradeAttempt grades every multiple choice answer of an attempt
// @Summary Auto-grade attempt
// @Tags grading
// @Produce json
// @Param attempt_id path uint true "Attempt ID"
// @Success 200 {object} services.AutoGradeResponse
// @Router /grading/attempts/{attempt_id}/auto [post]
func (h *GradingHandler) AutoGradeAttempt(c *gin.Context) {
	attemptID := h.parseIDParam(c, "attempt_id")
	if attemptID == 0 {
		return
	}
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Auto-grading attempt", "attempt_id", attemptID)

	result, err := h.gradingService.AutoGradeAttempt(c.Request.Context(), attemptID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetProgress reports how much of an attempt is graded
// @Summary Grading progress
// @Tags grading
// @Produce json
// @Param attempt_id path uint true "Attempt ID"
// @Success 200 {object} services.GradingProgressResponse
// @Router /grading/attempts/{attempt_id}/progress [get]
func (h *GradingHandler) GetProgress(c *gin.Context) {
	attemptID := h.parseIDParam(c, "attempt_id")
	if attemptID == 0 {
		return
	}

	result, err := h.gradingService.Progress(c.Request.Context(), attemptID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// FinalizeAttempt computes and stores the result of a fully graded attempt
// @Summary Finalize attempt
// @Tags grading
// @Accept json
// @Produce json
// @Param attempt_id path uint true "Attempt ID"
// @Param body body services.FinalizeRequest false "Overall feedback"
// @Success 200 {object} SuccessResponse{data=models.ExamResult}
// @Failure 409 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /grading/attempts/{attempt_id}/finalize [post]
func (h *GradingHandler) FinalizeAttempt(c *gin.Context) {
	attemptID := h.parseIDParam(c, "attempt_id")
	if attemptID == 0 {
		return
	}
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}

	var req services.FinalizeRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Finalizing attempt", "attempt_id", attemptID)

	result, err := h.gradingService.Finalize(c.Request.Context(), attemptID, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Attempt finalized successfully", result)
}
