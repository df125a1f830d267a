package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/grading-service/internal/services"
	"github.com/SAP-F-2025/grading-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type QuestionHandler struct {
	BaseHandler
	examService services.ExamService
}

func NewQuestionHandler(examService services.ExamService, logger utils.Logger) *QuestionHandler {
	return &QuestionHandler{
		BaseHandler: NewBaseHandler(logger),
		examService: examService,
	}
}

// ReplaceQuestions replaces the whole question set of an exam
// @Summary Replace exam questions
// @Description Allowed while the exam is draft or published. A published exam has its total points recomputed.
// @Tags questions
// @Accept json
// @Produce json
// @Param id path uint true "Exam ID"
// @Param questions body services.ReplaceQuestionsRequest true "Question set"
// @Success 200 {object} SuccessResponse{data=services.ExamQuestionsResponse}
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /exams/{id}/questions [put]
func (h *QuestionHandler) ReplaceQuestions(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}

	var req services.ReplaceQuestionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Replacing exam questions", "exam_id", id, "questions", len(req.Questions))

	resp, err := h.examService.ReplaceQuestions(c.Request.Context(), id, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Exam questions replaced successfully", resp)
}
