package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/SAP-F-2025/grading-service/internal/models"
	"github.com/SAP-F-2025/grading-service/internal/services"
	"github.com/SAP-F-2025/grading-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type ExamHandler struct {
	BaseHandler
	examService   services.ExamService
	exportService services.ExportService
}

func NewExamHandler(
	examService services.ExamService,
	exportService services.ExportService,
	logger utils.Logger,
) *ExamHandler {
	return &ExamHandler{
		BaseHandler:   NewBaseHandler(logger),
		examService:   examService,
		exportService: exportService,
	}
}

// GetExam retrieves an exam by ID
// @Summary Get exam
// @Tags exams
// @Produce json
// @Param id path uint true "Exam ID"
// @Success 200 {object} models.Exam
// @Failure 404 {object} ErrorResponse
// @Router /exams/{id} [get]
func (h *ExamHandler) GetExam(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	exam, err := h.examService.Get(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, exam)
}

// CheckPublish lists every rule that currently blocks publication
// @Summary Check exam publication
// @Tags exams
// @Produce json
// @Param id path uint true "Exam ID"
// @Success 200 {object} grading.PublishCheck
// @Router /exams/{id}/publish-check [get]
func (h *ExamHandler) CheckPublish(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	check, err := h.examService.CheckPublish(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, check)
}

// PublishExam publishes a draft exam
// @Summary Publish exam
// @Tags exams
// @Produce json
// @Param id path uint true "Exam ID"
// @Success 200 {object} SuccessResponse{data=models.Exam}
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /exams/{id}/publish [post]
func (h *ExamHandler) PublishExam(c *gin.Context) {
	h.changeStatus(c, "Exam published successfully", h.examService.Publish)
}

// StartExam opens a published exam
// @Router /exams/{id}/start [post]
func (h *ExamHandler) StartExam(c *gin.Context) {
	h.changeStatus(c, "Exam started successfully", h.examService.Start)
}

// BeginGrading closes the exam to students and opens grading
// @Router /exams/{id}/grading [post]
func (h *ExamHandler) BeginGrading(c *gin.Context) {
	h.changeStatus(c, "Exam grading started successfully", h.examService.BeginGrading)
}

// CompleteExam closes grading
// @Router /exams/{id}/complete [post]
func (h *ExamHandler) CompleteExam(c *gin.Context) {
	h.changeStatus(c, "Exam completed successfully", h.examService.Complete)
}

// CancelExam cancels a non-terminal exam
// @Router /exams/{id}/cancel [post]
func (h *ExamHandler) CancelExam(c *gin.Context) {
	h.changeStatus(c, "Exam cancelled successfully", h.examService.Cancel)
}

func (h *ExamHandler) changeStatus(c *gin.Context, message string, change func(ctx context.Context, id uint, actorID string) (*models.Exam, error)) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Changing exam status", "exam_id", id, "route", c.FullPath())

	exam, err := change(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, message, exam)
}

// ExportResults downloads the finalized results of an exam as an Excel workbook
// @Summary Export exam results
// @Tags exams
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param id path uint true "Exam ID"
// @Router /exams/{id}/results.xlsx [get]
func (h *ExamHandler) ExportResults(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Exporting exam results", "exam_id", id)

	data, err := h.exportService.ExportExamResults(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	sendWorkbook(c, fmt.Sprintf("exam-%d-results.xlsx", id), data)
}

// GetAuditTrail lists every recorded status change, question edit and grade of an exam
// @Summary Exam audit trail
// @Tags exams
// @Produce json
// @Param id path uint true "Exam ID"
// @Success 200 {array} models.AuditLog
// @Failure 404 {object} ErrorResponse
// @Router /exams/{id}/audit [get]
func (h *ExamHandler) GetAuditTrail(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	entries, err := h.examService.AuditTrail(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, entries)
}
