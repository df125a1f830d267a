package handlers

import (
	"fmt"
	"net/http"

	"github.com/SAP-F-2025/grading-service/internal/services"
	"github.com/SAP-F-2025/grading-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type StudentHandler struct {
	BaseHandler
	aggregationService services.AggregationService
	exportService      services.ExportService
}

func NewStudentHandler(
	aggregationService services.AggregationService,
	exportService services.ExportService,
	logger utils.Logger,
) *StudentHandler {
	return &StudentHandler{
		BaseHandler:        NewBaseHandler(logger),
		aggregationService: aggregationService,
		exportService:      exportService,
	}
}

// GetAverages returns the course and semester averages of a student
// @Summary Student averages
// @Tags students
// @Produce json
// @Param student_id path string true "Student ID"
// @Param academic_year query string false "Academic year, e.g. 2025-2026"
// @Success 200 {object} models.Transcript
// @Failure 400 {object} ErrorResponse
// @Router /students/{student_id}/averages [get]
func (h *StudentHandler) GetAverages(c *gin.Context) {
	studentID := ParseStringIDParam(c, "student_id")
	if studentID == "" {
		return
	}

	transcript, err := h.aggregationService.Transcript(c.Request.Context(), studentID, c.Query("academic_year"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, transcript)
}

// ExportTranscript downloads the averages of a student as an Excel workbook
// @Summary Export transcript
// @Tags students
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param student_id path string true "Student ID"
// @Param academic_year query string false "Academic year, e.g. 2025-2026"
// @Router /students/{student_id}/transcript.xlsx [get]
func (h *StudentHandler) ExportTranscript(c *gin.Context) {
	studentID := ParseStringIDParam(c, "student_id")
	if studentID == "" {
		return
	}
	year := c.Query("academic_year")

	h.LogRequest(c, "Exporting transcript", "student_id", studentID, "academic_year", year)

	data, err := h.exportService.ExportTranscript(c.Request.Context(), studentID, year)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	name := fmt.Sprintf("transcript-%s.xlsx", studentID)
	if year != "" {
		name = fmt.Sprintf("transcript-%s-%s.xlsx", studentID, year)
	}
	sendWorkbook(c, name, data)
}
