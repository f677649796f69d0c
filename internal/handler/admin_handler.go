package handler

import (
	"errors"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"

	"github.com/elugabriel/interactive-assessment/internal/model"
	"github.com/elugabriel/interactive-assessment/internal/repository"
	"github.com/elugabriel/interactive-assessment/internal/response"
	"github.com/elugabriel/interactive-assessment/internal/service"
	"github.com/elugabriel/interactive-assessment/internal/validator"
)

// AdminHandler handles question authoring and exam review endpoints.
type AdminHandler struct {
	questionService *service.QuestionService
	examService     *service.ExamService
	auditRepo       *repository.AuditRepository
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(
	questionService *service.QuestionService,
	examService *service.ExamService,
	auditRepo *repository.AuditRepository,
) *AdminHandler {
	return &AdminHandler{
		questionService: questionService,
		examService:     examService,
		auditRepo:       auditRepo,
	}
}

// ListQuestions godoc
// GET /api/v1/admin/questions
func (h *AdminHandler) ListQuestions(c *gin.Context) {
	questions, err := h.questionService.List(c.Request.Context(), 100)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"questions": questions})
}

// CreateQuestion godoc
// POST /api/v1/admin/questions
func (h *AdminHandler) CreateQuestion(c *gin.Context) {
	var req model.CreateQuestionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	question, err := h.questionService.Create(c.Request.Context(), req)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"question": question})
}

// UpdateQuestion godoc
// PUT /api/v1/admin/questions/:id
func (h *AdminHandler) UpdateQuestion(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req model.UpdateQuestionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	question, err := h.questionService.Update(c.Request.Context(), id, req)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"question": question})
}

// DeleteQuestion godoc
// DELETE /api/v1/admin/questions/:id
func (h *AdminHandler) DeleteQuestion(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.questionService.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}

// ImportQuestions godoc
// POST /api/v1/admin/questions/import
// Accepts an XLSX workbook with "Question Text" and "Model Answer"
// columns and bulk-creates the contained questions.
func (h *AdminHandler) ImportQuestions(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrFileRequired)
		return
	}

	if strings.ToLower(filepath.Ext(fileHeader.Filename)) != ".xlsx" {
		response.Fail(c, http.StatusBadRequest, response.ErrUnsupportedFile)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	defer file.Close()

	imported, err := h.questionService.ImportXLSX(c.Request.Context(), file)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingColumns):
			response.Fail(c, http.StatusBadRequest, response.ErrMissingColumns)
		case errors.Is(err, service.ErrNoImportableRows):
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"imported": imported})
}

// ListExams godoc
// GET /api/v1/admin/exams
// Returns recent exams across all students for review.
func (h *AdminHandler) ListExams(c *gin.Context) {
	exams, err := h.examService.ListAllForReview(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"exams": exams})
}

// ListAuditLogs godoc
// GET /api/v1/admin/audit-logs
func (h *AdminHandler) ListAuditLogs(c *gin.Context) {
	logs, err := h.auditRepo.List(c.Request.Context(), 200)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"audit_logs": logs})
}
