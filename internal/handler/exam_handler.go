package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/elugabriel/interactive-assessment/internal/middleware"
	"github.com/elugabriel/interactive-assessment/internal/model"
	"github.com/elugabriel/interactive-assessment/internal/response"
	"github.com/elugabriel/interactive-assessment/internal/service"
	"github.com/elugabriel/interactive-assessment/internal/validator"
)

// ExamHandler handles the student exam-taking endpoints.
type ExamHandler struct {
	examService *service.ExamService
}

// NewExamHandler creates a new ExamHandler.
func NewExamHandler(examService *service.ExamService) *ExamHandler {
	return &ExamHandler{examService: examService}
}

// Dashboard godoc
// GET /api/v1/student/dashboard
// Returns the student's recent exams.
func (h *ExamHandler) Dashboard(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	exams, err := h.examService.ListForStudent(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"exams": exams})
}

// StartExam godoc
// POST /api/v1/student/exams
// Closes any in-progress exam and starts a fresh one with a sampled
// question set.
func (h *ExamHandler) StartExam(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	exam, err := h.examService.Start(c.Request.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, service.ErrNoQuestions) {
			response.Fail(c, http.StatusConflict, response.ErrNoQuestions)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"exam": exam})
}

// GetExam godoc
// GET /api/v1/student/exams/:id
// Returns the exam with its remaining time. An exam whose deadline has
// passed is auto-submitted before the response is built.
func (h *ExamHandler) GetExam(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	examID, ok := parseIDParam(c)
	if !ok {
		return
	}

	state, err := h.examService.Overview(c.Request.Context(), examID, claims.UserID)
	if err != nil {
		failExamError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"exam":              state.Exam,
		"remaining_seconds": state.RemainingSeconds,
		"expired":           state.Expired,
	})
}

// GetExamQuestions godoc
// GET /api/v1/student/exams/:id/questions
// Returns the ordered question list for the exam. Reference answers are
// never included.
func (h *ExamHandler) GetExamQuestions(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	examID, ok := parseIDParam(c)
	if !ok {
		return
	}

	questions, err := h.examService.Questions(c.Request.Context(), examID, claims.UserID)
	if err != nil {
		failExamError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"questions": questions})
}

// SubmitExam godoc
// POST /api/v1/student/exams/:id/submit
// Persists the student's answers, grades them, and completes the exam.
// A submission past the deadline triggers an auto-submit instead.
func (h *ExamHandler) SubmitExam(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	examID, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req model.SubmitExamRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	result, err := h.examService.Submit(c.Request.Context(), examID, claims.UserID, req.Answers)
	if err != nil {
		failExamError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"status":      result.Status,
		"total_score": result.TotalScore,
	})
}

// GetResults godoc
// GET /api/v1/student/exams/:id/results
// Returns the per-question grading detail for a finished exam.
func (h *ExamHandler) GetResults(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	examID, ok := parseIDParam(c)
	if !ok {
		return
	}

	exam, details, err := h.examService.Results(c.Request.Context(), examID, claims.UserID)
	if err != nil {
		failExamError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"exam":    exam,
		"answers": details,
	})
}

// GetResultsData godoc
// GET /api/v1/student/exams/:id/results/data
// Returns the aggregated score summary for a finished exam.
func (h *ExamHandler) GetResultsData(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	examID, ok := parseIDParam(c)
	if !ok {
		return
	}

	summary, err := h.examService.ResultsData(c.Request.Context(), examID, claims.UserID)
	if err != nil {
		failExamError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"summary": summary})
}

func parseIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return 0, false
	}
	return id, true
}

func failExamError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrExamNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrForbidden):
		response.Fail(c, http.StatusForbidden, response.ErrForbidden)
	case errors.Is(err, service.ErrExamNotFinished):
		response.Fail(c, http.StatusConflict, response.ErrExamInProgress)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
