package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"github.com/elugabriel/interactive-assessment/internal/model"
	"github.com/elugabriel/interactive-assessment/internal/repository"
)

// Import errors.
var (
	ErrMissingColumns   = errors.New("workbook is missing required columns")
	ErrNoImportableRows = errors.New("workbook contains no importable rows")
)

// Required header columns of an imported question workbook.
const (
	importColQuestionText = "Question Text"
	importColModelAnswer  = "Model Answer"
)

// QuestionService handles administrator question pool management.
type QuestionService struct {
	repo *repository.QuestionRepository
	log  zerolog.Logger
}

// NewQuestionService creates a new QuestionService.
func NewQuestionService(repo *repository.QuestionRepository, log zerolog.Logger) *QuestionService {
	return &QuestionService{
		repo: repo,
		log:  log.With().Str("component", "question_service").Logger(),
	}
}

// Create adds a question to the pool.
func (s *QuestionService) Create(ctx context.Context, req model.CreateQuestionRequest) (*model.Question, error) {
	q := &model.Question{
		QuestionText: req.QuestionText,
		ModelAnswer:  req.ModelAnswer,
	}
	if err := s.repo.Create(ctx, q); err != nil {
		return nil, err
	}
	return q, nil
}

// Update edits an existing question's prompt and reference answer.
func (s *QuestionService) Update(ctx context.Context, id int64, req model.UpdateQuestionRequest) (*model.Question, error) {
	q := &model.Question{
		ID:           id,
		QuestionText: req.QuestionText,
		ModelAnswer:  req.ModelAnswer,
	}
	if err := s.repo.Update(ctx, q); err != nil {
		return nil, err
	}
	return q, nil
}

// Delete removes a question from the pool.
func (s *QuestionService) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// List returns the latest questions, newest first.
func (s *QuestionService) List(ctx context.Context, limit int) ([]model.Question, error) {
	return s.repo.List(ctx, limit)
}

// ImportXLSX reads an XLSX workbook and bulk-inserts its questions.
// The first sheet must carry "Question Text" and "Model Answer" header
// columns; rows with either cell blank are skipped. Returns the number
// of imported questions.
func (s *QuestionService) ImportXLSX(ctx context.Context, r io.Reader) (int, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return 0, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return 0, ErrMissingColumns
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return 0, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return 0, ErrMissingColumns
	}

	textCol, answerCol := -1, -1
	for i, header := range rows[0] {
		switch strings.TrimSpace(header) {
		case importColQuestionText:
			textCol = i
		case importColModelAnswer:
			answerCol = i
		}
	}
	if textCol < 0 || answerCol < 0 {
		return 0, ErrMissingColumns
	}

	var questions []model.Question
	for _, row := range rows[1:] {
		text := cellAt(row, textCol)
		answer := cellAt(row, answerCol)
		if text == "" || answer == "" {
			continue
		}
		questions = append(questions, model.Question{QuestionText: text, ModelAnswer: answer})
	}
	if len(questions) == 0 {
		return 0, ErrNoImportableRows
	}

	if err := s.repo.CreateBatch(ctx, questions); err != nil {
		return 0, fmt.Errorf("insert questions: %w", err)
	}

	s.log.Info().Int("count", len(questions)).Msg("Questions imported from workbook")

	return len(questions), nil
}

func cellAt(row []string, col int) string {
	if col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}
