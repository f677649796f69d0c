package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/elugabriel/interactive-assessment/internal/config"
	"github.com/elugabriel/interactive-assessment/internal/grader"
	"github.com/elugabriel/interactive-assessment/internal/model"
)

// Common exam lifecycle errors.
var (
	ErrExamNotFound    = errors.New("exam not found")
	ErrForbidden       = errors.New("exam does not belong to this student")
	ErrNoQuestions     = errors.New("no questions available")
	ErrExamNotFinished = errors.New("exam is still in progress")
)

// ExamStore is the persistence collaborator for exam instances, their
// question links, and answer records.
type ExamStore interface {
	Create(ctx context.Context, exam *model.Exam, links []model.ExamQuestion) error
	GetByID(ctx context.Context, id int64) (*model.Exam, error)
	ListByStudent(ctx context.Context, studentID int64, limit int) ([]model.Exam, error)
	ListAll(ctx context.Context, limit int) ([]model.Exam, error)
	ForceCompleteInProgress(ctx context.Context, studentID int64, endedAt time.Time) (int64, error)
	Finish(ctx context.Context, examID int64, status model.ExamStatus, totalScore float64, endTime *time.Time) error
	ListQuestionLinks(ctx context.Context, examID int64) ([]model.ExamQuestion, error)
	UpsertAnswer(ctx context.Context, a *model.ExamAnswer) error
	FillMissingAnswers(ctx context.Context, examID, studentID int64) error
	ListAnswers(ctx context.Context, examID int64) ([]model.ExamAnswer, error)
	UpdateAnswerGrade(ctx context.Context, answerID int64, isCorrect bool, score float64) error
}

// QuestionStore is the read side of the question pool used by the
// lifecycle controller.
type QuestionStore interface {
	ListAll(ctx context.Context) ([]model.Question, error)
	ListByExam(ctx context.Context, examID int64) ([]model.Question, error)
}

// AuditLogger records best-effort audit entries.
type AuditLogger interface {
	Append(ctx context.Context, studentID *int64, action string) error
}

// ExamService orchestrates the exam lifecycle: composition, answer
// recording, grading, and forced submission on expiry.
type ExamService struct {
	store     ExamStore
	questions QuestionStore
	audit     AuditLogger
	cfg       *config.Config
	log       zerolog.Logger
	now       func() time.Time
}

// NewExamService creates a new ExamService.
func NewExamService(
	store ExamStore,
	questions QuestionStore,
	audit AuditLogger,
	cfg *config.Config,
	log zerolog.Logger,
) *ExamService {
	return &ExamService{
		store:     store,
		questions: questions,
		audit:     audit,
		cfg:       cfg,
		log:       log.With().Str("component", "exam_service").Logger(),
		now:       time.Now,
	}
}

// ExamState is the snapshot returned when a student views an exam.
type ExamState struct {
	Exam             *model.Exam `json:"exam"`
	RemainingSeconds int         `json:"remaining_seconds"`
	Expired          bool        `json:"expired"`
}

// SubmitResult reports the outcome of a submission attempt.
type SubmitResult struct {
	Status     string  `json:"status"`
	TotalScore float64 `json:"total_score"`
}

const (
	// SubmitStatusGraded is reported when answers were accepted and graded.
	SubmitStatusGraded = "graded"
	// SubmitStatusAutoSubmitted is reported when the time allowance had
	// already elapsed and the exam was force-closed instead.
	SubmitStatusAutoSubmitted = "auto-submitted"
)

// Start composes a fresh exam instance for a student. Any other
// in-progress exam of the same student is force-completed first, so at
// most one instance per student is ever in progress. Fails without
// creating anything when the question pool is empty.
func (s *ExamService) Start(ctx context.Context, studentID int64) (*model.Exam, error) {
	now := s.now()

	closed, err := s.store.ForceCompleteInProgress(ctx, studentID, now)
	if err != nil {
		return nil, fmt.Errorf("close previous exams: %w", err)
	}
	if closed > 0 {
		s.log.Info().Int64("student_id", studentID).Int64("closed", closed).
			Msg("Force-completed previous in-progress exams")
	}

	pool, err := s.questions.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load question pool: %w", err)
	}
	if len(pool) == 0 {
		return nil, ErrNoQuestions
	}

	selection := sampleQuestions(pool, s.cfg.ExamQuestionCount)
	links := make([]model.ExamQuestion, len(selection))
	for i, q := range selection {
		links[i] = model.ExamQuestion{QuestionID: q.ID, QuestionOrder: i + 1}
	}

	exam := &model.Exam{
		StudentID:       studentID,
		StartTime:       now,
		DurationMinutes: s.cfg.ExamDurationMinutes,
		Status:          model.ExamStatusInProgress,
	}
	if err := s.store.Create(ctx, exam, links); err != nil {
		return nil, fmt.Errorf("create exam: %w", err)
	}

	s.auditEntry(ctx, studentID, fmt.Sprintf("Started exam %d with %d questions", exam.ID, len(links)))

	return exam, nil
}

// Overview returns the remaining time for an exam. Viewing an expired
// in-progress exam triggers auto-submission as a side effect; the
// returned state carries Expired=true so the caller can redirect to the
// results view.
func (s *ExamService) Overview(ctx context.Context, examID, studentID int64) (*ExamState, error) {
	exam, err := s.owned(ctx, examID, studentID)
	if err != nil {
		return nil, err
	}

	remaining := exam.RemainingSeconds(s.now())
	if remaining < 0 {
		if exam.Status == model.ExamStatusInProgress {
			if _, err := s.autoSubmit(ctx, exam); err != nil {
				return nil, err
			}
			exam, err = s.owned(ctx, examID, studentID)
			if err != nil {
				return nil, err
			}
		}
		return &ExamState{Exam: exam, RemainingSeconds: remaining, Expired: true}, nil
	}

	return &ExamState{Exam: exam, RemainingSeconds: remaining}, nil
}

// Questions returns the fixed ordered question list for an exam. The
// reference answers are never included.
func (s *ExamService) Questions(ctx context.Context, examID, studentID int64) ([]model.ExamQuestionView, error) {
	if _, err := s.owned(ctx, examID, studentID); err != nil {
		return nil, err
	}

	links, err := s.store.ListQuestionLinks(ctx, examID)
	if err != nil {
		return nil, fmt.Errorf("list question links: %w", err)
	}

	texts, err := s.questionTexts(ctx, examID)
	if err != nil {
		return nil, err
	}

	views := make([]model.ExamQuestionView, 0, len(links))
	for _, l := range links {
		views = append(views, model.ExamQuestionView{
			QuestionOrder: l.QuestionOrder,
			QuestionID:    l.QuestionID,
			QuestionText:  texts[l.QuestionID],
		})
	}
	return views, nil
}

// Submit records the student's answers and grades the exam. If the time
// allowance has already elapsed the answers are rejected and the exam is
// auto-submitted instead, which the result reports. Items without a
// question id, or naming a question not part of the exam, are skipped
// individually.
func (s *ExamService) Submit(ctx context.Context, examID, studentID int64, answers []model.AnswerSubmission) (*SubmitResult, error) {
	exam, err := s.owned(ctx, examID, studentID)
	if err != nil {
		return nil, err
	}

	if !exam.WithinAllowedTime(s.now()) {
		total, err := s.autoSubmit(ctx, exam)
		if err != nil {
			return nil, err
		}
		return &SubmitResult{Status: SubmitStatusAutoSubmitted, TotalScore: total}, nil
	}

	links, err := s.store.ListQuestionLinks(ctx, examID)
	if err != nil {
		return nil, fmt.Errorf("list question links: %w", err)
	}
	linked := make(map[int64]bool, len(links))
	for _, l := range links {
		linked[l.QuestionID] = true
	}

	for _, item := range answers {
		if item.QuestionID == nil || !linked[*item.QuestionID] {
			continue
		}
		a := &model.ExamAnswer{
			ExamID:        examID,
			QuestionID:    *item.QuestionID,
			StudentID:     exam.StudentID,
			StudentAnswer: item.Answer,
		}
		if err := s.store.UpsertAnswer(ctx, a); err != nil {
			return nil, fmt.Errorf("record answer for question %d: %w", a.QuestionID, err)
		}
	}

	total, err := s.grade(ctx, exam)
	if err != nil {
		return nil, err
	}

	s.auditEntry(ctx, studentID, fmt.Sprintf("Submitted exam %d with score %g", examID, total))

	return &SubmitResult{Status: SubmitStatusGraded, TotalScore: total}, nil
}

// grade regrades every answer record of an exam from scratch against
// the reference answers and recomputes the total wholesale. It marks
// the exam completed. Idempotent: regrading a finished exam recomputes
// the same values.
func (s *ExamService) grade(ctx context.Context, exam *model.Exam) (float64, error) {
	answers, err := s.store.ListAnswers(ctx, exam.ID)
	if err != nil {
		return 0, fmt.Errorf("list answers: %w", err)
	}

	refs, err := s.referenceAnswers(ctx, exam.ID)
	if err != nil {
		return 0, err
	}

	var total float64
	for _, a := range answers {
		ref, ok := refs[a.QuestionID]
		if !ok {
			continue
		}
		isCorrect, score := grader.Grade(a.StudentAnswer, ref)
		if err := s.store.UpdateAnswerGrade(ctx, a.ID, isCorrect, score); err != nil {
			return 0, fmt.Errorf("update grade for answer %d: %w", a.ID, err)
		}
		total += score
	}

	if err := s.store.Finish(ctx, exam.ID, model.ExamStatusCompleted, total, nil); err != nil {
		return 0, fmt.Errorf("finish exam: %w", err)
	}

	return total, nil
}

// autoSubmit force-closes an expired exam: every unanswered question
// gets an empty answer record, the exam is graded, and the status is
// forced to auto-submitted with an end time. Safe to call repeatedly —
// placeholder creation is guarded by the (exam, question) uniqueness
// and grading is idempotent.
func (s *ExamService) autoSubmit(ctx context.Context, exam *model.Exam) (float64, error) {
	if err := s.store.FillMissingAnswers(ctx, exam.ID, exam.StudentID); err != nil {
		return 0, fmt.Errorf("fill missing answers: %w", err)
	}

	total, err := s.grade(ctx, exam)
	if err != nil {
		return 0, err
	}

	// Grade marks the exam completed; auto-submission overrides that.
	endedAt := s.now()
	if err := s.store.Finish(ctx, exam.ID, model.ExamStatusAutoSubmitted, total, &endedAt); err != nil {
		return 0, fmt.Errorf("mark auto-submitted: %w", err)
	}

	s.auditEntry(ctx, exam.StudentID, fmt.Sprintf("Exam %d auto-submitted with score %g", exam.ID, total))

	return total, nil
}

// AnswerDetail pairs an answer record with its question for the results
// view. This is the only place the reference answer is exposed.
type AnswerDetail struct {
	QuestionID    int64   `json:"question_id"`
	QuestionText  string  `json:"question_text"`
	StudentAnswer string  `json:"student_answer"`
	CorrectAnswer string  `json:"correct_answer"`
	IsCorrect     bool    `json:"is_correct"`
	Score         float64 `json:"score"`
}

// Results returns the per-question breakdown of a finished exam,
// including reference answers. Returns ErrExamNotFinished while the
// exam is still in progress.
func (s *ExamService) Results(ctx context.Context, examID, studentID int64) (*model.Exam, []AnswerDetail, error) {
	exam, err := s.owned(ctx, examID, studentID)
	if err != nil {
		return nil, nil, err
	}
	if !exam.Status.Terminal() {
		return nil, nil, ErrExamNotFinished
	}

	answers, err := s.store.ListAnswers(ctx, examID)
	if err != nil {
		return nil, nil, fmt.Errorf("list answers: %w", err)
	}

	questions, err := s.questions.ListByExam(ctx, examID)
	if err != nil {
		return nil, nil, fmt.Errorf("list exam questions: %w", err)
	}
	byID := make(map[int64]model.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	details := make([]AnswerDetail, 0, len(answers))
	for _, a := range answers {
		q, ok := byID[a.QuestionID]
		if !ok {
			continue
		}
		details = append(details, AnswerDetail{
			QuestionID:    q.ID,
			QuestionText:  q.QuestionText,
			StudentAnswer: a.StudentAnswer,
			CorrectAnswer: q.ModelAnswer,
			IsCorrect:     a.IsCorrect,
			Score:         a.Score,
		})
	}

	return exam, details, nil
}

// ResultsData returns the aggregated score summary for an exam.
func (s *ExamService) ResultsData(ctx context.Context, examID, studentID int64) (*ResultsSummary, error) {
	exam, err := s.owned(ctx, examID, studentID)
	if err != nil {
		return nil, err
	}

	answers, err := s.store.ListAnswers(ctx, examID)
	if err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}

	summary := AggregateResults(answers)
	summary.ExamID = exam.ID
	summary.TotalScore = exam.TotalScore
	return &summary, nil
}

// ListForStudent returns a student's 10 most recent exam instances.
func (s *ExamService) ListForStudent(ctx context.Context, studentID int64) ([]model.Exam, error) {
	return s.store.ListByStudent(ctx, studentID, 10)
}

// ListAllForReview returns recent exam instances across all students
// for administrator review.
func (s *ExamService) ListAllForReview(ctx context.Context) ([]model.Exam, error) {
	return s.store.ListAll(ctx, 100)
}

// owned fetches an exam and verifies it belongs to the requesting
// student. The not-found case is surfaced explicitly; ownership
// violations are never silently defaulted.
func (s *ExamService) owned(ctx context.Context, examID, studentID int64) (*model.Exam, error) {
	exam, err := s.store.GetByID(ctx, examID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrExamNotFound
		}
		return nil, fmt.Errorf("get exam: %w", err)
	}
	if exam.StudentID != studentID {
		return nil, ErrForbidden
	}
	return exam, nil
}

func (s *ExamService) questionTexts(ctx context.Context, examID int64) (map[int64]string, error) {
	questions, err := s.questions.ListByExam(ctx, examID)
	if err != nil {
		return nil, fmt.Errorf("list exam questions: %w", err)
	}
	texts := make(map[int64]string, len(questions))
	for _, q := range questions {
		texts[q.ID] = q.QuestionText
	}
	return texts, nil
}

func (s *ExamService) referenceAnswers(ctx context.Context, examID int64) (map[int64]string, error) {
	questions, err := s.questions.ListByExam(ctx, examID)
	if err != nil {
		return nil, fmt.Errorf("list exam questions: %w", err)
	}
	refs := make(map[int64]string, len(questions))
	for _, q := range questions {
		refs[q.ID] = q.ModelAnswer
	}
	return refs, nil
}

// auditEntry appends an audit record. Failures are logged and ignored;
// they never roll back or block the primary mutation.
func (s *ExamService) auditEntry(ctx context.Context, studentID int64, action string) {
	if err := s.audit.Append(ctx, &studentID, action); err != nil {
		s.log.Warn().Err(err).Int64("student_id", studentID).Str("action", action).
			Msg("Audit write failed")
	}
}

// sampleQuestions selects min(n, len(pool)) questions uniformly at
// random without replacement. Selection order becomes presentation
// order.
func sampleQuestions(pool []model.Question, n int) []model.Question {
	if n > len(pool) {
		n = len(pool)
	}
	selection := make([]model.Question, 0, n)
	for _, idx := range rand.Perm(len(pool))[:n] {
		selection = append(selection, pool[idx])
	}
	return selection
}
