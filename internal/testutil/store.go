// Package testutil provides in-memory stand-ins for the persistence
// layer, used by service and handler tests.
package testutil

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/elugabriel/interactive-assessment/internal/model"
)

// Store holds exams, question links, answer records, the question
// pool, and appended audit entries in maps. It satisfies the exam
// service's store and audit collaborators.
type Store struct {
	Exams        map[int64]*model.Exam
	Links        map[int64][]model.ExamQuestion
	Answers      map[int64][]*model.ExamAnswer
	QuestionPool map[int64]model.Question
	AuditEntries []string

	nextExamID   int64
	nextAnswerID int64
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		Exams:        make(map[int64]*model.Exam),
		Links:        make(map[int64][]model.ExamQuestion),
		Answers:      make(map[int64][]*model.ExamAnswer),
		QuestionPool: make(map[int64]model.Question),
	}
}

// AddQuestion puts a question into the pool.
func (s *Store) AddQuestion(id int64, text, answer string) {
	s.QuestionPool[id] = model.Question{ID: id, QuestionText: text, ModelAnswer: answer}
}

func (s *Store) Create(_ context.Context, exam *model.Exam, links []model.ExamQuestion) error {
	s.nextExamID++
	exam.ID = s.nextExamID
	exam.CreatedAt = exam.StartTime
	copied := *exam
	s.Exams[exam.ID] = &copied
	for i := range links {
		links[i].ExamID = exam.ID
	}
	s.Links[exam.ID] = links
	return nil
}

func (s *Store) GetByID(_ context.Context, id int64) (*model.Exam, error) {
	exam, ok := s.Exams[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *exam
	return &copied, nil
}

func (s *Store) ListByStudent(_ context.Context, studentID int64, limit int) ([]model.Exam, error) {
	var out []model.Exam
	for _, e := range s.Exams {
		if e.StudentID == studentID && len(out) < limit {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (s *Store) ListAll(_ context.Context, limit int) ([]model.Exam, error) {
	var out []model.Exam
	for _, e := range s.Exams {
		if len(out) < limit {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (s *Store) ForceCompleteInProgress(_ context.Context, studentID int64, endedAt time.Time) (int64, error) {
	var closed int64
	for _, e := range s.Exams {
		if e.StudentID == studentID && e.Status == model.ExamStatusInProgress {
			e.Status = model.ExamStatusCompleted
			ended := endedAt
			e.EndTime = &ended
			closed++
		}
	}
	return closed, nil
}

func (s *Store) Finish(_ context.Context, examID int64, status model.ExamStatus, totalScore float64, endTime *time.Time) error {
	exam, ok := s.Exams[examID]
	if !ok {
		return pgx.ErrNoRows
	}
	exam.Status = status
	exam.TotalScore = totalScore
	if endTime != nil {
		ended := *endTime
		exam.EndTime = &ended
	}
	return nil
}

func (s *Store) ListQuestionLinks(_ context.Context, examID int64) ([]model.ExamQuestion, error) {
	return s.Links[examID], nil
}

func (s *Store) UpsertAnswer(_ context.Context, a *model.ExamAnswer) error {
	for _, existing := range s.Answers[a.ExamID] {
		if existing.QuestionID == a.QuestionID {
			existing.StudentAnswer = a.StudentAnswer
			a.ID = existing.ID
			return nil
		}
	}
	s.nextAnswerID++
	a.ID = s.nextAnswerID
	copied := *a
	s.Answers[a.ExamID] = append(s.Answers[a.ExamID], &copied)
	return nil
}

func (s *Store) FillMissingAnswers(_ context.Context, examID, studentID int64) error {
	have := make(map[int64]bool)
	for _, a := range s.Answers[examID] {
		have[a.QuestionID] = true
	}
	for _, l := range s.Links[examID] {
		if have[l.QuestionID] {
			continue
		}
		s.nextAnswerID++
		s.Answers[examID] = append(s.Answers[examID], &model.ExamAnswer{
			ID:         s.nextAnswerID,
			ExamID:     examID,
			QuestionID: l.QuestionID,
			StudentID:  studentID,
		})
	}
	return nil
}

func (s *Store) ListAnswers(_ context.Context, examID int64) ([]model.ExamAnswer, error) {
	out := make([]model.ExamAnswer, 0, len(s.Answers[examID]))
	for _, a := range s.Answers[examID] {
		out = append(out, *a)
	}
	return out, nil
}

func (s *Store) UpdateAnswerGrade(_ context.Context, answerID int64, isCorrect bool, score float64) error {
	for _, list := range s.Answers {
		for _, a := range list {
			if a.ID == answerID {
				a.IsCorrect = isCorrect
				a.Score = score
				return nil
			}
		}
	}
	return pgx.ErrNoRows
}

// Append records an audit entry. Satisfies the audit collaborator.
func (s *Store) Append(_ context.Context, _ *int64, action string) error {
	s.AuditEntries = append(s.AuditEntries, action)
	return nil
}

// Questions returns the question-pool view of the store. It is a
// separate type because the pool's ListAll and the exam ListAll have
// different signatures.
func (s *Store) Questions() QuestionPool {
	return QuestionPool{s: s}
}

// QuestionPool is the read side of the question pool backed by a Store.
type QuestionPool struct {
	s *Store
}

func (q QuestionPool) ListAll(_ context.Context) ([]model.Question, error) {
	out := make([]model.Question, 0, len(q.s.QuestionPool))
	for _, question := range q.s.QuestionPool {
		out = append(out, question)
	}
	return out, nil
}

func (q QuestionPool) ListByExam(_ context.Context, examID int64) ([]model.Question, error) {
	var out []model.Question
	for _, l := range q.s.Links[examID] {
		if question, ok := q.s.QuestionPool[l.QuestionID]; ok {
			out = append(out, question)
		}
	}
	return out, nil
}
