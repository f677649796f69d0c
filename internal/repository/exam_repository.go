package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/elugabriel/interactive-assessment/internal/model"
)

// ExamRepository handles exam instances, their question links, and
// answer records.
type ExamRepository struct {
	pool *pgxpool.Pool
}

// NewExamRepository creates a new ExamRepository.
func NewExamRepository(pool *pgxpool.Pool) *ExamRepository {
	return &ExamRepository{pool: pool}
}

// Create inserts a new exam instance together with its question links
// in one transaction. The link set is fixed at creation and never
// changes afterwards.
func (r *ExamRepository) Create(ctx context.Context, exam *model.Exam, links []model.ExamQuestion) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx,
		`INSERT INTO exams (student_id, start_time, duration_minutes, status)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		exam.StudentID, exam.StartTime, exam.DurationMinutes, exam.Status,
	).Scan(&exam.ID, &exam.CreatedAt)
	if err != nil {
		return err
	}

	for i := range links {
		links[i].ExamID = exam.ID
		if _, err := tx.Exec(ctx,
			`INSERT INTO exam_questions (exam_id, question_id, question_order)
			 VALUES ($1, $2, $3)`,
			exam.ID, links[i].QuestionID, links[i].QuestionOrder,
		); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// GetByID retrieves an exam instance by ID.
func (r *ExamRepository) GetByID(ctx context.Context, id int64) (*model.Exam, error) {
	e := &model.Exam{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, student_id, start_time, end_time, duration_minutes, total_score, status, created_at
		 FROM exams WHERE id = $1`, id,
	).Scan(&e.ID, &e.StudentID, &e.StartTime, &e.EndTime, &e.DurationMinutes, &e.TotalScore, &e.Status, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// ListByStudent retrieves a student's most recent exam instances.
func (r *ExamRepository) ListByStudent(ctx context.Context, studentID int64, limit int) ([]model.Exam, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, student_id, start_time, end_time, duration_minutes, total_score, status, created_at
		 FROM exams
		 WHERE student_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2`, studentID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanExams(rows)
}

// ListAll retrieves exam instances across all students, newest first,
// for administrator review.
func (r *ExamRepository) ListAll(ctx context.Context, limit int) ([]model.Exam, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, student_id, start_time, end_time, duration_minutes, total_score, status, created_at
		 FROM exams
		 ORDER BY created_at DESC
		 LIMIT $1`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanExams(rows)
}

// ForceCompleteInProgress transitions every in-progress exam of a
// student to completed with the given end time. Returns the number of
// exams closed.
func (r *ExamRepository) ForceCompleteInProgress(ctx context.Context, studentID int64, endedAt time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE exams
		 SET status = $1, end_time = $2
		 WHERE student_id = $3 AND status = $4`,
		model.ExamStatusCompleted, endedAt, studentID, model.ExamStatusInProgress,
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// Finish stamps the grading outcome on an exam: status, total score,
// and optionally the end time.
func (r *ExamRepository) Finish(ctx context.Context, examID int64, status model.ExamStatus, totalScore float64, endTime *time.Time) error {
	if endTime != nil {
		_, err := r.pool.Exec(ctx,
			`UPDATE exams SET status = $1, total_score = $2, end_time = $3 WHERE id = $4`,
			status, totalScore, *endTime, examID,
		)
		return err
	}
	_, err := r.pool.Exec(ctx,
		`UPDATE exams SET status = $1, total_score = $2 WHERE id = $3`,
		status, totalScore, examID,
	)
	return err
}

// ListQuestionLinks retrieves an exam's question links in presentation
// order.
func (r *ExamRepository) ListQuestionLinks(ctx context.Context, examID int64) ([]model.ExamQuestion, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, exam_id, question_id, question_order
		 FROM exam_questions
		 WHERE exam_id = $1
		 ORDER BY question_order`, examID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var links []model.ExamQuestion
	for rows.Next() {
		var l model.ExamQuestion
		if err := rows.Scan(&l.ID, &l.ExamID, &l.QuestionID, &l.QuestionOrder); err != nil {
			return nil, err
		}
		links = append(links, l)
	}
	return links, rows.Err()
}

// UpsertAnswer records a student's answer text for one question.
// Resubmission updates the existing row; the (exam_id, question_id)
// unique constraint guarantees no duplicates.
func (r *ExamRepository) UpsertAnswer(ctx context.Context, a *model.ExamAnswer) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO exam_answers (exam_id, question_id, student_id, student_answer)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (exam_id, question_id)
		 DO UPDATE SET student_answer = EXCLUDED.student_answer
		 RETURNING id`,
		a.ExamID, a.QuestionID, a.StudentID, a.StudentAnswer,
	).Scan(&a.ID)
}

// FillMissingAnswers creates an empty answer record for every linked
// question that has none yet. Safe to call repeatedly: the uniqueness
// constraint makes extra calls no-ops.
func (r *ExamRepository) FillMissingAnswers(ctx context.Context, examID, studentID int64) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO exam_answers (exam_id, question_id, student_id, student_answer)
		 SELECT eq.exam_id, eq.question_id, $2, ''
		 FROM exam_questions eq
		 WHERE eq.exam_id = $1
		 ON CONFLICT (exam_id, question_id) DO NOTHING`,
		examID, studentID,
	)
	return err
}

// ListAnswers retrieves all answer records for an exam.
func (r *ExamRepository) ListAnswers(ctx context.Context, examID int64) ([]model.ExamAnswer, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, exam_id, question_id, student_id, student_answer, is_correct, score
		 FROM exam_answers
		 WHERE exam_id = $1`, examID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var answers []model.ExamAnswer
	for rows.Next() {
		var a model.ExamAnswer
		if err := rows.Scan(&a.ID, &a.ExamID, &a.QuestionID, &a.StudentID, &a.StudentAnswer, &a.IsCorrect, &a.Score); err != nil {
			return nil, err
		}
		answers = append(answers, a)
	}
	return answers, rows.Err()
}

// UpdateAnswerGrade overwrites the grading outcome of one answer.
func (r *ExamRepository) UpdateAnswerGrade(ctx context.Context, answerID int64, isCorrect bool, score float64) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE exam_answers SET is_correct = $1, score = $2 WHERE id = $3`,
		isCorrect, score, answerID,
	)
	return err
}

func scanExams(rows pgx.Rows) ([]model.Exam, error) {
	var exams []model.Exam
	for rows.Next() {
		var e model.Exam
		if err := rows.Scan(&e.ID, &e.StudentID, &e.StartTime, &e.EndTime, &e.DurationMinutes, &e.TotalScore, &e.Status, &e.CreatedAt); err != nil {
			return nil, err
		}
		exams = append(exams, e)
	}
	return exams, rows.Err()
}
