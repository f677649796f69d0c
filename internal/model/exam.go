package model

import (
	"math"
	"time"
)

// ExamStatus enumerates the lifecycle states of an exam instance.
// An exam moves from in-progress to exactly one of the terminal states
// and never transitions again.
type ExamStatus string

const (
	ExamStatusInProgress    ExamStatus = "in-progress"
	ExamStatusCompleted     ExamStatus = "completed"
	ExamStatusAutoSubmitted ExamStatus = "auto-submitted"
)

// Terminal reports whether the status allows no further transitions.
func (s ExamStatus) Terminal() bool {
	return s == ExamStatusCompleted || s == ExamStatusAutoSubmitted
}

// Exam represents one student's attempt at a generated exam.
type Exam struct {
	ID              int64      `json:"id"`
	StudentID       int64      `json:"student_id"`
	StartTime       time.Time  `json:"start_time"`
	EndTime         *time.Time `json:"end_time,omitempty"`
	DurationMinutes int        `json:"duration_minutes"`
	TotalScore      float64    `json:"total_score"`
	Status          ExamStatus `json:"status"`
	CreatedAt       time.Time  `json:"created_at"`
}

// Deadline returns the last instant at which submissions are accepted.
func (e *Exam) Deadline() time.Time {
	return e.StartTime.Add(time.Duration(e.DurationMinutes) * time.Minute)
}

// WithinAllowedTime reports whether now is inside the exam's time
// allowance. Equality at the deadline still counts. A zero start time
// fails closed.
func (e *Exam) WithinAllowedTime(now time.Time) bool {
	if e.StartTime.IsZero() {
		return false
	}
	return !now.After(e.Deadline())
}

// RemainingSeconds returns floor(deadline - now) in seconds. The result
// is negative once the exam has expired; callers must treat a negative
// value as expired regardless of status.
func (e *Exam) RemainingSeconds(now time.Time) int {
	return int(math.Floor(e.Deadline().Sub(now).Seconds()))
}

// ExamQuestion links an exam to a question at a fixed 1-based
// presentation order. The set of links for an exam is created atomically
// with the exam and never changes afterwards.
type ExamQuestion struct {
	ID            int64 `json:"id"`
	ExamID        int64 `json:"exam_id"`
	QuestionID    int64 `json:"question_id"`
	QuestionOrder int   `json:"question_order"`
}

// ExamQuestionView is a question as presented to the student taking the
// exam: ordered, without the reference answer.
type ExamQuestionView struct {
	QuestionOrder int    `json:"question_order"`
	QuestionID    int64  `json:"question_id"`
	QuestionText  string `json:"question_text"`
}

// ExamAnswer stores a student's submitted text for one question of one
// exam, plus the grading outcome. (exam_id, question_id) is unique:
// resubmission updates in place.
type ExamAnswer struct {
	ID            int64   `json:"id"`
	ExamID        int64   `json:"exam_id"`
	QuestionID    int64   `json:"question_id"`
	StudentID     int64   `json:"student_id"`
	StudentAnswer string  `json:"student_answer"`
	IsCorrect     bool    `json:"is_correct"`
	Score         float64 `json:"score"`
}

// AnswerSubmission is one item of a submit payload. Items without a
// question id are skipped individually rather than failing the batch.
type AnswerSubmission struct {
	QuestionID *int64 `json:"question_id"`
	Answer     string `json:"answer"`
}

// SubmitExamRequest is the payload for submitting exam answers.
type SubmitExamRequest struct {
	Answers []AnswerSubmission `json:"answers" binding:"required"`
}
