package model

import "time"

// Question is a single free-text question with its reference answer.
// The reference answer is never exposed to students while an exam is
// in progress.
type Question struct {
	ID           int64     `json:"id"`
	QuestionText string    `json:"question_text"`
	ModelAnswer  string    `json:"model_answer,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// CreateQuestionRequest is the payload for adding a question.
type CreateQuestionRequest struct {
	QuestionText string `json:"question_text" binding:"required,min=1,max=2000"`
	ModelAnswer  string `json:"model_answer" binding:"required,min=1,max=2000"`
}

// UpdateQuestionRequest is the payload for editing an existing question.
type UpdateQuestionRequest struct {
	QuestionText string `json:"question_text" binding:"required,min=1,max=2000"`
	ModelAnswer  string `json:"model_answer" binding:"required,min=1,max=2000"`
}
