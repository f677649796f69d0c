package model

import "time"

// Student represents a registered student account.
type Student struct {
	ID           int64     `json:"id"`
	Fullname     string    `json:"fullname"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	ClassLevel   string    `json:"class_level,omitempty"`
	Gender       string    `json:"gender,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// RegisterRequest is the payload for student self-registration.
type RegisterRequest struct {
	Fullname   string `json:"fullname" binding:"required,min=2,max=200"`
	Username   string `json:"username" binding:"required,min=3,max=100"`
	Password   string `json:"password" binding:"required,min=6,max=128"`
	ClassLevel string `json:"class_level" binding:"omitempty,max=50"`
	Gender     string `json:"gender" binding:"omitempty,max=20"`
}

// LoginRequest is the payload for student and admin authentication.
type LoginRequest struct {
	Username string `json:"username" binding:"required,min=3,max=100"`
	Password string `json:"password" binding:"required,min=6,max=128"`
}
