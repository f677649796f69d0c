package model

import "time"

// Admin represents an administrator account.
type Admin struct {
	ID           int64     `json:"id"`
	Fullname     string    `json:"fullname"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
