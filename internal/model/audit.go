package model

import "time"

// AuditLog is a best-effort trail entry for state-mutating operations.
// Writes never block or roll back the primary mutation.
type AuditLog struct {
	ID        int64     `json:"id"`
	StudentID *int64    `json:"student_id,omitempty"`
	Action    string    `json:"action"`
	CreatedAt time.Time `json:"created_at"`
}
