package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/elugabriel/interactive-assessment/internal/model"
)

// AuditRepository handles audit trail persistence.
type AuditRepository struct {
	pool *pgxpool.Pool
}

// NewAuditRepository creates a new AuditRepository.
func NewAuditRepository(pool *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{pool: pool}
}

// Append inserts an audit entry. studentID may be nil for anonymous or
// system actions.
func (r *AuditRepository) Append(ctx context.Context, studentID *int64, action string) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO audit_logs (student_id, action) VALUES ($1, $2)`,
		studentID, action,
	)
	return err
}

// List retrieves the most recent audit entries, newest first.
func (r *AuditRepository) List(ctx context.Context, limit int) ([]model.AuditLog, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, student_id, action, created_at
		 FROM audit_logs
		 ORDER BY created_at DESC
		 LIMIT $1`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []model.AuditLog
	for rows.Next() {
		var l model.AuditLog
		if err := rows.Scan(&l.ID, &l.StudentID, &l.Action, &l.CreatedAt); err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
