package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/elugabriel/interactive-assessment/internal/model"
)

// ErrDuplicateUsername is returned when a username is already taken.
var ErrDuplicateUsername = errors.New("username already exists")

// StudentRepository handles student data access.
type StudentRepository struct {
	pool *pgxpool.Pool
}

// NewStudentRepository creates a new StudentRepository.
func NewStudentRepository(pool *pgxpool.Pool) *StudentRepository {
	return &StudentRepository{pool: pool}
}

// Create inserts a new student. Returns ErrDuplicateUsername on a
// unique-constraint violation.
func (r *StudentRepository) Create(ctx context.Context, s *model.Student) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO students (fullname, username, password_hash, class_level, gender)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		s.Fullname, s.Username, s.PasswordHash, s.ClassLevel, s.Gender,
	).Scan(&s.ID, &s.CreatedAt)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicateUsername
	}
	return err
}

// GetByID retrieves a student by ID.
func (r *StudentRepository) GetByID(ctx context.Context, id int64) (*model.Student, error) {
	s := &model.Student{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, fullname, username, password_hash, class_level, gender, created_at
		 FROM students WHERE id = $1`, id,
	).Scan(&s.ID, &s.Fullname, &s.Username, &s.PasswordHash, &s.ClassLevel, &s.Gender, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// GetByUsername retrieves a student by username.
func (r *StudentRepository) GetByUsername(ctx context.Context, username string) (*model.Student, error) {
	s := &model.Student{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, fullname, username, password_hash, class_level, gender, created_at
		 FROM students WHERE username = $1`, username,
	).Scan(&s.ID, &s.Fullname, &s.Username, &s.PasswordHash, &s.ClassLevel, &s.Gender, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}
