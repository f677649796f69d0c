package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/elugabriel/interactive-assessment/internal/model"
	"github.com/elugabriel/interactive-assessment/internal/repository"
)

// StudentService handles student registration and lookup.
type StudentService struct {
	repo  *repository.StudentRepository
	audit AuditLogger
	log   zerolog.Logger
}

// NewStudentService creates a new StudentService.
func NewStudentService(repo *repository.StudentRepository, audit AuditLogger, log zerolog.Logger) *StudentService {
	return &StudentService{
		repo:  repo,
		audit: audit,
		log:   log.With().Str("component", "student_service").Logger(),
	}
}

// Register creates a new student account with a hashed password.
// Returns repository.ErrDuplicateUsername when the username is taken.
func (s *StudentService) Register(ctx context.Context, req model.RegisterRequest, passwordHash string) (*model.Student, error) {
	student := &model.Student{
		Fullname:     req.Fullname,
		Username:     req.Username,
		PasswordHash: passwordHash,
		ClassLevel:   req.ClassLevel,
		Gender:       req.Gender,
	}
	if err := s.repo.Create(ctx, student); err != nil {
		return nil, err
	}

	if err := s.audit.Append(ctx, &student.ID, fmt.Sprintf("Registered account %q", student.Username)); err != nil {
		s.log.Warn().Err(err).Int64("student_id", student.ID).Msg("Audit write failed")
	}

	return student, nil
}

// GetByID retrieves a student by ID.
func (s *StudentService) GetByID(ctx context.Context, id int64) (*model.Student, error) {
	return s.repo.GetByID(ctx, id)
}

// GetByUsername retrieves a student by username.
func (s *StudentService) GetByUsername(ctx context.Context, username string) (*model.Student, error) {
	return s.repo.GetByUsername(ctx, username)
}
