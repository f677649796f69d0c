package service

import (
	"context"

	"github.com/elugabriel/interactive-assessment/internal/model"
	"github.com/elugabriel/interactive-assessment/internal/repository"
)

// AdminService handles administrator account lookup and creation.
type AdminService struct {
	repo *repository.AdminRepository
}

// NewAdminService creates a new AdminService.
func NewAdminService(repo *repository.AdminRepository) *AdminService {
	return &AdminService{repo: repo}
}

// Create inserts a new admin account with a hashed password.
func (s *AdminService) Create(ctx context.Context, fullname, username, passwordHash string) (*model.Admin, error) {
	admin := &model.Admin{
		Fullname:     fullname,
		Username:     username,
		PasswordHash: passwordHash,
	}
	if err := s.repo.Create(ctx, admin); err != nil {
		return nil, err
	}
	return admin, nil
}

// GetByID retrieves an admin by ID.
func (s *AdminService) GetByID(ctx context.Context, id int64) (*model.Admin, error) {
	return s.repo.GetByID(ctx, id)
}

// GetByUsername retrieves an admin by username.
func (s *AdminService) GetByUsername(ctx context.Context, username string) (*model.Admin, error) {
	return s.repo.GetByUsername(ctx, username)
}
