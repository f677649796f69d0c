package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/elugabriel/interactive-assessment/internal/config"
)

// Common auth errors.
var ErrInvalidCredentials = errors.New("invalid credentials")

// TokenType distinguishes student vs admin tokens.
type TokenType string

const (
	TokenTypeStudent TokenType = "student"
	TokenTypeAdmin   TokenType = "admin"
)

// Claims extends JWT standard claims with app-specific fields. The
// claims are the request-scoped authentication context: every operation
// receives the authenticated subject's identity and role through them
// instead of any global session state.
type Claims struct {
	jwt.RegisteredClaims
	TokenType TokenType `json:"token_type"`
	UserID    int64     `json:"user_id"`
	Fullname  string    `json:"fullname,omitempty"`
}

// SessionRegistry is the active-login store. At most one JTI is
// registered per subject key; a new login overwrites it and a logout
// removes it.
type SessionRegistry interface {
	Set(ctx context.Context, key, jti string, ttl time.Duration) error
	Lookup(ctx context.Context, key string) (jti string, found bool, err error)
	Delete(ctx context.Context, key string) error
}

// AuthService handles password hashing, JWT issuance, and the
// active-login registry.
type AuthService struct {
	cfg      *config.Config
	sessions SessionRegistry
	audit    AuditLogger
	log      zerolog.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(cfg *config.Config, sessions SessionRegistry, audit AuditLogger, log zerolog.Logger) *AuthService {
	return &AuthService{
		cfg:      cfg,
		sessions: sessions,
		audit:    audit,
		log:      log.With().Str("component", "auth_service").Logger(),
	}
}

// HashPassword hashes a password with the configured bcrypt cost.
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	return string(hash), err
}

// CheckPassword compares a plaintext password against a bcrypt hash.
func (s *AuthService) CheckPassword(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// GenerateStudentToken creates a JWT for a student and registers it as
// the student's active login. A new login replaces any previous one;
// tokens from older devices stop validating.
func (s *AuthService) GenerateStudentToken(ctx context.Context, studentID int64, fullname string) (string, error) {
	jti := uuid.New().String()

	signed, err := s.sign(jti, TokenTypeStudent, studentID, fullname)
	if err != nil {
		return "", err
	}

	sessionKey := config.CacheKey.StudentSessionKey(studentID)
	if err := s.sessions.Set(ctx, sessionKey, jti, s.cfg.JWTExpiry); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}

	s.auditEntry(ctx, &studentID, "Logged in")

	return signed, nil
}

// GenerateAdminToken creates a JWT for an admin and registers it as the
// admin's active login.
func (s *AuthService) GenerateAdminToken(ctx context.Context, adminID int64, fullname string) (string, error) {
	jti := uuid.New().String()

	signed, err := s.sign(jti, TokenTypeAdmin, adminID, fullname)
	if err != nil {
		return "", err
	}

	sessionKey := config.CacheKey.AdminSessionKey(adminID)
	if err := s.sessions.Set(ctx, sessionKey, jti, s.cfg.JWTExpiry); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}

	s.auditEntry(ctx, nil, "Admin logged in")

	return signed, nil
}

func (s *AuthService) sign(jti string, tokenType TokenType, userID int64, fullname string) (string, error) {
	now := time.Now()

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.JWTExpiry)),
		},
		TokenType: tokenType,
		UserID:    userID,
		Fullname:  fullname,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses and validates a JWT, returning the claims.
func (s *AuthService) ValidateToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}

	return claims, nil
}

// ValidateSession checks that a token's JTI is still the active login
// for its subject.
func (s *AuthService) ValidateSession(ctx context.Context, claims *Claims) error {
	var sessionKey string
	switch claims.TokenType {
	case TokenTypeStudent:
		sessionKey = config.CacheKey.StudentSessionKey(claims.UserID)
	case TokenTypeAdmin:
		sessionKey = config.CacheKey.AdminSessionKey(claims.UserID)
	default:
		return errors.New("unknown token type")
	}

	stored, found, err := s.sessions.Lookup(ctx, sessionKey)
	if err != nil {
		return fmt.Errorf("check session: %w", err)
	}
	if !found {
		return errors.New("no active session")
	}
	if stored != claims.ID {
		return errors.New("session invalidated")
	}
	return nil
}

// Logout removes the subject's active login, invalidating the token.
func (s *AuthService) Logout(ctx context.Context, claims *Claims) error {
	switch claims.TokenType {
	case TokenTypeStudent:
		if err := s.sessions.Delete(ctx, config.CacheKey.StudentSessionKey(claims.UserID)); err != nil {
			return err
		}
		studentID := claims.UserID
		s.auditEntry(ctx, &studentID, "Logged out")
	case TokenTypeAdmin:
		if err := s.sessions.Delete(ctx, config.CacheKey.AdminSessionKey(claims.UserID)); err != nil {
			return err
		}
		s.auditEntry(ctx, nil, "Admin logged out")
	default:
		return errors.New("unknown token type")
	}
	return nil
}

// auditEntry appends an audit record. Failures are logged and ignored;
// they never block a login or logout.
func (s *AuthService) auditEntry(ctx context.Context, studentID *int64, action string) {
	if err := s.audit.Append(ctx, studentID, action); err != nil {
		s.log.Warn().Err(err).Str("action", action).Msg("Audit write failed")
	}
}
