package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/elugabriel/interactive-assessment/internal/config"
	"github.com/elugabriel/interactive-assessment/internal/testutil"
)

func newAuthService() (*AuthService, *testutil.Sessions, *testutil.Store) {
	sessions := testutil.NewSessions()
	store := testutil.NewStore()
	svc := NewAuthService(&config.Config{
		JWTSecret:  "test-secret",
		JWTExpiry:  time.Hour,
		BcryptCost: 4, // minimum cost keeps the test fast
	}, sessions, store, zerolog.Nop())
	return svc, sessions, store
}

func TestHashAndCheckPassword(t *testing.T) {
	svc, _, _ := newAuthService()

	hash, err := svc.HashPassword("s3cret-pass")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "s3cret-pass" {
		t.Fatal("password stored in plaintext")
	}
	if !strings.HasPrefix(hash, "$2") {
		t.Errorf("hash %q is not a bcrypt hash", hash)
	}

	if err := svc.CheckPassword(hash, "s3cret-pass"); err != nil {
		t.Errorf("correct password rejected: %v", err)
	}
	if err := svc.CheckPassword(hash, "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password: got %v, want ErrInvalidCredentials", err)
	}
}

func TestSignAndValidateToken(t *testing.T) {
	svc, _, _ := newAuthService()

	signed, err := svc.sign("jti-1", TokenTypeStudent, 42, "Ada Obi")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	claims, err := svc.ValidateToken(signed)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.UserID != 42 {
		t.Errorf("user id = %d, want 42", claims.UserID)
	}
	if claims.TokenType != TokenTypeStudent {
		t.Errorf("token type = %q, want student", claims.TokenType)
	}
	if claims.ID != "jti-1" {
		t.Errorf("jti = %q, want jti-1", claims.ID)
	}
}

func TestValidateTokenRejectsForgery(t *testing.T) {
	svc, _, _ := newAuthService()

	signed, err := svc.sign("jti-1", TokenTypeAdmin, 1, "Admin")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	other := NewAuthService(&config.Config{
		JWTSecret: "different-secret",
		JWTExpiry: time.Hour,
	}, testutil.NewSessions(), testutil.NewStore(), zerolog.Nop())
	if _, err := other.ValidateToken(signed); err == nil {
		t.Error("token signed with another secret accepted")
	}

	if _, err := svc.ValidateToken("not.a.token"); err == nil {
		t.Error("malformed token accepted")
	}
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	svc := NewAuthService(&config.Config{
		JWTSecret: "test-secret",
		JWTExpiry: -time.Minute,
	}, testutil.NewSessions(), testutil.NewStore(), zerolog.Nop())

	signed, err := svc.sign("jti-1", TokenTypeStudent, 1, "")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := svc.ValidateToken(signed); err == nil {
		t.Error("expired token accepted")
	}
}

func TestStudentLoginRegistersSessionAndAudits(t *testing.T) {
	svc, sessions, store := newAuthService()
	ctx := context.Background()

	token, err := svc.GenerateStudentToken(ctx, 7, "Ada Obi")
	if err != nil {
		t.Fatalf("GenerateStudentToken: %v", err)
	}
	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}

	jti, ok := sessions.Stored(config.CacheKey.StudentSessionKey(7))
	if !ok {
		t.Fatal("no session registered for the student")
	}
	if jti != claims.ID {
		t.Errorf("registered jti = %q, want %q", jti, claims.ID)
	}
	if err := svc.ValidateSession(ctx, claims); err != nil {
		t.Errorf("fresh login does not validate: %v", err)
	}

	if len(store.AuditEntries) != 1 || store.AuditEntries[0] != "Logged in" {
		t.Errorf("audit entries = %v, want [Logged in]", store.AuditEntries)
	}
}

func TestSecondLoginInvalidatesFirst(t *testing.T) {
	svc, _, _ := newAuthService()
	ctx := context.Background()

	first, err := svc.GenerateStudentToken(ctx, 7, "Ada Obi")
	if err != nil {
		t.Fatalf("first login: %v", err)
	}
	second, err := svc.GenerateStudentToken(ctx, 7, "Ada Obi")
	if err != nil {
		t.Fatalf("second login: %v", err)
	}

	firstClaims, err := svc.ValidateToken(first)
	if err != nil {
		t.Fatalf("ValidateToken(first): %v", err)
	}
	if err := svc.ValidateSession(ctx, firstClaims); err == nil {
		t.Error("token from the previous login still validates")
	}

	secondClaims, err := svc.ValidateToken(second)
	if err != nil {
		t.Fatalf("ValidateToken(second): %v", err)
	}
	if err := svc.ValidateSession(ctx, secondClaims); err != nil {
		t.Errorf("latest login does not validate: %v", err)
	}
}

func TestStudentLogoutRemovesSessionAndAudits(t *testing.T) {
	svc, sessions, store := newAuthService()
	ctx := context.Background()

	token, err := svc.GenerateStudentToken(ctx, 7, "Ada Obi")
	if err != nil {
		t.Fatalf("GenerateStudentToken: %v", err)
	}
	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}

	if err := svc.Logout(ctx, claims); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if _, ok := sessions.Stored(config.CacheKey.StudentSessionKey(7)); ok {
		t.Error("session still registered after logout")
	}
	if err := svc.ValidateSession(ctx, claims); err == nil {
		t.Error("token still validates after logout")
	}

	want := []string{"Logged in", "Logged out"}
	if len(store.AuditEntries) != len(want) {
		t.Fatalf("audit entries = %v, want %v", store.AuditEntries, want)
	}
	for i, entry := range want {
		if store.AuditEntries[i] != entry {
			t.Errorf("audit entry %d = %q, want %q", i, store.AuditEntries[i], entry)
		}
	}
}

func TestAdminLogoutRemovesSessionAndAudits(t *testing.T) {
	svc, sessions, store := newAuthService()
	ctx := context.Background()

	token, err := svc.GenerateAdminToken(ctx, 1, "Root")
	if err != nil {
		t.Fatalf("GenerateAdminToken: %v", err)
	}
	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}

	if err := svc.Logout(ctx, claims); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if _, ok := sessions.Stored(config.CacheKey.AdminSessionKey(1)); ok {
		t.Error("admin session still registered after logout")
	}
	if err := svc.ValidateSession(ctx, claims); err == nil {
		t.Error("admin token still validates after logout")
	}

	want := []string{"Admin logged in", "Admin logged out"}
	if len(store.AuditEntries) != len(want) {
		t.Fatalf("audit entries = %v, want %v", store.AuditEntries, want)
	}
	for i, entry := range want {
		if store.AuditEntries[i] != entry {
			t.Errorf("audit entry %d = %q, want %q", i, store.AuditEntries[i], entry)
		}
	}
}
