package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/elugabriel/interactive-assessment/internal/config"
	"github.com/elugabriel/interactive-assessment/internal/middleware"
	"github.com/elugabriel/interactive-assessment/internal/response"
	"github.com/elugabriel/interactive-assessment/internal/service"
	"github.com/elugabriel/interactive-assessment/internal/testutil"
)

// newAuthTestRouter wires the logout routes the way the real router
// does: the student route behind the student JWT gate, the admin route
// behind the admin gate.
func newAuthTestRouter() (*service.AuthService, *testutil.Store, *gin.Engine) {
	store := testutil.NewStore()
	authService := service.NewAuthService(&config.Config{
		JWTSecret: "test-secret",
		JWTExpiry: time.Hour,
	}, testutil.NewSessions(), store, zerolog.Nop())
	h := NewAuthHandler(authService, nil, nil)

	r := gin.New()
	r.Use(response.RequestIDMiddleware())
	r.POST("/auth/logout", middleware.RequireStudentJWT(authService), h.Logout)
	r.POST("/auth/admin/logout", middleware.RequireAdminJWT(authService), h.Logout)
	return authService, store, r
}

func TestStudentLogoutInvalidatesSession(t *testing.T) {
	authService, store, r := newAuthTestRouter()
	ctx := context.Background()

	token, err := authService.GenerateStudentToken(ctx, 7, "Ada Obi")
	if err != nil {
		t.Fatalf("GenerateStudentToken: %v", err)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	claims, err := authService.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if err := authService.ValidateSession(ctx, claims); err == nil {
		t.Error("session still valid after logout")
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

func TestAdminLogoutInvalidatesSession(t *testing.T) {
	authService, store, r := newAuthTestRouter()
	ctx := context.Background()

	token, err := authService.GenerateAdminToken(ctx, 1, "Root")
	if err != nil {
		t.Fatalf("GenerateAdminToken: %v", err)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/admin/logout", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	claims, err := authService.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if err := authService.ValidateSession(ctx, claims); err == nil {
		t.Error("admin session still valid after logout")
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

func TestAdminTokenRejectedOnStudentLogout(t *testing.T) {
	authService, _, r := newAuthTestRouter()

	token, err := authService.GenerateAdminToken(context.Background(), 1, "Root")
	if err != nil {
		t.Fatalf("GenerateAdminToken: %v", err)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusForbidden)
	}
	env := decodeEnvelope(t, w)
	if env.Error == nil || env.Error.Code != response.ErrStudentAccessOnly {
		t.Errorf("error code = %v, want STUDENT_ACCESS_ONLY", env.Error)
	}
}

func TestLogoutWithoutToken(t *testing.T) {
	_, _, r := newAuthTestRouter()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/auth/admin/logout", nil))

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
	env := decodeEnvelope(t, w)
	if env.Error == nil || env.Error.Code != response.ErrTokenRequired {
		t.Errorf("error code = %v, want TOKEN_REQUIRED", env.Error)
	}
}
