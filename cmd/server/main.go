package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/elugabriel/interactive-assessment/internal/config"
	"github.com/elugabriel/interactive-assessment/internal/database"
	"github.com/elugabriel/interactive-assessment/internal/handler"
	"github.com/elugabriel/interactive-assessment/internal/logger"
	"github.com/elugabriel/interactive-assessment/internal/repository"
	"github.com/elugabriel/interactive-assessment/internal/router"
	"github.com/elugabriel/interactive-assessment/internal/service"
	"github.com/elugabriel/interactive-assessment/internal/validator"
)

func main() {
	cfg := config.Load()

	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting assessment backend")

	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	studentRepo := repository.NewStudentRepository(pool)
	adminRepo := repository.NewAdminRepository(pool)
	questionRepo := repository.NewQuestionRepository(pool)
	examRepo := repository.NewExamRepository(pool)
	auditRepo := repository.NewAuditRepository(pool)

	authService := service.NewAuthService(cfg, database.NewSessionRegistry(rdb), auditRepo, log)
	studentService := service.NewStudentService(studentRepo, auditRepo, log)
	adminService := service.NewAdminService(adminRepo)
	questionService := service.NewQuestionService(questionRepo, log)
	examService := service.NewExamService(examRepo, questionRepo, auditRepo, cfg, log)

	handlers := &router.Handlers{
		Auth:  handler.NewAuthHandler(authService, studentService, adminService),
		Exam:  handler.NewExamHandler(examService),
		Admin: handler.NewAdminHandler(questionService, examService, auditRepo),
	}

	r := router.SetupRouter(authService, handlers, cfg)

	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
