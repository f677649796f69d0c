package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/elugabriel/interactive-assessment/internal/config"
	"github.com/elugabriel/interactive-assessment/internal/database"
	"github.com/elugabriel/interactive-assessment/internal/logger"
	"github.com/elugabriel/interactive-assessment/internal/repository"
	"github.com/elugabriel/interactive-assessment/internal/service"
)

// Loads questions into the bank from an XLSX workbook with
// "Question Text" and "Model Answer" columns.
func main() {
	var path string
	flag.StringVar(&path, "file", "questions.xlsx", "Path to the XLSX workbook")
	flag.Parse()

	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	questionRepo := repository.NewQuestionRepository(pool)
	questionService := service.NewQuestionService(questionRepo, log)

	file, err := os.Open(path)
	if err != nil {
		log.Fatal().Err(err).Str("file", path).Msg("Failed to open workbook")
	}
	defer file.Close()

	imported, err := questionService.ImportXLSX(ctx, file)
	if err != nil {
		log.Fatal().Err(err).Msg("Import failed")
	}

	fmt.Printf("Imported %d questions from %s\n", imported, path)
}
