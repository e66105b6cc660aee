package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/yourusername/toeic-api/internal/config"
	pgRepo "github.com/yourusername/toeic-api/internal/repository/postgres"
	"github.com/yourusername/toeic-api/internal/service"
	"github.com/yourusername/toeic-api/pkg/database"
)

// Утилита массовой загрузки вопросов из CSV/XLSX файла.
// Повторный запуск с тем же файлом обновляет существующие вопросы
// по точному совпадению текста, дубликаты не создаются.
//
//	go run ./cmd/import-questions -file questions.csv
func main() {
	filePath := flag.String("file", "", "путь к CSV или XLSX файлу с вопросами")
	flag.Parse()

	if *filePath == "" {
		fmt.Fprintln(os.Stderr, "Usage: import-questions -file <questions.csv|questions.xlsx>")
		os.Exit(2)
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.NewPostgresDB(cfg.Database.PostgresConnectionString())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := database.MigrateDB(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	file, err := os.Open(*filePath)
	if err != nil {
		log.Fatalf("Failed to open file %s: %v", *filePath, err)
	}
	defer file.Close()

	importService := service.NewImportService(pgRepo.NewQuestionRepo(db))

	var summary *service.ImportSummary
	switch strings.ToLower(filepath.Ext(*filePath)) {
	case ".csv":
		summary, err = importService.ImportCSV(file)
	case ".xlsx":
		summary, err = importService.ImportXLSX(file)
	default:
		log.Fatalf("Unsupported file format %q, expected .csv or .xlsx", filepath.Ext(*filePath))
	}
	if err != nil {
		log.Fatalf("Import failed: %v", err)
	}

	fmt.Printf("Импорт завершен: создано %d, обновлено %d\n", summary.Created, summary.Updated)
}
