package main

import (
	"context"
	"flag"
	"os"

	"learning-system/internal/config"
	"learning-system/internal/seed"
	"learning-system/pkg/database"
	"learning-system/pkg/logger"
)

func main() {
	adminPassword := flag.String("admin-password", os.Getenv("SEED_ADMIN_PASSWORD"), "password for the admin account")
	studentPassword := flag.String("student-password", os.Getenv("SEED_STUDENT_PASSWORD"), "password for the student account")
	flag.Parse()

	log, err := logger.New("development")
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	if *adminPassword == "" || *studentPassword == "" {
		log.Fatal("admin and student passwords are required (flags or SEED_*_PASSWORD)")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load config", "error", err)
	}

	db, err := database.Open(cfg.Database)
	if err != nil {
		log.Fatal("failed to connect to database", "error", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal("failed to migrate database", "error", err)
	}

	result, err := seed.Run(context.Background(), db, *adminPassword, *studentPassword)
	if err != nil {
		log.Fatal("seed failed", "error", err)
	}

	log.Info("seed complete",
		"admin_id", result.Admin.ID,
		"student_id", result.Student.ID,
		"course_id", result.Course.ID,
		"total_lessons", result.Course.TotalLessons,
	)
}
