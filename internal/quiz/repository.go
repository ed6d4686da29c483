// backend/internal/quiz/repository.go
package quiz

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"learning-system/internal/models"
	"learning-system/pkg/logger"
)

type Repository struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRepository(db *gorm.DB, baseLog *logger.Logger) *Repository {
	return &Repository{db: db, log: baseLog.With("repo", "QuizRepository")}
}

// CreateAttempt inserts a new attempt row. Attempts are never updated.
func (r *Repository) CreateAttempt(ctx context.Context, attempt *models.QuizAttempt) error {
	if err := r.db.WithContext(ctx).Create(attempt).Error; err != nil {
		r.log.Error("create quiz attempt failed", "student_id", attempt.StudentID, "quiz_id", attempt.QuizID, "error", err)
		return fmt.Errorf("create quiz attempt: %w", err)
	}
	return nil
}

// ListAttempts returns a student's attempts for one quiz, newest first.
func (r *Repository) ListAttempts(ctx context.Context, studentID, courseID, quizID uint) ([]models.QuizAttempt, error) {
	var attempts []models.QuizAttempt
	err := r.db.WithContext(ctx).
		Where("student_id = ? AND course_id = ? AND quiz_id = ?", studentID, courseID, quizID).
		Order("completed_at desc, id desc").
		Find(&attempts).Error
	if err != nil {
		return nil, fmt.Errorf("list quiz attempts: %w", err)
	}
	return attempts, nil
}
