// backend/internal/enrollment/repository.go
package enrollment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"learning-system/internal/apperr"
	"learning-system/internal/models"
	"learning-system/pkg/logger"
)

// ErrStaleVersion means the enrollment changed between read and write.
var ErrStaleVersion = errors.New("enrollment version is stale")

type Repository struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRepository(db *gorm.DB, baseLog *logger.Logger) *Repository {
	return &Repository{db: db, log: baseLog.With("repo", "EnrollmentRepository")}
}

func (r *Repository) Create(ctx context.Context, e *models.Enrollment) error {
	exists, err := r.Exists(ctx, e.StudentID, e.CourseID)
	if err != nil {
		return err
	}
	if exists {
		return apperr.Conflict("already enrolled in course %d", e.CourseID)
	}

	if e.Version == 0 {
		e.Version = 1
	}
	if err := r.db.WithContext(ctx).Create(e).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperr.Conflict("already enrolled in course %d", e.CourseID)
		}
		r.log.Error("create enrollment failed", "student_id", e.StudentID, "course_id", e.CourseID, "error", err)
		return fmt.Errorf("create enrollment: %w", err)
	}
	return nil
}

func (r *Repository) GetByID(ctx context.Context, id uint) (*models.Enrollment, error) {
	var e models.Enrollment
	if err := r.db.WithContext(ctx).First(&e, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("enrollment %d not found", id)
		}
		return nil, fmt.Errorf("get enrollment %d: %w", id, err)
	}
	return &e, nil
}

func (r *Repository) Exists(ctx context.Context, studentID, courseID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Enrollment{}).
		Where("student_id = ? AND course_id = ?", studentID, courseID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check enrollment: %w", err)
	}
	return count > 0, nil
}

func (r *Repository) ListByStudent(ctx context.Context, studentID uint) ([]models.Enrollment, error) {
	var out []models.Enrollment
	err := r.db.WithContext(ctx).
		Preload("Course").
		Where("student_id = ?", studentID).
		Order("created_at desc").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}
	return out, nil
}

// SaveProgress persists the whole progress document if the stored version still
// matches e.Version, then advances e.Version.
func (r *Repository) SaveProgress(ctx context.Context, e *models.Enrollment) error {
	now := time.Now()
	res := r.db.WithContext(ctx).Model(&models.Enrollment{}).
		Where("id = ? AND version = ?", e.ID, e.Version).
		Updates(map[string]interface{}{
			"progress":          e.Progress,
			"completed_lessons": e.CompletedLessons,
			"total_lessons":     e.TotalLessons,
			"overall_progress":  e.OverallProgress,
			"is_completed":      e.IsCompleted,
			"completed_at":      e.CompletedAt,
			"last_accessed_at":  e.LastAccessedAt,
			"version":           e.Version + 1,
			"updated_at":        now,
		})
	if res.Error != nil {
		r.log.Error("save enrollment progress failed", "enrollment_id", e.ID, "error", res.Error)
		return fmt.Errorf("save enrollment %d: %w", e.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrStaleVersion
	}
	e.Version++
	e.UpdatedAt = now
	return nil
}
