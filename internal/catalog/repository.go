// backend/internal/catalog/repository.go
package catalog

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"learning-system/internal/apperr"
	"learning-system/internal/models"
	"learning-system/pkg/logger"
)

type Repository struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRepository(db *gorm.DB, baseLog *logger.Logger) *Repository {
	return &Repository{db: db, log: baseLog.With("repo", "CourseRepository")}
}

func byPosition(db *gorm.DB) *gorm.DB {
	return db.Order("position asc, id asc")
}

func byID(db *gorm.DB) *gorm.DB {
	return db.Order("id asc")
}

func preloadContent(tx *gorm.DB) *gorm.DB {
	return tx.
		Preload("Modules", byPosition).
		Preload("Modules.Lessons", byPosition).
		Preload("Quizzes", byID).
		Preload("Quizzes.Questions", byID).
		Preload("Assignments", byID)
}

// GetCourse loads the full course aggregate.
func (r *Repository) GetCourse(ctx context.Context, id uint) (*models.Course, error) {
	var course models.Course
	err := preloadContent(r.db.WithContext(ctx)).First(&course, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("course %d not found", id)
		}
		r.log.Error("get course failed", "course_id", id, "error", err)
		return nil, fmt.Errorf("get course %d: %w", id, err)
	}
	return &course, nil
}

func (r *Repository) ListPublished(ctx context.Context) ([]models.Course, error) {
	var courses []models.Course
	err := r.db.WithContext(ctx).
		Where("is_published = ?", true).
		Order("created_at desc").
		Find(&courses).Error
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return courses, nil
}

func (r *Repository) CreateCourse(ctx context.Context, course *models.Course) error {
	if err := r.db.WithContext(ctx).Create(course).Error; err != nil {
		r.log.Error("create course failed", "title", course.Title, "error", err)
		return fmt.Errorf("create course: %w", err)
	}
	r.log.Info("course created", "course_id", course.ID, "total_lessons", course.TotalLessons)
	return nil
}

// AddLesson appends a lesson to a module and refreshes the course's derived totals in
// the same transaction.
func (r *Repository) AddLesson(ctx context.Context, courseID, moduleID uint, lesson *models.Lesson) (*models.Course, error) {
	var course models.Course
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var module models.Module
		if err := tx.Where("id = ? AND course_id = ?", moduleID, courseID).First(&module).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("module %d not found in course %d", moduleID, courseID)
			}
			return err
		}

		lesson.ModuleID = module.ID
		if err := tx.Create(lesson).Error; err != nil {
			return err
		}

		if err := preloadContent(tx).First(&course, courseID).Error; err != nil {
			return err
		}
		course.RecomputeTotals()

		return tx.Model(&models.Course{}).
			Where("id = ?", courseID).
			Updates(map[string]interface{}{
				"total_lessons":  course.TotalLessons,
				"total_duration": course.TotalDuration,
			}).Error
	})
	if err != nil {
		var appErr *apperr.Error
		if errors.As(err, &appErr) {
			return nil, err
		}
		r.log.Error("add lesson failed", "course_id", courseID, "module_id", moduleID, "error", err)
		return nil, fmt.Errorf("add lesson: %w", err)
	}

	r.log.Info("lesson added", "course_id", courseID, "module_id", moduleID, "lesson_id", lesson.ID, "total_lessons", course.TotalLessons)
	return &course, nil
}
