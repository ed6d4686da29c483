// backend/internal/assignment/repository.go
package assignment

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"learning-system/internal/apperr"
	"learning-system/internal/models"
	"learning-system/pkg/logger"
)

type Repository struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRepository(db *gorm.DB, baseLog *logger.Logger) *Repository {
	return &Repository{db: db, log: baseLog.With("repo", "AssignmentRepository")}
}

type ListFilter struct {
	StudentID uint
	CourseID  uint
	Status    models.SubmissionStatus
}

// Upsert writes the student's single submission for an assignment. On resubmission
// only the submitted fields change; status and grading fields are kept.
func (r *Repository) Upsert(ctx context.Context, sub *models.AssignmentSubmission) (*models.AssignmentSubmission, error) {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "student_id"}, {Name: "assignment_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"content",
				"submission_type",
				"submitted_at",
				"module_id",
				"updated_at",
			}),
		}).
		Create(sub).Error
	if err != nil {
		r.log.Error("upsert submission failed", "student_id", sub.StudentID, "assignment_id", sub.AssignmentID, "error", err)
		return nil, fmt.Errorf("upsert submission: %w", err)
	}

	var stored models.AssignmentSubmission
	err = r.db.WithContext(ctx).
		Where("student_id = ? AND assignment_id = ?", sub.StudentID, sub.AssignmentID).
		First(&stored).Error
	if err != nil {
		return nil, fmt.Errorf("reload submission: %w", err)
	}
	return &stored, nil
}

func (r *Repository) GetByID(ctx context.Context, id uint) (*models.AssignmentSubmission, error) {
	var sub models.AssignmentSubmission
	if err := r.db.WithContext(ctx).First(&sub, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("submission %d not found", id)
		}
		return nil, fmt.Errorf("get submission %d: %w", id, err)
	}
	return &sub, nil
}

// SaveGrade writes the grading fields of a submission.
func (r *Repository) SaveGrade(ctx context.Context, sub *models.AssignmentSubmission) error {
	err := r.db.WithContext(ctx).Model(sub).
		Select("status", "grade", "feedback", "graded_at", "graded_by", "updated_at").
		Updates(sub).Error
	if err != nil {
		r.log.Error("save grade failed", "submission_id", sub.ID, "error", err)
		return fmt.Errorf("save grade: %w", err)
	}
	return nil
}

// List returns submissions matching the filter, oldest submission first.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]models.AssignmentSubmission, error) {
	q := r.db.WithContext(ctx).Model(&models.AssignmentSubmission{})
	if filter.StudentID != 0 {
		q = q.Where("student_id = ?", filter.StudentID)
	}
	if filter.CourseID != 0 {
		q = q.Where("course_id = ?", filter.CourseID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}

	var out []models.AssignmentSubmission
	if err := q.Order("submitted_at asc, id asc").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	return out, nil
}
