// backend/internal/models/submission.go
package models

import "time"

type SubmissionType string

const (
	SubmissionLink SubmissionType = "link"
	SubmissionText SubmissionType = "text"
)

type SubmissionStatus string

const (
	SubmissionPending SubmissionStatus = "pending"
	SubmissionGraded  SubmissionStatus = "graded"
)

// AssignmentSubmission holds the single current submission of a student for an assignment.
type AssignmentSubmission struct {
	ID             uint             `json:"id" gorm:"primaryKey"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
	StudentID      uint             `json:"student_id" gorm:"not null;uniqueIndex:idx_submission_student_assignment"`
	AssignmentID   uint             `json:"assignment_id" gorm:"not null;uniqueIndex:idx_submission_student_assignment"`
	CourseID       uint             `json:"course_id" gorm:"not null;index"`
	ModuleID       *uint            `json:"module_id,omitempty"`
	SubmissionType SubmissionType   `json:"submission_type" gorm:"type:varchar(16);not null"`
	Content        string           `json:"content" gorm:"type:text;not null"`
	SubmittedAt    time.Time        `json:"submitted_at"`
	Status         SubmissionStatus `json:"status" gorm:"type:varchar(16);not null;default:pending;index"`
	Grade          *float64         `json:"grade,omitempty"`
	Feedback       string           `json:"feedback,omitempty" gorm:"type:text"`
	GradedAt       *time.Time       `json:"graded_at,omitempty"`
	GradedBy       *uint            `json:"graded_by,omitempty"`
}

// NeedsRegrade is true when a graded submission was changed after grading.
func (s *AssignmentSubmission) NeedsRegrade() bool {
	return s.Status == SubmissionGraded && s.GradedAt != nil && s.SubmittedAt.After(*s.GradedAt)
}
