// backend/internal/assignment/service.go
package assignment

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"learning-system/internal/apperr"
	"learning-system/internal/auth"
	"learning-system/internal/models"
	"learning-system/pkg/logger"
)

var validate = validator.New()

type CourseReader interface {
	GetCourse(ctx context.Context, id uint) (*models.Course, error)
}

type EnrollmentChecker interface {
	IsEnrolled(ctx context.Context, studentID, courseID uint) (bool, error)
}

type Notifier interface {
	SendMessageToUser(userID uint, messageType string, data interface{})
}

type Service struct {
	repo        *Repository
	courses     CourseReader
	enrollments EnrollmentChecker
	notifier    Notifier
	log         *logger.Logger
	now         func() time.Time
}

func NewService(repo *Repository, courses CourseReader, enrollments EnrollmentChecker, notifier Notifier, baseLog *logger.Logger) *Service {
	return &Service{
		repo:        repo,
		courses:     courses,
		enrollments: enrollments,
		notifier:    notifier,
		log:         baseLog.With("service", "AssignmentService"),
		now:         time.Now,
	}
}

type GradedEvent struct {
	SubmissionID uint    `json:"submissionId"`
	AssignmentID uint    `json:"assignmentId"`
	CourseID     uint    `json:"courseId"`
	Grade        float64 `json:"grade"`
	MaxScore     int     `json:"maxScore"`
	Feedback     string  `json:"feedback,omitempty"`
}

// Submit creates or replaces the caller's submission for an assignment. A graded
// submission stays graded on resubmission until an admin grades it again.
func (s *Service) Submit(ctx context.Context, identity auth.Identity, req models.AssignmentSubmitRequest) (*models.AssignmentSubmission, error) {
	if identity.UserID == 0 {
		return nil, apperr.Unauthorized("authentication required")
	}
	if req.CourseID == 0 || req.AssignmentID == 0 {
		return nil, apperr.Validation("courseId and assignmentId are required")
	}

	content := strings.TrimSpace(req.Content)
	switch req.SubmissionType {
	case models.SubmissionLink:
		if err := validate.Var(content, "required,http_url"); err != nil {
			return nil, apperr.Validation("content must be a valid http(s) URL for link submissions")
		}
	case models.SubmissionText:
		if content == "" {
			return nil, apperr.Validation("content is required")
		}
	default:
		return nil, apperr.Validation("submissionType must be one of [link text]")
	}

	enrolled, err := s.enrollments.IsEnrolled(ctx, identity.UserID, req.CourseID)
	if err != nil {
		return nil, err
	}
	if !enrolled {
		return nil, apperr.Forbidden("not enrolled in course %d", req.CourseID)
	}

	course, err := s.courses.GetCourse(ctx, req.CourseID)
	if err != nil {
		return nil, err
	}
	assignment := course.FindAssignment(req.AssignmentID)
	if assignment == nil {
		return nil, apperr.NotFound("assignment %d not found in course %d", req.AssignmentID, req.CourseID)
	}

	moduleID := req.ModuleID
	if moduleID == nil {
		moduleID = assignment.ModuleID
	}

	sub, err := s.repo.Upsert(ctx, &models.AssignmentSubmission{
		StudentID:      identity.UserID,
		AssignmentID:   assignment.ID,
		CourseID:       course.ID,
		ModuleID:       moduleID,
		SubmissionType: req.SubmissionType,
		Content:        content,
		SubmittedAt:    s.now(),
		Status:         models.SubmissionPending,
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("assignment submitted",
		"submission_id", sub.ID,
		"student_id", sub.StudentID,
		"assignment_id", sub.AssignmentID,
		"status", sub.Status,
		"needs_regrade", sub.NeedsRegrade(),
	)
	return sub, nil
}

// GradeSubmission records an admin's grade. Grading an already graded submission
// overwrites the previous grade and feedback.
func (s *Service) GradeSubmission(ctx context.Context, identity auth.Identity, submissionID uint, req models.GradeRequest) (*models.AssignmentSubmission, error) {
	if identity.UserID == 0 {
		return nil, apperr.Unauthorized("authentication required")
	}
	if !identity.IsAdmin() {
		return nil, apperr.Forbidden("admin role required")
	}
	if submissionID == 0 {
		return nil, apperr.Validation("submissionId is required")
	}
	if req.Grade == nil {
		return nil, apperr.Validation("grade is required")
	}

	sub, err := s.repo.GetByID(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	course, err := s.courses.GetCourse(ctx, sub.CourseID)
	if err != nil {
		return nil, err
	}
	assignment := course.FindAssignment(sub.AssignmentID)
	if assignment == nil {
		return nil, apperr.NotFound("assignment %d not found in course %d", sub.AssignmentID, sub.CourseID)
	}

	grade := *req.Grade
	if grade < 0 || grade > float64(assignment.MaxScore) {
		return nil, apperr.Validation("Grade must be between 0 and %d", assignment.MaxScore)
	}

	now := s.now()
	graderID := identity.UserID
	sub.Status = models.SubmissionGraded
	sub.Grade = &grade
	sub.Feedback = strings.TrimSpace(req.Feedback)
	sub.GradedAt = &now
	sub.GradedBy = &graderID
	if err := s.repo.SaveGrade(ctx, sub); err != nil {
		return nil, err
	}

	s.log.Info("assignment graded",
		"submission_id", sub.ID,
		"grade", grade,
		"max_score", assignment.MaxScore,
		"graded_by", graderID,
	)
	if s.notifier != nil {
		s.notifier.SendMessageToUser(sub.StudentID, "assignment_graded", GradedEvent{
			SubmissionID: sub.ID,
			AssignmentID: sub.AssignmentID,
			CourseID:     sub.CourseID,
			Grade:        grade,
			MaxScore:     assignment.MaxScore,
			Feedback:     sub.Feedback,
		})
	}
	return sub, nil
}

// ListMine returns the caller's submissions, optionally limited to one course.
func (s *Service) ListMine(ctx context.Context, identity auth.Identity, courseID uint) ([]models.SubmissionDTO, error) {
	subs, err := s.repo.List(ctx, ListFilter{StudentID: identity.UserID, CourseID: courseID})
	if err != nil {
		return nil, err
	}
	return toDTOs(subs), nil
}

// ListForReview returns submissions for the admin queue, oldest first.
func (s *Service) ListForReview(ctx context.Context, status models.SubmissionStatus, courseID uint) ([]models.SubmissionDTO, error) {
	switch status {
	case "", models.SubmissionPending, models.SubmissionGraded:
	default:
		return nil, apperr.Validation("status must be one of [pending graded]")
	}

	subs, err := s.repo.List(ctx, ListFilter{CourseID: courseID, Status: status})
	if err != nil {
		return nil, err
	}
	return toDTOs(subs), nil
}

func toDTOs(subs []models.AssignmentSubmission) []models.SubmissionDTO {
	out := make([]models.SubmissionDTO, len(subs))
	for i, sub := range subs {
		out[i] = sub.ToDTO()
	}
	return out
}
