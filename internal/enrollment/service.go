// backend/internal/enrollment/service.go
package enrollment

import (
	"context"
	"errors"
	"time"

	"gorm.io/datatypes"

	"learning-system/internal/apperr"
	"learning-system/internal/auth"
	"learning-system/internal/models"
	"learning-system/pkg/logger"
)

const maxSaveAttempts = 3

// CourseReader resolves course aggregates by id.
type CourseReader interface {
	GetCourse(ctx context.Context, id uint) (*models.Course, error)
}

// Notifier pushes realtime events to a user's open connections.
type Notifier interface {
	SendMessageToUser(userID uint, messageType string, data interface{})
}

type Service struct {
	repo     *Repository
	courses  CourseReader
	notifier Notifier
	log      *logger.Logger
	now      func() time.Time
}

func NewService(repo *Repository, courses CourseReader, notifier Notifier, baseLog *logger.Logger) *Service {
	return &Service{
		repo:     repo,
		courses:  courses,
		notifier: notifier,
		log:      baseLog.With("service", "EnrollmentService"),
		now:      time.Now,
	}
}

type ProgressEvent struct {
	EnrollmentID uint `json:"enrollmentId"`
	CourseID     uint `json:"courseId"`
	models.Snapshot
}

func (s *Service) Enroll(ctx context.Context, identity auth.Identity, courseID uint) (*models.Enrollment, error) {
	if identity.UserID == 0 {
		return nil, apperr.Unauthorized("authentication required")
	}
	course, err := s.courses.GetCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if !course.IsPublished && !identity.IsAdmin() {
		return nil, apperr.NotFound("course %d not found", courseID)
	}

	e := &models.Enrollment{
		StudentID:    identity.UserID,
		CourseID:     course.ID,
		Progress:     datatypes.NewJSONType([]models.ModuleProgress{}),
		TotalLessons: course.TotalLessons,
		Version:      1,
	}
	if err := s.repo.Create(ctx, e); err != nil {
		return nil, err
	}
	s.log.Info("student enrolled", "enrollment_id", e.ID, "student_id", e.StudentID, "course_id", e.CourseID)
	return e, nil
}

// Get returns an enrollment readable by its owner or an admin.
func (s *Service) Get(ctx context.Context, identity auth.Identity, enrollmentID uint) (*models.Enrollment, error) {
	e, err := s.repo.GetByID(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}
	if e.StudentID != identity.UserID && !identity.IsAdmin() {
		return nil, apperr.Unauthorized("enrollment %d does not belong to caller", enrollmentID)
	}
	return e, nil
}

func (s *Service) ListMine(ctx context.Context, identity auth.Identity) ([]models.Enrollment, error) {
	return s.repo.ListByStudent(ctx, identity.UserID)
}

func (s *Service) IsEnrolled(ctx context.Context, studentID, courseID uint) (bool, error) {
	return s.repo.Exists(ctx, studentID, courseID)
}

// RecordLessonCompletion marks a lesson completed and recomputes the enrollment's
// aggregates. Repeating the call for a completed lesson returns the stored snapshot.
func (s *Service) RecordLessonCompletion(ctx context.Context, identity auth.Identity, enrollmentID, moduleID, lessonID uint) (models.Snapshot, error) {
	if moduleID == 0 || lessonID == 0 {
		return models.Snapshot{}, apperr.Validation("moduleId and lessonId are required")
	}

	var becameComplete bool
	e, changed, err := s.mutate(ctx, identity, enrollmentID, moduleID, lessonID,
		func(e *models.Enrollment, course *models.Course, tree []models.ModuleProgress) bool {
			tree, changed := markLessonCompleted(tree, moduleID, lessonID, s.now())
			if !changed {
				return false
			}
			wasCompleted := e.IsCompleted
			applyAggregates(e, tree, course, s.now())
			becameComplete = !wasCompleted && e.IsCompleted
			return true
		})
	if err != nil {
		return models.Snapshot{}, err
	}
	if !changed {
		return e.Snapshot(), nil
	}

	s.log.Info("lesson completed",
		"enrollment_id", e.ID,
		"lesson_id", lessonID,
		"completed_lessons", e.CompletedLessons,
		"total_lessons", e.TotalLessons,
		"overall_progress", e.OverallProgress,
	)
	s.notify(e.StudentID, "progress_update", ProgressEvent{EnrollmentID: e.ID, CourseID: e.CourseID, Snapshot: e.Snapshot()})
	if becameComplete {
		s.log.Info("course completed", "enrollment_id", e.ID, "student_id", e.StudentID, "course_id", e.CourseID)
		s.notify(e.StudentID, "course_completed", ProgressEvent{EnrollmentID: e.ID, CourseID: e.CourseID, Snapshot: e.Snapshot()})
	}
	return e.Snapshot(), nil
}

// RecordWatchProgress raises the watched duration of a lesson without touching
// completion or aggregates.
func (s *Service) RecordWatchProgress(ctx context.Context, identity auth.Identity, enrollmentID, moduleID, lessonID uint, watched int) (models.LessonProgress, error) {
	if moduleID == 0 || lessonID == 0 {
		return models.LessonProgress{}, apperr.Validation("moduleId and lessonId are required")
	}
	if watched < 0 {
		return models.LessonProgress{}, apperr.Validation("watchedDuration must be >= 0")
	}

	var lesson models.LessonProgress
	_, _, err := s.mutate(ctx, identity, enrollmentID, moduleID, lessonID,
		func(e *models.Enrollment, _ *models.Course, tree []models.ModuleProgress) bool {
			var changed bool
			tree, lesson, changed = recordWatched(tree, moduleID, lessonID, watched)
			if !changed {
				return false
			}
			e.Progress = datatypes.NewJSONType(tree)
			now := s.now()
			e.LastAccessedAt = &now
			return true
		})
	if err != nil {
		return models.LessonProgress{}, err
	}
	return lesson, nil
}

// mutate runs one read-modify-write cycle on an enrollment, retrying from a fresh
// read when another writer advanced the version first.
func (s *Service) mutate(
	ctx context.Context,
	identity auth.Identity,
	enrollmentID, moduleID, lessonID uint,
	apply func(e *models.Enrollment, course *models.Course, tree []models.ModuleProgress) bool,
) (*models.Enrollment, bool, error) {
	for attempt := 1; attempt <= maxSaveAttempts; attempt++ {
		e, err := s.repo.GetByID(ctx, enrollmentID)
		if err != nil {
			return nil, false, err
		}
		if e.StudentID != identity.UserID {
			return nil, false, apperr.Unauthorized("enrollment %d does not belong to caller", enrollmentID)
		}

		course, err := s.courses.GetCourse(ctx, e.CourseID)
		if err != nil {
			return nil, false, err
		}
		if !lessonInModule(course, moduleID, lessonID) {
			return nil, false, apperr.NotFound("lesson %d not found in module %d", lessonID, moduleID)
		}

		if !apply(e, course, cloneTree(e.Progress.Data())) {
			return e, false, nil
		}

		err = s.repo.SaveProgress(ctx, e)
		if err == nil {
			return e, true, nil
		}
		if !errors.Is(err, ErrStaleVersion) {
			return nil, false, err
		}
		s.log.Warn("stale enrollment write, retrying", "enrollment_id", enrollmentID, "attempt", attempt)
	}
	return nil, false, apperr.Conflict("enrollment %d is being updated concurrently, try again", enrollmentID)
}

func (s *Service) notify(userID uint, eventType string, data interface{}) {
	if s.notifier == nil {
		return
	}
	s.notifier.SendMessageToUser(userID, eventType, data)
}
