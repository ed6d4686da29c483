// backend/internal/catalog/service.go
package catalog

import (
	"context"
	"errors"
	"strings"

	"learning-system/internal/apperr"
	"learning-system/internal/models"
	"learning-system/pkg/cache"
	"learning-system/pkg/logger"
)

// Cache stores full course aggregates. A nil Cache disables caching.
type Cache interface {
	GetCourse(ctx context.Context, id uint) (*models.Course, error)
	SetCourse(ctx context.Context, course *models.Course) error
	DeleteCourse(ctx context.Context, id uint) error
}

type Service struct {
	repo  *Repository
	cache Cache
	log   *logger.Logger
}

func NewService(repo *Repository, courseCache Cache, baseLog *logger.Logger) *Service {
	return &Service{
		repo:  repo,
		cache: courseCache,
		log:   baseLog.With("service", "CatalogService"),
	}
}

// GetCourse returns the course aggregate, reading through the cache.
func (s *Service) GetCourse(ctx context.Context, id uint) (*models.Course, error) {
	if id == 0 {
		return nil, apperr.Validation("courseId is required")
	}

	if s.cache != nil {
		course, err := s.cache.GetCourse(ctx, id)
		if err == nil {
			return course, nil
		}
		if !errors.Is(err, cache.ErrMiss) {
			s.log.Warn("read cached course failed", "course_id", id, "error", err)
		}
	}

	course, err := s.repo.GetCourse(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetCourse(ctx, course); err != nil {
			s.log.Warn("cache course failed", "course_id", id, "error", err)
		}
	}
	return course, nil
}

func (s *Service) ListCourses(ctx context.Context) ([]models.CourseSummary, error) {
	courses, err := s.repo.ListPublished(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.CourseSummary, len(courses))
	for i, c := range courses {
		out[i] = c.Summary()
	}
	return out, nil
}

func (s *Service) CreateCourse(ctx context.Context, course *models.Course) error {
	if err := validateCourse(course); err != nil {
		return err
	}
	resetIDs(course)
	course.RecomputeTotals()
	return s.repo.CreateCourse(ctx, course)
}

// resetIDs clears every client-supplied key so the whole aggregate is inserted fresh.
// Module links on quizzes and assignments cannot point at modules that do not exist
// yet, so they are dropped too.
func resetIDs(c *models.Course) {
	c.ID = 0
	for i := range c.Modules {
		m := &c.Modules[i]
		m.ID, m.CourseID = 0, 0
		for j := range m.Lessons {
			m.Lessons[j].ID, m.Lessons[j].ModuleID = 0, 0
		}
	}
	for i := range c.Quizzes {
		q := &c.Quizzes[i]
		q.ID, q.CourseID, q.ModuleID = 0, 0, nil
		for j := range q.Questions {
			q.Questions[j].ID, q.Questions[j].QuizID = 0, 0
		}
	}
	for i := range c.Assignments {
		a := &c.Assignments[i]
		a.ID, a.CourseID, a.ModuleID = 0, 0, nil
	}
}

func (s *Service) AddLesson(ctx context.Context, courseID, moduleID uint, req models.AddLessonRequest) (*models.Course, error) {
	lesson := &models.Lesson{
		Title:    req.Title,
		VideoURL: req.VideoURL,
		Duration: req.Duration,
		IsFree:   req.IsFree,
		Order:    req.Order,
	}

	course, err := s.repo.AddLesson(ctx, courseID, moduleID, lesson)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, courseID)
	return course, nil
}

func (s *Service) invalidate(ctx context.Context, courseID uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteCourse(ctx, courseID); err != nil {
		s.log.Warn("invalidate course cache failed", "course_id", courseID, "error", err)
	}
}

func validateCourse(c *models.Course) error {
	if strings.TrimSpace(c.Title) == "" {
		return apperr.Validation("title is required")
	}
	for _, m := range c.Modules {
		if strings.TrimSpace(m.Title) == "" {
			return apperr.Validation("module title is required")
		}
		for _, l := range m.Lessons {
			if l.Duration < 0 {
				return apperr.Validation("lesson duration must be >= 0")
			}
		}
	}
	for _, q := range c.Quizzes {
		if q.PassingScore < 0 || q.PassingScore > 100 {
			return apperr.Validation("passing score must be between 0 and 100")
		}
		if q.TimeLimit < 0 {
			return apperr.Validation("time limit must be >= 0")
		}
		for _, question := range q.Questions {
			if question.Points < 0 {
				return apperr.Validation("question points must be >= 0")
			}
		}
	}
	for _, a := range c.Assignments {
		if a.MaxScore <= 0 {
			return apperr.Validation("assignment max score must be > 0")
		}
	}
	return nil
}
