// backend/internal/quiz/service.go
package quiz

import (
	"context"
	"time"

	"learning-system/internal/apperr"
	"learning-system/internal/auth"
	"learning-system/internal/models"
	"learning-system/pkg/logger"
)

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
	timeGrace   time.Duration
	log         *logger.Logger
	now         func() time.Time
}

func NewService(
	repo *Repository,
	courses CourseReader,
	enrollments EnrollmentChecker,
	notifier Notifier,
	timeGrace time.Duration,
	baseLog *logger.Logger,
) *Service {
	return &Service{
		repo:        repo,
		courses:     courses,
		enrollments: enrollments,
		notifier:    notifier,
		timeGrace:   timeGrace,
		log:         baseLog.With("service", "QuizService"),
		now:         time.Now,
	}
}

// SubmitQuizAttempt grades a submission and records it as a new attempt. Every
// submission is kept; nothing is overwritten.
func (s *Service) SubmitQuizAttempt(ctx context.Context, identity auth.Identity, req models.QuizSubmissionRequest) (*models.QuizResult, error) {
	if identity.UserID == 0 {
		return nil, apperr.Unauthorized("authentication required")
	}
	if req.CourseID == 0 || req.QuizID == 0 {
		return nil, apperr.Validation("courseId and quizId are required")
	}
	seen := make(map[uint]bool, len(req.Answers))
	for _, a := range req.Answers {
		if a.QuestionID == 0 {
			return nil, apperr.Validation("questionId is required")
		}
		if seen[a.QuestionID] {
			return nil, apperr.Validation("duplicate answer for question %d", a.QuestionID)
		}
		seen[a.QuestionID] = true
		if a.SelectedOption != nil && *a.SelectedOption < -1 {
			return nil, apperr.Validation("selectedOption must be >= -1")
		}
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
	quiz := course.FindQuiz(req.QuizID)
	if quiz == nil {
		return nil, apperr.NotFound("quiz %d not found in course %d", req.QuizID, req.CourseID)
	}

	result := grade(quiz, req.Answers)
	now := s.now()
	timeSpent := elapsedSeconds(req.StartedAt, now)

	moduleID := req.ModuleID
	if moduleID == nil {
		moduleID = quiz.ModuleID
	}

	attempt := &models.QuizAttempt{
		StudentID:    identity.UserID,
		CourseID:     course.ID,
		QuizID:       quiz.ID,
		ModuleID:     moduleID,
		Answers:      result.Answers,
		Score:        result.Score,
		MaxScore:     result.MaxScore,
		Percentage:   result.Percentage,
		PassingScore: quiz.PassingScore,
		Passed:       result.Passed,
		StartedAt:    req.StartedAt,
		CompletedAt:  now,
		TimeSpent:    timeSpent,
		Overtime:     overtime(quiz, timeSpent, s.timeGrace),
	}
	if err := s.repo.CreateAttempt(ctx, attempt); err != nil {
		return nil, err
	}

	if attempt.Overtime {
		s.log.Warn("quiz submitted past time limit",
			"attempt_id", attempt.ID,
			"quiz_id", quiz.ID,
			"time_spent", timeSpent,
			"time_limit_minutes", quiz.TimeLimit,
		)
	}
	s.log.Info("quiz graded",
		"attempt_id", attempt.ID,
		"student_id", identity.UserID,
		"quiz_id", quiz.ID,
		"score", attempt.Score,
		"max_score", attempt.MaxScore,
		"passed", attempt.Passed,
	)

	out := &models.QuizResult{
		AttemptID:    attempt.ID,
		Score:        attempt.Score,
		MaxScore:     attempt.MaxScore,
		Percentage:   attempt.Percentage,
		Passed:       attempt.Passed,
		PassingScore: attempt.PassingScore,
		TimeSpent:    attempt.TimeSpent,
		Answers:      result.Answers,
	}
	if s.notifier != nil {
		s.notifier.SendMessageToUser(identity.UserID, "quiz_graded", out)
	}
	return out, nil
}

// ListAttempts returns the caller's attempt history for a quiz with the best
// percentage reached so far.
func (s *Service) ListAttempts(ctx context.Context, identity auth.Identity, courseID, quizID uint) (*models.AttemptHistory, error) {
	if courseID == 0 || quizID == 0 {
		return nil, apperr.Validation("courseId and quizId are required")
	}

	attempts, err := s.repo.ListAttempts(ctx, identity.UserID, courseID, quizID)
	if err != nil {
		return nil, err
	}

	history := &models.AttemptHistory{Attempts: attempts}
	for _, a := range attempts {
		if a.Percentage > history.BestPercentage {
			history.BestPercentage = a.Percentage
		}
		history.Passed = history.Passed || a.Passed
	}
	if history.Attempts == nil {
		history.Attempts = []models.QuizAttempt{}
	}
	return history, nil
}
