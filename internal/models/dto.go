// backend/internal/models/dto.go
package models

import "time"

type QuestionDTO struct {
	ID            uint     `json:"id"`
	Text          string   `json:"text"`
	Options       []string `json:"options"`
	Points        int      `json:"points"`
	CorrectAnswer *int     `json:"correct_answer,omitempty"` // admins only
}

type QuizDTO struct {
	ID           uint          `json:"id"`
	ModuleID     *uint         `json:"module_id,omitempty"`
	Title        string        `json:"title"`
	PassingScore int           `json:"passing_score"`
	TimeLimit    int           `json:"time_limit"`
	Questions    []QuestionDTO `json:"questions"`
}

type CourseDTO struct {
	ID            uint         `json:"id"`
	Title         string       `json:"title"`
	Description   string       `json:"description"`
	Price         float64      `json:"price"`
	IsPublished   bool         `json:"is_published"`
	TotalLessons  int          `json:"total_lessons"`
	TotalDuration int          `json:"total_duration"`
	Modules       []Module     `json:"modules"`
	Quizzes       []QuizDTO    `json:"quizzes"`
	Assignments   []Assignment `json:"assignments"`
}

type CourseSummary struct {
	ID            uint    `json:"id"`
	Title         string  `json:"title"`
	Description   string  `json:"description"`
	Price         float64 `json:"price"`
	TotalLessons  int     `json:"total_lessons"`
	TotalDuration int     `json:"total_duration"`
}

func (q Question) ToDTO(includeAnswer bool) QuestionDTO {
	options := make([]string, len(q.Options))
	copy(options, q.Options)

	dto := QuestionDTO{
		ID:      q.ID,
		Text:    q.Text,
		Options: options,
		Points:  q.Points,
	}
	if includeAnswer {
		answer := q.CorrectAnswer
		dto.CorrectAnswer = &answer
	}
	return dto
}

func (q Quiz) ToDTO(includeAnswers bool) QuizDTO {
	questions := make([]QuestionDTO, len(q.Questions))
	for i, question := range q.Questions {
		questions[i] = question.ToDTO(includeAnswers)
	}
	return QuizDTO{
		ID:           q.ID,
		ModuleID:     q.ModuleID,
		Title:        q.Title,
		PassingScore: q.PassingScore,
		TimeLimit:    q.TimeLimit,
		Questions:    questions,
	}
}

func (c Course) ToDTO(includeAnswers bool) CourseDTO {
	quizzes := make([]QuizDTO, len(c.Quizzes))
	for i, quiz := range c.Quizzes {
		quizzes[i] = quiz.ToDTO(includeAnswers)
	}
	return CourseDTO{
		ID:            c.ID,
		Title:         c.Title,
		Description:   c.Description,
		Price:         c.Price,
		IsPublished:   c.IsPublished,
		TotalLessons:  c.TotalLessons,
		TotalDuration: c.TotalDuration,
		Modules:       c.Modules,
		Quizzes:       quizzes,
		Assignments:   c.Assignments,
	}
}

func (c Course) Summary() CourseSummary {
	return CourseSummary{
		ID:            c.ID,
		Title:         c.Title,
		Description:   c.Description,
		Price:         c.Price,
		TotalLessons:  c.TotalLessons,
		TotalDuration: c.TotalDuration,
	}
}

type LessonCompletionRequest struct {
	ModuleID uint `json:"moduleId" validate:"required"`
	LessonID uint `json:"lessonId" validate:"required"`
}

type WatchProgressRequest struct {
	ModuleID        uint `json:"moduleId" validate:"required"`
	LessonID        uint `json:"lessonId" validate:"required"`
	WatchedDuration int  `json:"watchedDuration" validate:"gte=0"`
}

type AnswerInput struct {
	QuestionID     uint `json:"questionId" validate:"required"`
	SelectedOption *int `json:"selectedOption" validate:"required,gte=-1"`
}

type QuizSubmissionRequest struct {
	CourseID  uint          `json:"courseId" validate:"required"`
	QuizID    uint          `json:"quizId" validate:"required"`
	ModuleID  *uint         `json:"moduleId,omitempty"`
	Answers   []AnswerInput `json:"answers" validate:"dive"`
	StartedAt time.Time     `json:"startedAt" validate:"required"`
}

type QuizResult struct {
	AttemptID    uint     `json:"attemptId"`
	Score        int      `json:"score"`
	MaxScore     int      `json:"maxScore"`
	Percentage   int      `json:"percentage"`
	Passed       bool     `json:"passed"`
	PassingScore int      `json:"passingScore"`
	TimeSpent    int      `json:"timeSpent"`
	Answers      []Answer `json:"answers"`
}

type AttemptHistory struct {
	Attempts       []QuizAttempt `json:"attempts"`
	BestPercentage int           `json:"bestPercentage"`
	Passed         bool          `json:"passed"`
}

type AssignmentSubmitRequest struct {
	CourseID       uint           `json:"courseId" validate:"required"`
	AssignmentID   uint           `json:"assignmentId" validate:"required"`
	ModuleID       *uint          `json:"moduleId,omitempty"`
	SubmissionType SubmissionType `json:"submissionType" validate:"required,oneof=link text"`
	Content        string         `json:"content" validate:"required,max=20000"`
}

type GradeRequest struct {
	Grade    *float64 `json:"grade" validate:"required"`
	Feedback string   `json:"feedback" validate:"max=5000"`
}

type SubmissionDTO struct {
	AssignmentSubmission
	NeedsRegrade bool `json:"needs_regrade"`
}

func (s AssignmentSubmission) ToDTO() SubmissionDTO {
	return SubmissionDTO{AssignmentSubmission: s, NeedsRegrade: s.NeedsRegrade()}
}

type AddLessonRequest struct {
	Title    string `json:"title" validate:"required,max=200"`
	VideoURL string `json:"video_url" validate:"omitempty,url"`
	Duration int    `json:"duration" validate:"gte=0"`
	IsFree   bool   `json:"is_free"`
	Order    int    `json:"order"`
}
