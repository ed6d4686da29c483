// backend/internal/models/quiz.go
package models

import (
	"time"

	"gorm.io/datatypes"
)

type Quiz struct {
	ID           uint       `json:"id" gorm:"primaryKey"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	CourseID     uint       `json:"course_id" gorm:"index;not null"`
	ModuleID     *uint      `json:"module_id,omitempty"`
	Title        string     `json:"title" gorm:"not null"`
	PassingScore int        `json:"passing_score" gorm:"not null;default:70"` // percent
	TimeLimit    int        `json:"time_limit" gorm:"not null;default:0"`     // minutes, 0 = none
	Questions    []Question `json:"questions,omitempty" gorm:"foreignKey:QuizID"`
}

type Question struct {
	ID            uint                        `json:"id" gorm:"primaryKey"`
	CreatedAt     time.Time                   `json:"created_at"`
	UpdatedAt     time.Time                   `json:"updated_at"`
	QuizID        uint                        `json:"quiz_id" gorm:"index;not null"`
	Text          string                      `json:"text" gorm:"not null"`
	Options       datatypes.JSONSlice[string] `json:"options"`
	CorrectAnswer int                         `json:"correct_answer" gorm:"not null;default:0"` // index into Options
	Points        int                         `json:"points" gorm:"not null;default:1"`
}

func (q *Quiz) FindQuestion(id uint) *Question {
	for i := range q.Questions {
		if q.Questions[i].ID == id {
			return &q.Questions[i]
		}
	}
	return nil
}

// Answer is one graded response inside a QuizAttempt.
type Answer struct {
	QuestionID     uint `json:"questionId"`
	SelectedOption int  `json:"selectedOption"`
	IsCorrect      bool `json:"isCorrect"`
	Points         int  `json:"points"`
}

// QuizAttempt is append-only; a row is written once per submission and never updated.
type QuizAttempt struct {
	ID           uint                        `json:"id" gorm:"primaryKey"`
	CreatedAt    time.Time                   `json:"created_at"`
	StudentID    uint                        `json:"student_id" gorm:"not null;index:idx_attempt_student_quiz"`
	CourseID     uint                        `json:"course_id" gorm:"not null;index"`
	QuizID       uint                        `json:"quiz_id" gorm:"not null;index:idx_attempt_student_quiz"`
	ModuleID     *uint                       `json:"module_id,omitempty"`
	Answers      datatypes.JSONSlice[Answer] `json:"answers"`
	Score        int                         `json:"score"`
	MaxScore     int                         `json:"max_score"`
	Percentage   int                         `json:"percentage"`
	PassingScore int                         `json:"passing_score"`
	Passed       bool                        `json:"passed"`
	StartedAt    time.Time                   `json:"started_at"`
	CompletedAt  time.Time                   `json:"completed_at"`
	TimeSpent    int                         `json:"time_spent"` // seconds
	Overtime     bool                        `json:"overtime"`
}
