// backend/internal/models/enrollment.go
package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type LessonProgress struct {
	LessonID        uint       `json:"lessonId"`
	Completed       bool       `json:"completed"`
	WatchedDuration int        `json:"watchedDuration"`
	CompletedAt     *time.Time `json:"completedAt,omitempty"`
}

type ModuleProgress struct {
	ModuleID  uint             `json:"moduleId"`
	Lessons   []LessonProgress `json:"lessons"`
	Completed bool             `json:"completed"`
}

// Enrollment is the per-student, per-course progress document. Version guards
// concurrent read-modify-write cycles.
type Enrollment struct {
	ID               uint                                `json:"id" gorm:"primaryKey"`
	CreatedAt        time.Time                           `json:"created_at"`
	UpdatedAt        time.Time                           `json:"updated_at"`
	DeletedAt        gorm.DeletedAt                      `json:"-" gorm:"index"`
	StudentID        uint                                `json:"student_id" gorm:"not null;uniqueIndex:idx_enrollment_student_course"`
	CourseID         uint                                `json:"course_id" gorm:"not null;uniqueIndex:idx_enrollment_student_course"`
	Progress         datatypes.JSONType[[]ModuleProgress] `json:"progress"`
	CompletedLessons int                                 `json:"completed_lessons" gorm:"not null;default:0"`
	TotalLessons     int                                 `json:"total_lessons" gorm:"not null;default:0"`
	OverallProgress  int                                 `json:"overall_progress" gorm:"not null;default:0"`
	IsCompleted      bool                                `json:"is_completed" gorm:"not null;default:false"`
	CompletedAt      *time.Time                          `json:"completed_at,omitempty"`
	LastAccessedAt   *time.Time                          `json:"last_accessed_at,omitempty"`
	Version          uint                                `json:"version" gorm:"not null;default:1"`
	Course           *Course                             `json:"course,omitempty" gorm:"foreignKey:CourseID"`
}

// Snapshot is the aggregate view returned after a progress update.
type Snapshot struct {
	CompletedLessons int  `json:"completedLessons"`
	TotalLessons     int  `json:"totalLessons"`
	OverallProgress  int  `json:"overallProgress"`
	IsCompleted      bool `json:"isCompleted"`
}

func (e *Enrollment) Snapshot() Snapshot {
	return Snapshot{
		CompletedLessons: e.CompletedLessons,
		TotalLessons:     e.TotalLessons,
		OverallProgress:  e.OverallProgress,
		IsCompleted:      e.IsCompleted,
	}
}
