// backend/internal/models/course.go
package models

import (
	"time"

	"gorm.io/gorm"
)

type Course struct {
	ID            uint           `json:"id" gorm:"primaryKey"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `json:"-" gorm:"index"`
	Title         string         `json:"title" gorm:"not null"`
	Description   string         `json:"description"`
	Price         float64        `json:"price" gorm:"default:0"`
	IsPublished   bool           `json:"is_published" gorm:"default:false"`
	TotalLessons  int            `json:"total_lessons" gorm:"not null;default:0"`
	TotalDuration int            `json:"total_duration" gorm:"not null;default:0"` // minutes
	Modules       []Module       `json:"modules,omitempty" gorm:"foreignKey:CourseID"`
	Quizzes       []Quiz         `json:"quizzes,omitempty" gorm:"foreignKey:CourseID"`
	Assignments   []Assignment   `json:"assignments,omitempty" gorm:"foreignKey:CourseID"`
}

type Module struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	CourseID  uint      `json:"course_id" gorm:"index;not null"`
	Title     string    `json:"title" gorm:"not null"`
	Order     int       `json:"order" gorm:"column:position;not null;default:0"`
	Lessons   []Lesson  `json:"lessons,omitempty" gorm:"foreignKey:ModuleID"`
}

type Lesson struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	ModuleID  uint      `json:"module_id" gorm:"index;not null"`
	Title     string    `json:"title" gorm:"not null"`
	VideoURL  string    `json:"video_url"`
	Duration  int       `json:"duration" gorm:"not null;default:0"` // minutes
	IsFree    bool      `json:"is_free" gorm:"default:false"`
	Order     int       `json:"order" gorm:"column:position;not null;default:0"`
}

type Assignment struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CourseID    uint       `json:"course_id" gorm:"index;not null"`
	ModuleID    *uint      `json:"module_id,omitempty"`
	Title       string     `json:"title" gorm:"not null"`
	Description string     `json:"description"`
	MaxScore    int        `json:"max_score" gorm:"not null;default:100"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}

// RecomputeTotals refreshes the derived lesson count and duration from Modules.
func (c *Course) RecomputeTotals() {
	lessons, duration := 0, 0
	for _, m := range c.Modules {
		lessons += len(m.Lessons)
		for _, l := range m.Lessons {
			duration += l.Duration
		}
	}
	c.TotalLessons = lessons
	c.TotalDuration = duration
}

func (c *Course) FindModule(id uint) *Module {
	for i := range c.Modules {
		if c.Modules[i].ID == id {
			return &c.Modules[i]
		}
	}
	return nil
}

func (c *Course) FindQuiz(id uint) *Quiz {
	for i := range c.Quizzes {
		if c.Quizzes[i].ID == id {
			return &c.Quizzes[i]
		}
	}
	return nil
}

func (c *Course) FindAssignment(id uint) *Assignment {
	for i := range c.Assignments {
		if c.Assignments[i].ID == id {
			return &c.Assignments[i]
		}
	}
	return nil
}
