package seed

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"learning-system/internal/models"
)

// SampleCourse builds the demo course: 3 modules of 3 lessons, one quiz with three
// 10-point questions (pass at 70%) and one assignment scored out of 100.
func SampleCourse() *models.Course {
	course := &models.Course{
		Title:       "Go for Backend Developers",
		Description: "Services, persistence and concurrency in Go.",
		Price:       49,
		IsPublished: true,
	}

	titles := [][]string{
		{"Tooling", "Packages and modules", "Testing basics"},
		{"Structs and interfaces", "Errors", "Generics"},
		{"Goroutines", "Channels", "Context"},
	}
	for mi, lessons := range titles {
		module := models.Module{
			Title: fmt.Sprintf("Module %d", mi+1),
			Order: mi + 1,
		}
		for li, title := range lessons {
			module.Lessons = append(module.Lessons, models.Lesson{
				Title:    title,
				Duration: 10 + li*5,
				IsFree:   mi == 0 && li == 0,
				Order:    li + 1,
			})
		}
		course.Modules = append(course.Modules, module)
	}

	course.Quizzes = []models.Quiz{{
		Title:        "Fundamentals check",
		PassingScore: 70,
		TimeLimit:    10,
		Questions: []models.Question{
			{Text: "Which keyword starts a goroutine?", Options: []string{"go", "async", "spawn"}, CorrectAnswer: 0, Points: 10},
			{Text: "What does a nil map read return?", Options: []string{"panic", "zero value"}, CorrectAnswer: 1, Points: 10},
			{Text: "Which package carries deadlines?", Options: []string{"time", "sync", "context"}, CorrectAnswer: 2, Points: 10},
		},
	}}

	course.Assignments = []models.Assignment{{
		Title:       "Build a URL shortener",
		Description: "Submit a repository link.",
		MaxScore:    100,
	}}

	course.RecomputeTotals()
	return course
}

type Result struct {
	Admin   *models.User
	Student *models.User
	Course  *models.Course
}

// Run inserts an admin, a student and the sample course. Existing rows are reused.
func Run(ctx context.Context, db *gorm.DB, adminPassword, studentPassword string) (*Result, error) {
	admin, err := ensureUser(ctx, db, "admin", "admin@example.com", adminPassword, models.RoleAdmin)
	if err != nil {
		return nil, err
	}
	student, err := ensureUser(ctx, db, "student", "student@example.com", studentPassword, models.RoleStudent)
	if err != nil {
		return nil, err
	}

	course := SampleCourse()
	var existing models.Course
	err = db.WithContext(ctx).
		Preload("Modules.Lessons").
		Preload("Quizzes.Questions").
		Preload("Assignments").
		Where("title = ?", course.Title).
		First(&existing).Error
	switch {
	case err == nil:
		course = &existing
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := db.WithContext(ctx).Create(course).Error; err != nil {
			return nil, fmt.Errorf("create course: %w", err)
		}
	default:
		return nil, fmt.Errorf("find course: %w", err)
	}

	return &Result{Admin: admin, Student: student, Course: course}, nil
}

func ensureUser(ctx context.Context, db *gorm.DB, username, email, password string, role models.Role) (*models.User, error) {
	var user models.User
	err := db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user = models.User{Username: username, Email: email, Password: string(hashed), Role: role}
	if err := db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, fmt.Errorf("create user %s: %w", username, err)
	}
	return &user, nil
}
