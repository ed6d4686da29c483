package testutil

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"learning-system/internal/models"
	"learning-system/internal/seed"
	"learning-system/pkg/database"
)

// NewTestDB returns a migrated, isolated in-memory SQLite database.
func NewTestDB(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := database.OpenSQLite("file:" + uuid.NewString() + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

// CreateUser inserts a user with a throwaway password hash.
func CreateUser(t testing.TB, db *gorm.DB, username string, role models.Role) *models.User {
	t.Helper()

	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "x",
		Role:     role,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return user
}

// CreateSampleCourse persists the 3x3 demo course with its quiz and assignment.
func CreateSampleCourse(t testing.TB, db *gorm.DB) *models.Course {
	t.Helper()

	course := seed.SampleCourse()
	if err := db.Create(course).Error; err != nil {
		t.Fatalf("create course: %v", err)
	}
	return course
}

type Message struct {
	UserID uint
	Type   string
	Data   interface{}
}

// RecordingNotifier captures realtime events instead of pushing them to sockets.
type RecordingNotifier struct {
	mu       sync.Mutex
	Messages []Message
}

func (n *RecordingNotifier) SendMessageToUser(userID uint, messageType string, data interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Messages = append(n.Messages, Message{UserID: userID, Type: messageType, Data: data})
}

// Types returns the recorded event types in send order.
func (n *RecordingNotifier) Types() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, len(n.Messages))
	for i, m := range n.Messages {
		out[i] = m.Type
	}
	return out
}
