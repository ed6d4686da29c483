package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"learning-system/internal/assignment"
	"learning-system/internal/auth"
	"learning-system/internal/catalog"
	"learning-system/internal/enrollment"
	"learning-system/internal/models"
	"learning-system/internal/quiz"
	"learning-system/internal/seed"
	"learning-system/internal/testutil"
	"learning-system/pkg/logger"
	"learning-system/pkg/websocket"
)

const testSecret = "test-secret"

type testServer struct {
	handler http.Handler
	seed    *seed.Result
	auth    *auth.Service
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db := testutil.NewTestDB(t)
	log := logger.NewNop()
	seeded, err := seed.Run(context.Background(), db, "admin-password", "student-password")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	hub := websocket.NewHub(nil, log)
	go hub.Run(ctx)

	authService := auth.NewService(auth.NewRepository(db, log), testSecret, time.Hour, log)
	courses := catalog.NewService(catalog.NewRepository(db, log), nil, log)
	enrollments := enrollment.NewService(enrollment.NewRepository(db, log), courses, hub, log)
	quizzes := quiz.NewService(quiz.NewRepository(db, log), courses, enrollments, hub, 30*time.Second, log)
	assignments := assignment.NewService(assignment.NewRepository(db, log), courses, enrollments, hub, log)

	handler := NewRouter(Deps{
		DB:             db,
		Hub:            hub,
		JWTSecret:      testSecret,
		AllowedOrigins: []string{"http://localhost:3000"},
		Log:            log,
		Auth:           auth.NewHandler(authService),
		Catalog:        catalog.NewHandler(courses),
		Enrollments:    enrollment.NewHandler(enrollments),
		Quizzes:        quiz.NewHandler(quizzes),
		Assignments:    assignment.NewHandler(assignments),
	})
	return &testServer{handler: handler, seed: seeded, auth: authService}
}

func (s *testServer) token(t *testing.T, user *models.User) string {
	t.Helper()
	token, err := s.auth.IssueToken(user)
	require.NoError(t, err)
	return token
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dst), rec.Body.String())
}

func TestHealthzAndRequestID(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, rec.Header().Get(requestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	rec = httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	require.Equal(t, "abc-123", rec.Header().Get(requestIDHeader))
}

func TestLoginIssuesUsableToken(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"username": "student", "password": "student-password"})
	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	decode(t, rec, &body)

	rec = s.do(t, http.MethodGet, "/api/courses", body["token"], nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var courses []models.CourseSummary
	decode(t, rec, &courses)
	require.Len(t, courses, 1)
	require.Equal(t, 9, courses[0].TotalLessons)

	rec = s.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"username": "student", "password": "wrong"})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthorizationFailures(t *testing.T) {
	s := newTestServer(t)
	student := s.token(t, s.seed.Student)

	rec := s.do(t, http.MethodGet, "/api/enrollments", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/enrollments", "not-a-token", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/admin/assignments", student, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCourseAnswersHiddenFromStudents(t *testing.T) {
	s := newTestServer(t)
	path := fmt.Sprintf("/api/courses/%d", s.seed.Course.ID)

	rec := s.do(t, http.MethodGet, path, s.token(t, s.seed.Student), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var course models.CourseDTO
	decode(t, rec, &course)
	require.Nil(t, course.Quizzes[0].Questions[0].CorrectAnswer)

	rec = s.do(t, http.MethodGet, path, s.token(t, s.seed.Admin), nil)
	decode(t, rec, &course)
	require.NotNil(t, course.Quizzes[0].Questions[0].CorrectAnswer)
}

func TestLearningFlow(t *testing.T) {
	s := newTestServer(t)
	student := s.token(t, s.seed.Student)
	admin := s.token(t, s.seed.Admin)
	course := s.seed.Course

	rec := s.do(t, http.MethodPost, fmt.Sprintf("/api/courses/%d/enroll", course.ID), student, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	var e models.Enrollment
	decode(t, rec, &e)

	rec = s.do(t, http.MethodPost, fmt.Sprintf("/api/courses/%d/enroll", course.ID), student, nil)
	require.Equal(t, http.StatusConflict, rec.Code)

	progressPath := fmt.Sprintf("/api/enrollments/%d/progress", e.ID)
	var snap models.Snapshot
	for _, lesson := range course.Modules[0].Lessons[:2] {
		rec = s.do(t, http.MethodPost, progressPath, student, models.LessonCompletionRequest{ModuleID: course.Modules[0].ID, LessonID: lesson.ID})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		decode(t, rec, &snap)
	}
	require.Equal(t, models.Snapshot{CompletedLessons: 2, TotalLessons: 9, OverallProgress: 22}, snap)

	rec = s.do(t, http.MethodPost, progressPath, student, map[string]uint{"moduleId": course.Modules[0].ID})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/enrollments/9999/progress", student, models.LessonCompletionRequest{ModuleID: 1, LessonID: 1})
	require.Equal(t, http.StatusNotFound, rec.Code)

	check := course.Quizzes[0]
	submission := map[string]interface{}{
		"courseId":  course.ID,
		"quizId":    check.ID,
		"startedAt": time.Now().Add(-2 * time.Minute),
		"answers": []map[string]interface{}{
			{"questionId": check.Questions[0].ID, "selectedOption": 0},
			{"questionId": check.Questions[1].ID, "selectedOption": 1},
			{"questionId": check.Questions[2].ID, "selectedOption": -1},
		},
	}
	rec = s.do(t, http.MethodPost, "/api/quizzes", student, submission)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var result models.QuizResult
	decode(t, rec, &result)
	require.Equal(t, 20, result.Score)
	require.Equal(t, 67, result.Percentage)
	require.False(t, result.Passed)

	rec = s.do(t, http.MethodPost, "/api/assignments", student, map[string]interface{}{
		"courseId":       course.ID,
		"assignmentId":   course.Assignments[0].ID,
		"submissionType": "link",
		"content":        "https://github.com/student/shortener",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var sub models.SubmissionDTO
	decode(t, rec, &sub)
	require.Equal(t, models.SubmissionPending, sub.Status)

	gradePath := fmt.Sprintf("/api/admin/assignments/%d", sub.ID)
	rec = s.do(t, http.MethodPatch, gradePath, admin, map[string]interface{}{"grade": 150})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "Grade must be between 0 and 100")

	rec = s.do(t, http.MethodPatch, gradePath, admin, map[string]interface{}{"grade": 90, "feedback": "Nice work"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decode(t, rec, &sub)
	require.Equal(t, models.SubmissionGraded, sub.Status)
	require.Equal(t, 90.0, *sub.Grade)
}
