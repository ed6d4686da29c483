// backend/internal/server/router.go
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"gorm.io/gorm"

	"learning-system/internal/assignment"
	"learning-system/internal/auth"
	"learning-system/internal/catalog"
	"learning-system/internal/enrollment"
	"learning-system/internal/httpx"
	"learning-system/internal/models"
	"learning-system/internal/quiz"
	"learning-system/pkg/logger"
	"learning-system/pkg/websocket"
)

// Pinger is a dependency checked by /healthz.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Deps struct {
	DB             *gorm.DB
	Cache          Pinger
	Hub            *websocket.Hub
	JWTSecret      string
	AllowedOrigins []string
	Log            *logger.Logger

	Auth        *auth.Handler
	Catalog     *catalog.Handler
	Enrollments *enrollment.Handler
	Quizzes     *quiz.Handler
	Assignments *assignment.Handler
}

// NewRouter wires every route and wraps it in CORS, request ids and the access log.
func NewRouter(d Deps) http.Handler {
	router := mux.NewRouter()
	router.Use(recoverer(d.Log))

	router.HandleFunc("/healthz", health(d.DB, d.Cache)).Methods("GET")

	// Auth routes - no JWT required
	router.HandleFunc("/api/auth/register", d.Auth.Register).Methods("POST", "OPTIONS")
	router.HandleFunc("/api/auth/login", d.Auth.Login).Methods("POST", "OPTIONS")

	router.Handle("/ws", auth.JWTMiddleware(d.JWTSecret)(http.HandlerFunc(d.Hub.HandleWebSocket))).Methods("GET")

	api := router.PathPrefix("/api").Subrouter()
	api.Use(auth.JWTMiddleware(d.JWTSecret))

	api.HandleFunc("/courses", d.Catalog.ListCourses).Methods("GET")
	api.HandleFunc("/courses/{courseId:[0-9]+}", d.Catalog.GetCourse).Methods("GET")
	api.HandleFunc("/courses/{courseId:[0-9]+}/enroll", d.Enrollments.Enroll).Methods("POST", "OPTIONS")

	api.HandleFunc("/enrollments", d.Enrollments.ListMine).Methods("GET")
	api.HandleFunc("/enrollments/{enrollmentId:[0-9]+}", d.Enrollments.Get).Methods("GET")
	api.HandleFunc("/enrollments/{enrollmentId:[0-9]+}/progress", d.Enrollments.UpdateProgress).Methods("POST", "OPTIONS")
	api.HandleFunc("/enrollments/{enrollmentId:[0-9]+}/watch", d.Enrollments.UpdateWatch).Methods("POST", "OPTIONS")

	api.HandleFunc("/quizzes", d.Quizzes.SubmitAttempt).Methods("POST", "OPTIONS")
	api.HandleFunc("/quizzes/attempts", d.Quizzes.ListAttempts).Methods("GET")

	api.HandleFunc("/assignments", d.Assignments.Submit).Methods("POST", "OPTIONS")
	api.HandleFunc("/assignments", d.Assignments.ListMine).Methods("GET")

	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(auth.RequireRole(models.RoleAdmin))

	admin.HandleFunc("/courses", d.Catalog.CreateCourse).Methods("POST", "OPTIONS")
	admin.HandleFunc("/courses/{courseId:[0-9]+}/modules/{moduleId:[0-9]+}/lessons", d.Catalog.AddLesson).Methods("POST", "OPTIONS")
	admin.HandleFunc("/assignments", d.Assignments.ListForReview).Methods("GET")
	admin.HandleFunc("/assignments/{submissionId:[0-9]+}", d.Assignments.Grade).Methods("PATCH", "OPTIONS")

	corsMiddleware := cors.New(cors.Options{
		AllowedOrigins:   d.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Requested-With", requestIDHeader},
		ExposedHeaders:   []string{"Content-Length", requestIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	})

	return requestID(accessLog(d.Log)(corsMiddleware.Handler(router)))
}

func health(db *gorm.DB, cache Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := map[string]string{"database": "ok"}
		code := http.StatusOK

		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(ctx)
		}
		if err != nil {
			status["database"] = "unavailable"
			code = http.StatusServiceUnavailable
		}

		if cache != nil {
			status["cache"] = "ok"
			if err := cache.Ping(ctx); err != nil {
				status["cache"] = "unavailable"
			}
		}
		httpx.WriteJSON(w, code, status)
	}
}
