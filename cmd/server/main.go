package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"learning-system/internal/assignment"
	"learning-system/internal/auth"
	"learning-system/internal/catalog"
	"learning-system/internal/config"
	"learning-system/internal/enrollment"
	"learning-system/internal/quiz"
	"learning-system/internal/server"
	"learning-system/pkg/cache"
	"learning-system/pkg/database"
	"learning-system/pkg/logger"
	"learning-system/pkg/websocket"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	mode := "development"
	if cfg.IsProduction() {
		mode = "production"
	}
	log, err := logger.New(mode)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	// Initialize database
	db, err := database.Open(cfg.Database)
	if err != nil {
		log.Fatal("failed to connect to database", "driver", cfg.Database.Driver, "error", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal("failed to migrate database", "error", err)
	}

	// Redis is optional; without it course reads go straight to the database.
	var courseCache catalog.Cache
	var cachePinger server.Pinger
	if cfg.Redis.Addr != "" {
		redisCache := cache.NewRedisCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.CourseTTL)
		defer redisCache.Close()
		if err := redisCache.Ping(context.Background()); err != nil {
			log.Warn("redis unreachable, course reads will fall through to the database", "addr", cfg.Redis.Addr, "error", err)
		}
		courseCache = redisCache
		cachePinger = redisCache
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize WebSocket hub
	wsHub := websocket.NewHub(cfg.CORSAllowedOrigins, log)
	go wsHub.Run(ctx)

	// Initialize repositories
	authRepo := auth.NewRepository(db, log)
	catalogRepo := catalog.NewRepository(db, log)
	enrollmentRepo := enrollment.NewRepository(db, log)
	quizRepo := quiz.NewRepository(db, log)
	assignmentRepo := assignment.NewRepository(db, log)

	// Initialize services
	authService := auth.NewService(authRepo, cfg.JWTSecret, cfg.JWTTTL, log)
	catalogService := catalog.NewService(catalogRepo, courseCache, log)
	enrollmentService := enrollment.NewService(enrollmentRepo, catalogService, wsHub, log)
	quizService := quiz.NewService(quizRepo, catalogService, enrollmentService, wsHub, cfg.QuizTimeGrace, log)
	assignmentService := assignment.NewService(assignmentRepo, catalogService, enrollmentService, wsHub, log)

	handler := server.NewRouter(server.Deps{
		DB:             db,
		Cache:          cachePinger,
		Hub:            wsHub,
		JWTSecret:      cfg.JWTSecret,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		Log:            log,
		Auth:           auth.NewHandler(authService),
		Catalog:        catalog.NewHandler(catalogService),
		Enrollments:    enrollment.NewHandler(enrollmentService),
		Quizzes:        quiz.NewHandler(quizService),
		Assignments:    assignment.NewHandler(assignmentService),
	})

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("server starting", "addr", cfg.HTTPAddr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("failed to start server", "error", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", "error", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}

	log.Info("server shutdown gracefully")
}
