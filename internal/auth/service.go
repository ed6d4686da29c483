// backend/internal/auth/service.go
package auth

import (
	"context"
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"
	"golang.org/x/crypto/bcrypt"

	"learning-system/internal/apperr"
	"learning-system/internal/models"
	"learning-system/pkg/logger"
)

type Service struct {
	repo      *Repository
	jwtSecret []byte
	tokenTTL  time.Duration
	log       *logger.Logger
}

func NewService(repo *Repository, jwtSecret string, tokenTTL time.Duration, baseLog *logger.Logger) *Service {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &Service{
		repo:      repo,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
		log:       baseLog.With("service", "AuthService"),
	}
}

func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		return "", apperr.Unauthorized("Invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		s.log.Info("login rejected", "username", username)
		return "", apperr.Unauthorized("Invalid credentials")
	}

	return s.IssueToken(user)
}

func (s *Service) IssueToken(user *models.User) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  user.ID,
		"username": user.Username,
		"role":     string(user.Role),
		"exp":      time.Now().Add(s.tokenTTL).Unix(),
	})
	return token.SignedString(s.jwtSecret)
}

// Register creates a student account. Admins are provisioned out of band.
func (s *Service) Register(ctx context.Context, user *models.User) error {
	user.Username = strings.TrimSpace(user.Username)
	user.Email = strings.TrimSpace(strings.ToLower(user.Email))
	if len(user.Password) < 8 {
		return apperr.Validation("password must be at least 8 characters")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user.Password = string(hashedPassword)
	user.Role = models.RoleStudent
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return err
	}
	s.log.Info("user registered", "user_id", user.ID, "username", user.Username)
	return nil
}
