// backend/internal/auth/middleware.go
package auth

import (
	"net/http"
	"strings"

	"github.com/dgrijalva/jwt-go"

	"learning-system/internal/apperr"
	"learning-system/internal/models"
)

// JWTMiddleware verifies the bearer token (or ?token= for websocket upgrades) and
// stores the caller's Identity in the request context.
func JWTMiddleware(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			raw, err := tokenFromRequest(r)
			if err != nil {
				apperr.Write(w, err)
				return
			}

			identity, err := ParseToken(raw, jwtSecret)
			if err != nil {
				apperr.Write(w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
		})
	}
}

// RequireRole rejects authenticated callers whose role does not match.
func RequireRole(role models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := IdentityFromContext(r.Context())
			if !ok {
				apperr.Write(w, apperr.Unauthorized("authentication required"))
				return
			}
			if identity.Role != role {
				apperr.Write(w, apperr.Forbidden("%s role required", role))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func tokenFromRequest(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		if q := r.URL.Query().Get("token"); q != "" {
			return q, nil
		}
		return "", apperr.Unauthorized("Authorization header required")
	}

	bearerToken := strings.Split(authHeader, " ")
	if len(bearerToken) != 2 || bearerToken[0] != "Bearer" {
		return "", apperr.Unauthorized("Invalid token format")
	}
	return bearerToken[1], nil
}

func ParseToken(raw, jwtSecret string) (Identity, error) {
	token, err := jwt.ParseWithClaims(raw, &jwt.MapClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, apperr.Unauthorized("unexpected signing method")
		}
		return []byte(jwtSecret), nil
	})
	if err != nil {
		return Identity{}, apperr.Unauthorized("Invalid token")
	}

	claims, ok := token.Claims.(*jwt.MapClaims)
	if !ok || !token.Valid {
		return Identity{}, apperr.Unauthorized("Invalid token claims")
	}

	userID, ok := (*claims)["user_id"].(float64)
	if !ok || userID <= 0 {
		return Identity{}, apperr.Unauthorized("Invalid user ID in token")
	}

	role, _ := (*claims)["role"].(string)
	if role == "" {
		role = string(models.RoleStudent)
	}

	return Identity{UserID: uint(userID), Role: models.Role(role)}, nil
}
