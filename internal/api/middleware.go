package api

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"relogio-be/internal/models"
)

// UserContextKey keys the authenticated user in the request context.
var UserContextKey = &contextKey{"User"}

type contextKey struct {
	name string
}

const tokenLifetime = 7 * 24 * time.Hour

// issueToken signs a session token for the given user.
func issueToken(secret string, user models.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id":  user.ID,
		"is_admin": user.IsAdmin,
		"exp":      time.Now().Add(tokenLifetime).Unix(),
		"iat":      time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// parseToken validates a session token and returns the user ID it carries.
func parseToken(secret, tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return "", err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("invalid token claims")
	}
	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return "", fmt.Errorf("token has no user_id claim")
	}
	return userID, nil
}

// bearerToken extracts the session token from the Authorization header, or
// from the token query parameter for websocket clients that cannot set
// headers.
func bearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return r.URL.Query().Get("token")
}

// authMiddleware validates the session token and loads the full user record
// into the request context.
func (s *server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString := bearerToken(r)
		if tokenString == "" {
			writeJSONError(w, http.StatusUnauthorized, "Missing session token")
			return
		}

		userID, err := parseToken(s.Config.JWTSecret, tokenString)
		if err != nil {
			log.Printf("authMiddleware: invalid token: %v", err)
			writeJSONError(w, http.StatusUnauthorized, "Invalid or expired session token")
			return
		}

		user, err := s.Store.GetUserByID(userID)
		if err != nil {
			log.Printf("authMiddleware: user %s not found: %v", userID, err)
			writeJSONError(w, http.StatusUnauthorized, "Unknown account")
			return
		}

		ctx := context.WithValue(r.Context(), UserContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// adminMiddleware rejects requests whose user is not an administrator.
func (s *server) adminMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userFromContext(r)
		if !ok {
			writeJSONError(w, http.StatusForbidden, "User data not found in context")
			return
		}
		if !user.IsAdmin {
			writeJSONError(w, http.StatusForbidden, "Administrator access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func userFromContext(r *http.Request) (models.User, bool) {
	user, ok := r.Context().Value(UserContextKey).(models.User)
	return user, ok
}
