package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

const userIDKey contextKey = "user_id"

// UserClaims carries the authenticated user identity issued by the login
// service. Only the subject matters here; session management itself lives
// outside this service.
type UserClaims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
}

// ParseToken validates a signed token and returns the user ID it carries.
// Shared by the Authorization-header middleware and the websocket handshake,
// which receives the token as a query parameter.
func ParseToken(secret, tokenString string) (string, error) {
	claims := &UserClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(_ *jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", err
	}
	if !token.Valid || claims.UserID == "" {
		return "", jwt.ErrTokenUnverifiable
	}
	return claims.UserID, nil
}

// Auth validates the Bearer token and stores the caller's user ID on the
// request context. Requests without a valid token get 401.
func Auth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, found := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !found {
				http.Error(w, `{"error":"missing bearer token"}`, http.StatusUnauthorized)
				return
			}

			userID, err := ParseToken(secret, tokenString)
			if err != nil {
				http.Error(w, `{"error":"invalid token"}`, http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserID retrieves the authenticated user ID stored by Auth.
// Returns an empty string if the middleware was not applied.
func GetUserID(ctx context.Context) string {
	v, _ := ctx.Value(userIDKey).(string)
	return v
}
