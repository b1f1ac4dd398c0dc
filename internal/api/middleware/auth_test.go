package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/nemuzard/notesys/internal/api/middleware"
)

const secret = "test-secret"

func signToken(t *testing.T, userID string, secret string, expires time.Time) string {
	t.Helper()
	claims := middleware.UserClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expires),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		UserID: userID,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatal(err)
	}
	return signed
}

func TestAuth_ValidToken(t *testing.T) {
	var gotUserID string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID = middleware.GetUserID(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "alice", secret, time.Now().Add(time.Hour)))
	rec := httptest.NewRecorder()

	middleware.Auth(secret)(next).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotUserID != "alice" {
		t.Fatalf("expected user_id alice on context, got %q", gotUserID)
	}
}

func TestAuth_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Basic abc123"},
		{"garbage token", "Bearer not-a-token"},
		{"wrong secret", "Bearer " + signToken(t, "alice", "other-secret", time.Now().Add(time.Hour))},
		{"expired", "Bearer " + signToken(t, "alice", secret, time.Now().Add(-time.Hour))},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			called := false
			next := http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true })

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()

			middleware.Auth(secret)(next).ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rec.Code)
			}
			if called {
				t.Fatal("handler must not run without a valid token")
			}
		})
	}
}

func TestParseToken_EmptyUserID(t *testing.T) {
	token := signToken(t, "", secret, time.Now().Add(time.Hour))
	if _, err := middleware.ParseToken(secret, token); err == nil {
		t.Fatal("expected an error for a token without a user id")
	}
}
