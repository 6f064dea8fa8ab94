package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/lms-go/library-backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const testSecret = "test-secret"

func signToken(t *testing.T, claims *Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func serveAuth(t *testing.T, authHeader string, inner http.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("GET", "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	Auth(testSecret, discard())(inner).ServeHTTP(w, req)
	return w
}

func TestAuthAcceptsValidToken(t *testing.T) {
	userID := primitive.NewObjectID()
	token := signToken(t, &Claims{
		UserID: userID.Hex(),
		Email:  "admin@example.com",
		Role:   models.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	var gotID primitive.ObjectID
	var gotRole string
	w := serveAuth(t, "Bearer "+token, func(w http.ResponseWriter, r *http.Request) {
		gotID, _ = UserIDFromContext(r.Context())
		gotRole = RoleFromContext(r.Context())
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, userID, gotID)
	assert.Equal(t, models.RoleAdmin, gotRole)
}

func TestAuthRejectsMissingOrMalformedHeader(t *testing.T) {
	for _, header := range []string{"", "Bearer", "Basic abc", "garbage"} {
		w := serveAuth(t, header, func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("handler must not run")
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code, "header %q", header)
	}
}

func TestAuthRejectsExpiredToken(t *testing.T) {
	token := signToken(t, &Claims{
		UserID: primitive.NewObjectID().Hex(),
		Role:   models.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	})
	w := serveAuth(t, "Bearer "+token, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAdmin(t *testing.T) {
	run := func(role string) *httptest.ResponseRecorder {
		token := signToken(t, &Claims{
			UserID: primitive.NewObjectID().Hex(),
			Role:   role,
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		})
		req := httptest.NewRequest("DELETE", "/books/abc", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		handler := Auth(testSecret, discard())(
			RequireAdmin(discard())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNoContent)
			})))
		handler.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusNoContent, run(models.RoleAdmin).Code)
	assert.Equal(t, http.StatusUnauthorized, run(models.RoleStudent).Code)
	assert.Equal(t, http.StatusUnauthorized, run(models.RoleTeacher).Code)
}
