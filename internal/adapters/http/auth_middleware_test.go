package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"performer-marketplace/internal/auth"
	"performer-marketplace/internal/core/domain"
)

var testSecret = []byte("test-secret")

func signToken(t *testing.T, secret []byte, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	require.NoError(t, err)
	return token
}

func protectedEcho(t *testing.T) (http.Handler, *auth.Identity) {
	t.Helper()
	var captured auth.Identity
	echo := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = identityFrom(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	return JWTMiddleware(testSecret, testingLogger())(echo), &captured
}

func TestJWTMiddleware_ResolvesIdentity(t *testing.T) {
	handler, captured := protectedEcho(t)

	userID := uuid.New()
	token := signToken(t, testSecret, jwt.MapClaims{
		"sub":  userID.String(),
		"role": "performer",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, userID, captured.UserID)
	assert.Equal(t, domain.RolePerformer, captured.Role)
}

func TestJWTMiddleware_Rejections(t *testing.T) {
	handler, _ := protectedEcho(t)

	validClaims := jwt.MapClaims{
		"sub":  uuid.NewString(),
		"role": "client",
		"exp":  time.Now().Add(time.Hour).Unix(),
	}

	cases := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Basic abc123"},
		{"garbage token", "Bearer not.a.token"},
		{"wrong secret", "Bearer " + signToken(t, []byte("other-secret"), validClaims)},
		{"expired", "Bearer " + signToken(t, testSecret, jwt.MapClaims{
			"sub":  uuid.NewString(),
			"role": "client",
			"exp":  time.Now().Add(-time.Hour).Unix(),
		})},
		{"unknown role", "Bearer " + signToken(t, testSecret, jwt.MapClaims{
			"sub":  uuid.NewString(),
			"role": "superuser",
			"exp":  time.Now().Add(time.Hour).Unix(),
		})},
		{"sub not a uuid", "Bearer " + signToken(t, testSecret, jwt.MapClaims{
			"sub":  "42",
			"role": "client",
			"exp":  time.Now().Add(time.Hour).Unix(),
		})},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			handler.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestIdentityFrom_MissingIsZero(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	ident := identityFrom(req.Context())
	assert.True(t, ident.IsZero())
}
