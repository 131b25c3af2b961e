package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"performer-marketplace/internal/core/domain"
)

// MockAccountService is a testify mock of the AccountService port.
type MockAccountService struct {
	mock.Mock
}

func (m *MockAccountService) Register(ctx context.Context, username, phone, password string) (*domain.User, error) {
	args := m.Called(ctx, username, phone, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockAccountService) Login(ctx context.Context, username, password string) (*domain.User, error) {
	args := m.Called(ctx, username, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func TestAuthHandler_Register_Success(t *testing.T) {
	svc := new(MockAccountService)
	h := NewAuthHandler(svc, testSecret, testingLogger())

	user := &domain.User{
		ID:       uuid.New(),
		Username: "alice",
		Phone:    "+61400000001",
		Role:     domain.RoleClient,
	}
	svc.On("Register", mock.Anything, "alice", "+61400000001", "s3cret-pass").Return(user, nil)

	body, _ := json.Marshal(registerRequest{Username: "alice", Phone: "+61400000001", Password: "s3cret-pass"})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/register", bytes.NewReader(body))
	h.Register(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp userResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "client", resp.Role)
	svc.AssertExpectations(t)
}

func TestAuthHandler_Register_Validation(t *testing.T) {
	svc := new(MockAccountService)
	h := NewAuthHandler(svc, testSecret, testingLogger())

	body := []byte(`{"username":"al","phone":"","password":"short"}`)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/register", bytes.NewReader(body))
	h.Register(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Fields, 3)
	svc.AssertNotCalled(t, "Register", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAuthHandler_Register_DuplicateUsername(t *testing.T) {
	svc := new(MockAccountService)
	h := NewAuthHandler(svc, testSecret, testingLogger())

	svc.On("Register", mock.Anything, "alice", "+61400000001", "s3cret-pass").Return(nil, domain.ErrUsernameTaken)

	body, _ := json.Marshal(registerRequest{Username: "alice", Phone: "+61400000001", Password: "s3cret-pass"})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/register", bytes.NewReader(body))
	h.Register(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestAuthHandler_Login_IssuesUsableToken(t *testing.T) {
	svc := new(MockAccountService)
	h := NewAuthHandler(svc, testSecret, testingLogger())

	user := &domain.User{ID: uuid.New(), Username: "alice", Role: domain.RoleClient}
	svc.On("Login", mock.Anything, "alice", "s3cret-pass").Return(user, nil)

	body, _ := json.Marshal(loginRequest{Username: "alice", Password: "s3cret-pass"})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader(body))
	h.Login(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp loginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)

	// The token must round-trip through the bearer middleware.
	token, err := jwt.Parse(resp.Token, func(*jwt.Token) (interface{}, error) { return testSecret, nil })
	require.NoError(t, err)
	claims := token.Claims.(jwt.MapClaims)
	assert.Equal(t, user.ID.String(), claims["sub"])
	assert.Equal(t, "client", claims["role"])
	exp, _ := claims.GetExpirationTime()
	assert.True(t, exp.After(time.Now()))
}

func TestAuthHandler_Login_BadCredentials(t *testing.T) {
	svc := new(MockAccountService)
	h := NewAuthHandler(svc, testSecret, testingLogger())

	svc.On("Login", mock.Anything, "alice", "wrong").Return(nil, domain.ErrInvalidCredentials)

	body, _ := json.Marshal(loginRequest{Username: "alice", Password: "wrong"})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader(body))
	h.Login(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
