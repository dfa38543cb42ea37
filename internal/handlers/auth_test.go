package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/detailing-desk/internal/auth"
	"github.com/ukydev/detailing-desk/internal/db"
	"github.com/ukydev/detailing-desk/internal/middleware"
	"github.com/ukydev/detailing-desk/internal/models"
)

// MockUserCollection is a mock implementation of UserCollection
type MockUserCollection struct {
	mock.Mock
}

func (m *MockUserCollection) InsertUser(ctx context.Context, user models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserCollection) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserCollection) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserCollection) UpdateLastLogin(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func newTestAuthService(t *testing.T) *auth.Service {
	t.Helper()
	authService, err := auth.NewService(auth.Config{Secret: "handlers-test", Expiry: time.Hour})
	require.NoError(t, err)
	return authService
}

func loginRequest(t *testing.T, email, password string) *http.Request {
	t.Helper()
	body, err := json.Marshal(models.LoginRequest{Email: email, Password: password})
	require.NoError(t, err)
	return httptest.NewRequest("POST", "/api/auth/login", bytes.NewReader(body))
}

func TestAuthHandler_Login(t *testing.T) {
	authService := newTestAuthService(t)
	hash, err := authService.HashPassword("secret123")
	require.NoError(t, err)
	staff := &models.User{ID: "u1", Email: "staff@example.com", PasswordHash: hash, Role: models.RoleStaff}

	t.Run("successful login", func(t *testing.T) {
		users := new(MockUserCollection)
		users.On("FindUserByEmail", mock.Anything, "staff@example.com").Return(staff, nil)
		users.On("UpdateLastLogin", mock.Anything, "u1").Return(nil)
		handler := NewAuthHandler(authService, users)

		w := httptest.NewRecorder()
		handler.Login(w, loginRequest(t, "staff@example.com", "secret123"))

		assert.Equal(t, http.StatusOK, w.Code)
		var response models.LoginResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.NotEmpty(t, response.Token)
		assert.Equal(t, "staff@example.com", response.User.Email)
		assert.NotContains(t, w.Body.String(), hash)
		users.AssertExpectations(t)
	})

	t.Run("last login failure does not block sign-in", func(t *testing.T) {
		users := new(MockUserCollection)
		users.On("FindUserByEmail", mock.Anything, "staff@example.com").Return(staff, nil)
		users.On("UpdateLastLogin", mock.Anything, "u1").Return(errors.New("write failed"))

		w := httptest.NewRecorder()
		NewAuthHandler(authService, users).Login(w, loginRequest(t, "staff@example.com", "secret123"))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	failures := []struct {
		name     string
		email    string
		password string
		setup    func(users *MockUserCollection)
		code     int
		message  string
	}{
		{
			name: "wrong password", email: "staff@example.com", password: "nope",
			setup: func(users *MockUserCollection) {
				users.On("FindUserByEmail", mock.Anything, "staff@example.com").Return(staff, nil)
			},
			code: http.StatusUnauthorized, message: "Incorrect password",
		},
		{
			name: "unknown user", email: "ghost@example.com", password: "x",
			setup: func(users *MockUserCollection) {
				users.On("FindUserByEmail", mock.Anything, "ghost@example.com").Return(nil, db.ErrNotFound)
			},
			code: http.StatusUnauthorized, message: "No user found with this email",
		},
		{
			name: "disabled account", email: "staff@example.com", password: "secret123",
			setup: func(users *MockUserCollection) {
				disabled := *staff
				disabled.Disabled = true
				users.On("FindUserByEmail", mock.Anything, "staff@example.com").Return(&disabled, nil)
			},
			code: http.StatusUnauthorized, message: "Account disabled",
		},
		{
			name: "malformed email", email: "staff", password: "x",
			setup: func(users *MockUserCollection) {},
			code:  http.StatusBadRequest, message: "Invalid email format",
		},
		{
			name: "lookup failure", email: "staff@example.com", password: "x",
			setup: func(users *MockUserCollection) {
				users.On("FindUserByEmail", mock.Anything, "staff@example.com").Return(nil, errors.New("connection reset"))
			},
			code: http.StatusInternalServerError, message: "Login failed. Please try again.",
		},
	}
	for _, tt := range failures {
		t.Run(tt.name, func(t *testing.T) {
			users := new(MockUserCollection)
			tt.setup(users)

			w := httptest.NewRecorder()
			NewAuthHandler(authService, users).Login(w, loginRequest(t, tt.email, tt.password))

			assert.Equal(t, tt.code, w.Code)
			assert.Equal(t, tt.message, strings.TrimSpace(w.Body.String()))
			users.AssertNotCalled(t, "UpdateLastLogin", mock.Anything, mock.Anything)
		})
	}

	t.Run("invalid json", func(t *testing.T) {
		w := httptest.NewRecorder()
		NewAuthHandler(authService, new(MockUserCollection)).Login(w, httptest.NewRequest("POST", "/api/auth/login", strings.NewReader("{")))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("missing fields", func(t *testing.T) {
		w := httptest.NewRecorder()
		NewAuthHandler(authService, new(MockUserCollection)).Login(w, loginRequest(t, "", ""))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("wrong method", func(t *testing.T) {
		w := httptest.NewRecorder()
		NewAuthHandler(authService, new(MockUserCollection)).Login(w, httptest.NewRequest("GET", "/api/auth/login", nil))
		assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	})
}

func withClaims(r *http.Request, claims *models.Claims) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), middleware.UserContextKey, claims))
}

func TestAuthHandler_Me(t *testing.T) {
	authService := newTestAuthService(t)
	users := new(MockUserCollection)
	users.On("FindUserByID", mock.Anything, "u1").Return(&models.User{ID: "u1", Email: "staff@example.com"}, nil)
	users.On("FindUserByID", mock.Anything, "gone").Return(nil, db.ErrNotFound)
	handler := NewAuthHandler(authService, users)

	w := httptest.NewRecorder()
	handler.Me(w, withClaims(httptest.NewRequest("GET", "/api/auth/me", nil), &models.Claims{UserID: "u1"}))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "staff@example.com")

	w = httptest.NewRecorder()
	handler.Me(w, withClaims(httptest.NewRequest("GET", "/api/auth/me", nil), &models.Claims{UserID: "gone"}))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	handler.Me(w, httptest.NewRequest("GET", "/api/auth/me", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_Logout(t *testing.T) {
	authService := newTestAuthService(t)
	token, err := authService.GenerateToken(&models.User{ID: "u1", Role: models.RoleStaff})
	require.NoError(t, err)
	claims, err := authService.ValidateToken(token)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	NewAuthHandler(authService, new(MockUserCollection)).Logout(w, withClaims(httptest.NewRequest("POST", "/api/auth/logout", nil), claims))
	assert.Equal(t, http.StatusOK, w.Code)

	_, err = authService.ValidateToken(token)
	assert.ErrorIs(t, err, auth.ErrRevokedToken)
}
