package user

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-user-admin-api/app/observability/metrics"
	"github.com/FACorreiaa/go-user-admin-api/config"
	"github.com/FACorreiaa/go-user-admin-api/internal/api"
	"github.com/FACorreiaa/go-user-admin-api/internal/api/auth"
)

// MockUserService is a mock implementation of the UserService interface
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Register(ctx context.Context, username, email, password string) (*api.User, error) {
	args := m.Called(ctx, username, email, password)
	if u := args.Get(0); u != nil {
		return u.(*api.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserService) GetUser(ctx context.Context, userID int64) (*api.User, error) {
	args := m.Called(ctx, userID)
	if u := args.Get(0); u != nil {
		return u.(*api.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserService) ListUsers(ctx context.Context) ([]api.User, error) {
	args := m.Called(ctx)
	if u := args.Get(0); u != nil {
		return u.([]api.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserService) DeleteUser(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockUserService) EnsureAdmin(ctx context.Context, cfg config.AdminConfig) error {
	args := m.Called(ctx, cfg)
	return args.Error(0)
}

func adminClaims() *auth.Claims {
	return &auth.Claims{UserID: 1, Role: api.RoleAdmin}
}

func userClaims(id int64) *auth.Claims {
	return &auth.Claims{UserID: id, Role: api.RoleUser}
}

// authedRequest builds a request carrying the given claims and optional {id}
// route parameter, the way the Authenticate middleware and chi would.
func authedRequest(method, target string, body []byte, claims *auth.Claims, id int64) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	ctx := context.WithValue(req.Context(), auth.ClaimsKey, claims)
	if id > 0 {
		routeCtx := chi.NewRouteContext()
		routeCtx.URLParams.Add("id", strconv.FormatInt(id, 10))
		ctx = context.WithValue(ctx, chi.RouteCtxKey, routeCtx)
	}
	return req.WithContext(ctx)
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestHandlerImpl_Register(t *testing.T) {
	metrics.InitAppMetrics()
	logger := slog.Default()

	registerBody := func(username, email, password string) []byte {
		b, _ := json.Marshal(map[string]string{
			"username": username,
			"email":    email,
			"password": password,
		})
		return b
	}

	t.Run("Success", func(t *testing.T) {
		mockService := new(MockUserService)
		handler := NewHandlerImpl(mockService, logger)

		mockService.On("Register", mock.Anything, "pat", "pat@example.com", "hunter22").
			Return(&api.User{ID: 7, Username: "pat", Email: "pat@example.com", Role: api.RoleUser}, nil).Once()

		w := httptest.NewRecorder()
		handler.Register(w, authedRequest(http.MethodPost, "/register",
			registerBody("pat", "pat@example.com", "hunter22"), adminClaims(), 0))

		assert.Equal(t, http.StatusCreated, w.Code)
		var resp map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, float64(7), resp["id"])
		assert.Equal(t, "pat", resp["username"])
		assert.NotContains(t, resp, "password_hash")
		mockService.AssertExpectations(t)
	})

	t.Run("ForbiddenForOrdinaryUser", func(t *testing.T) {
		mockService := new(MockUserService)
		handler := NewHandlerImpl(mockService, logger)

		w := httptest.NewRecorder()
		handler.Register(w, authedRequest(http.MethodPost, "/register",
			registerBody("pat", "pat@example.com", "hunter22"), userClaims(7), 0))

		assert.Equal(t, http.StatusForbidden, w.Code)
		body := decodeError(t, w)
		assert.Equal(t, "You are not allowed to view this resource", body["description"])
		mockService.AssertNotCalled(t, "Register", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("MissingClaims", func(t *testing.T) {
		mockService := new(MockUserService)
		handler := NewHandlerImpl(mockService, logger)

		req := httptest.NewRequest(http.MethodPost, "/register",
			bytes.NewBuffer(registerBody("pat", "pat@example.com", "hunter22")))
		w := httptest.NewRecorder()
		handler.Register(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		body := decodeError(t, w)
		assert.Equal(t, "Missing Authorization Header", body["description"])
	})

	t.Run("EmptyBody", func(t *testing.T) {
		mockService := new(MockUserService)
		handler := NewHandlerImpl(mockService, logger)

		w := httptest.NewRecorder()
		handler.Register(w, authedRequest(http.MethodPost, "/register", nil, adminClaims(), 0))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		body := decodeError(t, w)
		assert.Equal(t, "Missing JSON in request", body["description"])
	})

	t.Run("MissingFields", func(t *testing.T) {
		tests := []struct {
			name        string
			body        []byte
			description string
		}{
			{"Username", registerBody("", "pat@example.com", "hunter22"), "Missing username parameter"},
			{"Password", registerBody("pat", "pat@example.com", ""), "Missing password parameter"},
			{"Email", registerBody("pat", "", "hunter22"), "Missing email parameter"},
		}
		for _, tc := range tests {
			t.Run(tc.name, func(t *testing.T) {
				mockService := new(MockUserService)
				handler := NewHandlerImpl(mockService, logger)

				w := httptest.NewRecorder()
				handler.Register(w, authedRequest(http.MethodPost, "/register", tc.body, adminClaims(), 0))

				assert.Equal(t, http.StatusBadRequest, w.Code)
				body := decodeError(t, w)
				assert.Equal(t, tc.description, body["description"])
			})
		}
	})

	t.Run("Conflicts", func(t *testing.T) {
		tests := []struct {
			name        string
			serviceErr  error
			status      int
			description string
		}{
			{"UsernameTaken", ErrUsernameTaken, http.StatusConflict, "Username already registered"},
			{"EmailTaken", ErrEmailTaken, http.StatusConflict, "Email already registered"},
			{"InvalidEmail", ErrInvalidEmail, http.StatusBadRequest, "Not a valid email address."},
		}
		for _, tc := range tests {
			t.Run(tc.name, func(t *testing.T) {
				mockService := new(MockUserService)
				handler := NewHandlerImpl(mockService, logger)

				mockService.On("Register", mock.Anything, "pat", "pat@example.com", "hunter22").
					Return(nil, tc.serviceErr).Once()

				w := httptest.NewRecorder()
				handler.Register(w, authedRequest(http.MethodPost, "/register",
					registerBody("pat", "pat@example.com", "hunter22"), adminClaims(), 0))

				assert.Equal(t, tc.status, w.Code)
				body := decodeError(t, w)
				assert.Equal(t, tc.description, body["description"])
				mockService.AssertExpectations(t)
			})
		}
	})
}

func TestHandlerImpl_ListUsers(t *testing.T) {
	metrics.InitAppMetrics()
	logger := slog.Default()

	t.Run("Success", func(t *testing.T) {
		mockService := new(MockUserService)
		handler := NewHandlerImpl(mockService, logger)

		mockService.On("ListUsers", mock.Anything).
			Return([]api.User{
				{ID: 1, Username: "admin", Email: "admin@email.com", Role: api.RoleAdmin, PasswordHash: "secret"},
				{ID: 7, Username: "pat", Email: "pat@example.com", Role: api.RoleUser, PasswordHash: "secret"},
			}, nil).Once()

		w := httptest.NewRecorder()
		handler.ListUsers(w, authedRequest(http.MethodGet, "/users", nil, adminClaims(), 0))

		assert.Equal(t, http.StatusOK, w.Code)
		var resp []map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Len(t, resp, 2)
		assert.Equal(t, "admin", resp[0]["username"])
		assert.Equal(t, "pat", resp[1]["username"])
		for _, u := range resp {
			assert.NotContains(t, u, "password_hash")
		}
		mockService.AssertExpectations(t)
	})

	t.Run("ForbiddenForOrdinaryUser", func(t *testing.T) {
		mockService := new(MockUserService)
		handler := NewHandlerImpl(mockService, logger)

		w := httptest.NewRecorder()
		handler.ListUsers(w, authedRequest(http.MethodGet, "/users", nil, userClaims(7), 0))

		assert.Equal(t, http.StatusForbidden, w.Code)
		body := decodeError(t, w)
		assert.Equal(t, "You are not allowed to view this resource", body["description"])
		mockService.AssertNotCalled(t, "ListUsers", mock.Anything)
	})
}

func TestHandlerImpl_GetUser(t *testing.T) {
	metrics.InitAppMetrics()
	logger := slog.Default()

	t.Run("SelfSuccess", func(t *testing.T) {
		mockService := new(MockUserService)
		handler := NewHandlerImpl(mockService, logger)

		mockService.On("GetUser", mock.Anything, int64(7)).
			Return(&api.User{ID: 7, Username: "pat", Email: "pat@example.com", Role: api.RoleUser}, nil).Once()

		w := httptest.NewRecorder()
		handler.GetUser(w, authedRequest(http.MethodGet, "/users/7", nil, userClaims(7), 7))

		assert.Equal(t, http.StatusOK, w.Code)
		var resp map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, float64(7), resp["id"])
		assert.NotContains(t, resp, "password_hash")
		mockService.AssertExpectations(t)
	})

	t.Run("ForbiddenForOtherUser", func(t *testing.T) {
		mockService := new(MockUserService)
		handler := NewHandlerImpl(mockService, logger)

		w := httptest.NewRecorder()
		handler.GetUser(w, authedRequest(http.MethodGet, "/users/1", nil, userClaims(7), 1))

		assert.Equal(t, http.StatusForbidden, w.Code)
		body := decodeError(t, w)
		assert.Equal(t, "You are not allowed to view this resource", body["description"])
		mockService.AssertNotCalled(t, "GetUser", mock.Anything, mock.Anything)
	})

	t.Run("AdminReadsAnyUser", func(t *testing.T) {
		mockService := new(MockUserService)
		handler := NewHandlerImpl(mockService, logger)

		mockService.On("GetUser", mock.Anything, int64(7)).
			Return(&api.User{ID: 7, Username: "pat", Email: "pat@example.com", Role: api.RoleUser}, nil).Once()

		w := httptest.NewRecorder()
		handler.GetUser(w, authedRequest(http.MethodGet, "/users/7", nil, adminClaims(), 7))

		assert.Equal(t, http.StatusOK, w.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("NotFound", func(t *testing.T) {
		mockService := new(MockUserService)
		handler := NewHandlerImpl(mockService, logger)

		mockService.On("GetUser", mock.Anything, int64(666)).
			Return(nil, api.ErrNotFound).Once()

		w := httptest.NewRecorder()
		handler.GetUser(w, authedRequest(http.MethodGet, "/users/666", nil, adminClaims(), 666))

		assert.Equal(t, http.StatusNotFound, w.Code)
		body := decodeError(t, w)
		assert.Equal(t, "User not found", body["description"])
		mockService.AssertExpectations(t)
	})
}

func TestHandlerImpl_DeleteUser(t *testing.T) {
	metrics.InitAppMetrics()
	logger := slog.Default()

	t.Run("SelfSuccess", func(t *testing.T) {
		mockService := new(MockUserService)
		handler := NewHandlerImpl(mockService, logger)

		mockService.On("DeleteUser", mock.Anything, int64(7)).
			Return(nil).Once()

		w := httptest.NewRecorder()
		handler.DeleteUser(w, authedRequest(http.MethodDelete, "/users/7", nil, userClaims(7), 7))

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Body.Bytes())
		mockService.AssertExpectations(t)
	})

	t.Run("ForbiddenForOtherUser", func(t *testing.T) {
		mockService := new(MockUserService)
		handler := NewHandlerImpl(mockService, logger)

		w := httptest.NewRecorder()
		handler.DeleteUser(w, authedRequest(http.MethodDelete, "/users/1", nil, userClaims(7), 1))

		assert.Equal(t, http.StatusForbidden, w.Code)
		mockService.AssertNotCalled(t, "DeleteUser", mock.Anything, mock.Anything)
	})

	t.Run("NotFound", func(t *testing.T) {
		mockService := new(MockUserService)
		handler := NewHandlerImpl(mockService, logger)

		mockService.On("DeleteUser", mock.Anything, int64(7)).
			Return(api.ErrNotFound).Once()

		w := httptest.NewRecorder()
		handler.DeleteUser(w, authedRequest(http.MethodDelete, "/users/7", nil, adminClaims(), 7))

		assert.Equal(t, http.StatusNotFound, w.Code)
		body := decodeError(t, w)
		assert.Equal(t, "User not found", body["description"])
		mockService.AssertExpectations(t)
	})
}
