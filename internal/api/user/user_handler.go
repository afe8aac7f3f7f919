package user

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/FACorreiaa/go-user-admin-api/app/observability/metrics"
	"github.com/FACorreiaa/go-user-admin-api/internal/api"
	"github.com/FACorreiaa/go-user-admin-api/internal/api/auth"
)

var _ Handler = (*HandlerImpl)(nil)

type Handler interface {
	Register(w http.ResponseWriter, r *http.Request)
	ListUsers(w http.ResponseWriter, r *http.Request)
	GetUser(w http.ResponseWriter, r *http.Request)
	DeleteUser(w http.ResponseWriter, r *http.Request)
}

type HandlerImpl struct {
	userService UserService
	logger      *slog.Logger
}

// NewHandlerImpl creates a new user HandlerImpl instance.
func NewHandlerImpl(userService UserService, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		userService: userService,
		logger:      logger,
	}
}

// claims pulls authenticated claims from the context, answering 401 itself
// when the Authenticate middleware did not run or failed to attach them.
func (h *HandlerImpl) claims(w http.ResponseWriter, r *http.Request) (*auth.Claims, bool) {
	claims, ok := auth.GetClaimsFromContext(r.Context())
	if !ok || claims == nil {
		h.logger.ErrorContext(r.Context(), "Claims not found in context")
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Missing Authorization Header")
		return nil, false
	}
	return claims, true
}

// targetID parses the {id} route parameter.
func targetID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

// Register godoc
// @Summary      Register user
// @Description  Creates a new ordinary user. Administrators only.
// @Tags         Users
// @Accept       json
// @Produce      json
// @Success      201 {object} api.UserResponse "Created user"
// @Failure      400 {object} map[string]interface{} "Missing or malformed fields"
// @Failure      403 {object} map[string]interface{} "Not an administrator"
// @Failure      409 {object} map[string]interface{} "Username or email taken"
// @Security     BearerAuth
// @Router       /register [post]
func (h *HandlerImpl) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "Register"))
	m := metrics.Get()
	start := time.Now()
	defer func() {
		m.RegisterRequestsTotal.Add(ctx, 1)
		m.RegisterDurationSeconds.Record(ctx, time.Since(start).Seconds())
	}()

	claims, ok := h.claims(w, r)
	if !ok {
		return
	}
	if err := auth.Authorize(claims, auth.OpRegister, 0); err != nil {
		l.WarnContext(ctx, "Register denied", slog.Int64("userID", claims.UserID))
		api.ErrorResponse(w, r, http.StatusForbidden, auth.DenyDescription)
		return
	}

	var req api.RegisterRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.WarnContext(ctx, "Failed to decode register request body", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, "Missing JSON in request")
		return
	}
	if req.Username == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Missing username parameter")
		return
	}
	if req.Password == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Missing password parameter")
		return
	}
	if req.Email == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Missing email parameter")
		return
	}

	created, err := h.userService.Register(ctx, req.Username, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrUsernameTaken):
			api.ErrorResponse(w, r, http.StatusConflict, "Username already registered")
		case errors.Is(err, ErrEmailTaken):
			api.ErrorResponse(w, r, http.StatusConflict, "Email already registered")
		case errors.Is(err, api.ErrBadRequest):
			api.ErrorResponse(w, r, http.StatusBadRequest, "Not a valid email address.")
		default:
			l.ErrorContext(ctx, "Failed to register user", slog.Any("error", err))
			api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to register user")
		}
		return
	}

	api.WriteJSONResponse(w, r, http.StatusCreated, created.Projection())
}

// ListUsers godoc
// @Summary      List users
// @Description  Returns every user's public projection. Administrators only.
// @Tags         Users
// @Produce      json
// @Success      200 {array} api.UserResponse "Users"
// @Failure      403 {object} map[string]interface{} "Not an administrator"
// @Security     BearerAuth
// @Router       /users [get]
func (h *HandlerImpl) ListUsers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "ListUsers"))

	claims, ok := h.claims(w, r)
	if !ok {
		return
	}
	if err := auth.Authorize(claims, auth.OpListUsers, 0); err != nil {
		l.WarnContext(ctx, "ListUsers denied", slog.Int64("userID", claims.UserID))
		api.ErrorResponse(w, r, http.StatusForbidden, auth.DenyDescription)
		return
	}

	users, err := h.userService.ListUsers(ctx)
	if err != nil {
		l.ErrorContext(ctx, "Failed to list users", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to list users")
		return
	}

	projections := make([]api.UserResponse, len(users))
	for i := range users {
		projections[i] = users[i].Projection()
	}
	api.WriteJSONResponse(w, r, http.StatusOK, projections)
}

// GetUser godoc
// @Summary      Get user
// @Description  Returns a single user's public projection. Self or administrator.
// @Tags         Users
// @Produce      json
// @Success      200 {object} api.UserResponse "User"
// @Failure      403 {object} map[string]interface{} "Not the user or an administrator"
// @Failure      404 {object} map[string]interface{} "No such user"
// @Security     BearerAuth
// @Router       /users/{id} [get]
func (h *HandlerImpl) GetUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "GetUser"))

	claims, ok := h.claims(w, r)
	if !ok {
		return
	}
	id, err := targetID(r)
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid user id")
		return
	}
	if err := auth.Authorize(claims, auth.OpGetUser, id); err != nil {
		l.WarnContext(ctx, "GetUser denied",
			slog.Int64("userID", claims.UserID), slog.Int64("targetID", id))
		api.ErrorResponse(w, r, http.StatusForbidden, auth.DenyDescription)
		return
	}

	user, err := h.userService.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, api.ErrNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "User not found")
			return
		}
		l.ErrorContext(ctx, "Failed to get user", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to retrieve user")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, user.Projection())
}

// DeleteUser godoc
// @Summary      Delete user
// @Description  Removes a user record. Self or administrator.
// @Tags         Users
// @Success      204 "Deleted"
// @Failure      403 {object} map[string]interface{} "Not the user or an administrator"
// @Failure      404 {object} map[string]interface{} "No such user"
// @Security     BearerAuth
// @Router       /users/{id} [delete]
func (h *HandlerImpl) DeleteUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "DeleteUser"))

	claims, ok := h.claims(w, r)
	if !ok {
		return
	}
	id, err := targetID(r)
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid user id")
		return
	}
	if err := auth.Authorize(claims, auth.OpDeleteUser, id); err != nil {
		l.WarnContext(ctx, "DeleteUser denied",
			slog.Int64("userID", claims.UserID), slog.Int64("targetID", id))
		api.ErrorResponse(w, r, http.StatusForbidden, auth.DenyDescription)
		return
	}

	if err := h.userService.DeleteUser(ctx, id); err != nil {
		if errors.Is(err, api.ErrNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "User not found")
			return
		}
		l.ErrorContext(ctx, "Failed to delete user", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to delete user")
		return
	}

	l.InfoContext(ctx, "User deleted", slog.Int64("targetID", id))
	api.WriteJSONResponse(w, r, http.StatusNoContent, nil)
}
