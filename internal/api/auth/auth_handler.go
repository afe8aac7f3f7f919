package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/FACorreiaa/go-user-admin-api/app/observability/metrics"
	"github.com/FACorreiaa/go-user-admin-api/internal/api"
)

var _ AuthHandler = (*AuthHandlerImpl)(nil)

type AuthHandler interface {
	Login(w http.ResponseWriter, r *http.Request)
}

type AuthHandlerImpl struct {
	authService AuthService
	logger      *slog.Logger
}

func NewAuthHandlerImpl(authService AuthService, logger *slog.Logger) *AuthHandlerImpl {
	return &AuthHandlerImpl{
		authService: authService,
		logger:      logger,
	}
}

// Login godoc
// @Summary      Login
// @Description  Authenticates username/password and returns a bearer access token.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Success      200 {object} api.LoginResponse "Access token"
// @Failure      400 {object} map[string]interface{} "Missing body or parameters"
// @Failure      401 {object} map[string]interface{} "Bad credentials"
// @Router       /login [post]
func (h *AuthHandlerImpl) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "Login"))
	m := metrics.Get()
	m.LoginRequestsTotal.Add(ctx, 1)

	var req api.LoginRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.WarnContext(ctx, "Failed to decode login request body", slog.Any("error", err))
		m.LoginFailuresTotal.Add(ctx, 1)
		api.ErrorResponse(w, r, http.StatusBadRequest, "Missing JSON in request")
		return
	}
	if req.Username == "" {
		m.LoginFailuresTotal.Add(ctx, 1)
		api.ErrorResponse(w, r, http.StatusBadRequest, "Missing username parameter")
		return
	}
	if req.Password == "" {
		m.LoginFailuresTotal.Add(ctx, 1)
		api.ErrorResponse(w, r, http.StatusBadRequest, "Missing password parameter")
		return
	}

	token, err := h.authService.Login(ctx, req.Username, req.Password)
	if err != nil {
		m.LoginFailuresTotal.Add(ctx, 1)
		if errors.Is(err, api.ErrUnauthenticated) {
			api.ErrorResponse(w, r, http.StatusUnauthorized, "Bad username or password")
			return
		}
		l.ErrorContext(ctx, "Login failed unexpectedly", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to process login")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, api.LoginResponse{AccessToken: token})
}
