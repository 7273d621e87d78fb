package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/splitlyapp/splitly/internal/user"
	"github.com/splitlyapp/splitly/pkg/middleware"
	"github.com/splitlyapp/splitly/pkg/response"
)

const refreshCookieName = "refresh_token"

// Handler handles HTTP requests for authentication.
type Handler struct {
	service *Service
}

// NewHandler creates a new auth handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for auth endpoints. authmw guards the endpoints
// that need an authenticated caller.
func (h *Handler) Routes(authmw func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Post("/register", h.Register)
	r.Post("/login", h.Login)
	r.Post("/refresh", h.Refresh)
	r.Post("/logout", h.Logout)

	r.Group(func(r chi.Router) {
		r.Use(authmw)
		r.Get("/me", h.Me)
	})

	return r
}

// Register handles POST /auth/register
// @Summary      Register a new account
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body RegisterRequest true "Registration request"
// @Success      201 {object} response.APIResponse{data=AuthResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Router       /auth/register [post]
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if req.Name == "" || req.Email == "" {
		response.BadRequest(w, "Name and email are required")
		return
	}

	u, pair, err := h.service.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrWeakPassword):
			response.BadRequest(w, err.Error())
		case errors.Is(err, ErrEmailExists):
			response.Conflict(w, err.Error())
		default:
			response.InternalError(w, "Failed to register")
		}
		return
	}

	h.setRefreshCookie(w, pair.RefreshToken)
	response.JSON(w, http.StatusCreated, &AuthResponse{
		User:        u.ToResponse(),
		AccessToken: pair.AccessToken,
	})
}

// Login handles POST /auth/login
// @Summary      Log in with email and password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Login request"
// @Success      200 {object} response.APIResponse{data=AuthResponse}
// @Failure      401 {object} response.APIResponse
// @Router       /auth/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	u, pair, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			response.Unauthorized(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to log in")
		return
	}

	h.setRefreshCookie(w, pair.RefreshToken)
	response.JSON(w, http.StatusOK, &AuthResponse{
		User:        u.ToResponse(),
		AccessToken: pair.AccessToken,
	})
}

// Refresh handles POST /auth/refresh
// @Summary      Rotate the refresh token and get a new access token
// @Tags         auth
// @Produce      json
// @Success      200 {object} response.APIResponse{data=RefreshResponse}
// @Failure      401 {object} response.APIResponse
// @Router       /auth/refresh [post]
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(refreshCookieName)
	if err != nil {
		response.Unauthorized(w, "No refresh token provided")
		return
	}

	pair, err := h.service.Refresh(r.Context(), cookie.Value)
	if err != nil {
		if errors.Is(err, ErrInvalidRefreshToken) {
			response.Unauthorized(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to refresh token")
		return
	}

	h.setRefreshCookie(w, pair.RefreshToken)
	response.JSON(w, http.StatusOK, &RefreshResponse{AccessToken: pair.AccessToken})
}

// Logout handles POST /auth/logout
// @Summary      Revoke the refresh token
// @Tags         auth
// @Produce      json
// @Success      200 {object} response.APIResponse
// @Router       /auth/logout [post]
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(refreshCookieName); err == nil {
		if err := h.service.Logout(r.Context(), cookie.Value); err != nil {
			response.InternalError(w, "Failed to log out")
			return
		}
	}

	h.clearRefreshCookie(w)
	response.JSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}

// Me handles GET /auth/me
// @Summary      Get the authenticated account
// @Tags         auth
// @Produce      json
// @Success      200 {object} response.APIResponse{data=user.UserResponse}
// @Failure      401 {object} response.APIResponse
// @Router       /auth/me [get]
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	u, err := h.service.Me(r.Context(), userID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to get account")
		return
	}

	response.JSON(w, http.StatusOK, u.ToResponse())
}

func (h *Handler) setRefreshCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    token,
		Path:     "/api/v1/auth",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(h.service.jwt.RefreshTTL() / time.Second),
	})
}

func (h *Handler) clearRefreshCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     "/api/v1/auth",
		HttpOnly: true,
		MaxAge:   -1,
	})
}
