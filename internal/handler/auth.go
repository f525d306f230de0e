package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"retailbilling-backend/internal/domain"
	"retailbilling-backend/internal/server/authctx"
	"retailbilling-backend/internal/service"
)

type AuthHandler struct {
	Service AuthService
	Logger  *slog.Logger
}

func (h AuthHandler) RegisterRoutes(r chi.Router) {
	r.Post("/auth/login", h.login)
	r.Post("/auth/logout", h.logout)
}

func (h AuthHandler) RegisterProtectedRoutes(r chi.Router) {
	r.Get("/auth/me", h.me)
}

func (h AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	res, err := h.Service.Login(r.Context(), service.LoginInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	writeAuthResponse(w, res)
}

func (h AuthHandler) me(w http.ResponseWriter, r *http.Request) {
	caller := authctx.FromContext(r.Context())
	if caller == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	user, err := h.Service.Me(r.Context(), *caller)
	if err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(*user))
}

func (h AuthHandler) logout(w http.ResponseWriter, r *http.Request) {
	h.Service.Logout(r.Context(), authctx.FromContext(r.Context()))
	writeMessage(w, http.StatusOK, "Logged out successfully", nil)
}

func writeAuthResponse(w http.ResponseWriter, res *service.AuthResult) {
	writeJSON(w, http.StatusOK, map[string]any{
		"token":     res.AccessToken,
		"type":      "Bearer",
		"expiresAt": res.ExpiresAt.Format(time.RFC3339),
		"userId":    res.User.ID,
		"username":  res.User.Username,
		"email":     res.User.Email,
		"fullName":  res.User.FullName,
		"role":      string(res.User.Role),
	})
}

func toUserResponse(u domain.User) map[string]any {
	var lastLogin *string
	if u.LastLogin != nil {
		s := u.LastLogin.Format(time.RFC3339)
		lastLogin = &s
	}
	return map[string]any{
		"userId":    u.ID,
		"username":  u.Username,
		"email":     u.Email,
		"fullName":  u.FullName,
		"role":      string(u.Role),
		"status":    string(u.Status),
		"lastLogin": lastLogin,
	}
}
