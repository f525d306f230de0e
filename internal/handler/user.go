package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type UserHandler struct {
	Service UserService
	Logger  *slog.Logger
}

func (h UserHandler) RegisterRoutes(r chi.Router) {
	r.Get("/users", h.list)
	r.Get("/users/username/{username}", h.getByUsername)
	r.Get("/users/{id}", h.get)
}

func (h UserHandler) list(w http.ResponseWriter, r *http.Request) {
	users, err := h.Service.List(r.Context())
	if err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	resp := make([]map[string]any, 0, len(users))
	for _, u := range users {
		resp = append(resp, toUserResponse(u))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h UserHandler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	u, err := h.Service.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(*u))
}

func (h UserHandler) getByUsername(w http.ResponseWriter, r *http.Request) {
	u, err := h.Service.GetByUsername(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(*u))
}
