package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// ProductAdminHandler holds the catalog operations reserved for owners and managers.
type ProductAdminHandler struct {
	Service ProductService
	Logger  *slog.Logger
}

func (h ProductAdminHandler) RegisterRoutes(r chi.Router) {
	r.Delete("/products/{id}/hard", h.hardDelete)
}

func (h ProductAdminHandler) hardDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if err := h.Service.HardDelete(r.Context(), id); err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}
