package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// HomeHandler answers the root path so load balancers and humans get a pointer to the docs.
type HomeHandler struct {
	ShopName string
}

func (h HomeHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.welcome)
}

func (h HomeHandler) welcome(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"service": "retail-billing",
		"title":   h.ShopName,
		"docs":    "/docs",
	})
}
