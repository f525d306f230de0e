package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"retailbilling-backend/internal/domain"
	"retailbilling-backend/internal/service"
)

type ProductHandler struct {
	Service ProductService
	Logger  *slog.Logger
}

func (h ProductHandler) RegisterRoutes(r chi.Router) {
	r.Get("/products", h.list)
	r.Get("/products/search", h.search)
	r.Get("/products/suggestions", h.suggestions)
	r.Get("/products/{id}", h.get)
	r.Post("/products", h.create)
	r.Post("/products/quick-add", h.quickAdd)
	r.Put("/products/{id}", h.update)
	r.Delete("/products/{id}", h.delete)
}

func (h ProductHandler) list(w http.ResponseWriter, r *http.Request) {
	activeOnly := false
	if v := r.URL.Query().Get("activeOnly"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid activeOnly")
			return
		}
		activeOnly = parsed
	}
	items, err := h.Service.List(r.Context(), activeOnly)
	if err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponses(items))
}

func (h ProductHandler) search(w http.ResponseWriter, r *http.Request) {
	items, err := h.Service.Search(r.Context(), r.URL.Query().Get("query"))
	if err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponses(items))
}

func (h ProductHandler) suggestions(w http.ResponseWriter, r *http.Request) {
	names, err := h.Service.Suggestions(r.Context(), r.URL.Query().Get("query"))
	if err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, names)
}

func (h ProductHandler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	p, err := h.Service.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponse(*p))
}

func (h ProductHandler) create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductName   string           `json:"productName"`
		Price         *decimal.Decimal `json:"price"`
		ImagePath     string           `json:"imagePath"`
		StockQuantity *int             `json:"stockQuantity"`
		IsActive      *bool            `json:"isActive"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorWithErr(w, http.StatusBadRequest, "invalid payload", err)
		return
	}
	p, err := h.Service.Create(r.Context(), service.CreateProductInput{
		Name:          req.ProductName,
		Price:         req.Price,
		ImagePath:     req.ImagePath,
		StockQuantity: req.StockQuantity,
		Active:        req.IsActive,
	})
	if err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, toProductResponse(*p))
}

func (h ProductHandler) quickAdd(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductName string `json:"productName"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorWithErr(w, http.StatusBadRequest, "invalid payload", err)
		return
	}
	p, created, err := h.Service.QuickAdd(r.Context(), req.ProductName)
	if err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, toProductResponse(*p))
}

func (h ProductHandler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	var req struct {
		ProductName   *string          `json:"productName"`
		Price         *decimal.Decimal `json:"price"`
		ImagePath     *string          `json:"imagePath"`
		StockQuantity *int             `json:"stockQuantity"`
		IsActive      *bool            `json:"isActive"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorWithErr(w, http.StatusBadRequest, "invalid payload", err)
		return
	}
	p, err := h.Service.Update(r.Context(), id, domain.ProductPatch{
		Name:          req.ProductName,
		Price:         req.Price,
		ImagePath:     req.ImagePath,
		StockQuantity: req.StockQuantity,
		Active:        req.IsActive,
	})
	if err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponse(*p))
}

func (h ProductHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if err := h.Service.Delete(r.Context(), id); err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func toProductResponses(items []domain.Product) []map[string]any {
	out := make([]map[string]any, 0, len(items))
	for _, p := range items {
		out = append(out, toProductResponse(p))
	}
	return out
}

func toProductResponse(p domain.Product) map[string]any {
	return map[string]any{
		"productId":     p.ID,
		"productName":   p.Name,
		"price":         money(p.Price),
		"imagePath":     p.ImagePath,
		"stockQuantity": p.StockQuantity,
		"isActive":      p.Active,
	}
}
