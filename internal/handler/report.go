package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"retailbilling-backend/internal/repository"
)

type ReportHandler struct {
	Service ReportService
	Logger  *slog.Logger
}

func (h ReportHandler) RegisterRoutes(r chi.Router) {
	r.Get("/reports/summary", h.summary)
	r.Get("/reports/top-products", h.topProducts)
	r.Get("/reports/sales", h.sales)
}

func (h ReportHandler) summary(w http.ResponseWriter, r *http.Request) {
	data, err := h.Service.Summary(r.Context())
	if err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"today":   toTotalsResponse(data.Today),
		"allTime": toTotalsResponse(data.AllTime),
	})
}

func (h ReportHandler) topProducts(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}
	items, err := h.Service.TopProducts(r.Context(), limit)
	if err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	resp := make([]map[string]any, 0, len(items))
	for _, it := range items {
		resp = append(resp, map[string]any{
			"productName": it.Name,
			"quantity":    it.Quantity,
			"revenue":     money(it.Revenue),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h ReportHandler) sales(w http.ResponseWriter, r *http.Request) {
	points, err := h.Service.Sales(r.Context(), r.URL.Query().Get("range"))
	if err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	resp := make([]map[string]any, 0, len(points))
	for _, p := range points {
		resp = append(resp, map[string]any{
			"date":      p.Date,
			"billCount": p.BillCount,
			"revenue":   money(p.Revenue),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func toTotalsResponse(t repository.SalesTotals) map[string]any {
	return map[string]any{
		"billCount":      t.BillCount,
		"subtotal":       money(t.Subtotal),
		"discountAmount": money(t.DiscountAmount),
		"revenue":        money(t.Revenue),
	}
}
