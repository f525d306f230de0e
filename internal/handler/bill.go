package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"retailbilling-backend/internal/domain"
	"retailbilling-backend/internal/service"
)

type BillHandler struct {
	Service BillService
	Logger  *slog.Logger
}

func (h BillHandler) RegisterRoutes(r chi.Router) {
	r.Post("/bills", h.create)
	r.Get("/bills", h.list)
	r.Get("/bills/today", h.today)
	r.Get("/bills/range", h.byRange)
	r.Get("/bills/number/{billNumber}", h.getByNumber)
	r.Get("/bills/{id}", h.get)
}

type createBillRequest struct {
	UserID               int64             `json:"userId"`
	CustomerName         string            `json:"customerName"`
	CustomerPhone        string            `json:"customerPhone"`
	Items                []billItemRequest `json:"items"`
	ManualDiscountAmount *decimal.Decimal  `json:"manualDiscountAmount"`
	PaymentMethod        string            `json:"paymentMethod"`
}

type billItemRequest struct {
	ProductID   *int64          `json:"productId"`
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
}

func (h BillHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createBillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorWithErr(w, http.StatusBadRequest, "invalid payload", err)
		return
	}

	items := make([]service.BillItemInput, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, service.BillItemInput{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
		})
	}

	bill, err := h.Service.Create(r.Context(), service.CreateBillInput{
		UserID:         req.UserID,
		CustomerName:   req.CustomerName,
		CustomerPhone:  req.CustomerPhone,
		Items:          items,
		ManualDiscount: req.ManualDiscountAmount,
		PaymentMethod:  req.PaymentMethod,
	})
	if err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, toBillResponse(*bill))
}

func (h BillHandler) list(w http.ResponseWriter, r *http.Request) {
	bills, err := h.Service.List(r.Context())
	if err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toBillResponses(bills))
}

func (h BillHandler) today(w http.ResponseWriter, r *http.Request) {
	bills, err := h.Service.Today(r.Context())
	if err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toBillResponses(bills))
}

func (h BillHandler) byRange(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("startDate") == "" || q.Get("endDate") == "" {
		writeError(w, http.StatusBadRequest, "startDate and endDate are required")
		return
	}
	start, err := parseDateTime(q.Get("startDate"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid startDate")
		return
	}
	end, err := parseDateTime(q.Get("endDate"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid endDate")
		return
	}
	bills, err := h.Service.Range(r.Context(), start, end)
	if err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toBillResponses(bills))
}

func (h BillHandler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	bill, err := h.Service.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toBillResponse(*bill))
}

func (h BillHandler) getByNumber(w http.ResponseWriter, r *http.Request) {
	bill, err := h.Service.GetByNumber(r.Context(), chi.URLParam(r, "billNumber"))
	if err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toBillResponse(*bill))
}

func toBillResponses(bills []domain.Bill) []map[string]any {
	out := make([]map[string]any, 0, len(bills))
	for _, b := range bills {
		out = append(out, toBillResponse(b))
	}
	return out
}

func toBillResponse(b domain.Bill) map[string]any {
	items := make([]map[string]any, 0, len(b.Items))
	for _, it := range b.Items {
		items = append(items, map[string]any{
			"itemId":      it.ID,
			"productId":   it.ProductID,
			"productName": it.ProductName,
			"quantity":    it.Quantity,
			"unitPrice":   money(it.UnitPrice),
			"totalPrice":  money(it.TotalPrice),
		})
	}
	var synced *string
	if b.SyncedAt != nil {
		s := b.SyncedAt.Format(time.RFC3339)
		synced = &s
	}
	return map[string]any{
		"billId":          b.ID,
		"billNumber":      b.Number,
		"userId":          b.UserID,
		"customerName":    b.CustomerName,
		"customerPhone":   b.CustomerPhone,
		"subtotal":        money(b.Subtotal),
		"discountPercent": money(b.DiscountPct),
		"discountAmount":  money(b.DiscountAmount),
		"totalAmount":     money(b.TotalAmount),
		"paymentMethod":   string(b.PaymentMethod),
		"billStatus":      string(b.Status),
		"createdAt":       b.CreatedAt.Format(time.RFC3339),
		"syncedAt":        synced,
		"items":           items,
	}
}
