package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"retailbilling-backend/internal/domain"
	"retailbilling-backend/internal/service"
)

type SettingsHandler struct {
	Service SettingsService
	Logger  *slog.Logger
}

func (h SettingsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/shop-settings", h.get)
}

func (h SettingsHandler) RegisterAdminRoutes(r chi.Router) {
	r.Put("/shop-settings", h.save)
	r.Put("/shop-settings/logo", h.saveLogo)
}

func (h SettingsHandler) get(w http.ResponseWriter, r *http.Request) {
	s, err := h.Service.Get(r.Context())
	if err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toSettingsResponse(s))
}

func (h SettingsHandler) save(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ShopName     string           `json:"shopName"`
		ShopLogoPath string           `json:"shopLogoPath"`
		Address      string           `json:"address"`
		Phone        string           `json:"phone"`
		Email        string           `json:"email"`
		TaxRate      *decimal.Decimal `json:"taxRate"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorWithErr(w, http.StatusBadRequest, "invalid payload", err)
		return
	}
	s, err := h.Service.Update(r.Context(), service.UpdateSettingsInput{
		ShopName: req.ShopName,
		LogoPath: req.ShopLogoPath,
		Address:  req.Address,
		Phone:    req.Phone,
		Email:    req.Email,
		TaxRate:  req.TaxRate,
	})
	if err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toSettingsResponse(s))
}

func (h SettingsHandler) saveLogo(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ShopLogoPath string `json:"shopLogoPath"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorWithErr(w, http.StatusBadRequest, "invalid payload", err)
		return
	}
	s, err := h.Service.UpdateLogo(r.Context(), req.ShopLogoPath)
	if err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toSettingsResponse(s))
}

func toSettingsResponse(s *domain.ShopSettings) map[string]any {
	return map[string]any{
		"settingId":    s.ID,
		"shopName":     s.ShopName,
		"shopLogoPath": s.LogoPath,
		"address":      s.Address,
		"phone":        s.Phone,
		"email":        s.Email,
		"taxRate":      money(s.TaxRate),
	}
}
