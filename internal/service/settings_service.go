package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"github.com/shopspring/decimal"
	"retailbilling-backend/internal/domain"
	"retailbilling-backend/internal/repository"
)

type SettingsStore interface {
	Get(ctx context.Context) (*domain.ShopSettings, error)
	Save(ctx context.Context, s domain.ShopSettings) (*domain.ShopSettings, error)
	UpdateLogo(ctx context.Context, logoPath string) (*domain.ShopSettings, error)
}

type SettingsService struct {
	Settings SettingsStore
}

// UpdateSettingsInput is a full replacement; empty strings clear the stored value.
type UpdateSettingsInput struct {
	ShopName string
	LogoPath string
	Address  string
	Phone    string
	Email    string
	TaxRate  *decimal.Decimal
}

func (s SettingsService) Get(ctx context.Context) (*domain.ShopSettings, error) {
	st, err := s.Settings.Get(ctx)
	if err != nil {
		return nil, settingsErr(err)
	}
	return st, nil
}

func (s SettingsService) Update(ctx context.Context, in UpdateSettingsInput) (*domain.ShopSettings, error) {
	st := domain.ShopSettings{
		ShopName: strings.TrimSpace(in.ShopName),
		LogoPath: strings.TrimSpace(in.LogoPath),
		Address:  strings.TrimSpace(in.Address),
		Phone:    strings.TrimSpace(in.Phone),
		Email:    strings.TrimSpace(in.Email),
		TaxRate:  decimal.Zero,
	}
	if st.ShopName == "" {
		return nil, domain.Invalidf("shopName is required")
	}
	if st.Email != "" {
		if _, err := mail.ParseAddress(st.Email); err != nil {
			return nil, domain.Invalidf("email is not a valid address")
		}
	}
	if err := checkLength("phone", st.Phone, maxPhoneLen); err != nil {
		return nil, err
	}
	if err := checkLength("shopLogoPath", st.LogoPath, maxLogoPathLen); err != nil {
		return nil, err
	}
	if in.TaxRate != nil {
		if err := checkAmount("taxRate", *in.TaxRate, maxTaxRate); err != nil {
			return nil, err
		}
		st.TaxRate = *in.TaxRate
	}
	return s.Settings.Save(ctx, st)
}

// UpdateLogo changes only the logo path of already initialized settings.
func (s SettingsService) UpdateLogo(ctx context.Context, logoPath string) (*domain.ShopSettings, error) {
	logoPath = strings.TrimSpace(logoPath)
	if err := checkLength("shopLogoPath", logoPath, maxLogoPathLen); err != nil {
		return nil, err
	}
	st, err := s.Settings.UpdateLogo(ctx, logoPath)
	if err != nil {
		return nil, settingsErr(err)
	}
	return st, nil
}

func settingsErr(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return domain.NotConfiguredf("shop settings have not been configured")
	}
	return err
}
