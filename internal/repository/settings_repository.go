package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"retailbilling-backend/internal/db"
	"retailbilling-backend/internal/domain"
)

// SettingsRepository stores the single shop_settings row (id = 1).
type SettingsRepository struct {
	DB *db.Postgres
}

const settingsColumns = `id, shop_name, shop_logo_path, address, phone, email, tax_rate, created_at, updated_at`

func (r SettingsRepository) Get(ctx context.Context) (*domain.ShopSettings, error) {
	row := r.DB.Pool.QueryRow(ctx, `SELECT `+settingsColumns+` FROM shop_settings WHERE id=1`)
	return scanSettingsOrNotFound(row)
}

// Save replaces every field of the row, creating it on first use.
func (r SettingsRepository) Save(ctx context.Context, s domain.ShopSettings) (*domain.ShopSettings, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		INSERT INTO shop_settings (id, shop_name, shop_logo_path, address, phone, email, tax_rate, created_at, updated_at)
		VALUES (1,$1,$2,$3,$4,$5,$6, now(), now())
		ON CONFLICT (id) DO UPDATE SET
			shop_name=EXCLUDED.shop_name,
			shop_logo_path=EXCLUDED.shop_logo_path,
			address=EXCLUDED.address,
			phone=EXCLUDED.phone,
			email=EXCLUDED.email,
			tax_rate=EXCLUDED.tax_rate,
			updated_at=now()
		RETURNING `+settingsColumns+`
	`, s.ShopName, s.LogoPath, s.Address, s.Phone, s.Email, s.TaxRate)
	return scanSettings(row)
}

func (r SettingsRepository) UpdateLogo(ctx context.Context, logoPath string) (*domain.ShopSettings, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		UPDATE shop_settings
		SET shop_logo_path=$1, updated_at=now()
		WHERE id=1
		RETURNING `+settingsColumns+`
	`, logoPath)
	return scanSettingsOrNotFound(row)
}

func scanSettingsOrNotFound(row pgx.Row) (*domain.ShopSettings, error) {
	s, err := scanSettings(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s, nil
}

func scanSettings(row pgx.Row) (*domain.ShopSettings, error) {
	var s domain.ShopSettings
	if err := row.Scan(
		&s.ID, &s.ShopName, &s.LogoPath, &s.Address, &s.Phone, &s.Email, &s.TaxRate, &s.CreatedAt, &s.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &s, nil
}
