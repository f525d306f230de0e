package repository

import (
	"context"

	"github.com/shopspring/decimal"
)

// SeedDefaults loads a small demo catalog for development databases.
func (r ProductRepository) SeedDefaults(ctx context.Context) error {
	defaults := []struct {
		name  string
		price string
		stock int
	}{
		{"Rice 1kg", "45.00", 50},
		{"Toor Dal 1kg", "120.00", 30},
		{"Sugar 1kg", "42.50", 40},
		{"Tea Powder 250g", "95.00", 25},
		{"Milk 500ml", "28.00", 60},
		{"Sunflower Oil 1L", "150.00", 20},
	}

	for _, p := range defaults {
		// Idempotent on the folded product name.
		_, err := r.DB.Pool.Exec(ctx, `
			INSERT INTO products (name, price, image_path, stock_quantity, is_active, created_at, updated_at)
			VALUES ($1,$2,'',$3,true, now(), now())
			ON CONFLICT ((lower(btrim(name)))) DO NOTHING
		`, p.name, decimal.RequireFromString(p.price), p.stock)
		if err != nil {
			return err
		}
	}
	return nil
}
