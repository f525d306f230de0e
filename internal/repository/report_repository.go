package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"retailbilling-backend/internal/db"
)

// ReportRepository aggregates completed bills for the owner dashboards.
type ReportRepository struct {
	DB *db.Postgres
}

type SalesTotals struct {
	BillCount      int64
	Subtotal       decimal.Decimal
	DiscountAmount decimal.Decimal
	Revenue        decimal.Decimal
}

type ProductSales struct {
	Name     string
	Quantity int64
	Revenue  decimal.Decimal
}

type BillAmount struct {
	CreatedAt time.Time
	Total     decimal.Decimal
}

// Totals sums completed bills. A zero from or to leaves that side of the range open.
func (r ReportRepository) Totals(ctx context.Context, from, to time.Time) (SalesTotals, error) {
	var s SalesTotals
	err := r.DB.Pool.QueryRow(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(subtotal),0),
			COALESCE(SUM(discount_amount),0),
			COALESCE(SUM(total_amount),0)
		FROM bills
		WHERE bill_status = 'COMPLETED'
		  AND ($1::timestamptz IS NULL OR created_at >= $1)
		  AND ($2::timestamptz IS NULL OR created_at < $2)
	`, optionalTime(from), optionalTime(to)).Scan(&s.BillCount, &s.Subtotal, &s.DiscountAmount, &s.Revenue)
	return s, err
}

// TopProducts ranks item names by revenue, grouping on the folded name snapshot.
func (r ReportRepository) TopProducts(ctx context.Context, limit int) ([]ProductSales, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT MAX(bi.product_name), COALESCE(SUM(bi.quantity),0), COALESCE(SUM(bi.total_price),0) AS revenue
		FROM bill_items bi
		JOIN bills b ON b.id = bi.bill_id
		WHERE b.bill_status = 'COMPLETED'
		GROUP BY lower(btrim(bi.product_name))
		ORDER BY revenue DESC, 1 ASC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []ProductSales{}
	for rows.Next() {
		var it ProductSales
		if err := rows.Scan(&it.Name, &it.Quantity, &it.Revenue); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// BillAmountsSince lists completed bill totals created at or after since, oldest first.
func (r ReportRepository) BillAmountsSince(ctx context.Context, since time.Time) ([]BillAmount, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT created_at, total_amount
		FROM bills
		WHERE bill_status = 'COMPLETED' AND created_at >= $1
		ORDER BY created_at ASC
	`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []BillAmount
	for rows.Next() {
		var b BillAmount
		if err := rows.Scan(&b.CreatedAt, &b.Total); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func optionalTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
