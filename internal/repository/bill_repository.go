package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"retailbilling-backend/internal/db"
	"retailbilling-backend/internal/domain"
)

type BillRepository struct {
	DB *db.Postgres
}

const billColumns = `id, bill_number, user_id, customer_name, customer_phone, subtotal, discount_percent,
	discount_amount, total_amount, payment_method, bill_status, created_at, synced_at`

// NextSequenceWithTx hands out the next per-day bill sequence. The first call of a day seeds
// the counter from the bills already recorded in [dayStart, dayEnd), so the result matches
// "bills created today + 1" while concurrent callers serialize on the counter row.
func (r BillRepository) NextSequenceWithTx(ctx context.Context, tx pgx.Tx, dayStart, dayEnd time.Time) (int, error) {
	var seq int
	err := tx.QueryRow(ctx, `
		INSERT INTO bill_sequences (bill_date, last_seq)
		VALUES ($1::date, (SELECT COUNT(*) FROM bills WHERE created_at >= $2 AND created_at < $3) + 1)
		ON CONFLICT (bill_date) DO UPDATE SET last_seq = bill_sequences.last_seq + 1
		RETURNING last_seq
	`, dayStart.Format("2006-01-02"), dayStart, dayEnd).Scan(&seq)
	return seq, err
}

// InsertWithTx stores the bill header and sets b.ID.
func (r BillRepository) InsertWithTx(ctx context.Context, tx pgx.Tx, b *domain.Bill) error {
	return tx.QueryRow(ctx, `
		INSERT INTO bills
		(bill_number, user_id, customer_name, customer_phone, subtotal, discount_percent, discount_amount,
		 total_amount, payment_method, bill_status, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		RETURNING id
	`, b.Number, b.UserID, b.CustomerName, b.CustomerPhone, b.Subtotal, b.DiscountPct, b.DiscountAmount,
		b.TotalAmount, string(b.PaymentMethod), string(b.Status), b.CreatedAt).Scan(&b.ID)
}

// InsertItemsWithTx stores items in order and fills in their IDs.
func (r BillRepository) InsertItemsWithTx(ctx context.Context, tx pgx.Tx, billID int64, items []domain.BillItem) error {
	for i := range items {
		items[i].BillID = billID
		err := tx.QueryRow(ctx, `
			INSERT INTO bill_items (bill_id, product_id, product_name, quantity, unit_price, total_price, position)
			VALUES ($1,$2,$3,$4,$5,$6,$7)
			RETURNING id
		`, billID, items[i].ProductID, items[i].ProductName, items[i].Quantity, items[i].UnitPrice, items[i].TotalPrice, i).
			Scan(&items[i].ID)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r BillRepository) GetByID(ctx context.Context, id int64) (*domain.Bill, error) {
	row := r.DB.Pool.QueryRow(ctx, `SELECT `+billColumns+` FROM bills WHERE id=$1`, id)
	return r.getOne(ctx, row)
}

func (r BillRepository) GetByNumber(ctx context.Context, number string) (*domain.Bill, error) {
	row := r.DB.Pool.QueryRow(ctx, `SELECT `+billColumns+` FROM bills WHERE bill_number=$1`, number)
	return r.getOne(ctx, row)
}

// List returns every bill in insertion order.
func (r BillRepository) List(ctx context.Context) ([]domain.Bill, error) {
	rows, err := r.DB.Pool.Query(ctx, `SELECT `+billColumns+` FROM bills ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	return r.collect(ctx, rows)
}

// ListBetween returns bills created in [start, end] (inclusive).
func (r BillRepository) ListBetween(ctx context.Context, start, end time.Time, newestFirst bool) ([]domain.Bill, error) {
	order := "created_at ASC, id ASC"
	if newestFirst {
		order = "created_at DESC, id DESC"
	}
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT `+billColumns+`
		FROM bills
		WHERE created_at >= $1 AND created_at <= $2
		ORDER BY `+order, start, end)
	if err != nil {
		return nil, err
	}
	return r.collect(ctx, rows)
}

func (r BillRepository) getOne(ctx context.Context, row pgx.Row) (*domain.Bill, error) {
	b, err := scanBill(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	bills := []domain.Bill{*b}
	if err := r.attachItems(ctx, bills); err != nil {
		return nil, err
	}
	return &bills[0], nil
}

func (r BillRepository) collect(ctx context.Context, rows pgx.Rows) ([]domain.Bill, error) {
	defer rows.Close()
	bills := []domain.Bill{}
	for rows.Next() {
		b, err := scanBill(rows)
		if err != nil {
			return nil, err
		}
		bills = append(bills, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	if err := r.attachItems(ctx, bills); err != nil {
		return nil, err
	}
	return bills, nil
}

func (r BillRepository) attachItems(ctx context.Context, bills []domain.Bill) error {
	if len(bills) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(bills))
	for _, b := range bills {
		ids = append(ids, b.ID)
	}

	itemRows, err := r.DB.Pool.Query(ctx, `
		SELECT bill_id, id, product_id, product_name, quantity, unit_price, total_price
		FROM bill_items
		WHERE bill_id = ANY($1)
		ORDER BY bill_id, position, id
	`, ids)
	if err != nil {
		return err
	}
	defer itemRows.Close()

	itemsByBill := make(map[int64][]domain.BillItem)
	for itemRows.Next() {
		var (
			it        domain.BillItem
			productID pgtype.Int8
		)
		if err := itemRows.Scan(&it.BillID, &it.ID, &productID, &it.ProductName, &it.Quantity, &it.UnitPrice, &it.TotalPrice); err != nil {
			return err
		}
		if productID.Valid {
			id := productID.Int64
			it.ProductID = &id
		}
		itemsByBill[it.BillID] = append(itemsByBill[it.BillID], it)
	}
	if err := itemRows.Err(); err != nil {
		return err
	}

	for i := range bills {
		bills[i].Items = itemsByBill[bills[i].ID]
		if bills[i].Items == nil {
			bills[i].Items = []domain.BillItem{}
		}
	}
	return nil
}

func scanBill(row interface {
	Scan(dest ...any) error
}) (*domain.Bill, error) {
	var (
		b       domain.Bill
		payment string
		status  string
	)
	if err := row.Scan(
		&b.ID, &b.Number, &b.UserID, &b.CustomerName, &b.CustomerPhone, &b.Subtotal, &b.DiscountPct,
		&b.DiscountAmount, &b.TotalAmount, &payment, &status, &b.CreatedAt, &b.SyncedAt,
	); err != nil {
		return nil, err
	}
	b.PaymentMethod = domain.PaymentMethod(payment)
	b.Status = domain.BillStatus(status)
	return &b, nil
}
