package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"retailbilling-backend/internal/db"
	"retailbilling-backend/internal/domain"
)

type ProductRepository struct {
	DB *db.Postgres
}

const productColumns = `id, name, price, image_path, stock_quantity, is_active, created_at, updated_at`

func (r ProductRepository) List(ctx context.Context, activeOnly bool) ([]domain.Product, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE ($1 = false OR is_active)
		ORDER BY id ASC
	`, activeOnly)
	if err != nil {
		return nil, err
	}
	return collectProducts(rows)
}

func (r ProductRepository) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	return getProduct(ctx, r.DB.Pool, id)
}

func (r ProductRepository) GetByIDWithTx(ctx context.Context, tx pgx.Tx, id int64) (*domain.Product, error) {
	return getProduct(ctx, tx, id)
}

// FindByName matches on the trimmed, case-folded name.
func (r ProductRepository) FindByName(ctx context.Context, name string) (*domain.Product, error) {
	return findProductByName(ctx, r.DB.Pool, name)
}

func (r ProductRepository) FindByNameWithTx(ctx context.Context, tx pgx.Tx, name string) (*domain.Product, error) {
	return findProductByName(ctx, tx, name)
}

// Search returns products whose name contains term, ignoring case.
func (r ProductRepository) Search(ctx context.Context, term string) ([]domain.Product, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE name ILIKE '%' || $1::text || '%' ESCAPE '\'
		ORDER BY id ASC
	`, escapeLike(term))
	if err != nil {
		return nil, err
	}
	return collectProducts(rows)
}

// SuggestNames returns distinct active product names containing term, alphabetically.
func (r ProductRepository) SuggestNames(ctx context.Context, term string, limit int) ([]string, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT DISTINCT name
		FROM products
		WHERE is_active AND name ILIKE '%' || $1::text || '%' ESCAPE '\'
		ORDER BY name ASC
		LIMIT $2
	`, escapeLike(term), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

func (r ProductRepository) Create(ctx context.Context, p domain.Product) (*domain.Product, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		INSERT INTO products (name, price, image_path, stock_quantity, is_active, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5, now(), now())
		RETURNING `+productColumns+`
	`, p.Name, p.Price, p.ImagePath, p.StockQuantity, p.Active)
	return scanProduct(row)
}

// Patch applies only the non-nil fields of the patch.
func (r ProductRepository) Patch(ctx context.Context, id int64, patch domain.ProductPatch) (*domain.Product, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		UPDATE products
		SET name=COALESCE($1, name),
			price=COALESCE($2, price),
			image_path=COALESCE($3, image_path),
			stock_quantity=COALESCE($4, stock_quantity),
			is_active=COALESCE($5, is_active),
			updated_at=now()
		WHERE id=$6
		RETURNING `+productColumns+`
	`, patch.Name, patch.Price, patch.ImagePath, patch.StockQuantity, patch.Active, id)
	return scanProductOrNotFound(row)
}

// RenameAndRepriceWithTx overwrites name and price of an existing product.
func (r ProductRepository) RenameAndRepriceWithTx(ctx context.Context, tx pgx.Tx, id int64, name string, price decimal.Decimal) (*domain.Product, error) {
	row := tx.QueryRow(ctx, `
		UPDATE products
		SET name=$1, price=$2, updated_at=now()
		WHERE id=$3
		RETURNING `+productColumns+`
	`, name, price, id)
	return scanProductOrNotFound(row)
}

// UpsertByNameWithTx creates an active, zero-stock product or, when another writer got
// there first, takes over its name and price. inserted reports which branch ran.
func (r ProductRepository) UpsertByNameWithTx(ctx context.Context, tx pgx.Tx, name string, price decimal.Decimal) (p *domain.Product, inserted bool, err error) {
	var out domain.Product
	err = tx.QueryRow(ctx, `
		INSERT INTO products (name, price, image_path, stock_quantity, is_active, created_at, updated_at)
		VALUES ($1,$2,'',0,true, now(), now())
		ON CONFLICT ((lower(btrim(name)))) DO UPDATE SET
			name=EXCLUDED.name,
			price=EXCLUDED.price,
			updated_at=now()
		RETURNING `+productColumns+`, (xmax = 0)
	`, name, price).Scan(
		&out.ID, &out.Name, &out.Price, &out.ImagePath, &out.StockQuantity, &out.Active, &out.CreatedAt, &out.UpdatedAt, &inserted,
	)
	if err != nil {
		return nil, false, err
	}
	return &out, inserted, nil
}

// CreateIfMissing inserts a name-only product unless the normalized name exists.
func (r ProductRepository) CreateIfMissing(ctx context.Context, name string) (*domain.Product, bool, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		INSERT INTO products (name, price, image_path, stock_quantity, is_active, created_at, updated_at)
		VALUES ($1, 0, '', 0, true, now(), now())
		ON CONFLICT ((lower(btrim(name)))) DO NOTHING
		RETURNING `+productColumns+`
	`, name)
	p, err := scanProduct(row)
	if err == nil {
		return p, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, err
	}
	existing, err := r.FindByName(ctx, name)
	return existing, false, err
}

func (r ProductRepository) SetActive(ctx context.Context, id int64, active bool) error {
	ct, err := r.DB.Pool.Exec(ctx, `UPDATE products SET is_active=$1, updated_at=now() WHERE id=$2`, active, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the row; bill items keep their name snapshot and lose the link.
func (r ProductRepository) Delete(ctx context.Context, id int64) error {
	ct, err := r.DB.Pool.Exec(ctx, `DELETE FROM products WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func getProduct(ctx context.Context, q db.Querier, id int64) (*domain.Product, error) {
	row := q.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id=$1`, id)
	return scanProductOrNotFound(row)
}

func findProductByName(ctx context.Context, q db.Querier, name string) (*domain.Product, error) {
	row := q.QueryRow(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE lower(btrim(name)) = lower(btrim($1))
	`, name)
	return scanProductOrNotFound(row)
}

func collectProducts(rows pgx.Rows) ([]domain.Product, error) {
	defer rows.Close()
	items := []domain.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *p)
	}
	return items, rows.Err()
}

func scanProductOrNotFound(row pgx.Row) (*domain.Product, error) {
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func scanProduct(row interface {
	Scan(dest ...any) error
}) (*domain.Product, error) {
	var p domain.Product
	if err := row.Scan(&p.ID, &p.Name, &p.Price, &p.ImagePath, &p.StockQuantity, &p.Active, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(term string) string {
	return likeEscaper.Replace(term)
}
