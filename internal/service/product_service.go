package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"retailbilling-backend/internal/domain"
	"retailbilling-backend/internal/metrics"
	"retailbilling-backend/internal/repository"
)

const suggestionLimit = 10

// ProductStore is the catalog persistence the product and billing services rely on.
// repository.ProductRepository satisfies it.
type ProductStore interface {
	List(ctx context.Context, activeOnly bool) ([]domain.Product, error)
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	GetByIDWithTx(ctx context.Context, tx pgx.Tx, id int64) (*domain.Product, error)
	FindByNameWithTx(ctx context.Context, tx pgx.Tx, name string) (*domain.Product, error)
	Search(ctx context.Context, term string) ([]domain.Product, error)
	SuggestNames(ctx context.Context, term string, limit int) ([]string, error)
	Create(ctx context.Context, p domain.Product) (*domain.Product, error)
	Patch(ctx context.Context, id int64, patch domain.ProductPatch) (*domain.Product, error)
	RenameAndRepriceWithTx(ctx context.Context, tx pgx.Tx, id int64, name string, price decimal.Decimal) (*domain.Product, error)
	UpsertByNameWithTx(ctx context.Context, tx pgx.Tx, name string, price decimal.Decimal) (*domain.Product, bool, error)
	CreateIfMissing(ctx context.Context, name string) (*domain.Product, bool, error)
	SetActive(ctx context.Context, id int64, active bool) error
	Delete(ctx context.Context, id int64) error
}

type ProductService struct {
	Products ProductStore
	Logger   *slog.Logger
}

type CreateProductInput struct {
	Name          string
	Price         *decimal.Decimal
	ImagePath     string
	StockQuantity *int
	Active        *bool
}

func (s ProductService) List(ctx context.Context, activeOnly bool) ([]domain.Product, error) {
	return s.Products.List(ctx, activeOnly)
}

func (s ProductService) Get(ctx context.Context, id int64) (*domain.Product, error) {
	p, err := s.Products.GetByID(ctx, id)
	if err != nil {
		return nil, productLookupErr(err, id)
	}
	return p, nil
}

func (s ProductService) Search(ctx context.Context, term string) ([]domain.Product, error) {
	return s.Products.Search(ctx, strings.TrimSpace(term))
}

// Suggestions returns up to ten distinct active names containing term.
func (s ProductService) Suggestions(ctx context.Context, term string) ([]string, error) {
	return s.Products.SuggestNames(ctx, strings.TrimSpace(term), suggestionLimit)
}

func (s ProductService) Create(ctx context.Context, in CreateProductInput) (*domain.Product, error) {
	p := domain.Product{
		Name:      strings.TrimSpace(in.Name),
		Price:     decimal.Zero,
		ImagePath: strings.TrimSpace(in.ImagePath),
		Active:    true,
	}
	if p.Name == "" {
		return nil, domain.Invalidf("productName is required")
	}
	if in.Price != nil {
		if err := checkAmount("price", *in.Price, maxPrice); err != nil {
			return nil, err
		}
		p.Price = *in.Price
	}
	if in.StockQuantity != nil {
		if *in.StockQuantity < 0 {
			return nil, domain.Invalidf("stockQuantity must not be negative")
		}
		p.StockQuantity = *in.StockQuantity
	}
	if in.Active != nil {
		p.Active = *in.Active
	}

	created, err := s.Products.Create(ctx, p)
	if err != nil {
		if repository.IsDuplicate(err) {
			return nil, domain.Conflictf("product %q already exists", p.Name)
		}
		return nil, err
	}
	return created, nil
}

// Update applies a partial patch; absent fields keep their stored values.
func (s ProductService) Update(ctx context.Context, id int64, patch domain.ProductPatch) (*domain.Product, error) {
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, domain.Invalidf("productName must not be blank")
		}
		patch.Name = &name
	}
	if patch.Price != nil {
		if !patch.Price.IsPositive() {
			return nil, domain.Invalidf("price must be greater than zero")
		}
		if err := checkAmount("price", *patch.Price, maxPrice); err != nil {
			return nil, err
		}
	}
	if patch.StockQuantity != nil && *patch.StockQuantity < 0 {
		return nil, domain.Invalidf("stockQuantity must not be negative")
	}

	p, err := s.Products.Patch(ctx, id, patch)
	if err != nil {
		if repository.IsDuplicate(err) {
			return nil, domain.Conflictf("product %q already exists", *patch.Name)
		}
		return nil, productLookupErr(err, id)
	}
	return p, nil
}

// Delete is a soft delete: the product is deactivated and stays linked to its bills.
func (s ProductService) Delete(ctx context.Context, id int64) error {
	if err := s.Products.SetActive(ctx, id, false); err != nil {
		return productLookupErr(err, id)
	}
	return nil
}

func (s ProductService) HardDelete(ctx context.Context, id int64) error {
	if err := s.Products.Delete(ctx, id); err != nil {
		return productLookupErr(err, id)
	}
	s.log().Info("product hard deleted", "product_id", id)
	return nil
}

// QuickAdd returns the product with this name, creating a zero-priced one if needed.
func (s ProductService) QuickAdd(ctx context.Context, name string) (*domain.Product, bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, false, domain.Invalidf("productName is required")
	}
	p, created, err := s.Products.CreateIfMissing(ctx, name)
	if err != nil {
		return nil, false, err
	}
	return p, created, nil
}

// ReconcileWithTx records a free-text bill line in the catalog: the product matching the
// trimmed, case-folded name takes the latest casing and price, or a new active product
// with zero stock is created.
func (s ProductService) ReconcileWithTx(ctx context.Context, tx pgx.Tx, name string, price decimal.Decimal) (*domain.Product, error) {
	name = strings.TrimSpace(name)

	existing, err := s.Products.FindByNameWithTx(ctx, tx, name)
	switch {
	case err == nil:
		p, err := s.Products.RenameAndRepriceWithTx(ctx, tx, existing.ID, name, price)
		if err != nil {
			return nil, err
		}
		metrics.ProductsReconciled.WithLabelValues(metrics.OutcomeUpdated).Inc()
		return p, nil
	case errors.Is(err, repository.ErrNotFound):
		p, inserted, err := s.Products.UpsertByNameWithTx(ctx, tx, name, price)
		if err != nil {
			return nil, err
		}
		outcome := metrics.OutcomeUpdated
		if inserted {
			outcome = metrics.OutcomeCreated
		}
		metrics.ProductsReconciled.WithLabelValues(outcome).Inc()
		return p, nil
	default:
		return nil, err
	}
}

func (s ProductService) log() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}

func productLookupErr(err error, id int64) error {
	if errors.Is(err, repository.ErrNotFound) {
		return domain.NotFoundf("product %d not found", id)
	}
	return err
}
