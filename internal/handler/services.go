package handler

import (
	"context"
	"time"

	"retailbilling-backend/internal/domain"
	"retailbilling-backend/internal/repository"
	"retailbilling-backend/internal/server/authctx"
	"retailbilling-backend/internal/service"
)

// The handlers depend on these narrow views of the service layer.

type BillService interface {
	Create(ctx context.Context, in service.CreateBillInput) (*domain.Bill, error)
	Get(ctx context.Context, id int64) (*domain.Bill, error)
	GetByNumber(ctx context.Context, number string) (*domain.Bill, error)
	List(ctx context.Context) ([]domain.Bill, error)
	Today(ctx context.Context) ([]domain.Bill, error)
	Range(ctx context.Context, start, end time.Time) ([]domain.Bill, error)
}

type ProductService interface {
	List(ctx context.Context, activeOnly bool) ([]domain.Product, error)
	Get(ctx context.Context, id int64) (*domain.Product, error)
	Search(ctx context.Context, term string) ([]domain.Product, error)
	Suggestions(ctx context.Context, term string) ([]string, error)
	Create(ctx context.Context, in service.CreateProductInput) (*domain.Product, error)
	Update(ctx context.Context, id int64, patch domain.ProductPatch) (*domain.Product, error)
	Delete(ctx context.Context, id int64) error
	HardDelete(ctx context.Context, id int64) error
	QuickAdd(ctx context.Context, name string) (*domain.Product, bool, error)
}

type SettingsService interface {
	Get(ctx context.Context) (*domain.ShopSettings, error)
	Update(ctx context.Context, in service.UpdateSettingsInput) (*domain.ShopSettings, error)
	UpdateLogo(ctx context.Context, logoPath string) (*domain.ShopSettings, error)
}

type AuthService interface {
	Login(ctx context.Context, in service.LoginInput) (*service.AuthResult, error)
	Me(ctx context.Context, caller authctx.CurrentUser) (*domain.User, error)
	Logout(ctx context.Context, caller *authctx.CurrentUser)
}

type UserService interface {
	List(ctx context.Context) ([]domain.User, error)
	Get(ctx context.Context, id int64) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
}

type ReportService interface {
	Summary(ctx context.Context) (service.SalesSummary, error)
	TopProducts(ctx context.Context, limit int) ([]repository.ProductSales, error)
	Sales(ctx context.Context, rangeKey string) ([]service.DailySales, error)
}
