package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"retailbilling-backend/internal/domain"
	"retailbilling-backend/internal/repository"
	"retailbilling-backend/internal/server/authctx"
	"retailbilling-backend/internal/service"
)

type mockBillService struct{ mock.Mock }

func (m *mockBillService) Create(ctx context.Context, in service.CreateBillInput) (*domain.Bill, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Bill), args.Error(1)
}

func (m *mockBillService) Get(ctx context.Context, id int64) (*domain.Bill, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Bill), args.Error(1)
}

func (m *mockBillService) GetByNumber(ctx context.Context, number string) (*domain.Bill, error) {
	args := m.Called(ctx, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Bill), args.Error(1)
}

func (m *mockBillService) List(ctx context.Context) ([]domain.Bill, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Bill), args.Error(1)
}

func (m *mockBillService) Today(ctx context.Context) ([]domain.Bill, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Bill), args.Error(1)
}

func (m *mockBillService) Range(ctx context.Context, start, end time.Time) ([]domain.Bill, error) {
	args := m.Called(ctx, start, end)
	return args.Get(0).([]domain.Bill), args.Error(1)
}

type mockProductService struct{ mock.Mock }

func (m *mockProductService) List(ctx context.Context, activeOnly bool) ([]domain.Product, error) {
	args := m.Called(ctx, activeOnly)
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *mockProductService) Get(ctx context.Context, id int64) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *mockProductService) Search(ctx context.Context, term string) ([]domain.Product, error) {
	args := m.Called(ctx, term)
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *mockProductService) Suggestions(ctx context.Context, term string) ([]string, error) {
	args := m.Called(ctx, term)
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockProductService) Create(ctx context.Context, in service.CreateProductInput) (*domain.Product, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *mockProductService) Update(ctx context.Context, id int64, patch domain.ProductPatch) (*domain.Product, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *mockProductService) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockProductService) HardDelete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockProductService) QuickAdd(ctx context.Context, name string) (*domain.Product, bool, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, false, args.Error(2)
	}
	return args.Get(0).(*domain.Product), args.Bool(1), args.Error(2)
}

type mockSettingsService struct{ mock.Mock }

func (m *mockSettingsService) Get(ctx context.Context) (*domain.ShopSettings, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ShopSettings), args.Error(1)
}

func (m *mockSettingsService) Update(ctx context.Context, in service.UpdateSettingsInput) (*domain.ShopSettings, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ShopSettings), args.Error(1)
}

func (m *mockSettingsService) UpdateLogo(ctx context.Context, logoPath string) (*domain.ShopSettings, error) {
	args := m.Called(ctx, logoPath)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ShopSettings), args.Error(1)
}

type mockAuthService struct{ mock.Mock }

func (m *mockAuthService) Login(ctx context.Context, in service.LoginInput) (*service.AuthResult, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.AuthResult), args.Error(1)
}

func (m *mockAuthService) Me(ctx context.Context, caller authctx.CurrentUser) (*domain.User, error) {
	args := m.Called(ctx, caller)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockAuthService) Logout(ctx context.Context, caller *authctx.CurrentUser) {
	m.Called(ctx, caller)
}

type mockReportService struct{ mock.Mock }

func (m *mockReportService) Summary(ctx context.Context) (service.SalesSummary, error) {
	args := m.Called(ctx)
	return args.Get(0).(service.SalesSummary), args.Error(1)
}

func (m *mockReportService) TopProducts(ctx context.Context, limit int) ([]repository.ProductSales, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]repository.ProductSales), args.Error(1)
}

func (m *mockReportService) Sales(ctx context.Context, rangeKey string) ([]service.DailySales, error) {
	args := m.Called(ctx, rangeKey)
	return args.Get(0).([]service.DailySales), args.Error(1)
}

type routeRegistrar interface {
	RegisterRoutes(r chi.Router)
}

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *apiError       `json:"error"`
}

func newRouter(handlers ...routeRegistrar) chi.Router {
	r := chi.NewRouter()
	for _, h := range handlers {
		h.RegisterRoutes(r)
	}
	return r
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, data any) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	if data != nil {
		require.NoError(t, json.Unmarshal(env.Data, data))
	}
	return env
}
