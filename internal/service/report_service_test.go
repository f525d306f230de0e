package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"retailbilling-backend/internal/domain"
	"retailbilling-backend/internal/repository"
)

type mockReportStore struct {
	mock.Mock
}

func (m *mockReportStore) Totals(ctx context.Context, from, to time.Time) (repository.SalesTotals, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).(repository.SalesTotals), args.Error(1)
}

func (m *mockReportStore) TopProducts(ctx context.Context, limit int) ([]repository.ProductSales, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]repository.ProductSales), args.Error(1)
}

func (m *mockReportStore) BillAmountsSince(ctx context.Context, since time.Time) ([]repository.BillAmount, error) {
	args := m.Called(ctx, since)
	return args.Get(0).([]repository.BillAmount), args.Error(1)
}

func TestSummaryUsesTodayBounds(t *testing.T) {
	now := time.Date(2024, 3, 5, 15, 0, 0, 0, shopZone)
	start := time.Date(2024, 3, 5, 0, 0, 0, 0, shopZone)
	store := new(mockReportStore)
	store.On("Totals", mock.Anything, start, start.AddDate(0, 0, 1)).Return(repository.SalesTotals{BillCount: 2, Revenue: dec("90")}, nil)
	store.On("Totals", mock.Anything, time.Time{}, time.Time{}).Return(repository.SalesTotals{BillCount: 40, Revenue: dec("5000")}, nil)

	sum, err := ReportService{Reports: store, Now: func() time.Time { return now }}.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), sum.Today.BillCount)
	assert.Equal(t, int64(40), sum.AllTime.BillCount)
	store.AssertExpectations(t)
}

func TestTopProductsClampsLimit(t *testing.T) {
	store := new(mockReportStore)
	store.On("TopProducts", mock.Anything, defaultTopProducts).Return([]repository.ProductSales{}, nil).Once()
	store.On("TopProducts", mock.Anything, maxTopProducts).Return([]repository.ProductSales{}, nil).Once()
	svc := ReportService{Reports: store}

	_, err := svc.TopProducts(context.Background(), 0)
	require.NoError(t, err)
	_, err = svc.TopProducts(context.Background(), 500)
	require.NoError(t, err)
	store.AssertExpectations(t)
}

func TestSalesBucketsByLocalDay(t *testing.T) {
	now := time.Date(2024, 3, 5, 15, 0, 0, 0, shopZone)
	first := time.Date(2024, 2, 28, 0, 0, 0, 0, shopZone)
	store := new(mockReportStore)
	store.On("BillAmountsSince", mock.Anything, first).Return([]repository.BillAmount{
		{CreatedAt: first.Add(time.Hour), Total: dec("10")},
		{CreatedAt: first.Add(2 * time.Hour), Total: dec("15.50")},
		// 23:00 UTC on Mar 4 is already Mar 5 in the shop's zone.
		{CreatedAt: time.Date(2024, 3, 4, 23, 0, 0, 0, time.UTC), Total: dec("7")},
	}, nil)

	points, err := ReportService{Reports: store, Now: func() time.Time { return now }}.Sales(context.Background(), "7d")
	require.NoError(t, err)
	require.Len(t, points, 7)
	assert.Equal(t, "2024-02-28", points[0].Date)
	assert.Equal(t, int64(2), points[0].BillCount)
	assert.True(t, dec("25.5").Equal(points[0].Revenue))
	assert.Equal(t, "2024-03-05", points[6].Date)
	assert.True(t, dec("7").Equal(points[6].Revenue))
	assert.True(t, points[3].Revenue.IsZero())
}

func TestSalesRejectsUnknownRange(t *testing.T) {
	_, err := ReportService{Reports: new(mockReportStore)}.Sales(context.Background(), "90d")
	assert.ErrorIs(t, err, domain.ErrValidation)
}
