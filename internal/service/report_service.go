package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"retailbilling-backend/internal/domain"
	"retailbilling-backend/internal/repository"
)

const (
	defaultTopProducts = 5
	maxTopProducts     = 50
)

type ReportStore interface {
	Totals(ctx context.Context, from, to time.Time) (repository.SalesTotals, error)
	TopProducts(ctx context.Context, limit int) ([]repository.ProductSales, error)
	BillAmountsSince(ctx context.Context, since time.Time) ([]repository.BillAmount, error)
}

type ReportService struct {
	Reports ReportStore
	Now     func() time.Time
}

type SalesSummary struct {
	Today   repository.SalesTotals
	AllTime repository.SalesTotals
}

type DailySales struct {
	Date      string
	BillCount int64
	Revenue   decimal.Decimal
}

func (s ReportService) Summary(ctx context.Context) (SalesSummary, error) {
	start, end := dayBounds(s.now())
	today, err := s.Reports.Totals(ctx, start, end)
	if err != nil {
		return SalesSummary{}, err
	}
	all, err := s.Reports.Totals(ctx, time.Time{}, time.Time{})
	if err != nil {
		return SalesSummary{}, err
	}
	return SalesSummary{Today: today, AllTime: all}, nil
}

func (s ReportService) TopProducts(ctx context.Context, limit int) ([]repository.ProductSales, error) {
	switch {
	case limit <= 0:
		limit = defaultTopProducts
	case limit > maxTopProducts:
		limit = maxTopProducts
	}
	return s.Reports.TopProducts(ctx, limit)
}

// Sales returns one point per local calendar day, oldest first, for "1d", "7d" or "30d".
// Days without bills are reported with zero revenue.
func (s ReportService) Sales(ctx context.Context, rangeKey string) ([]DailySales, error) {
	days, ok := map[string]int{"": 7, "1d": 1, "7d": 7, "30d": 30}[rangeKey]
	if !ok {
		return nil, domain.Invalidf("range must be one of 1d, 7d, 30d")
	}
	todayStart, _ := dayBounds(s.now())
	first := todayStart.AddDate(0, 0, -(days - 1))

	amounts, err := s.Reports.BillAmountsSince(ctx, first)
	if err != nil {
		return nil, err
	}

	points := make([]DailySales, days)
	index := make(map[string]int, days)
	for i := range points {
		label := first.AddDate(0, 0, i).Format("2006-01-02")
		points[i] = DailySales{Date: label, Revenue: decimal.Zero}
		index[label] = i
	}
	loc := todayStart.Location()
	for _, a := range amounts {
		i, ok := index[a.CreatedAt.In(loc).Format("2006-01-02")]
		if !ok {
			continue
		}
		points[i].BillCount++
		points[i].Revenue = points[i].Revenue.Add(a.Total)
	}
	return points, nil
}

func (s ReportService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
