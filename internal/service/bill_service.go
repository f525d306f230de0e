package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"retailbilling-backend/internal/domain"
	"retailbilling-backend/internal/metrics"
	"retailbilling-backend/internal/repository"
)

// TxRunner opens a database transaction around fn. db.Postgres satisfies it.
type TxRunner interface {
	InTx(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error
}

// UserStore is the identity lookup used by billing and auth.
type UserStore interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
}

// BillStore is the bill persistence used by BillService.
type BillStore interface {
	NextSequenceWithTx(ctx context.Context, tx pgx.Tx, dayStart, dayEnd time.Time) (int, error)
	InsertWithTx(ctx context.Context, tx pgx.Tx, b *domain.Bill) error
	InsertItemsWithTx(ctx context.Context, tx pgx.Tx, billID int64, items []domain.BillItem) error
	GetByID(ctx context.Context, id int64) (*domain.Bill, error)
	GetByNumber(ctx context.Context, number string) (*domain.Bill, error)
	List(ctx context.Context) ([]domain.Bill, error)
	ListBetween(ctx context.Context, start, end time.Time, newestFirst bool) ([]domain.Bill, error)
}

type BillService struct {
	Tx       TxRunner
	Users    UserStore
	Bills    BillStore
	Catalog  ProductService
	Logger   *slog.Logger
	Prefix   string
	Discount decimal.Decimal // fixed percent applied to every subtotal
	Now      func() time.Time
}

type CreateBillInput struct {
	UserID         int64
	CustomerName   string
	CustomerPhone  string
	Items          []BillItemInput
	ManualDiscount *decimal.Decimal
	PaymentMethod  string
}

type BillItemInput struct {
	ProductID   *int64
	ProductName string
	Quantity    int
	UnitPrice   decimal.Decimal
}

type Totals struct {
	Subtotal       decimal.Decimal
	DiscountAmount decimal.Decimal
	Total          decimal.Decimal
}

var hundred = decimal.NewFromInt(100)

// ComputeTotals prices a bill: the fixed percentage of the subtotal is rounded half-up to
// cents, the manual amount is added on top, and the total never drops below zero.
func ComputeTotals(items []BillItemInput, discountPct, manual decimal.Decimal) Totals {
	subtotal := decimal.Zero
	for _, it := range items {
		subtotal = subtotal.Add(it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	fixed := subtotal.Mul(discountPct).Div(hundred).Round(2)
	discount := fixed.Add(manual)
	total := subtotal.Sub(discount)
	if total.IsNegative() {
		total = decimal.Zero
	}
	return Totals{Subtotal: subtotal, DiscountAmount: discount, Total: total}
}

// FormatBillNumber renders PREFIX-YYYYMMDD-NNNN.
func FormatBillNumber(prefix string, day time.Time, seq int) string {
	return fmt.Sprintf("%s-%s-%04d", prefix, day.Format("20060102"), seq)
}

func (s BillService) Create(ctx context.Context, in CreateBillInput) (*domain.Bill, error) {
	method, manual, err := validateBill(in)
	if err != nil {
		return nil, err
	}

	if _, err := s.Users.GetByID(ctx, in.UserID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.NotFoundf("user %d not found", in.UserID)
		}
		return nil, err
	}

	now := s.now()
	totals := ComputeTotals(in.Items, s.Discount, manual)
	if totals.Subtotal.GreaterThan(maxBillAmount) {
		return nil, domain.Invalidf("bill subtotal must not exceed %s", maxBillAmount.StringFixed(2))
	}
	bill := &domain.Bill{
		UserID:         in.UserID,
		CustomerName:   strings.TrimSpace(in.CustomerName),
		CustomerPhone:  strings.TrimSpace(in.CustomerPhone),
		Subtotal:       totals.Subtotal,
		DiscountPct:    s.Discount,
		DiscountAmount: totals.DiscountAmount,
		TotalAmount:    totals.Total,
		PaymentMethod:  method,
		Status:         domain.BillCompleted,
		CreatedAt:      now,
	}

	err = s.Tx.InTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		dayStart, dayEnd := dayBounds(now)
		seq, err := s.Bills.NextSequenceWithTx(ctx, tx, dayStart, dayEnd)
		if err != nil {
			return fmt.Errorf("next bill sequence: %w", err)
		}
		bill.Number = FormatBillNumber(s.Prefix, now, seq)

		if err := s.Bills.InsertWithTx(ctx, tx, bill); err != nil {
			return err
		}

		items := make([]domain.BillItem, 0, len(in.Items))
		for _, it := range in.Items {
			item := domain.BillItem{
				ProductName: strings.TrimSpace(it.ProductName),
				Quantity:    it.Quantity,
				UnitPrice:   it.UnitPrice,
				TotalPrice:  it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))),
			}
			productID, err := s.resolveProduct(ctx, tx, it)
			if err != nil {
				return err
			}
			item.ProductID = productID
			items = append(items, item)
		}
		if err := s.Bills.InsertItemsWithTx(ctx, tx, bill.ID, items); err != nil {
			return err
		}
		bill.Items = items
		return nil
	})
	if err != nil {
		if repository.IsDuplicate(err) {
			return nil, domain.Conflictf("bill number %s already exists", bill.Number)
		}
		return nil, err
	}

	metrics.BillsCreated.WithLabelValues(string(bill.PaymentMethod)).Inc()
	metrics.BillAmount.Observe(bill.TotalAmount.InexactFloat64())
	s.log().Info("bill created",
		"bill_number", bill.Number,
		"user_id", bill.UserID,
		"items", len(bill.Items),
		"total", bill.TotalAmount.StringFixed(2),
	)
	return bill, nil
}

// resolveProduct links an explicit product id when it exists and otherwise runs catalog
// reconciliation on the line's name and price. A dangling id leaves the line unlinked.
func (s BillService) resolveProduct(ctx context.Context, tx pgx.Tx, it BillItemInput) (*int64, error) {
	if it.ProductID != nil {
		p, err := s.Catalog.Products.GetByIDWithTx(ctx, tx, *it.ProductID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, nil
			}
			return nil, err
		}
		return &p.ID, nil
	}
	p, err := s.Catalog.ReconcileWithTx(ctx, tx, it.ProductName, it.UnitPrice)
	if err != nil {
		return nil, fmt.Errorf("reconcile product %q: %w", it.ProductName, err)
	}
	return &p.ID, nil
}

func (s BillService) Get(ctx context.Context, id int64) (*domain.Bill, error) {
	b, err := s.Bills.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.NotFoundf("bill %d not found", id)
		}
		return nil, err
	}
	return b, nil
}

func (s BillService) GetByNumber(ctx context.Context, number string) (*domain.Bill, error) {
	b, err := s.Bills.GetByNumber(ctx, number)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.NotFoundf("bill %s not found", number)
		}
		return nil, err
	}
	return b, nil
}

func (s BillService) List(ctx context.Context) ([]domain.Bill, error) {
	return s.Bills.List(ctx)
}

// Today lists bills created on the server's current calendar day, newest first.
func (s BillService) Today(ctx context.Context) ([]domain.Bill, error) {
	start, end := dayBounds(s.now())
	return s.Bills.ListBetween(ctx, start, end.Add(-time.Microsecond), true)
}

// Range lists bills created in [start, end], oldest first.
func (s BillService) Range(ctx context.Context, start, end time.Time) ([]domain.Bill, error) {
	if start.After(end) {
		return nil, domain.Invalidf("startDate must not be after endDate")
	}
	return s.Bills.ListBetween(ctx, start, end, false)
}

func validateBill(in CreateBillInput) (domain.PaymentMethod, decimal.Decimal, error) {
	if in.UserID <= 0 {
		return "", decimal.Zero, domain.Invalidf("userId is required")
	}
	if len(in.Items) == 0 {
		return "", decimal.Zero, domain.Invalidf("bill must contain at least one item")
	}
	for i, it := range in.Items {
		if strings.TrimSpace(it.ProductName) == "" {
			return "", decimal.Zero, domain.Invalidf("items[%d]: productName is required", i)
		}
		if it.Quantity <= 0 {
			return "", decimal.Zero, domain.Invalidf("items[%d]: quantity must be greater than zero", i)
		}
		if err := checkAmount(fmt.Sprintf("items[%d]: unitPrice", i), it.UnitPrice, maxPrice); err != nil {
			return "", decimal.Zero, err
		}
	}
	if err := checkLength("customerPhone", strings.TrimSpace(in.CustomerPhone), maxPhoneLen); err != nil {
		return "", decimal.Zero, err
	}
	manual := decimal.Zero
	if in.ManualDiscount != nil {
		if err := checkAmount("manualDiscountAmount", *in.ManualDiscount, maxBillAmount); err != nil {
			return "", decimal.Zero, err
		}
		manual = *in.ManualDiscount
	}
	if strings.TrimSpace(in.PaymentMethod) == "" {
		return "", decimal.Zero, domain.Invalidf("paymentMethod is required")
	}
	method, ok := domain.ParsePaymentMethod(in.PaymentMethod)
	if !ok {
		return "", decimal.Zero, domain.Invalidf("paymentMethod must be one of CASH, ONLINE, CARD, UPI")
	}
	return method, manual, nil
}

// dayBounds returns [midnight, next midnight) in t's location.
func dayBounds(t time.Time) (time.Time, time.Time) {
	y, m, d := t.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 0, 1)
}

func (s BillService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s BillService) log() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}
