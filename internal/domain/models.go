package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Enumerations
const (
	RoleOwner   UserRole = "OWNER"
	RoleCashier UserRole = "CASHIER"
	RoleManager UserRole = "MANAGER"

	UserActive   UserStatus = "ACTIVE"
	UserInactive UserStatus = "INACTIVE"
	UserLocked   UserStatus = "LOCKED"

	PaymentCash   PaymentMethod = "CASH"
	PaymentOnline PaymentMethod = "ONLINE"
	PaymentCard   PaymentMethod = "CARD"
	PaymentUPI    PaymentMethod = "UPI"

	BillDraft     BillStatus = "DRAFT"
	BillCompleted BillStatus = "COMPLETED"
	BillCancelled BillStatus = "CANCELLED"
)

type UserRole string
type UserStatus string
type PaymentMethod string
type BillStatus string

// ParsePaymentMethod accepts any casing of a known payment method.
func ParsePaymentMethod(s string) (PaymentMethod, bool) {
	switch pm := PaymentMethod(strings.ToUpper(strings.TrimSpace(s))); pm {
	case PaymentCash, PaymentOnline, PaymentCard, PaymentUPI:
		return pm, true
	}
	return "", false
}

type User struct {
	ID           int64
	Username     string
	PasswordHash string
	Email        string
	FullName     string
	Role         UserRole
	Status       UserStatus
	LastLogin    *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CurrentUser is the caller resolved from a verified access token.
type CurrentUser struct {
	ID       int64
	Username string
	Role     UserRole
}

type Product struct {
	ID            int64
	Name          string
	Price         decimal.Decimal
	ImagePath     string
	StockQuantity int
	Active        bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ProductPatch carries the fields of a partial product update; nil means untouched.
type ProductPatch struct {
	Name          *string
	Price         *decimal.Decimal
	ImagePath     *string
	StockQuantity *int
	Active        *bool
}

type Bill struct {
	ID             int64
	Number         string
	UserID         int64
	CustomerName   string
	CustomerPhone  string
	Subtotal       decimal.Decimal
	DiscountPct    decimal.Decimal
	DiscountAmount decimal.Decimal
	TotalAmount    decimal.Decimal
	PaymentMethod  PaymentMethod
	Status         BillStatus
	CreatedAt      time.Time
	SyncedAt       *time.Time
	Items          []BillItem
}

// BillItem keeps its own product name so historical bills survive catalog renames.
type BillItem struct {
	ID          int64
	BillID      int64
	ProductID   *int64
	ProductName string
	Quantity    int
	UnitPrice   decimal.Decimal
	TotalPrice  decimal.Decimal
}

type ShopSettings struct {
	ID        int64
	ShopName  string
	LogoPath  string
	Address   string
	Phone     string
	Email     string
	TaxRate   decimal.Decimal
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NormalizeProductName is the catalog matching key: trimmed, case-folded.
func NormalizeProductName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
