package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"retailbilling-backend/internal/domain"
	"retailbilling-backend/internal/repository"
)

// memDB is an in-memory stand-in for Postgres. InTx snapshots catalog and bill state
// and restores it when fn fails, mirroring a rollback.
type memDB struct {
	users    map[int64]*domain.User
	products []domain.Product
	bills    []domain.Bill
	seq      map[string]int
	settings *domain.ShopSettings

	settingsRows  int
	nextProductID int64
	nextBillID    int64
	nextItemID    int64
	failItems     error
}

func newMemDB() *memDB {
	return &memDB{
		users: map[int64]*domain.User{},
		seq:   map[string]int{},
	}
}

func (m *memDB) InTx(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error {
	products := append([]domain.Product(nil), m.products...)
	bills := make([]domain.Bill, len(m.bills))
	for i, b := range m.bills {
		b.Items = append([]domain.BillItem(nil), b.Items...)
		bills[i] = b
	}
	seq := make(map[string]int, len(m.seq))
	for k, v := range m.seq {
		seq[k] = v
	}
	if err := fn(ctx, nil); err != nil {
		m.products, m.bills, m.seq = products, bills, seq
		return err
	}
	return nil
}

func (m *memDB) addUser(u domain.User) *domain.User {
	m.users[u.ID] = &u
	return &u
}

func (m *memDB) addProduct(name string, price string) domain.Product {
	m.nextProductID++
	p := domain.Product{ID: m.nextProductID, Name: name, Price: decimal.RequireFromString(price), Active: true}
	m.products = append(m.products, p)
	return p
}

func (m *memDB) productByID(id int64) *domain.Product {
	for i := range m.products {
		if m.products[i].ID == id {
			return &m.products[i]
		}
	}
	return nil
}

func (m *memDB) productByName(name string) *domain.Product {
	key := domain.NormalizeProductName(name)
	for i := range m.products {
		if domain.NormalizeProductName(m.products[i].Name) == key {
			return &m.products[i]
		}
	}
	return nil
}

var errUnique = &pgconn.PgError{Code: "23505"}

type memUsers struct{ db *memDB }

func (u memUsers) GetByID(_ context.Context, id int64) (*domain.User, error) {
	if user, ok := u.db.users[id]; ok {
		cp := *user
		return &cp, nil
	}
	return nil, repository.ErrNotFound
}

func (u memUsers) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	for _, user := range u.db.users {
		if user.Username == username {
			cp := *user
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (u memUsers) List(_ context.Context) ([]domain.User, error) {
	var out []domain.User
	for _, user := range u.db.users {
		out = append(out, *user)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (u memUsers) CreateIfMissing(_ context.Context, p repository.CreateUserParams) (bool, error) {
	var maxID int64
	for id, user := range u.db.users {
		if user.Username == p.Username {
			return false, nil
		}
		if user.Email == p.Email {
			return false, errUnique
		}
		if id > maxID {
			maxID = id
		}
	}
	u.db.addUser(domain.User{
		ID: maxID + 1, Username: p.Username, PasswordHash: p.PasswordHash,
		Email: p.Email, FullName: p.FullName, Role: p.Role, Status: domain.UserActive,
	})
	return true, nil
}

type memProducts struct{ db *memDB }

func (r memProducts) List(_ context.Context, activeOnly bool) ([]domain.Product, error) {
	out := []domain.Product{}
	for _, p := range r.db.products {
		if activeOnly && !p.Active {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (r memProducts) GetByID(_ context.Context, id int64) (*domain.Product, error) {
	if p := r.db.productByID(id); p != nil {
		cp := *p
		return &cp, nil
	}
	return nil, repository.ErrNotFound
}

func (r memProducts) GetByIDWithTx(ctx context.Context, _ pgx.Tx, id int64) (*domain.Product, error) {
	return r.GetByID(ctx, id)
}

func (r memProducts) FindByNameWithTx(_ context.Context, _ pgx.Tx, name string) (*domain.Product, error) {
	if p := r.db.productByName(name); p != nil {
		cp := *p
		return &cp, nil
	}
	return nil, repository.ErrNotFound
}

func (r memProducts) Search(_ context.Context, term string) ([]domain.Product, error) {
	out := []domain.Product{}
	for _, p := range r.db.products {
		if strings.Contains(strings.ToLower(p.Name), strings.ToLower(term)) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r memProducts) SuggestNames(_ context.Context, term string, limit int) ([]string, error) {
	seen := map[string]bool{}
	names := []string{}
	for _, p := range r.db.products {
		if !p.Active || seen[p.Name] || !strings.Contains(strings.ToLower(p.Name), strings.ToLower(term)) {
			continue
		}
		seen[p.Name] = true
		names = append(names, p.Name)
	}
	sort.Strings(names)
	if len(names) > limit {
		names = names[:limit]
	}
	return names, nil
}

func (r memProducts) Create(_ context.Context, p domain.Product) (*domain.Product, error) {
	if r.db.productByName(p.Name) != nil {
		return nil, errUnique
	}
	r.db.nextProductID++
	p.ID = r.db.nextProductID
	r.db.products = append(r.db.products, p)
	return &p, nil
}

func (r memProducts) Patch(_ context.Context, id int64, patch domain.ProductPatch) (*domain.Product, error) {
	p := r.db.productByID(id)
	if p == nil {
		return nil, repository.ErrNotFound
	}
	if patch.Name != nil {
		if other := r.db.productByName(*patch.Name); other != nil && other.ID != id {
			return nil, errUnique
		}
		p.Name = *patch.Name
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.ImagePath != nil {
		p.ImagePath = *patch.ImagePath
	}
	if patch.StockQuantity != nil {
		p.StockQuantity = *patch.StockQuantity
	}
	if patch.Active != nil {
		p.Active = *patch.Active
	}
	cp := *p
	return &cp, nil
}

func (r memProducts) RenameAndRepriceWithTx(_ context.Context, _ pgx.Tx, id int64, name string, price decimal.Decimal) (*domain.Product, error) {
	p := r.db.productByID(id)
	if p == nil {
		return nil, repository.ErrNotFound
	}
	p.Name, p.Price = name, price
	cp := *p
	return &cp, nil
}

func (r memProducts) UpsertByNameWithTx(_ context.Context, _ pgx.Tx, name string, price decimal.Decimal) (*domain.Product, bool, error) {
	if p := r.db.productByName(name); p != nil {
		p.Name, p.Price = name, price
		cp := *p
		return &cp, false, nil
	}
	p := r.db.addProduct(name, price.String())
	return &p, true, nil
}

func (r memProducts) CreateIfMissing(_ context.Context, name string) (*domain.Product, bool, error) {
	if p := r.db.productByName(name); p != nil {
		cp := *p
		return &cp, false, nil
	}
	p := r.db.addProduct(name, "0")
	return &p, true, nil
}

func (r memProducts) SetActive(_ context.Context, id int64, active bool) error {
	p := r.db.productByID(id)
	if p == nil {
		return repository.ErrNotFound
	}
	p.Active = active
	return nil
}

func (r memProducts) Delete(_ context.Context, id int64) error {
	for i, p := range r.db.products {
		if p.ID != id {
			continue
		}
		r.db.products = append(r.db.products[:i], r.db.products[i+1:]...)
		for bi := range r.db.bills {
			for ii := range r.db.bills[bi].Items {
				if pid := r.db.bills[bi].Items[ii].ProductID; pid != nil && *pid == id {
					r.db.bills[bi].Items[ii].ProductID = nil
				}
			}
		}
		return nil
	}
	return repository.ErrNotFound
}

type memBills struct{ db *memDB }

func (r memBills) NextSequenceWithTx(_ context.Context, _ pgx.Tx, dayStart, dayEnd time.Time) (int, error) {
	key := dayStart.Format("2006-01-02")
	if last, ok := r.db.seq[key]; ok {
		r.db.seq[key] = last + 1
		return last + 1, nil
	}
	count := 0
	for _, b := range r.db.bills {
		if !b.CreatedAt.Before(dayStart) && b.CreatedAt.Before(dayEnd) {
			count++
		}
	}
	r.db.seq[key] = count + 1
	return count + 1, nil
}

func (r memBills) InsertWithTx(_ context.Context, _ pgx.Tx, b *domain.Bill) error {
	for _, existing := range r.db.bills {
		if existing.Number == b.Number {
			return errUnique
		}
	}
	r.db.nextBillID++
	b.ID = r.db.nextBillID
	stored := *b
	stored.Items = nil
	r.db.bills = append(r.db.bills, stored)
	return nil
}

func (r memBills) InsertItemsWithTx(_ context.Context, _ pgx.Tx, billID int64, items []domain.BillItem) error {
	if r.db.failItems != nil {
		return r.db.failItems
	}
	for i := range items {
		r.db.nextItemID++
		items[i].ID = r.db.nextItemID
		items[i].BillID = billID
	}
	for i := range r.db.bills {
		if r.db.bills[i].ID == billID {
			r.db.bills[i].Items = append([]domain.BillItem(nil), items...)
		}
	}
	return nil
}

func (r memBills) GetByID(_ context.Context, id int64) (*domain.Bill, error) {
	for _, b := range r.db.bills {
		if b.ID == id {
			return &b, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r memBills) GetByNumber(_ context.Context, number string) (*domain.Bill, error) {
	for _, b := range r.db.bills {
		if b.Number == number {
			return &b, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r memBills) List(_ context.Context) ([]domain.Bill, error) {
	return append([]domain.Bill{}, r.db.bills...), nil
}

func (r memBills) ListBetween(_ context.Context, start, end time.Time, newestFirst bool) ([]domain.Bill, error) {
	out := []domain.Bill{}
	for _, b := range r.db.bills {
		if !b.CreatedAt.Before(start) && !b.CreatedAt.After(end) {
			out = append(out, b)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if newestFirst {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

type memSettings struct{ db *memDB }

func (r memSettings) Get(_ context.Context) (*domain.ShopSettings, error) {
	if r.db.settings == nil {
		return nil, repository.ErrNotFound
	}
	cp := *r.db.settings
	return &cp, nil
}

func (r memSettings) Save(_ context.Context, s domain.ShopSettings) (*domain.ShopSettings, error) {
	s.ID = 1
	if r.db.settings == nil {
		r.db.settingsRows++
	}
	r.db.settings = &s
	cp := s
	return &cp, nil
}

func (r memSettings) UpdateLogo(_ context.Context, logoPath string) (*domain.ShopSettings, error) {
	if r.db.settings == nil {
		return nil, repository.ErrNotFound
	}
	r.db.settings.LogoPath = logoPath
	cp := *r.db.settings
	return &cp, nil
}
