package memory

import (
	"context"
	"fmt"
	"log"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"jokersolar/backend/internal/domain"
	"jokersolar/backend/internal/store"
	"jokersolar/backend/internal/xid"
)

type Store struct {
	mu             sync.RWMutex
	items          map[string]domain.InventoryItem
	categories     map[string]domain.Category
	salesByID      map[string]*domain.Sale
	salesByIdem    map[string]*domain.Sale
	creditsByID    map[string]*domain.CreditSale
	creditPayments map[string][]domain.CreditPayment
	usersByEmail   map[string]domain.UserAccount
}

// seedUsers builds the initial in-memory accounts for dev/demo mode.
// Credentials come from SEED_ADMIN_PASSWORD and SEED_USER_PASSWORD; hardcoded
// dev defaults are used with a warning when unset. These never reach
// production (the backend uses PostgreSQL when DATABASE_URL is set).
func seedUsers() map[string]domain.UserAccount {
	adminPwd := envOr("SEED_ADMIN_PASSWORD", "admin123")
	userPwd := envOr("SEED_USER_PASSWORD", "user123")
	if os.Getenv("SEED_ADMIN_PASSWORD") == "" || os.Getenv("SEED_USER_PASSWORD") == "" {
		log.Println("[memory-store] WARNING: using default dev credentials. Set SEED_ADMIN_PASSWORD and SEED_USER_PASSWORD to override.")
	}

	now := time.Now().UTC()
	users := map[string]domain.UserAccount{}
	for _, u := range []struct {
		name     string
		email    string
		password string
		role     string
	}{
		{"Store Admin", "admin@jokersolar.com", adminPwd, domain.RoleAdmin},
		{"Sales Staff", "staff@jokersolar.com", userPwd, domain.RoleUser},
	} {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("[memory-store] failed to hash seed password for %s: %v", u.email, err)
		}
		users[u.email] = domain.UserAccount{
			User: domain.User{
				ID:        uuid.NewString(),
				Name:      u.name,
				Email:     u.email,
				Role:      u.role,
				CreatedAt: now,
			},
			PasswordHash: string(hash),
		}
	}
	return users
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func NewSeeded() *Store {
	now := time.Now().UTC()
	dec := decimal.RequireFromString

	seed := []domain.InventoryItem{
		{Name: "Solar Panel 450W Mono", Category: "Solar Panels", Brand: "Jinko", Model: "Tiger Neo 450", MinPrice: dec("120"), MaxPrice: dec("180"), Cost: dec("95"), Quantity: 40, MeasureType: domain.MeasureStandard, Description: "450W monocrystalline panel"},
		{Name: "Hybrid Inverter 5kW", Category: "Inverters", Brand: "Growatt", Model: "SPF 5000 ES", MinPrice: dec("520"), MaxPrice: dec("680"), Cost: dec("430"), Quantity: 12, MeasureType: domain.MeasureStandard, Description: "48V hybrid inverter"},
		{Name: "Gel Battery 200Ah", Category: "Batteries", Brand: "Ritar", Model: "RA12-200", MinPrice: dec("210"), MaxPrice: dec("290"), Cost: dec("175"), Quantity: 24, MeasureType: domain.MeasureStandard},
		{Name: "MPPT Charge Controller 60A", Category: "Controllers", Brand: "EPever", Model: "Tracer 6415AN", MinPrice: dec("95"), MaxPrice: dec("140"), Cost: dec("72"), Quantity: 18, MeasureType: domain.MeasureStandard},
		{Name: "Solar Cable 6mm", Category: "Cables", Brand: "Top Cable", Model: "PV ZZ-F", MinPrice: dec("1.50"), MaxPrice: dec("3"), Cost: dec("0.90"), Length: dec("250"), MeasureType: domain.MeasureLength, Description: "Sold by the meter"},
		{Name: "Solar Cable 4mm", Category: "Cables", Brand: "Top Cable", Model: "PV ZZ-F", MinPrice: dec("1"), MaxPrice: dec("2.20"), Cost: dec("0.60"), Length: dec("300"), MeasureType: domain.MeasureLength, Description: "Sold by the meter"},
		{Name: "AC Flex Cable 2.5mm", Category: "Cables", Brand: "Nexans", Model: "H07RN-F", MinPrice: dec("0.80"), MaxPrice: dec("1.80"), Cost: dec("0.45"), Length: dec("180"), MeasureType: domain.MeasureLength},
		{Name: "LED Flood Light 100W", Category: "Lighting", Brand: "Philips", Model: "BVP176", MinPrice: dec("28"), MaxPrice: dec("45"), Cost: dec("19"), Quantity: 35, MeasureType: domain.MeasureStandard},
	}

	items := make(map[string]domain.InventoryItem, len(seed))
	categoryNames := map[string]bool{}
	for _, it := range seed {
		it.ID = uuid.NewString()
		it.CreatedAt = now
		it.UpdatedAt = now
		items[it.ID] = it
		categoryNames[it.Category] = true
	}

	categories := map[string]domain.Category{}
	for name := range categoryNames {
		c := domain.Category{ID: uuid.NewString(), Name: name, CreatedAt: now, UpdatedAt: now}
		categories[c.ID] = c
	}

	return &Store{
		items:          items,
		categories:     categories,
		salesByID:      make(map[string]*domain.Sale),
		salesByIdem:    make(map[string]*domain.Sale),
		creditsByID:    make(map[string]*domain.CreditSale),
		creditPayments: make(map[string][]domain.CreditPayment),
		usersByEmail:   seedUsers(),
	}
}

// New returns an empty store, mostly useful in tests that want full control
// over the fixtures.
func New() *Store {
	s := NewSeeded()
	s.items = map[string]domain.InventoryItem{}
	s.categories = map[string]domain.Category{}
	return s
}

func (s *Store) ListItems(_ context.Context) ([]domain.InventoryItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]domain.InventoryItem, 0, len(s.items))
	for _, it := range s.items {
		items = append(items, it)
	}
	slices.SortFunc(items, func(a, b domain.InventoryItem) int {
		if a.Category == b.Category {
			return cmpString(a.Name, b.Name)
		}
		return cmpString(a.Category, b.Category)
	})
	return items, nil
}

func (s *Store) GetItem(_ context.Context, id string) (*domain.InventoryItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, exists := s.items[id]
	if !exists {
		return nil, store.ErrNotFound
	}
	copyItem := item
	return &copyItem, nil
}

func (s *Store) CreateItem(_ context.Context, item domain.InventoryItem) (*domain.InventoryItem, error) {
	if err := validateItem(item); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	item.CreatedAt = now
	item.UpdatedAt = now
	s.items[item.ID] = item
	created := item
	return &created, nil
}

func (s *Store) UpdateItem(_ context.Context, item domain.InventoryItem) (*domain.InventoryItem, error) {
	if err := validateItem(item); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists := s.items[item.ID]
	if !exists {
		return nil, store.ErrNotFound
	}
	item.CreatedAt = existing.CreatedAt
	item.MeasureType = existing.MeasureType
	item.UpdatedAt = time.Now().UTC()
	s.items[item.ID] = item
	updated := item
	return &updated, nil
}

func (s *Store) DeleteItem(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.items[id]; !exists {
		return store.ErrNotFound
	}
	delete(s.items, id)
	return nil
}

func (s *Store) AdjustStock(_ context.Context, id string, delta decimal.Decimal) (*domain.InventoryItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, exists := s.items[id]
	if !exists {
		return nil, store.ErrNotFound
	}

	switch item.MeasureType {
	case domain.MeasureLength:
		next := item.Length.Add(delta)
		if next.IsNegative() {
			return nil, store.ErrInsufficientStock
		}
		item.Length = next
	default:
		if !delta.IsInteger() {
			return nil, fmt.Errorf("%w: stock delta must be a whole number", store.ErrValidation)
		}
		next := item.Quantity + int(delta.IntPart())
		if next < 0 {
			return nil, store.ErrInsufficientStock
		}
		item.Quantity = next
	}
	item.UpdatedAt = time.Now().UTC()
	s.items[id] = item
	updated := item
	return &updated, nil
}

func (s *Store) CountItemsInCategory(_ context.Context, category string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, it := range s.items {
		if it.Category == category {
			count++
		}
	}
	return count, nil
}

func (s *Store) ListCategories(_ context.Context) ([]domain.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	categories := make([]domain.Category, 0, len(s.categories))
	for _, c := range s.categories {
		categories = append(categories, c)
	}
	slices.SortFunc(categories, func(a, b domain.Category) int {
		return cmpString(a.Name, b.Name)
	})
	return categories, nil
}

func (s *Store) GetCategory(_ context.Context, id string) (*domain.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	category, exists := s.categories[id]
	if !exists {
		return nil, store.ErrNotFound
	}
	copyCategory := category
	return &copyCategory, nil
}

func (s *Store) CreateCategory(_ context.Context, category domain.Category) (*domain.Category, error) {
	if strings.TrimSpace(category.Name) == "" {
		return nil, fmt.Errorf("%w: category name is required", store.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.categories {
		if strings.EqualFold(existing.Name, category.Name) {
			return nil, fmt.Errorf("%w: category %q already exists", store.ErrValidation, category.Name)
		}
	}

	now := time.Now().UTC()
	if category.ID == "" {
		category.ID = uuid.NewString()
	}
	category.CreatedAt = now
	category.UpdatedAt = now
	s.categories[category.ID] = category
	created := category
	return &created, nil
}

func (s *Store) UpdateCategory(_ context.Context, category domain.Category) (*domain.Category, error) {
	if strings.TrimSpace(category.Name) == "" {
		return nil, fmt.Errorf("%w: category name is required", store.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists := s.categories[category.ID]
	if !exists {
		return nil, store.ErrNotFound
	}
	category.CreatedAt = existing.CreatedAt
	category.UpdatedAt = time.Now().UTC()
	s.categories[category.ID] = category
	updated := category
	return &updated, nil
}

func (s *Store) DeleteCategory(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	category, exists := s.categories[id]
	if !exists {
		return store.ErrNotFound
	}
	for _, it := range s.items {
		if it.Category == category.Name {
			return store.ErrCategoryInUse
		}
	}
	delete(s.categories, id)
	return nil
}

func (s *Store) CreateSale(_ context.Context, sale domain.Sale) (*domain.Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sale.IdempotencyKey != "" {
		if existing, ok := s.salesByIdem[sale.IdempotencyKey]; ok {
			out := cloneSale(*existing)
			return &out, nil
		}
	}
	if err := s.applyStockLocked(sale.Items); err != nil {
		return nil, err
	}

	stored := cloneSale(sale)
	s.salesByID[stored.ID] = &stored
	if stored.IdempotencyKey != "" {
		s.salesByIdem[stored.IdempotencyKey] = &stored
	}
	out := cloneSale(stored)
	return &out, nil
}

func (s *Store) CreateCreditSale(_ context.Context, sale domain.CreditSale, initial *domain.CreditPayment) (*domain.CreditSale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sale.IdempotencyKey != "" {
		if existingSale, ok := s.salesByIdem[sale.IdempotencyKey]; ok {
			if existing, ok := s.creditsByID[existingSale.ID]; ok {
				out := cloneCreditSale(*existing)
				return &out, nil
			}
			return nil, fmt.Errorf("%w: idempotency key already used by a cash sale", store.ErrValidation)
		}
	}
	if err := s.applyStockLocked(sale.Items); err != nil {
		return nil, err
	}

	sale.DeriveStatus()
	stored := cloneCreditSale(sale)
	s.creditsByID[stored.ID] = &stored
	if stored.IdempotencyKey != "" {
		s.salesByIdem[stored.IdempotencyKey] = &stored.Sale
	}
	if initial != nil {
		payment := *initial
		payment.CreditSaleID = stored.ID
		if payment.ID == "" {
			payment.ID = xid.New("pay")
		}
		s.creditPayments[stored.ID] = append(s.creditPayments[stored.ID], payment)
	}
	out := cloneCreditSale(stored)
	return &out, nil
}

// applyStockLocked checks then decrements the stock measure for every sale
// line. Either every line fits or nothing changes.
func (s *Store) applyStockLocked(lines []domain.SaleLine) error {
	need := map[string]decimal.Decimal{}
	for _, line := range lines {
		if !line.Quantity.IsPositive() {
			return fmt.Errorf("%w: quantity must be greater than zero", store.ErrValidation)
		}
		need[line.ItemID] = need[line.ItemID].Add(line.Quantity)
	}
	for itemID, qty := range need {
		item, exists := s.items[itemID]
		if !exists {
			return fmt.Errorf("%w: item %s", store.ErrNotFound, itemID)
		}
		if item.MeasureType == domain.MeasureStandard && !qty.IsInteger() {
			return fmt.Errorf("%w: %s is sold in whole units", store.ErrValidation, item.Name)
		}
		if item.StockMeasure().LessThan(qty) {
			return fmt.Errorf("%w: %s", store.ErrInsufficientStock, item.Name)
		}
	}
	now := time.Now().UTC()
	for itemID, qty := range need {
		item := s.items[itemID]
		if item.MeasureType == domain.MeasureLength {
			item.Length = item.Length.Sub(qty)
		} else {
			item.Quantity -= int(qty.IntPart())
		}
		item.UpdatedAt = now
		s.items[itemID] = item
	}
	return nil
}

func (s *Store) FindSaleByID(_ context.Context, id string) (*domain.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if sale, ok := s.salesByID[id]; ok {
		out := cloneSale(*sale)
		return &out, nil
	}
	if credit, ok := s.creditsByID[id]; ok {
		out := cloneSale(credit.Sale)
		return &out, nil
	}
	return nil, store.ErrNotFound
}

func (s *Store) FindSaleByIdempotency(_ context.Context, key string) (*domain.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sale, ok := s.salesByIdem[key]
	if !ok {
		return nil, store.ErrNotFound
	}
	out := cloneSale(*sale)
	return &out, nil
}

func (s *Store) ListSales(_ context.Context, from time.Time, to time.Time) ([]domain.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sales := make([]domain.Sale, 0, len(s.salesByID))
	for _, sale := range s.salesByID {
		if inRange(sale.SoldAt, from, to) {
			sales = append(sales, cloneSale(*sale))
		}
	}
	for _, credit := range s.creditsByID {
		if inRange(credit.SoldAt, from, to) {
			sales = append(sales, cloneSale(credit.Sale))
		}
	}
	slices.SortFunc(sales, func(a, b domain.Sale) int {
		return b.SoldAt.Compare(a.SoldAt)
	})
	return sales, nil
}

func (s *Store) ListCreditSales(_ context.Context) ([]domain.CreditSale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	credits := make([]domain.CreditSale, 0, len(s.creditsByID))
	for _, credit := range s.creditsByID {
		credits = append(credits, cloneCreditSale(*credit))
	}
	slices.SortFunc(credits, func(a, b domain.CreditSale) int {
		return b.SoldAt.Compare(a.SoldAt)
	})
	return credits, nil
}

func (s *Store) GetCreditSale(_ context.Context, id string) (*domain.CreditSale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	credit, exists := s.creditsByID[id]
	if !exists {
		return nil, store.ErrNotFound
	}
	out := cloneCreditSale(*credit)
	return &out, nil
}

func (s *Store) RecordCreditPayment(_ context.Context, payment domain.CreditPayment) (*domain.CreditSale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	credit, exists := s.creditsByID[payment.CreditSaleID]
	if !exists {
		return nil, store.ErrNotFound
	}
	if !payment.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: payment amount must be greater than zero", store.ErrValidation)
	}
	if payment.Amount.GreaterThan(credit.RemainingAmount) {
		return nil, fmt.Errorf("%w: payment exceeds remaining balance %s", store.ErrValidation, credit.RemainingAmount.String())
	}

	if payment.ID == "" {
		payment.ID = xid.New("pay")
	}
	if payment.RecordedAt.IsZero() {
		payment.RecordedAt = time.Now().UTC()
	}
	s.creditPayments[credit.ID] = append(s.creditPayments[credit.ID], payment)

	credit.AmountPaid = credit.AmountPaid.Add(payment.Amount)
	credit.DeriveStatus()
	out := cloneCreditSale(*credit)
	return &out, nil
}

func (s *Store) ListCreditPayments(_ context.Context, creditSaleID string) ([]domain.CreditPayment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, exists := s.creditsByID[creditSaleID]; !exists {
		return nil, store.ErrNotFound
	}
	payments := slices.Clone(s.creditPayments[creditSaleID])
	slices.SortFunc(payments, func(a, b domain.CreditPayment) int {
		return a.RecordedAt.Compare(b.RecordedAt)
	})
	return payments, nil
}

func (s *Store) TopSellingItems(_ context.Context, limit int) ([]domain.TopSellingItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	agg := map[string]*domain.TopSellingItem{}
	collect := func(items []domain.SaleLine) {
		seen := map[string]bool{}
		for _, line := range items {
			entry, ok := agg[line.ItemID]
			if !ok {
				entry = &domain.TopSellingItem{ItemID: line.ItemID, Name: line.Name}
				agg[line.ItemID] = entry
			}
			entry.QuantitySold = entry.QuantitySold.Add(line.Quantity)
			entry.Revenue = entry.Revenue.Add(line.Subtotal())
			if !seen[line.ItemID] {
				entry.SaleCount++
				seen[line.ItemID] = true
			}
		}
	}
	for _, sale := range s.salesByID {
		collect(sale.Items)
	}
	for _, credit := range s.creditsByID {
		collect(credit.Items)
	}

	top := make([]domain.TopSellingItem, 0, len(agg))
	for _, entry := range agg {
		top = append(top, *entry)
	}
	slices.SortFunc(top, func(a, b domain.TopSellingItem) int {
		if c := b.QuantitySold.Cmp(a.QuantitySold); c != 0 {
			return c
		}
		return b.Revenue.Cmp(a.Revenue)
	})
	if limit > 0 && len(top) > limit {
		top = top[:limit]
	}
	return top, nil
}

func (s *Store) CreateUser(_ context.Context, user domain.UserAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := strings.ToLower(strings.TrimSpace(user.Email))
	if email == "" || user.PasswordHash == "" {
		return fmt.Errorf("%w: email and password are required", store.ErrValidation)
	}
	if _, exists := s.usersByEmail[email]; exists {
		return fmt.Errorf("%w: email already registered", store.ErrValidation)
	}
	user.Email = email
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	s.usersByEmail[email] = user
	return nil
}

func (s *Store) ListUsers(_ context.Context) ([]domain.UserAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]domain.UserAccount, 0, len(s.usersByEmail))
	for _, u := range s.usersByEmail {
		users = append(users, u)
	}
	slices.SortFunc(users, func(a, b domain.UserAccount) int {
		return cmpString(a.Email, b.Email)
	})
	return users, nil
}

func (s *Store) UpdateUserPassword(_ context.Context, email string, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	email = strings.ToLower(strings.TrimSpace(email))
	user, exists := s.usersByEmail[email]
	if !exists {
		return store.ErrNotFound
	}
	user.PasswordHash = passwordHash
	s.usersByEmail[email] = user
	return nil
}

func validateItem(item domain.InventoryItem) error {
	if strings.TrimSpace(item.Name) == "" || strings.TrimSpace(item.Category) == "" {
		return fmt.Errorf("%w: name and category are required", store.ErrValidation)
	}
	if item.MeasureType != domain.MeasureStandard && item.MeasureType != domain.MeasureLength {
		return fmt.Errorf("%w: unknown measure type %q", store.ErrValidation, item.MeasureType)
	}
	if item.MinPrice.IsNegative() || item.MaxPrice.LessThan(item.MinPrice) {
		return fmt.Errorf("%w: price band requires 0 <= min <= max", store.ErrValidation)
	}
	if item.Quantity < 0 || item.Length.IsNegative() {
		return fmt.Errorf("%w: stock cannot be negative", store.ErrValidation)
	}
	return nil
}

func cloneSale(sale domain.Sale) domain.Sale {
	sale.Items = slices.Clone(sale.Items)
	return sale
}

func cloneCreditSale(credit domain.CreditSale) domain.CreditSale {
	credit.Sale = cloneSale(credit.Sale)
	return credit
}

func inRange(at time.Time, from time.Time, to time.Time) bool {
	if !from.IsZero() && at.Before(from) {
		return false
	}
	if !to.IsZero() && !at.Before(to) {
		return false
	}
	return true
}

func cmpString(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
