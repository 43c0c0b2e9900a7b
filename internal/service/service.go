package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"jokersolar/backend/internal/cache"
	"jokersolar/backend/internal/cart"
	"jokersolar/backend/internal/domain"
	"jokersolar/backend/internal/receipt"
	"jokersolar/backend/internal/report"
	"jokersolar/backend/internal/store"
	"jokersolar/backend/internal/xid"
)

type actorContextKey struct{}

func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(domain.Actor)
	return actor, ok
}

type Service struct {
	repo              store.Repository
	carts             *cart.Manager
	topCache          cache.TopSellersCache
	topCacheTTL       time.Duration
	lowStockThreshold decimal.Decimal
}

func New(repo store.Repository, carts *cart.Manager, topCache cache.TopSellersCache, topCacheTTL time.Duration, lowStockThreshold int) *Service {
	if carts == nil {
		carts = cart.NewManager()
	}
	if topCache == nil {
		topCache = cache.NoopTopSellersCache{}
	}
	if topCacheTTL <= 0 {
		topCacheTTL = 5 * time.Minute
	}
	if lowStockThreshold < 1 {
		lowStockThreshold = 5
	}

	return &Service{
		repo:              repo,
		carts:             carts,
		topCache:          topCache,
		topCacheTTL:       topCacheTTL,
		lowStockThreshold: decimal.NewFromInt(int64(lowStockThreshold)),
	}
}

func (s *Service) ListItems(ctx context.Context) ([]domain.InventoryItem, error) {
	return s.repo.ListItems(ctx)
}

func (s *Service) GetItem(ctx context.Context, id string) (domain.InventoryItem, error) {
	item, err := s.repo.GetItem(ctx, id)
	if err != nil {
		return domain.InventoryItem{}, err
	}
	return *item, nil
}

func (s *Service) CreateItem(ctx context.Context, req domain.ItemCreateRequest) (domain.InventoryItem, error) {
	actor, err := s.requireAdmin(ctx)
	if err != nil {
		return domain.InventoryItem{}, err
	}

	measureType := strings.TrimSpace(req.MeasureType)
	if measureType == "" {
		measureType = domain.MeasureStandard
	}

	item := domain.InventoryItem{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(req.Name),
		Category:    strings.TrimSpace(req.Category),
		Brand:       strings.TrimSpace(req.Brand),
		Model:       strings.TrimSpace(req.Model),
		MinPrice:    req.MinPrice,
		MaxPrice:    req.MaxPrice,
		Cost:        req.Cost,
		Quantity:    req.Quantity,
		Length:      req.Length,
		MeasureType: measureType,
		Description: strings.TrimSpace(req.Description),
		ImageURL:    strings.TrimSpace(req.ImageURL),
	}
	if err := validateItem(item); err != nil {
		return domain.InventoryItem{}, err
	}

	created, err := s.repo.CreateItem(ctx, item)
	if err != nil {
		return domain.InventoryItem{}, err
	}
	s.logAudit(actor, "item_create", created.ID, fmt.Sprintf("name=%s,measure=%s", created.Name, created.MeasureType))
	return *created, nil
}

func (s *Service) UpdateItem(ctx context.Context, id string, req domain.ItemUpdateRequest) (domain.InventoryItem, error) {
	actor, err := s.requireAdmin(ctx)
	if err != nil {
		return domain.InventoryItem{}, err
	}

	existing, err := s.repo.GetItem(ctx, id)
	if err != nil {
		return domain.InventoryItem{}, err
	}

	updated := *existing
	if req.Name != nil {
		updated.Name = strings.TrimSpace(*req.Name)
	}
	if req.Category != nil {
		updated.Category = strings.TrimSpace(*req.Category)
	}
	if req.Brand != nil {
		updated.Brand = strings.TrimSpace(*req.Brand)
	}
	if req.Model != nil {
		updated.Model = strings.TrimSpace(*req.Model)
	}
	if req.MinPrice != nil {
		updated.MinPrice = *req.MinPrice
	}
	if req.MaxPrice != nil {
		updated.MaxPrice = *req.MaxPrice
	}
	if req.Cost != nil {
		updated.Cost = *req.Cost
	}
	if req.Quantity != nil {
		updated.Quantity = *req.Quantity
	}
	if req.Length != nil {
		updated.Length = *req.Length
	}
	if req.Description != nil {
		updated.Description = strings.TrimSpace(*req.Description)
	}
	if req.ImageURL != nil {
		updated.ImageURL = strings.TrimSpace(*req.ImageURL)
	}
	if err := validateItem(updated); err != nil {
		return domain.InventoryItem{}, err
	}

	saved, err := s.repo.UpdateItem(ctx, updated)
	if err != nil {
		return domain.InventoryItem{}, err
	}
	s.logAudit(actor, "item_update", saved.ID, fmt.Sprintf("name=%s", saved.Name))
	return *saved, nil
}

func (s *Service) DeleteItem(ctx context.Context, id string) error {
	actor, err := s.requireAdmin(ctx)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteItem(ctx, id); err != nil {
		return err
	}
	s.logAudit(actor, "item_delete", id, "")
	return nil
}

func (s *Service) AdjustStock(ctx context.Context, id string, req domain.StockAdjustRequest) (domain.InventoryItem, error) {
	actor, err := s.requireAdmin(ctx)
	if err != nil {
		return domain.InventoryItem{}, err
	}
	if req.Delta.IsZero() {
		return domain.InventoryItem{}, fmt.Errorf("%w: delta must be non-zero", store.ErrValidation)
	}
	updated, err := s.repo.AdjustStock(ctx, id, req.Delta)
	if err != nil {
		return domain.InventoryItem{}, err
	}
	s.logAudit(actor, "stock_adjust", id, fmt.Sprintf("delta=%s", req.Delta.String()))
	return *updated, nil
}

func (s *Service) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return s.repo.ListCategories(ctx)
}

func (s *Service) CreateCategory(ctx context.Context, req domain.CategoryCreateRequest) (domain.Category, error) {
	actor, err := s.requireAdmin(ctx)
	if err != nil {
		return domain.Category{}, err
	}
	category := domain.Category{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
	}
	created, err := s.repo.CreateCategory(ctx, category)
	if err != nil {
		return domain.Category{}, err
	}
	s.logAudit(actor, "category_create", created.ID, created.Name)
	return *created, nil
}

func (s *Service) UpdateCategory(ctx context.Context, id string, req domain.CategoryUpdateRequest) (domain.Category, error) {
	actor, err := s.requireAdmin(ctx)
	if err != nil {
		return domain.Category{}, err
	}
	existing, err := s.repo.GetCategory(ctx, id)
	if err != nil {
		return domain.Category{}, err
	}
	updated := *existing
	if req.Name != nil {
		updated.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		updated.Description = strings.TrimSpace(*req.Description)
	}
	saved, err := s.repo.UpdateCategory(ctx, updated)
	if err != nil {
		return domain.Category{}, err
	}
	s.logAudit(actor, "category_update", saved.ID, saved.Name)
	return *saved, nil
}

// DeleteCategory refuses to remove a category still referenced by items.
func (s *Service) DeleteCategory(ctx context.Context, id string) error {
	actor, err := s.requireAdmin(ctx)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteCategory(ctx, id); err != nil {
		return err
	}
	s.logAudit(actor, "category_delete", id, "")
	return nil
}

func (s *Service) ViewCart(ctx context.Context) (domain.CartView, error) {
	c, _, err := s.cartFor(ctx)
	if err != nil {
		return domain.CartView{}, err
	}
	return c.View(), nil
}

func (s *Service) AddToCart(ctx context.Context, req domain.CartAddRequest) (domain.CartView, error) {
	c, _, err := s.cartFor(ctx)
	if err != nil {
		return domain.CartView{}, err
	}
	item, err := s.repo.GetItem(ctx, req.ItemID)
	if err != nil {
		return domain.CartView{}, err
	}
	if _, err := c.AddItem(item, req.SelectedPrice); err != nil {
		return domain.CartView{}, err
	}
	return c.View(), nil
}

func (s *Service) AddLengthToCart(ctx context.Context, req domain.CartAddLengthRequest) (domain.CartView, error) {
	c, _, err := s.cartFor(ctx)
	if err != nil {
		return domain.CartView{}, err
	}
	item, err := s.repo.GetItem(ctx, req.ItemID)
	if err != nil {
		return domain.CartView{}, err
	}
	if _, err := c.AddLength(item, req.SelectedPrice, req.Length); err != nil {
		return domain.CartView{}, err
	}
	return c.View(), nil
}

func (s *Service) UpdateCartLine(ctx context.Context, lineID string, req domain.CartQuantityRequest) (domain.CartView, error) {
	c, _, err := s.cartFor(ctx)
	if err != nil {
		return domain.CartView{}, err
	}
	var itemID string
	for _, line := range c.Lines() {
		if line.LineID == lineID {
			itemID = line.ItemID
			break
		}
	}
	if itemID == "" {
		return domain.CartView{}, fmt.Errorf("%w: cart line", store.ErrNotFound)
	}
	item, err := s.repo.GetItem(ctx, itemID)
	if err != nil {
		return domain.CartView{}, err
	}
	if _, err := c.UpdateQuantity(item, lineID, req.Quantity); err != nil {
		return domain.CartView{}, err
	}
	return c.View(), nil
}

func (s *Service) RemoveCartLine(ctx context.Context, lineID string) (domain.CartView, error) {
	c, _, err := s.cartFor(ctx)
	if err != nil {
		return domain.CartView{}, err
	}
	if err := c.Remove(lineID); err != nil {
		return domain.CartView{}, err
	}
	return c.View(), nil
}

func (s *Service) ClearCart(ctx context.Context) (domain.CartView, error) {
	c, _, err := s.cartFor(ctx)
	if err != nil {
		return domain.CartView{}, err
	}
	c.Clear()
	return c.View(), nil
}

// Checkout turns the session cart into a persisted sale. The repository call
// writes the sale, its line snapshots and the stock decrements as one unit of
// work, so a failed checkout leaves inventory untouched. A repeated
// idempotency key returns the sale committed by the first attempt.
func (s *Service) Checkout(ctx context.Context, req domain.CheckoutRequest) (domain.CheckoutResponse, error) {
	c, actor, err := s.cartFor(ctx)
	if err != nil {
		return domain.CheckoutResponse{}, err
	}

	if req.IdempotencyKey != "" {
		existing, err := s.repo.FindSaleByIdempotency(ctx, req.IdempotencyKey)
		if err == nil {
			c.Clear()
			return domain.CheckoutResponse{Sale: *existing, Duplicate: true}, nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			return domain.CheckoutResponse{}, err
		}
	}

	lines := c.Lines()
	if len(lines) == 0 {
		return domain.CheckoutResponse{}, fmt.Errorf("%w: cart is empty", store.ErrValidation)
	}
	customerName := strings.TrimSpace(req.CustomerName)
	if customerName == "" {
		return domain.CheckoutResponse{}, fmt.Errorf("%w: customer name is required", store.ErrValidation)
	}

	mode := strings.TrimSpace(req.PaymentMode)
	if mode == "" {
		mode = domain.PaymentModeFull
	}
	if mode != domain.PaymentModeFull && mode != domain.PaymentModeCredit {
		return domain.CheckoutResponse{}, fmt.Errorf("%w: unknown payment mode %q", store.ErrValidation, mode)
	}

	now := time.Now().UTC()
	key := req.IdempotencyKey
	if key == "" {
		key = xid.New("chk")
	}
	sale := domain.Sale{
		ID:             uuid.NewString(),
		ReceiptNumber:  xid.ReceiptNumber(now),
		CustomerName:   customerName,
		SoldBy:         actor.Name,
		SoldAt:         now,
		Total:          c.Total(),
		Items:          toSaleLines(lines),
		IdempotencyKey: key,
	}

	if mode == domain.PaymentModeFull {
		created, err := s.repo.CreateSale(ctx, sale)
		if err != nil {
			return domain.CheckoutResponse{}, err
		}
		c.Clear()
		s.logAudit(actor, "checkout", created.ID, fmt.Sprintf("receipt=%s,total=%s", created.ReceiptNumber, created.Total.StringFixed(2)))
		return domain.CheckoutResponse{Sale: *created}, nil
	}

	credit, initial, err := buildCreditSale(sale, req, actor, now)
	if err != nil {
		return domain.CheckoutResponse{}, err
	}
	created, err := s.repo.CreateCreditSale(ctx, credit, initial)
	if err != nil {
		return domain.CheckoutResponse{}, err
	}
	c.Clear()
	s.logAudit(actor, "checkout_credit", created.ID, fmt.Sprintf("receipt=%s,total=%s,paid=%s", created.ReceiptNumber, created.Total.StringFixed(2), created.AmountPaid.StringFixed(2)))
	return domain.CheckoutResponse{Sale: created.Sale, Credit: created}, nil
}

func buildCreditSale(sale domain.Sale, req domain.CheckoutRequest, actor domain.Actor, now time.Time) (domain.CreditSale, *domain.CreditPayment, error) {
	phone := strings.TrimSpace(req.CustomerPhone)
	if phone == "" {
		return domain.CreditSale{}, nil, fmt.Errorf("%w: customer phone is required for credit sales", store.ErrValidation)
	}
	if strings.TrimSpace(req.DueDate) == "" {
		return domain.CreditSale{}, nil, fmt.Errorf("%w: due date is required for credit sales", store.ErrValidation)
	}
	dueDate, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(req.DueDate), time.UTC)
	if err != nil {
		return domain.CreditSale{}, nil, fmt.Errorf("%w: due date must be YYYY-MM-DD", store.ErrValidation)
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if dueDate.Before(today) {
		return domain.CreditSale{}, nil, fmt.Errorf("%w: due date cannot be in the past", store.ErrValidation)
	}
	if req.PaidAmount.IsNegative() {
		return domain.CreditSale{}, nil, fmt.Errorf("%w: paid amount cannot be negative", store.ErrValidation)
	}
	if req.PaidAmount.GreaterThan(sale.Total) {
		return domain.CreditSale{}, nil, fmt.Errorf("%w: paid amount exceeds total %s", store.ErrValidation, sale.Total.StringFixed(2))
	}

	credit := domain.CreditSale{
		Sale:          sale,
		CustomerPhone: phone,
		AmountPaid:    req.PaidAmount,
		DueDate:       dueDate,
	}
	credit.DeriveStatus()

	var initial *domain.CreditPayment
	if req.PaidAmount.IsPositive() {
		initial = &domain.CreditPayment{
			Amount:     req.PaidAmount,
			Method:     "cash",
			RecordedBy: actor.Name,
			Notes:      "initial payment at checkout",
			RecordedAt: now,
		}
	}
	return credit, initial, nil
}

func (s *Service) GetSale(ctx context.Context, id string) (domain.Sale, error) {
	sale, err := s.repo.FindSaleByID(ctx, id)
	if err != nil {
		return domain.Sale{}, err
	}
	return *sale, nil
}

// Receipt renders the sale's receipt. The same text backs the on-screen
// preview and the downloadable file.
func (s *Service) Receipt(ctx context.Context, saleID string) (domain.ReceiptResponse, error) {
	sale, err := s.repo.FindSaleByID(ctx, saleID)
	if err != nil {
		return domain.ReceiptResponse{}, err
	}
	return domain.ReceiptResponse{
		ReceiptNumber: sale.ReceiptNumber,
		PreviewText:   receipt.Text(*sale),
		FileName:      receipt.FileName(*sale),
	}, nil
}

func (s *Service) ListSales(ctx context.Context, fromStr string, toStr string) ([]domain.Sale, error) {
	from, to, err := resolveRange(fromStr, toStr)
	if err != nil {
		return nil, err
	}
	return s.repo.ListSales(ctx, from, to)
}

func (s *Service) SalesReport(ctx context.Context, fromStr string, toStr string) (domain.SalesReport, error) {
	from, to, err := resolveRange(fromStr, toStr)
	if err != nil {
		return domain.SalesReport{}, err
	}
	sales, err := s.repo.ListSales(ctx, from, to)
	if err != nil {
		return domain.SalesReport{}, err
	}

	total := decimal.Zero
	for _, sale := range sales {
		total = total.Add(sale.Total)
	}
	summary := domain.SalesSummary{
		TotalRevenue: total,
		SaleCount:    len(sales),
	}
	if len(sales) > 0 {
		summary.AverageSale = total.Div(decimal.NewFromInt(int64(len(sales)))).Round(2)
	}

	return domain.SalesReport{
		From:    from.Format("2006-01-02"),
		To:      to.AddDate(0, 0, -1).Format("2006-01-02"),
		Summary: summary,
		Sales:   sales,
	}, nil
}

func (s *Service) SalesReportPDF(ctx context.Context, fromStr string, toStr string) ([]byte, error) {
	r, err := s.SalesReport(ctx, fromStr, toStr)
	if err != nil {
		return nil, err
	}
	return report.SalesPDF(r)
}

func (s *Service) SalesReportCSV(ctx context.Context, fromStr string, toStr string) ([]byte, error) {
	r, err := s.SalesReport(ctx, fromStr, toStr)
	if err != nil {
		return nil, err
	}
	return report.SalesCSV(r)
}

func (s *Service) ListCreditSales(ctx context.Context) ([]domain.CreditSale, error) {
	credits, err := s.repo.ListCreditSales(ctx)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	for i := range credits {
		credits[i].MarkOverdue(now)
	}
	return credits, nil
}

func (s *Service) GetCreditSale(ctx context.Context, id string) (domain.CreditSale, error) {
	credit, err := s.repo.GetCreditSale(ctx, id)
	if err != nil {
		return domain.CreditSale{}, err
	}
	out := *credit
	out.MarkOverdue(time.Now().UTC())
	return out, nil
}

func (s *Service) RecordCreditPayment(ctx context.Context, creditSaleID string, req domain.CreditPaymentRequest) (domain.CreditSale, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok {
		return domain.CreditSale{}, fmt.Errorf("authentication required")
	}
	if !req.Amount.IsPositive() {
		return domain.CreditSale{}, fmt.Errorf("%w: payment amount must be greater than zero", store.ErrValidation)
	}
	method := strings.TrimSpace(req.Method)
	if method == "" {
		method = "cash"
	}

	payment := domain.CreditPayment{
		CreditSaleID: creditSaleID,
		Amount:       req.Amount,
		Method:       method,
		RecordedBy:   actor.Name,
		Notes:        strings.TrimSpace(req.Notes),
		RecordedAt:   time.Now().UTC(),
	}
	updated, err := s.repo.RecordCreditPayment(ctx, payment)
	if err != nil {
		return domain.CreditSale{}, err
	}
	s.logAudit(actor, "credit_payment", creditSaleID, fmt.Sprintf("amount=%s,status=%s", req.Amount.StringFixed(2), updated.Status))
	out := *updated
	out.MarkOverdue(time.Now().UTC())
	return out, nil
}

func (s *Service) ListCreditPayments(ctx context.Context, creditSaleID string) ([]domain.CreditPayment, error) {
	return s.repo.ListCreditPayments(ctx, creditSaleID)
}

func (s *Service) TopSellingItems(ctx context.Context, limit int) ([]domain.TopSellingItem, error) {
	if limit < 1 {
		limit = 10
	}
	key := fmt.Sprintf("top-items:%d", limit)
	if cached, ok, err := s.topCache.Get(ctx, key); err != nil {
		log.Printf("[service] WARN: top sellers cache read failed: %v", err)
	} else if ok {
		return cached, nil
	}

	top, err := s.repo.TopSellingItems(ctx, limit)
	if err != nil {
		return nil, err
	}
	if err := s.topCache.Set(ctx, key, top, s.topCacheTTL); err != nil {
		log.Printf("[service] WARN: top sellers cache write failed: %v", err)
	}
	return top, nil
}

func (s *Service) DashboardStats(ctx context.Context) (domain.DashboardStats, error) {
	items, err := s.repo.ListItems(ctx)
	if err != nil {
		return domain.DashboardStats{}, err
	}

	stats := domain.DashboardStats{ItemCount: len(items)}
	for _, item := range items {
		measure := item.StockMeasure()
		if measure.LessThanOrEqual(s.lowStockThreshold) {
			stats.LowStockCount++
		}
		stats.InventoryValue = stats.InventoryValue.Add(item.Cost.Mul(measure))
	}

	credits, err := s.repo.ListCreditSales(ctx)
	if err != nil {
		return domain.DashboardStats{}, err
	}
	for _, credit := range credits {
		stats.CreditOutstanding = stats.CreditOutstanding.Add(credit.RemainingAmount)
	}

	now := time.Now().UTC()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	today, err := s.repo.ListSales(ctx, dayStart, dayStart.AddDate(0, 0, 1))
	if err != nil {
		return domain.DashboardStats{}, err
	}
	stats.TodaySaleCount = len(today)
	for _, sale := range today {
		stats.TodayRevenue = stats.TodayRevenue.Add(sale.Total)
	}
	return stats, nil
}

func (s *Service) cartFor(ctx context.Context) (*cart.Cart, domain.Actor, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Email == "" {
		return nil, domain.Actor{}, fmt.Errorf("authentication required")
	}
	return s.carts.Get(actor.Email), actor, nil
}

func (s *Service) requireAdmin(ctx context.Context) (domain.Actor, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != domain.RoleAdmin {
		return domain.Actor{}, fmt.Errorf("admin role required")
	}
	return actor, nil
}

func (s *Service) logAudit(actor domain.Actor, action string, entityID string, detail string) {
	log.Printf("[service] audit actor=%s role=%s action=%s entity=%s detail=%s", actor.Email, actor.Role, action, entityID, detail)
}

func validateItem(item domain.InventoryItem) error {
	if item.Name == "" || item.Category == "" {
		return fmt.Errorf("%w: name and category are required", store.ErrValidation)
	}
	if item.MeasureType != domain.MeasureStandard && item.MeasureType != domain.MeasureLength {
		return fmt.Errorf("%w: unknown measure type %q", store.ErrValidation, item.MeasureType)
	}
	if item.MinPrice.IsNegative() || item.MaxPrice.LessThan(item.MinPrice) {
		return fmt.Errorf("%w: price band requires 0 <= min <= max", store.ErrValidation)
	}
	if item.Cost.IsNegative() {
		return fmt.Errorf("%w: cost cannot be negative", store.ErrValidation)
	}
	if item.Quantity < 0 || item.Length.IsNegative() {
		return fmt.Errorf("%w: stock cannot be negative", store.ErrValidation)
	}
	return nil
}

func toSaleLines(lines []domain.CartLine) []domain.SaleLine {
	out := make([]domain.SaleLine, 0, len(lines))
	for _, line := range lines {
		out = append(out, domain.SaleLine{
			ItemID:        line.ItemID,
			Name:          line.Name,
			Brand:         line.Brand,
			Model:         line.Model,
			MeasureType:   line.MeasureType,
			SelectedPrice: line.SelectedPrice,
			Quantity:      line.Quantity,
		})
	}
	return out
}

// resolveRange turns inclusive YYYY-MM-DD bounds into a [from, to) interval.
// Missing bounds default to the epoch and the end of today.
func resolveRange(fromStr string, toStr string) (time.Time, time.Time, error) {
	now := time.Now().UTC()
	from := time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)

	if strings.TrimSpace(fromStr) != "" {
		parsed, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(fromStr), time.UTC)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: from must be YYYY-MM-DD", store.ErrValidation)
		}
		from = parsed
	}
	if strings.TrimSpace(toStr) != "" {
		parsed, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(toStr), time.UTC)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: to must be YYYY-MM-DD", store.ErrValidation)
		}
		to = parsed.AddDate(0, 0, 1)
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: to is before from", store.ErrValidation)
	}
	return from, to, nil
}
