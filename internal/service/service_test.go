package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"jokersolar/backend/internal/cart"
	"jokersolar/backend/internal/domain"
	"jokersolar/backend/internal/store"
	"jokersolar/backend/internal/store/memory"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newTestService() *Service {
	return New(memory.NewSeeded(), cart.NewManager(), nil, time.Minute, 5)
}

func adminCtx() context.Context {
	return WithActor(context.Background(), domain.Actor{
		Email: "admin@jokersolar.com",
		Name:  "Store Admin",
		Role:  domain.RoleAdmin,
	})
}

func staffCtx() context.Context {
	return WithActor(context.Background(), domain.Actor{
		Email: "staff@jokersolar.com",
		Name:  "Sales Staff",
		Role:  domain.RoleUser,
	})
}

func findItem(t *testing.T, svc *Service, name string) domain.InventoryItem {
	t.Helper()
	items, err := svc.ListItems(context.Background())
	if err != nil {
		t.Fatalf("list items: %v", err)
	}
	for _, item := range items {
		if item.Name == name {
			return item
		}
	}
	t.Fatalf("seed item %q not found", name)
	return domain.InventoryItem{}
}

func mustAdd(t *testing.T, svc *Service, ctx context.Context, itemID string, price string) {
	t.Helper()
	if _, err := svc.AddToCart(ctx, domain.CartAddRequest{ItemID: itemID, SelectedPrice: dec(price)}); err != nil {
		t.Fatalf("add to cart: %v", err)
	}
}

func TestCheckoutFullSale(t *testing.T) {
	svc := newTestService()
	ctx := staffCtx()
	panel := findItem(t, svc, "Solar Panel 450W Mono")

	mustAdd(t, svc, ctx, panel.ID, "150")
	mustAdd(t, svc, ctx, panel.ID, "150")

	resp, err := svc.Checkout(ctx, domain.CheckoutRequest{CustomerName: "Amina Yusuf"})
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if resp.Duplicate {
		t.Fatal("fresh checkout flagged duplicate")
	}
	if !resp.Sale.Total.Equal(dec("300")) {
		t.Fatalf("total = %s, want 300", resp.Sale.Total)
	}
	if !strings.HasPrefix(resp.Sale.ReceiptNumber, "JSS-") {
		t.Fatalf("receipt number = %q", resp.Sale.ReceiptNumber)
	}
	if resp.Sale.SoldBy != "Sales Staff" {
		t.Fatalf("sold by = %q", resp.Sale.SoldBy)
	}
	if resp.Credit != nil {
		t.Fatal("full sale produced credit terms")
	}

	after, err := svc.GetItem(context.Background(), panel.ID)
	if err != nil {
		t.Fatalf("get item: %v", err)
	}
	if after.Quantity != panel.Quantity-2 {
		t.Fatalf("quantity after checkout = %d, want %d", after.Quantity, panel.Quantity-2)
	}

	view, err := svc.ViewCart(ctx)
	if err != nil {
		t.Fatalf("view cart: %v", err)
	}
	if len(view.Lines) != 0 {
		t.Fatalf("cart not cleared, %d lines left", len(view.Lines))
	}
}

func TestCheckoutRejectsEmptyCartAndBlankName(t *testing.T) {
	svc := newTestService()
	ctx := staffCtx()

	if _, err := svc.Checkout(ctx, domain.CheckoutRequest{CustomerName: "Amina"}); !errors.Is(err, store.ErrValidation) {
		t.Fatalf("empty cart err = %v, want validation error", err)
	}

	panel := findItem(t, svc, "Solar Panel 450W Mono")
	mustAdd(t, svc, ctx, panel.ID, "150")

	if _, err := svc.Checkout(ctx, domain.CheckoutRequest{CustomerName: "   "}); !errors.Is(err, store.ErrValidation) {
		t.Fatalf("blank name err = %v, want validation error", err)
	}

	// Rejection must not touch stock or the cart.
	after, _ := svc.GetItem(context.Background(), panel.ID)
	if after.Quantity != panel.Quantity {
		t.Fatalf("rejected checkout changed stock to %d", after.Quantity)
	}
	view, _ := svc.ViewCart(ctx)
	if len(view.Lines) != 1 {
		t.Fatalf("rejected checkout changed cart to %d lines", len(view.Lines))
	}
}

func TestCheckoutCreditValidation(t *testing.T) {
	svc := newTestService()
	ctx := staffCtx()
	panel := findItem(t, svc, "Solar Panel 450W Mono")
	mustAdd(t, svc, ctx, panel.ID, "150")

	base := domain.CheckoutRequest{
		CustomerName: "Amina Yusuf",
		PaymentMode:  domain.PaymentModeCredit,
	}

	cases := []struct {
		name   string
		mutate func(*domain.CheckoutRequest)
	}{
		{"missing phone", func(r *domain.CheckoutRequest) {
			r.DueDate = time.Now().UTC().AddDate(0, 1, 0).Format("2006-01-02")
		}},
		{"missing due date", func(r *domain.CheckoutRequest) {
			r.CustomerPhone = "+256700000001"
		}},
		{"past due date", func(r *domain.CheckoutRequest) {
			r.CustomerPhone = "+256700000001"
			r.DueDate = "2020-01-01"
		}},
		{"negative paid", func(r *domain.CheckoutRequest) {
			r.CustomerPhone = "+256700000001"
			r.DueDate = time.Now().UTC().AddDate(0, 1, 0).Format("2006-01-02")
			r.PaidAmount = dec("-1")
		}},
		{"paid exceeds total", func(r *domain.CheckoutRequest) {
			r.CustomerPhone = "+256700000001"
			r.DueDate = time.Now().UTC().AddDate(0, 1, 0).Format("2006-01-02")
			r.PaidAmount = dec("150.01")
		}},
	}
	for _, tc := range cases {
		req := base
		tc.mutate(&req)
		if _, err := svc.Checkout(ctx, req); !errors.Is(err, store.ErrValidation) {
			t.Errorf("%s: err = %v, want validation error", tc.name, err)
		}
	}

	after, _ := svc.GetItem(context.Background(), panel.ID)
	if after.Quantity != panel.Quantity {
		t.Fatalf("rejected credit checkout changed stock to %d", after.Quantity)
	}
}

func TestCheckoutCreditSale(t *testing.T) {
	svc := newTestService()
	created, err := svc.CreateItem(adminCtx(), domain.ItemCreateRequest{
		Name:     "Battery Bank 10kWh",
		Category: "Batteries",
		Brand:    "Pylontech",
		Model:    "US5000x2",
		MinPrice: dec("500"),
		MaxPrice: dec("500"),
		Cost:     dec("400"),
		Quantity: 5,
	})
	if err != nil {
		t.Fatalf("create item: %v", err)
	}

	ctx := staffCtx()
	mustAdd(t, svc, ctx, created.ID, "500")
	mustAdd(t, svc, ctx, created.ID, "500")

	due := time.Now().UTC().AddDate(0, 1, 0).Format("2006-01-02")
	resp, err := svc.Checkout(ctx, domain.CheckoutRequest{
		CustomerName:  "David Okello",
		PaymentMode:   domain.PaymentModeCredit,
		CustomerPhone: "+256700000002",
		DueDate:       due,
		PaidAmount:    dec("300"),
	})
	if err != nil {
		t.Fatalf("credit checkout: %v", err)
	}
	if resp.Credit == nil {
		t.Fatal("credit checkout returned no credit terms")
	}
	if !resp.Credit.RemainingAmount.Equal(dec("700")) {
		t.Fatalf("remaining = %s, want 700", resp.Credit.RemainingAmount)
	}
	if resp.Credit.Status != domain.CreditStatusPartiallyPaid {
		t.Fatalf("status = %q, want partially_paid", resp.Credit.Status)
	}

	payments, err := svc.ListCreditPayments(context.Background(), resp.Credit.ID)
	if err != nil {
		t.Fatalf("list payments: %v", err)
	}
	if len(payments) != 1 || !payments[0].Amount.Equal(dec("300")) {
		t.Fatalf("initial payment not recorded: %+v", payments)
	}

	after, _ := svc.GetItem(context.Background(), created.ID)
	if after.Quantity != 3 {
		t.Fatalf("quantity after credit checkout = %d, want 3", after.Quantity)
	}
}

func TestCheckoutIdempotency(t *testing.T) {
	svc := newTestService()
	ctx := staffCtx()
	panel := findItem(t, svc, "Solar Panel 450W Mono")

	mustAdd(t, svc, ctx, panel.ID, "150")
	first, err := svc.Checkout(ctx, domain.CheckoutRequest{
		CustomerName:   "Amina Yusuf",
		IdempotencyKey: "retry-123",
	})
	if err != nil {
		t.Fatalf("first checkout: %v", err)
	}

	// A retried request with the same key returns the committed sale even if
	// the client re-populated its cart.
	mustAdd(t, svc, ctx, panel.ID, "150")
	second, err := svc.Checkout(ctx, domain.CheckoutRequest{
		CustomerName:   "Amina Yusuf",
		IdempotencyKey: "retry-123",
	})
	if err != nil {
		t.Fatalf("retried checkout: %v", err)
	}
	if !second.Duplicate {
		t.Fatal("retry not flagged duplicate")
	}
	if second.Sale.ID != first.Sale.ID {
		t.Fatalf("retry returned sale %s, want %s", second.Sale.ID, first.Sale.ID)
	}

	after, _ := svc.GetItem(context.Background(), panel.ID)
	if after.Quantity != panel.Quantity-1 {
		t.Fatalf("stock decremented %d times", panel.Quantity-after.Quantity)
	}
}

func TestCheckoutLengthPool(t *testing.T) {
	svc := newTestService()
	ctx := staffCtx()
	cable := findItem(t, svc, "Solar Cable 6mm")

	for _, cut := range []string{"6", "4"} {
		if _, err := svc.AddLengthToCart(ctx, domain.CartAddLengthRequest{
			ItemID:        cable.ID,
			SelectedPrice: dec("2"),
			Length:        dec(cut),
		}); err != nil {
			t.Fatalf("add %sm cut: %v", cut, err)
		}
	}

	resp, err := svc.Checkout(ctx, domain.CheckoutRequest{CustomerName: "Amina Yusuf"})
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if !resp.Sale.Total.Equal(dec("20")) {
		t.Fatalf("total = %s, want 20", resp.Sale.Total)
	}

	after, _ := svc.GetItem(context.Background(), cable.ID)
	if !after.Length.Equal(cable.Length.Sub(dec("10"))) {
		t.Fatalf("length after checkout = %s, want %s", after.Length, cable.Length.Sub(dec("10")))
	}
}

func TestRecordCreditPaymentLifecycle(t *testing.T) {
	svc := newTestService()
	ctx := staffCtx()
	panel := findItem(t, svc, "Solar Panel 450W Mono")
	mustAdd(t, svc, ctx, panel.ID, "150")

	resp, err := svc.Checkout(ctx, domain.CheckoutRequest{
		CustomerName:  "David Okello",
		PaymentMode:   domain.PaymentModeCredit,
		CustomerPhone: "+256700000002",
		DueDate:       time.Now().UTC().AddDate(0, 0, 14).Format("2006-01-02"),
	})
	if err != nil {
		t.Fatalf("credit checkout: %v", err)
	}
	if resp.Credit.Status != domain.CreditStatusPending {
		t.Fatalf("status = %q, want pending", resp.Credit.Status)
	}

	if _, err := svc.RecordCreditPayment(ctx, resp.Credit.ID, domain.CreditPaymentRequest{Amount: dec("200")}); !errors.Is(err, store.ErrValidation) {
		t.Fatalf("overpayment err = %v, want validation error", err)
	}

	partial, err := svc.RecordCreditPayment(ctx, resp.Credit.ID, domain.CreditPaymentRequest{Amount: dec("50"), Method: "mobile money"})
	if err != nil {
		t.Fatalf("partial payment: %v", err)
	}
	if partial.Status != domain.CreditStatusPartiallyPaid || !partial.RemainingAmount.Equal(dec("100")) {
		t.Fatalf("after partial: status=%q remaining=%s", partial.Status, partial.RemainingAmount)
	}

	paid, err := svc.RecordCreditPayment(ctx, resp.Credit.ID, domain.CreditPaymentRequest{Amount: dec("100")})
	if err != nil {
		t.Fatalf("final payment: %v", err)
	}
	if paid.Status != domain.CreditStatusPaid || !paid.RemainingAmount.IsZero() {
		t.Fatalf("after final: status=%q remaining=%s", paid.Status, paid.RemainingAmount)
	}

	payments, err := svc.ListCreditPayments(context.Background(), resp.Credit.ID)
	if err != nil {
		t.Fatalf("list payments: %v", err)
	}
	if len(payments) != 2 {
		t.Fatalf("payments = %d, want 2", len(payments))
	}
}

func TestReceipt(t *testing.T) {
	svc := newTestService()
	ctx := staffCtx()
	panel := findItem(t, svc, "Solar Panel 450W Mono")
	mustAdd(t, svc, ctx, panel.ID, "169.875")

	resp, err := svc.Checkout(ctx, domain.CheckoutRequest{CustomerName: "Amina Yusuf"})
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}

	r, err := svc.Receipt(context.Background(), resp.Sale.ID)
	if err != nil {
		t.Fatalf("receipt: %v", err)
	}
	if r.FileName != "receipt-"+resp.Sale.ReceiptNumber+".txt" {
		t.Fatalf("file name = %q", r.FileName)
	}
	for _, want := range []string{"JOKER SOLAR SOLUTION", resp.Sale.ReceiptNumber, "Amina Yusuf", "TOTAL: $169.88"} {
		if !strings.Contains(r.PreviewText, want) {
			t.Errorf("receipt missing %q", want)
		}
	}
}

func TestSalesReportSummary(t *testing.T) {
	svc := newTestService()
	ctx := staffCtx()
	panel := findItem(t, svc, "Solar Panel 450W Mono")

	mustAdd(t, svc, ctx, panel.ID, "150")
	if _, err := svc.Checkout(ctx, domain.CheckoutRequest{CustomerName: "Amina"}); err != nil {
		t.Fatalf("checkout 1: %v", err)
	}
	mustAdd(t, svc, ctx, panel.ID, "130")
	if _, err := svc.Checkout(ctx, domain.CheckoutRequest{CustomerName: "David"}); err != nil {
		t.Fatalf("checkout 2: %v", err)
	}

	report, err := svc.SalesReport(context.Background(), "", "")
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if report.Summary.SaleCount != 2 {
		t.Fatalf("sale count = %d, want 2", report.Summary.SaleCount)
	}
	if !report.Summary.TotalRevenue.Equal(dec("280")) {
		t.Fatalf("revenue = %s, want 280", report.Summary.TotalRevenue)
	}
	if !report.Summary.AverageSale.Equal(dec("140")) {
		t.Fatalf("average = %s, want 140", report.Summary.AverageSale)
	}

	pdf, err := svc.SalesReportPDF(context.Background(), "", "")
	if err != nil {
		t.Fatalf("pdf: %v", err)
	}
	if len(pdf) < 4 || string(pdf[:4]) != "%PDF" {
		t.Fatal("pdf export is not a PDF document")
	}
}

func TestTopSellingItems(t *testing.T) {
	svc := newTestService()
	ctx := staffCtx()
	panel := findItem(t, svc, "Solar Panel 450W Mono")
	light := findItem(t, svc, "LED Flood Light 100W")

	for i := 0; i < 3; i++ {
		mustAdd(t, svc, ctx, panel.ID, "150")
	}
	mustAdd(t, svc, ctx, light.ID, "30")
	if _, err := svc.Checkout(ctx, domain.CheckoutRequest{CustomerName: "Amina"}); err != nil {
		t.Fatalf("checkout: %v", err)
	}

	top, err := svc.TopSellingItems(context.Background(), 5)
	if err != nil {
		t.Fatalf("top sellers: %v", err)
	}
	if len(top) != 2 {
		t.Fatalf("entries = %d, want 2", len(top))
	}
	if top[0].ItemID != panel.ID || !top[0].QuantitySold.Equal(dec("3")) {
		t.Fatalf("top entry = %+v", top[0])
	}
}

func TestCategoryInUseGuard(t *testing.T) {
	svc := newTestService()
	ctx := adminCtx()

	categories, err := svc.ListCategories(context.Background())
	if err != nil {
		t.Fatalf("list categories: %v", err)
	}
	var cables domain.Category
	for _, c := range categories {
		if c.Name == "Cables" {
			cables = c
		}
	}
	if cables.ID == "" {
		t.Fatal("seed category Cables missing")
	}

	if err := svc.DeleteCategory(ctx, cables.ID); !errors.Is(err, store.ErrCategoryInUse) {
		t.Fatalf("delete in-use category err = %v, want ErrCategoryInUse", err)
	}

	created, err := svc.CreateCategory(ctx, domain.CategoryCreateRequest{Name: "Mounting"})
	if err != nil {
		t.Fatalf("create category: %v", err)
	}
	if err := svc.DeleteCategory(ctx, created.ID); err != nil {
		t.Fatalf("delete unused category: %v", err)
	}
}

func TestAdminGuards(t *testing.T) {
	svc := newTestService()
	panel := findItem(t, svc, "Solar Panel 450W Mono")

	if _, err := svc.AdjustStock(staffCtx(), panel.ID, domain.StockAdjustRequest{Delta: dec("5")}); err == nil {
		t.Fatal("staff adjusted stock")
	}
	if _, err := svc.CreateItem(staffCtx(), domain.ItemCreateRequest{Name: "X", Category: "Y"}); err == nil {
		t.Fatal("staff created item")
	}

	updated, err := svc.AdjustStock(adminCtx(), panel.ID, domain.StockAdjustRequest{Delta: dec("5")})
	if err != nil {
		t.Fatalf("admin adjust: %v", err)
	}
	if updated.Quantity != panel.Quantity+5 {
		t.Fatalf("quantity = %d, want %d", updated.Quantity, panel.Quantity+5)
	}
	if _, err := svc.AdjustStock(adminCtx(), panel.ID, domain.StockAdjustRequest{Delta: dec("-1000")}); !errors.Is(err, store.ErrInsufficientStock) {
		t.Fatalf("negative stock err = %v, want insufficient stock", err)
	}
}

func TestDashboardStats(t *testing.T) {
	svc := newTestService()
	ctx := staffCtx()
	panel := findItem(t, svc, "Solar Panel 450W Mono")
	mustAdd(t, svc, ctx, panel.ID, "150")
	if _, err := svc.Checkout(ctx, domain.CheckoutRequest{
		CustomerName:  "David",
		PaymentMode:   domain.PaymentModeCredit,
		CustomerPhone: "+256700000002",
		DueDate:       time.Now().UTC().AddDate(0, 0, 7).Format("2006-01-02"),
		PaidAmount:    dec("50"),
	}); err != nil {
		t.Fatalf("checkout: %v", err)
	}

	stats, err := svc.DashboardStats(context.Background())
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.ItemCount == 0 {
		t.Fatal("item count is zero")
	}
	if !stats.CreditOutstanding.Equal(dec("100")) {
		t.Fatalf("credit outstanding = %s, want 100", stats.CreditOutstanding)
	}
	if stats.TodaySaleCount != 1 || !stats.TodayRevenue.Equal(dec("150")) {
		t.Fatalf("today: count=%d revenue=%s", stats.TodaySaleCount, stats.TodayRevenue)
	}
}
