package postgres

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"jokersolar/backend/internal/domain"
)

func TestCreateSaleDecrementsStock(t *testing.T) {
	databaseURL := os.Getenv("JOKERSOLAR_TEST_DATABASE_URL")
	if databaseURL == "" {
		t.Skip("set JOKERSOLAR_TEST_DATABASE_URL to run postgres integration test")
	}

	ctx := context.Background()
	s, err := New(ctx, databaseURL)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	t.Cleanup(func() {
		_ = s.Close()
	})

	stamp := time.Now().UnixNano()
	itemID := fmt.Sprintf("item-checkout-it-%d", stamp)
	saleID := fmt.Sprintf("sale-checkout-it-%d", stamp)
	receiptNumber := fmt.Sprintf("JSS-IT-%d", stamp)
	idempotencyKey := fmt.Sprintf("idem-checkout-it-%d", stamp)

	t.Cleanup(func() {
		_, _ = s.db.ExecContext(ctx, `DELETE FROM sale_items WHERE sale_id = $1`, saleID)
		_, _ = s.db.ExecContext(ctx, `DELETE FROM sales WHERE id = $1`, saleID)
		_, _ = s.db.ExecContext(ctx, `DELETE FROM inventory_items WHERE id = $1`, itemID)
	})

	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO inventory_items (
			id, name, category, brand, model, min_price, max_price, cost,
			quantity, length, measure_type, description, image_url, created_at, updated_at
		)
		VALUES ($1, 'Integration Panel 450W', 'Solar Panels', 'JSS', 'IT-450', 120, 180, 95,
		        10, 0, 'standard', '', '', now(), now())
	`, itemID); err != nil {
		t.Fatalf("insert item: %v", err)
	}

	price := decimal.NewFromInt(150)
	qty := decimal.NewFromInt(2)
	sale := domain.Sale{
		ID:             saleID,
		ReceiptNumber:  receiptNumber,
		CustomerName:   "Integration Customer",
		SoldBy:         "Integration Tester",
		SoldAt:         time.Now().UTC(),
		Total:          price.Mul(qty),
		IdempotencyKey: idempotencyKey,
		Items: []domain.SaleLine{{
			ItemID:        itemID,
			Name:          "Integration Panel 450W",
			Brand:         "JSS",
			Model:         "IT-450",
			MeasureType:   domain.MeasureStandard,
			SelectedPrice: price,
			Quantity:      qty,
		}},
	}

	created, err := s.CreateSale(ctx, sale)
	if err != nil {
		t.Fatalf("create sale: %v", err)
	}
	if created.ID != saleID {
		t.Fatalf("unexpected sale id %s", created.ID)
	}

	var quantity int
	if err := s.db.QueryRowContext(ctx, `
		SELECT quantity
		FROM inventory_items
		WHERE id = $1
	`, itemID).Scan(&quantity); err != nil {
		t.Fatalf("query stock: %v", err)
	}
	if quantity != 8 {
		t.Fatalf("expected stock 8 after sale, got %d", quantity)
	}

	// Replaying the same idempotency key must return the committed sale
	// without decrementing stock a second time.
	replay, err := s.CreateSale(ctx, sale)
	if err != nil {
		t.Fatalf("replay sale: %v", err)
	}
	if replay.ID != saleID {
		t.Fatalf("expected replay to return original sale, got %s", replay.ID)
	}

	if err := s.db.QueryRowContext(ctx, `
		SELECT quantity
		FROM inventory_items
		WHERE id = $1
	`, itemID).Scan(&quantity); err != nil {
		t.Fatalf("query stock after replay: %v", err)
	}
	if quantity != 8 {
		t.Fatalf("expected stock unchanged at 8 after replay, got %d", quantity)
	}
}
