package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"jokersolar/backend/internal/domain"
)

func sampleReport() domain.SalesReport {
	dec := decimal.RequireFromString
	return domain.SalesReport{
		From: "2026-08-01",
		To:   "2026-08-31",
		Summary: domain.SalesSummary{
			TotalRevenue: dec("1250.50"),
			SaleCount:    2,
			AverageSale:  dec("625.25"),
		},
		Sales: []domain.Sale{
			{
				ReceiptNumber: "JSS-20260815-000001",
				CustomerName:  "Amina Yusuf",
				SoldBy:        "Store Admin",
				SoldAt:        time.Date(2026, 8, 15, 10, 0, 0, 0, time.UTC),
				Total:         dec("750.50"),
				Items:         []domain.SaleLine{{ItemID: "a"}, {ItemID: "b"}},
			},
			{
				ReceiptNumber: "JSS-20260820-000002",
				CustomerName:  "David Okello",
				SoldBy:        "Sales Staff",
				SoldAt:        time.Date(2026, 8, 20, 16, 30, 0, 0, time.UTC),
				Total:         dec("500"),
				Items:         []domain.SaleLine{{ItemID: "c"}},
			},
		},
	}
}

func TestSalesPDF(t *testing.T) {
	out, err := SalesPDF(sampleReport())
	if err != nil {
		t.Fatalf("SalesPDF: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Fatalf("output does not start with PDF header: %q", out[:8])
	}
}

func TestSalesCSV(t *testing.T) {
	out, err := SalesCSV(sampleReport())
	if err != nil {
		t.Fatalf("SalesCSV: %v", err)
	}
	text := string(out)
	lines := strings.Split(strings.TrimSpace(text), "\n")
	if len(lines) != 4 {
		t.Fatalf("csv lines = %d, want header + 2 sales + summary", len(lines))
	}
	if !strings.HasPrefix(lines[0], "receipt_number,") {
		t.Fatalf("header = %q", lines[0])
	}
	for _, want := range []string{"JSS-20260815-000001", "750.50", "TOTAL", "1250.50"} {
		if !strings.Contains(text, want) {
			t.Errorf("csv missing %q", want)
		}
	}
}
