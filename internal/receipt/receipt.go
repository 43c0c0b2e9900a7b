// Package receipt renders completed sales as plain text. The same bytes back
// the on-screen preview and the downloadable .txt file.
package receipt

import (
	"fmt"
	"strings"

	"jokersolar/backend/internal/domain"
)

const (
	rule  = "====================================="
	thin  = "-------------------------------------"
	width = 37
)

// Text formats a sale as a printable receipt. Quantities render as entered
// (whole units for standard items, meters for cuts); money is fixed to two
// decimals.
func Text(sale domain.Sale) string {
	lines := []string{
		rule,
		center("JOKER SOLAR SOLUTION"),
		center("Electronics Store"),
		center("Solar Energy Equipment"),
		rule,
		"",
		"Receipt #: " + sale.ReceiptNumber,
		"Date: " + sale.SoldAt.Format("2006-01-02 15:04:05"),
		"Customer: " + sale.CustomerName,
		"Sold by: " + sale.SoldBy,
		"",
		thin,
		"ITEMS",
		thin,
	}

	for _, item := range sale.Items {
		lines = append(lines, item.Name)
		lines = append(lines, strings.TrimSpace(item.Brand+" "+item.Model))
		lines = append(lines, fmt.Sprintf("%s x $%s = $%s",
			item.Quantity.String(),
			item.SelectedPrice.StringFixed(2),
			item.Subtotal().StringFixed(2)))
		lines = append(lines, "")
	}

	lines = append(lines,
		thin,
		"TOTAL: $"+sale.Total.StringFixed(2),
		rule,
		"",
		"Thank you for your business!",
		"Visit us at jokersolar.com",
		"All sales are final",
	)
	return strings.Join(lines, "\n")
}

// FileName names the downloadable copy of the receipt.
func FileName(sale domain.Sale) string {
	return "receipt-" + sale.ReceiptNumber + ".txt"
}

func center(s string) string {
	pad := (width - len(s)) / 2
	if pad < 0 {
		pad = 0
	}
	return strings.Repeat(" ", pad) + s
}
