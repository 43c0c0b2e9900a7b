// Package report renders sales reports for download. The PDF mirrors the
// admin page export: a summary block followed by one table row per sale.
package report

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/go-pdf/fpdf"

	"jokersolar/backend/internal/domain"
)

var pdfColumns = []struct {
	title string
	width float64
}{
	{"Receipt #", 48},
	{"Date", 30},
	{"Customer", 42},
	{"Sold By", 35},
	{"Total", 25},
}

// SalesPDF renders the report as a PDF document.
func SalesPDF(r domain.SalesReport) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Sales Report", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, "Joker Solar Solution - Sales Report")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Period: %s to %s", r.From, r.To))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Summary")
	pdf.Ln(7)
	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 6, "Total Revenue: $"+r.Summary.TotalRevenue.StringFixed(2))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Total Sales: %d", r.Summary.SaleCount))
	pdf.Ln(6)
	pdf.Cell(0, 6, "Average Sale: $"+r.Summary.AverageSale.StringFixed(2))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	for _, col := range pdfColumns {
		pdf.CellFormat(col.width, 7, col.title, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for _, sale := range r.Sales {
		cells := []string{
			sale.ReceiptNumber,
			sale.SoldAt.Format("2006-01-02"),
			sale.CustomerName,
			sale.SoldBy,
			"$" + sale.Total.StringFixed(2),
		}
		for i, col := range pdfColumns {
			pdf.CellFormat(col.width, 6, cells[i], "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// SalesCSV renders the report as CSV with a trailing summary row.
func SalesCSV(r domain.SalesReport) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	records := [][]string{
		{"receipt_number", "date", "customer", "sold_by", "items", "total"},
	}
	for _, sale := range r.Sales {
		records = append(records, []string{
			sale.ReceiptNumber,
			sale.SoldAt.Format("2006-01-02 15:04:05"),
			sale.CustomerName,
			sale.SoldBy,
			fmt.Sprintf("%d", len(sale.Items)),
			sale.Total.StringFixed(2),
		})
	}
	records = append(records, []string{
		"TOTAL", r.From + " to " + r.To, "", "",
		fmt.Sprintf("%d", r.Summary.SaleCount),
		r.Summary.TotalRevenue.StringFixed(2),
	})

	if err := w.WriteAll(records); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
