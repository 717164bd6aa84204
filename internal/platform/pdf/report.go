package pdf

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// RevenueReport carries the aggregated rows the report renderers emit.
type RevenueReport struct {
	ClinicName    string
	From          time.Time
	To            time.Time
	Currency      string
	FilterSummary string
	Rows          []RevenueRow
}

type RevenueRow struct {
	Service        string
	InvoiceCount   int
	Insurance      float64
	SelfPay        float64
	TotalAmount    float64
	PaidAmount     float64
	OutstandingAmt float64
	CollectionRate float64
}

// RenderRevenueReport produces an A4 landscape revenue breakdown PDF.
func RenderRevenueReport(rep *RevenueReport) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.AddPage()

	sym := currencySymbol(rep.Currency)

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 8, rep.ClinicName)
	pdf.Ln(8)
	pdf.SetFont("Arial", "B", 13)
	pdf.Cell(0, 8, "Revenue Report")
	pdf.Ln(7)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Period: %s to %s",
		rep.From.Format("2 Jan 2006"), rep.To.Format("2 Jan 2006")))
	pdf.Ln(6)
	if rep.FilterSummary != "" {
		pdf.Cell(0, 6, "Filters: "+rep.FilterSummary)
		pdf.Ln(6)
	}
	pdf.Ln(6)

	writeHeader := func() {
		pdf.SetFont("Arial", "B", 9)
		pdf.SetFillColor(240, 240, 240)
		pdf.CellFormat(65, 8, "Service", "", 0, "L", true, 0, "")
		pdf.CellFormat(22, 8, "Invoices", "", 0, "R", true, 0, "")
		pdf.CellFormat(32, 8, "Insurance", "", 0, "R", true, 0, "")
		pdf.CellFormat(32, 8, "Self-pay", "", 0, "R", true, 0, "")
		pdf.CellFormat(32, 8, "Total", "", 0, "R", true, 0, "")
		pdf.CellFormat(32, 8, "Paid", "", 0, "R", true, 0, "")
		pdf.CellFormat(32, 8, "Outstanding", "", 0, "R", true, 0, "")
		pdf.CellFormat(25, 8, "Collection %", "", 1, "R", true, 0, "")
		pdf.SetDrawColor(200, 200, 200)
		pdf.Line(10, pdf.GetY(), 285, pdf.GetY())
		pdf.Ln(2)
	}
	writeHeader()

	pdf.SetFont("Arial", "", 9)
	for _, row := range rep.Rows {
		if pdf.GetY() > 180 {
			pdf.AddPage()
			writeHeader()
			pdf.SetFont("Arial", "", 9)
		}
		if row.Service == "Total" {
			pdf.SetFont("Arial", "B", 9)
			pdf.Line(10, pdf.GetY(), 285, pdf.GetY())
			pdf.Ln(2)
		}
		pdf.CellFormat(65, 6, row.Service, "", 0, "L", false, 0, "")
		pdf.CellFormat(22, 6, fmt.Sprintf("%d", row.InvoiceCount), "", 0, "R", false, 0, "")
		pdf.CellFormat(32, 6, fmt.Sprintf("%s%.2f", sym, row.Insurance), "", 0, "R", false, 0, "")
		pdf.CellFormat(32, 6, fmt.Sprintf("%s%.2f", sym, row.SelfPay), "", 0, "R", false, 0, "")
		pdf.CellFormat(32, 6, fmt.Sprintf("%s%.2f", sym, row.TotalAmount), "", 0, "R", false, 0, "")
		pdf.CellFormat(32, 6, fmt.Sprintf("%s%.2f", sym, row.PaidAmount), "", 0, "R", false, 0, "")
		pdf.CellFormat(32, 6, fmt.Sprintf("%s%.2f", sym, row.OutstandingAmt), "", 0, "R", false, 0, "")
		pdf.CellFormat(25, 6, fmt.Sprintf("%.1f%%", row.CollectionRate), "", 1, "R", false, 0, "")
		if row.Service == "Total" {
			pdf.SetFont("Arial", "", 9)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("rendering revenue report PDF: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteRevenueCSV writes the report rows as CSV with a header record.
func WriteRevenueCSV(w io.Writer, rep *RevenueReport) error {
	cw := csv.NewWriter(w)

	header := []string{"service", "invoice_count", "insurance_amount", "self_pay_amount",
		"total_amount", "paid_amount", "outstanding_amount", "collection_rate"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}

	for _, row := range rep.Rows {
		record := []string{
			row.Service,
			strconv.Itoa(row.InvoiceCount),
			strconv.FormatFloat(row.Insurance, 'f', 2, 64),
			strconv.FormatFloat(row.SelfPay, 'f', 2, 64),
			strconv.FormatFloat(row.TotalAmount, 'f', 2, 64),
			strconv.FormatFloat(row.PaidAmount, 'f', 2, 64),
			strconv.FormatFloat(row.OutstandingAmt, 'f', 2, 64),
			strconv.FormatFloat(row.CollectionRate, 'f', 1, 64),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing CSV row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}
