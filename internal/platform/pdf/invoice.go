// Package pdf renders invoices and revenue reports as PDF documents.
package pdf

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// InvoiceDocument carries everything the invoice renderer needs. Domain
// packages map their records into this shape so the renderer stays free of
// database types.
type InvoiceDocument struct {
	InvoiceNumber string
	IssuedAt      time.Time
	DueDate       time.Time
	Status        string
	Currency      string

	ClinicName    string
	ClinicHeader  string
	ClinicFooter  string
	PatientName   string
	PatientEmail  string
	DoctorName    string
	PaymentMethod string

	Lines      []InvoiceLine
	Total      float64
	AmountPaid float64
}

type InvoiceLine struct {
	Description string
	Quantity    int
	UnitPrice   float64
}

func currencySymbol(currency string) string {
	symbols := map[string]string{
		"USD": "$",
		"EUR": "€",
		"GBP": "£",
		"JPY": "¥",
		"CAD": "C$",
		"AUD": "A$",
	}
	if symbol, ok := symbols[currency]; ok {
		return symbol
	}
	return currency + " "
}

// RenderInvoice produces an A4 invoice PDF.
func RenderInvoice(doc *InvoiceDocument) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	sym := currencySymbol(doc.Currency)

	// Clinic header
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 8, doc.ClinicName)
	pdf.Ln(6)
	if doc.ClinicHeader != "" {
		pdf.SetFont("Arial", "", 9)
		pdf.MultiCell(0, 5, doc.ClinicHeader, "", "L", false)
	}
	pdf.Ln(10)

	pdf.SetFont("Arial", "B", 24)
	pdf.Cell(0, 10, "INVOICE")
	pdf.Ln(15)

	pdf.SetFont("Arial", "", 10)
	pdf.Cell(60, 6, fmt.Sprintf("Invoice Number: %s", doc.InvoiceNumber))
	pdf.Cell(60, 6, fmt.Sprintf("Date: %s", doc.IssuedAt.Format("January 2, 2006")))
	pdf.Ln(6)
	pdf.Cell(60, 6, fmt.Sprintf("Due Date: %s", doc.DueDate.Format("January 2, 2006")))
	pdf.Cell(60, 6, fmt.Sprintf("Status: %s", doc.Status))
	pdf.Ln(6)
	pdf.Cell(60, 6, fmt.Sprintf("Payment Method: %s", doc.PaymentMethod))
	pdf.Ln(15)

	// Bill To
	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(0, 8, "Bill To:")
	pdf.Ln(6)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 5, doc.PatientName)
	pdf.Ln(5)
	if doc.PatientEmail != "" {
		pdf.Cell(0, 5, doc.PatientEmail)
		pdf.Ln(5)
	}
	if doc.DoctorName != "" {
		pdf.Cell(0, 5, fmt.Sprintf("Attending: %s", doc.DoctorName))
		pdf.Ln(5)
	}
	pdf.Ln(8)

	// Line item table
	pdf.SetFont("Arial", "B", 11)
	pdf.SetFillColor(240, 240, 240)
	pdf.CellFormat(100, 8, "Description", "", 0, "L", true, 0, "")
	pdf.CellFormat(25, 8, "Qty", "", 0, "R", true, 0, "")
	pdf.CellFormat(35, 8, "Unit Price", "", 0, "R", true, 0, "")
	pdf.CellFormat(30, 8, "Amount", "", 1, "R", true, 0, "")

	pdf.SetDrawColor(200, 200, 200)
	pdf.Line(10, pdf.GetY(), 200, pdf.GetY())
	pdf.Ln(3)

	pdf.SetFont("Arial", "", 10)
	for _, line := range doc.Lines {
		if pdf.GetY() > 250 {
			pdf.AddPage()
		}
		lineTotal := float64(line.Quantity) * line.UnitPrice
		pdf.CellFormat(100, 6, line.Description, "", 0, "L", false, 0, "")
		pdf.CellFormat(25, 6, fmt.Sprintf("%d", line.Quantity), "", 0, "R", false, 0, "")
		pdf.CellFormat(35, 6, fmt.Sprintf("%s%.2f", sym, line.UnitPrice), "", 0, "R", false, 0, "")
		pdf.CellFormat(30, 6, fmt.Sprintf("%s%.2f", sym, lineTotal), "", 1, "R", false, 0, "")
	}

	// Totals box
	pdf.Ln(10)
	pdf.SetDrawColor(200, 200, 200)
	pdf.Rect(110, pdf.GetY(), 90, 34, "D")

	pdf.SetFont("Arial", "", 10)
	pdf.SetX(115)
	pdf.Cell(40, 10, "Total:")
	pdf.CellFormat(40, 10, fmt.Sprintf("%s%.2f", sym, doc.Total), "", 1, "R", false, 0, "")

	pdf.SetX(115)
	pdf.Cell(40, 10, "Amount Paid:")
	pdf.CellFormat(40, 10, fmt.Sprintf("%s%.2f", sym, doc.AmountPaid), "", 1, "R", false, 0, "")

	pdf.SetFont("Arial", "B", 12)
	pdf.SetX(115)
	pdf.Cell(40, 10, "Balance Due:")
	pdf.SetTextColor(0, 100, 0)
	pdf.CellFormat(40, 10, fmt.Sprintf("%s%.2f", sym, doc.Total-doc.AmountPaid), "", 1, "R", false, 0, "")
	pdf.SetTextColor(0, 0, 0)

	if doc.ClinicFooter != "" {
		pdf.SetY(-30)
		pdf.SetFont("Arial", "I", 8)
		pdf.MultiCell(0, 4, doc.ClinicFooter, "", "C", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("rendering invoice PDF: %w", err)
	}
	return buf.Bytes(), nil
}
