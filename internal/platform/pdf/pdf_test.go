package pdf

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func sampleInvoice() *InvoiceDocument {
	return &InvoiceDocument{
		InvoiceNumber: "INV-2026-0042",
		IssuedAt:      time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		DueDate:       time.Date(2026, 4, 9, 0, 0, 0, 0, time.UTC),
		Status:        "sent",
		Currency:      "GBP",
		ClinicName:    "Harley Street Clinic",
		PatientName:   "Jane Roe",
		PaymentMethod: "Insurance",
		Lines: []InvoiceLine{
			{Description: "Consultation - Dr. Smith", Quantity: 1, UnitPrice: 150},
			{Description: "Complete Blood Count (CBC)", Quantity: 1, UnitPrice: 25},
		},
		Total: 175,
	}
}

func TestRenderInvoice(t *testing.T) {
	out, err := RenderInvoice(sampleInvoice())
	if err != nil {
		t.Fatalf("RenderInvoice: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Error("output is not a PDF document")
	}
	if len(out) < 500 {
		t.Errorf("suspiciously small PDF: %d bytes", len(out))
	}
}

func TestRenderInvoice_ManyLines(t *testing.T) {
	doc := sampleInvoice()
	for i := 0; i < 80; i++ {
		doc.Lines = append(doc.Lines, InvoiceLine{Description: "Lab panel", Quantity: 1, UnitPrice: 10})
	}

	out, err := RenderInvoice(doc)
	if err != nil {
		t.Fatalf("RenderInvoice: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Error("output is not a PDF document")
	}
}

func TestRenderRevenueReport(t *testing.T) {
	rep := &RevenueReport{
		ClinicName: "Harley Street Clinic",
		From:       time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		To:         time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
		Currency:   "GBP",
		FilterSummary: "this-month, role: doctor",
		Rows: []RevenueRow{
			{Service: "Consultation - Dr. Smith", InvoiceCount: 12, Insurance: 600, SelfPay: 1200, TotalAmount: 1800, PaidAmount: 1500, OutstandingAmt: 300, CollectionRate: 83.3},
			{Service: "Total", InvoiceCount: 12, Insurance: 600, SelfPay: 1200, TotalAmount: 1800, PaidAmount: 1500, OutstandingAmt: 300, CollectionRate: 83.3},
		},
	}

	out, err := RenderRevenueReport(rep)
	if err != nil {
		t.Fatalf("RenderRevenueReport: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Error("output is not a PDF document")
	}
}

func TestWriteRevenueCSV(t *testing.T) {
	rep := &RevenueReport{
		Currency: "GBP",
		Rows: []RevenueRow{
			{Service: "X-Ray, Chest", InvoiceCount: 3, SelfPay: 240, TotalAmount: 240, PaidAmount: 240, CollectionRate: 100},
		},
	}

	var buf bytes.Buffer
	if err := WriteRevenueCSV(&buf, rep); err != nil {
		t.Fatalf("WriteRevenueCSV: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header + 1 row, got %d lines", len(lines))
	}
	if lines[0] != "service,invoice_count,insurance_amount,self_pay_amount,total_amount,paid_amount,outstanding_amount,collection_rate" {
		t.Errorf("unexpected header: %s", lines[0])
	}
	// Service name contains a comma and must be quoted
	if !strings.HasPrefix(lines[1], `"X-Ray, Chest",3,0.00,240.00,240.00,240.00,0.00,100.0`) {
		t.Errorf("unexpected row: %s", lines[1])
	}
}

func TestCurrencySymbol(t *testing.T) {
	if got := currencySymbol("GBP"); got != "£" {
		t.Errorf("GBP: got %q", got)
	}
	if got := currencySymbol("CHF"); got != "CHF " {
		t.Errorf("unknown currency: got %q", got)
	}
}
