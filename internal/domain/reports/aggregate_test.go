package reports

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/cura/cura/internal/domain/billing"
	"github.com/cura/cura/internal/domain/directory"
	"github.com/cura/cura/internal/domain/pricing"
)

func strPtr(s string) *string { return &s }

func marchFilter() Filter {
	return Filter{
		From: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
	}
}

func inMarch(day int) time.Time {
	return time.Date(2026, 3, day, 10, 0, 0, 0, time.UTC)
}

func testInvoices(doctorID uuid.UUID) []*billing.Invoice {
	return []*billing.Invoice{
		{
			ProviderID: &doctorID, ServiceType: strPtr("general consultation"),
			DateOfService: inMarch(3), TotalAmount: 100, PaidAmount: 100,
		},
		{
			ProviderID: &doctorID, ServiceType: strPtr("General Consultation"),
			DateOfService: inMarch(10), TotalAmount: 100, PaidAmount: 50,
			Insurance: &billing.InsuranceDetails{Provider: "Bupa"},
		},
		{
			ServiceType:   strPtr("Echocardiogram"),
			DateOfService: inMarch(12), TotalAmount: 220, PaidAmount: 0,
		},
		{
			DateOfService: inMarch(20), TotalAmount: 40, PaidAmount: 40,
		},
		{
			// outside the window, must be excluded
			ServiceType:   strPtr("General Consultation"),
			DateOfService: time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC),
			TotalAmount:   999, PaidAmount: 999,
		},
	}
}

func testFees() []*pricing.DoctorFee {
	return []*pricing.DoctorFee{
		{ServiceName: "General Consultation", DoctorRole: "General Practitioner", BasePrice: 50},
	}
}

func TestBreakdown_GroupsAndTotals(t *testing.T) {
	doctorID := uuid.New()
	users := []*directory.User{{ID: doctorID, Name: "Dr Smith", Role: "doctor"}}

	rows := Breakdown(testInvoices(doctorID), testFees(), users, marchFilter())

	// General Consultation, Echocardiogram, Other Services + Total
	if len(rows) != 4 {
		t.Fatalf("got %d rows, want 4: %+v", len(rows), rows)
	}

	byService := map[string]BreakdownRow{}
	for _, r := range rows {
		byService[r.Service] = r
	}

	gc, ok := byService["General Consultation"]
	if !ok {
		t.Fatal("missing General Consultation group (catalog name match is case-insensitive)")
	}
	if gc.Procedures != 2 || gc.TotalAmount != 200 || gc.PaidAmount != 150 {
		t.Errorf("General Consultation = %+v", gc)
	}
	if gc.Insurance != 100 || gc.SelfPay != 100 {
		t.Errorf("insurance/self-pay split = %v/%v, want 100/100", gc.Insurance, gc.SelfPay)
	}
	if gc.CollectionRate != 75 {
		t.Errorf("collection rate = %v, want 75", gc.CollectionRate)
	}

	if other, ok := byService["Other Services"]; !ok || other.Procedures != 1 {
		t.Errorf("Other Services = %+v", other)
	}

	if echo, ok := byService["Echocardiogram"]; !ok || echo.CollectionRate != 0 {
		t.Errorf("unpaid group should have 0%% collection, got %+v", echo)
	}
}

func TestBreakdown_TotalRowIsFieldwiseSum(t *testing.T) {
	doctorID := uuid.New()
	rows := Breakdown(testInvoices(doctorID), testFees(), nil, marchFilter())

	total := rows[len(rows)-1]
	if total.Service != TotalRowLabel {
		t.Fatalf("last row is %s, want Total", total.Service)
	}

	var sum BreakdownRow
	for _, r := range rows[:len(rows)-1] {
		sum.Procedures += r.Procedures
		sum.Revenue += r.Revenue
		sum.Insurance += r.Insurance
		sum.SelfPay += r.SelfPay
		sum.TotalAmount += r.TotalAmount
		sum.PaidAmount += r.PaidAmount
	}

	if total.Procedures != sum.Procedures || total.Revenue != sum.Revenue ||
		total.Insurance != sum.Insurance || total.SelfPay != sum.SelfPay ||
		total.TotalAmount != sum.TotalAmount || total.PaidAmount != sum.PaidAmount {
		t.Errorf("Total row %+v does not equal field-wise sum %+v", total, sum)
	}
	if total.Insurance+total.SelfPay != total.Revenue {
		t.Errorf("insurance + self-pay = %v, want revenue %v", total.Insurance+total.SelfPay, total.Revenue)
	}
}

func TestBreakdown_CollectionRateBounds(t *testing.T) {
	doctorID := uuid.New()
	rows := Breakdown(testInvoices(doctorID), testFees(), nil, marchFilter())
	for _, r := range rows {
		if r.CollectionRate < 0 || r.CollectionRate > 100 {
			t.Errorf("%s: collection rate %v out of [0,100]", r.Service, r.CollectionRate)
		}
	}
}

func TestBreakdown_EmptyLedger(t *testing.T) {
	rows := Breakdown(nil, nil, nil, marchFilter())
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want just the Total row", len(rows))
	}
	if rows[0].CollectionRate != 0 {
		t.Errorf("zero-total collection rate = %v, want 0", rows[0].CollectionRate)
	}
}

func TestBreakdown_InsuranceTypeFilter(t *testing.T) {
	doctorID := uuid.New()

	f := marchFilter()
	f.InsuranceType = FilterInsurance
	rows := Breakdown(testInvoices(doctorID), testFees(), nil, f)

	total := rows[len(rows)-1]
	if total.Procedures != 1 || total.SelfPay != 0 {
		t.Errorf("insurance-only total = %+v", total)
	}

	f.InsuranceType = FilterSelfPay
	rows = Breakdown(testInvoices(doctorID), testFees(), nil, f)
	total = rows[len(rows)-1]
	if total.Procedures != 3 || total.Insurance != 0 {
		t.Errorf("self-pay total = %+v", total)
	}
}

func TestBreakdown_RoleAndUserFilters(t *testing.T) {
	doctorID := uuid.New()
	users := []*directory.User{{ID: doctorID, Name: "Dr Smith", Role: "doctor"}}

	f := marchFilter()
	f.Role = "doctor"
	rows := Breakdown(testInvoices(doctorID), testFees(), users, f)
	if total := rows[len(rows)-1]; total.Procedures != 2 {
		t.Errorf("role filter kept %d invoices, want 2", total.Procedures)
	}

	f.Role = "nurse"
	rows = Breakdown(testInvoices(doctorID), testFees(), users, f)
	if total := rows[len(rows)-1]; total.Procedures != 0 {
		t.Errorf("nurse filter kept %d invoices, want 0", total.Procedures)
	}

	f = marchFilter()
	f.UserID = &doctorID
	rows = Breakdown(testInvoices(doctorID), testFees(), users, f)
	if total := rows[len(rows)-1]; total.Procedures != 2 {
		t.Errorf("user filter kept %d invoices, want 2", total.Procedures)
	}
}
