// Package reports derives revenue breakdowns from the invoice ledger and
// the pricing catalog, and runs the overdue sweep.
package reports

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cura/cura/internal/domain/billing"
	"github.com/cura/cura/internal/domain/directory"
	"github.com/cura/cura/internal/domain/pricing"
)

// Insurance-type filter values.
const (
	FilterInsurance = "insurance"
	FilterSelfPay   = "self-pay"
)

// TotalRowLabel names the synthetic summary row appended to every
// breakdown.
const TotalRowLabel = "Total"

// Filter narrows the invoices feeding a breakdown.
type Filter struct {
	From          time.Time
	To            time.Time
	InsuranceType string     // insurance, self-pay or empty for both
	Role          string     // provider role, resolved against the user list
	UserID        *uuid.UUID // specific provider
}

// BreakdownRow is one service group in a revenue breakdown.
type BreakdownRow struct {
	Service        string  `json:"service"`
	Procedures     int     `json:"procedures"`
	Revenue        float64 `json:"revenue"`
	Insurance      float64 `json:"insurance"`
	SelfPay        float64 `json:"self_pay"`
	TotalAmount    float64 `json:"total_amount"`
	PaidAmount     float64 `json:"paid_amount"`
	CollectionRate float64 `json:"collection_rate"`
}

// Breakdown aggregates invoices into per-service rows plus a trailing Total
// row. Invoices are included when their service date falls in [From, To)
// and they pass the insurance-type, role and user filters. Service names
// resolve against the doctor-fee catalog first, then the invoice's own
// service type, then "Other Services".
func Breakdown(invoices []*billing.Invoice, fees []*pricing.DoctorFee, users []*directory.User, f Filter) []BreakdownRow {
	rolesByID := make(map[uuid.UUID]string, len(users))
	for _, u := range users {
		rolesByID[u.ID] = u.Role
	}
	feeNames := make(map[string]string, len(fees))
	for _, fee := range fees {
		feeNames[strings.ToLower(fee.ServiceName)] = fee.ServiceName
	}

	groups := map[string]*BreakdownRow{}
	var order []string
	for _, inv := range invoices {
		if !include(inv, rolesByID, f) {
			continue
		}

		name := resolveService(inv, feeNames)
		row, ok := groups[name]
		if !ok {
			row = &BreakdownRow{Service: name}
			groups[name] = row
			order = append(order, name)
		}

		row.Procedures++
		row.Revenue += inv.TotalAmount
		if inv.Insurance != nil {
			row.Insurance += inv.TotalAmount
		} else {
			row.SelfPay += inv.TotalAmount
		}
		row.TotalAmount += inv.TotalAmount
		row.PaidAmount += inv.PaidAmount
	}

	sort.Strings(order)
	rows := make([]BreakdownRow, 0, len(order)+1)
	total := BreakdownRow{Service: TotalRowLabel}
	for _, name := range order {
		row := groups[name]
		row.CollectionRate = collectionRate(row.PaidAmount, row.TotalAmount)
		rows = append(rows, *row)

		total.Procedures += row.Procedures
		total.Revenue += row.Revenue
		total.Insurance += row.Insurance
		total.SelfPay += row.SelfPay
		total.TotalAmount += row.TotalAmount
		total.PaidAmount += row.PaidAmount
	}
	total.CollectionRate = collectionRate(total.PaidAmount, total.TotalAmount)
	rows = append(rows, total)
	return rows
}

func include(inv *billing.Invoice, rolesByID map[uuid.UUID]string, f Filter) bool {
	if inv.DateOfService.Before(f.From) || !inv.DateOfService.Before(f.To) {
		return false
	}
	switch f.InsuranceType {
	case FilterInsurance:
		if inv.Insurance == nil {
			return false
		}
	case FilterSelfPay:
		if inv.Insurance != nil {
			return false
		}
	}
	if f.Role != "" {
		if inv.ProviderID == nil || rolesByID[*inv.ProviderID] != f.Role {
			return false
		}
	}
	if f.UserID != nil {
		if inv.ProviderID == nil || *inv.ProviderID != *f.UserID {
			return false
		}
	}
	return true
}

func resolveService(inv *billing.Invoice, feeNames map[string]string) string {
	if inv.ServiceType == nil || strings.TrimSpace(*inv.ServiceType) == "" {
		return "Other Services"
	}
	if name, ok := feeNames[strings.ToLower(*inv.ServiceType)]; ok {
		return name
	}
	return *inv.ServiceType
}

func collectionRate(paid, total float64) float64 {
	if total == 0 {
		return 0
	}
	return paid / total * 100
}
