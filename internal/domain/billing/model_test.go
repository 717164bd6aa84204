package billing

import "testing"

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to string
		want     bool
	}{
		{StatusDraft, StatusPending, true},
		{StatusDraft, StatusSent, true},
		{StatusDraft, StatusCancelled, true},
		{StatusDraft, StatusPaid, false},
		{StatusDraft, StatusOverdue, false},
		{StatusPending, StatusPaid, true},
		{StatusPending, StatusSent, true},
		{StatusPending, StatusOverdue, false},
		{StatusSent, StatusPaid, true},
		{StatusSent, StatusOverdue, true},
		{StatusSent, StatusCancelled, true},
		{StatusSent, StatusDraft, false},
		{StatusOverdue, StatusPaid, true},
		{StatusOverdue, StatusCancelled, true},
		{StatusOverdue, StatusSent, false},
		{StatusPaid, StatusCancelled, false},
		{StatusPaid, StatusSent, false},
		{StatusCancelled, StatusDraft, false},
		{StatusCancelled, StatusPaid, false},
		// same-status is always allowed (no-op)
		{StatusPaid, StatusPaid, true},
		{StatusDraft, StatusDraft, true},
		// unknown source
		{"bogus", StatusPaid, false},
	}

	for _, tc := range cases {
		if got := CanTransition(tc.from, tc.to); got != tc.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestValidStatus(t *testing.T) {
	for _, s := range []string{StatusDraft, StatusPending, StatusSent, StatusPaid, StatusOverdue, StatusCancelled} {
		if !ValidStatus(s) {
			t.Errorf("ValidStatus(%s) = false", s)
		}
	}
	if ValidStatus("archived") {
		t.Error("ValidStatus(archived) = true")
	}
}

func TestInvoiceBalance(t *testing.T) {
	inv := &Invoice{TotalAmount: 100, PaidAmount: 30}
	if got := inv.Balance(); got != 70 {
		t.Errorf("Balance() = %v, want 70", got)
	}

	// overpaid never goes negative
	inv.PaidAmount = 150
	if got := inv.Balance(); got != 0 {
		t.Errorf("Balance() = %v, want 0", got)
	}
}
