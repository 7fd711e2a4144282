package domain

import (
	"testing"

	"github.com/google/uuid"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name string
		from Status
		to   Status
		want bool
	}{
		{"direct to opportunity", StatusDirect, StatusOpportunity, true},
		{"direct to responded", StatusDirect, StatusResponded, true},
		{"opportunity to responded", StatusOpportunity, StatusResponded, true},
		{"opportunity back to direct", StatusOpportunity, StatusDirect, false},
		{"responded to opportunity", StatusResponded, StatusOpportunity, false},
		{"responded to direct", StatusResponded, StatusDirect, false},
		{"responded to responded", StatusResponded, StatusResponded, false},
		{"direct to direct", StatusDirect, StatusDirect, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanTransition(tt.from, tt.to); got != tt.want {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestParseStatus(t *testing.T) {
	for _, valid := range []string{"direct", "opportunity", "responded"} {
		if _, err := ParseStatus(valid); err != nil {
			t.Errorf("ParseStatus(%q) unexpected error: %v", valid, err)
		}
	}

	for _, invalid := range []string{"", "Direct", "open", "claimed"} {
		if _, err := ParseStatus(invalid); err == nil {
			t.Errorf("ParseStatus(%q) expected error, got nil", invalid)
		}
	}
}

func TestVisibleTo(t *testing.T) {
	customer := uuid.New()
	recipient := uuid.New()
	other := uuid.New()

	lead := Lead{CustomerID: customer, ProviderID: recipient, Status: StatusDirect}

	if !lead.VisibleTo(recipient) {
		t.Error("direct lead should be visible to its recipient")
	}
	if lead.VisibleTo(other) {
		t.Error("direct lead should not be visible to other providers")
	}

	lead.Status = StatusOpportunity
	if !lead.VisibleTo(other) {
		t.Error("opportunity should be visible to other providers")
	}
	if lead.VisibleTo(customer) {
		t.Error("opportunity should not be visible to the sending customer")
	}

	lead.Status = StatusResponded
	lead.RespondedBy = &other
	if !lead.VisibleTo(other) {
		t.Error("responded lead should be visible to the winner")
	}
}

func TestChargeable(t *testing.T) {
	price := 12.50
	zero := 0.0

	tests := []struct {
		name string
		lead Lead
		want bool
	}{
		{"priced opportunity", Lead{Status: StatusOpportunity, Price: &price}, true},
		{"direct lead is free", Lead{Status: StatusDirect, Price: &price}, false},
		{"opportunity without price", Lead{Status: StatusOpportunity}, false},
		{"opportunity with zero price", Lead{Status: StatusOpportunity, Price: &zero}, false},
		{"already paid", Lead{Status: StatusOpportunity, Price: &price, Paid: true}, false},
		{"responded lead", Lead{Status: StatusResponded, Price: &price}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.lead.Chargeable(); got != tt.want {
				t.Errorf("Chargeable() = %v, want %v", got, tt.want)
			}
		})
	}
}
