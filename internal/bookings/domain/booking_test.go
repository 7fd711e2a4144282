package domain

import "testing"

func TestCanTransitionExhaustive(t *testing.T) {
	all := []Status{StatusUpcoming, StatusConfirmed, StatusCompleted, StatusCancelled, StatusDeclined}

	allowed := map[Status]map[Status]bool{
		StatusUpcoming:  {StatusConfirmed: true, StatusDeclined: true, StatusCancelled: true},
		StatusConfirmed: {StatusCompleted: true, StatusCancelled: true},
		StatusCompleted: {},
		StatusCancelled: {},
		StatusDeclined:  {},
	}

	for _, from := range all {
		for _, to := range all {
			want := allowed[from][to]
			if got := CanTransition(from, to); got != want {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", from, to, got, want)
			}
		}
	}
}

func TestParseStatus(t *testing.T) {
	for _, valid := range []string{"Upcoming", "Confirmed", "Completed", "Cancelled", "Declined"} {
		if _, err := ParseStatus(valid); err != nil {
			t.Errorf("ParseStatus(%q) unexpected error: %v", valid, err)
		}
	}
	for _, invalid := range []string{"", "upcoming", "Pending", "Done"} {
		if _, err := ParseStatus(invalid); err == nil {
			t.Errorf("ParseStatus(%q) expected error", invalid)
		}
	}
}

func TestAllowedFor(t *testing.T) {
	tests := []struct {
		name  string
		actor Actor
		to    Status
		want  bool
	}{
		{"provider confirms", ActorProvider, StatusConfirmed, true},
		{"provider declines", ActorProvider, StatusDeclined, true},
		{"provider completes", ActorProvider, StatusCompleted, true},
		{"provider cancels", ActorProvider, StatusCancelled, true},
		{"customer cancels", ActorCustomer, StatusCancelled, true},
		{"customer cannot confirm", ActorCustomer, StatusConfirmed, false},
		{"customer cannot complete", ActorCustomer, StatusCompleted, false},
		{"customer cannot decline", ActorCustomer, StatusDeclined, false},
		{"admin confirms", ActorAdmin, StatusConfirmed, true},
		{"admin cancels", ActorAdmin, StatusCancelled, true},
		{"system confirms", ActorSystem, StatusConfirmed, true},
		{"system cannot complete", ActorSystem, StatusCompleted, false},
		{"system cannot cancel", ActorSystem, StatusCancelled, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AllowedFor(tt.actor, tt.to); got != tt.want {
				t.Errorf("AllowedFor(%s, %s) = %v, want %v", tt.actor, tt.to, got, tt.want)
			}
		})
	}
}
