package domain

import "testing"

func TestParseAction(t *testing.T) {
	t.Parallel()

	tests := []struct {
		customID string
		want     Action
	}{
		{"ticket_general", CreateTicket{CategoryKey: "general"}},
		{"ticket_staff_report", CreateTicket{CategoryKey: "staff_report"}},
		{"claim_123456789", ToggleClaim{ThreadID: "123456789"}},
		{"close_123456789", CloseTicket{ThreadID: "123456789"}},
	}
	for _, tt := range tests {
		action, ok := ParseAction(tt.customID)
		if !ok {
			t.Fatalf("ParseAction(%q) not recognized", tt.customID)
		}
		if action != tt.want {
			t.Fatalf("ParseAction(%q) = %#v, want %#v", tt.customID, action, tt.want)
		}
	}
}

func TestParseActionUnknown(t *testing.T) {
	t.Parallel()

	for _, customID := range []string{"", "unknown_x", "tickets_general", "claim", "CLOSE_123"} {
		if action, ok := ParseAction(customID); ok {
			t.Fatalf("ParseAction(%q) = %#v, want rejection", customID, action)
		}
	}
}

func TestCustomIDRoundTrip(t *testing.T) {
	t.Parallel()

	if got, _ := ParseAction(CreateCustomID("appeals")); got != (CreateTicket{CategoryKey: "appeals"}) {
		t.Fatalf("create round trip mismatch: %#v", got)
	}
	if got, _ := ParseAction(ClaimCustomID("42")); got != (ToggleClaim{ThreadID: "42"}) {
		t.Fatalf("claim round trip mismatch: %#v", got)
	}
	if got, _ := ParseAction(CloseCustomID("42")); got != (CloseTicket{ThreadID: "42"}) {
		t.Fatalf("close round trip mismatch: %#v", got)
	}
}

func TestTicketRecordClaimed(t *testing.T) {
	t.Parallel()

	record := TicketRecord{ThreadID: "1"}
	if record.Claimed() {
		t.Fatal("fresh record should be unclaimed")
	}
	record.ClaimedBy = "agent"
	if !record.Claimed() {
		t.Fatal("record with claimer should be claimed")
	}
}
