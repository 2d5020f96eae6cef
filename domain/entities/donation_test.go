package entities

import "testing"

func TestDonationEventValidate(t *testing.T) {
	event := DonationEvent{PaymentID: "p1", Amount: 20, Asset: "diamonds"}
	if err := event.Validate(); err != nil {
		t.Fatalf("expected valid event, got %v", err)
	}

	missingID := DonationEvent{Amount: 20, Asset: "diamonds"}
	if err := missingID.Validate(); err == nil {
		t.Error("expected error for missing payment id")
	}

	missingAsset := DonationEvent{PaymentID: "p1", Amount: 20}
	if err := missingAsset.Validate(); err == nil {
		t.Error("expected error for missing asset")
	}
}

func TestDonationEventHasMessage(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    bool
	}{
		{"absent", "", false},
		{"blank", "   \t ", false},
		{"present", "sbah elkhir", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event := DonationEvent{Message: tt.message}
			if got := event.HasMessage(); got != tt.want {
				t.Errorf("HasMessage() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDonationEventDonor(t *testing.T) {
	event := DonationEvent{}
	if got := event.Donor(); got != AnonymousDonor {
		t.Errorf("expected anonymous fallback, got %q", got)
	}

	event.DonorName = "Ali"
	if got := event.Donor(); got != "Ali" {
		t.Errorf("expected Ali, got %q", got)
	}
}
