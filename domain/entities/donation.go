package entities

import (
	"errors"
	"strings"
)

// AnonymousDonor is used when the webhook payload carries no donor username.
const AnonymousDonor = "Anonymous"

// DonationEvent represents a single incoming contribution, optionally carrying
// a message to be announced to connected listeners.
type DonationEvent struct {
	PaymentID      string  `json:"payment_id"`
	DonorName      string  `json:"donor_name"`
	Amount         float64 `json:"amount"`
	Asset          string  `json:"asset"`
	Message        string  `json:"message,omitempty"`
	NormalizedText string  `json:"normalized_text,omitempty"`
	AudioURL       string  `json:"audio_url,omitempty"`
}

// Validate checks the fields required before any processing happens.
// Amount presence is enforced at the webhook boundary, where absence is
// distinguishable from zero.
func (d *DonationEvent) Validate() error {
	if d.PaymentID == "" {
		return errors.New("payment id is required")
	}
	if d.Asset == "" {
		return errors.New("asset is required")
	}
	return nil
}

// HasMessage reports whether the donor supplied an announceable message.
// A whitespace-only message counts as absent.
func (d *DonationEvent) HasMessage() bool {
	return strings.TrimSpace(d.Message) != ""
}

// Donor returns the donor name, falling back to the anonymous sentinel.
func (d *DonationEvent) Donor() string {
	if d.DonorName == "" {
		return AnonymousDonor
	}
	return d.DonorName
}
