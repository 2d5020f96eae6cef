package api

import "time"

// WebhookRequest is the structured donation payload. A bare "id" is accepted
// as a legacy alias for "paymentID". Pointer fields distinguish absent from
// zero for validation.
type WebhookRequest struct {
	PaymentID string        `json:"paymentID"`
	LegacyID  string        `json:"id"`
	Amount    *float64      `json:"amount"`
	Asset     *WebhookAsset `json:"asset"`
	Donor     *WebhookDonor `json:"donor"`
	Message   string        `json:"message"`
}

// WebhookAsset names the donated asset
type WebhookAsset struct {
	Name string `json:"name"`
}

// WebhookDonor identifies the donor
type WebhookDonor struct {
	Username string `json:"username"`
}

// OverlayAuthRequest represents the request payload for overlay authentication
type OverlayAuthRequest struct {
	Secret string `json:"secret"`
}

// OverlayAuthResponse represents the response payload for overlay authentication
type OverlayAuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
