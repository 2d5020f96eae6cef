package websocket

import (
	"time"

	"github.com/darijacast/server/domain/entities"
)

// MessageType defines the type of WebSocket message
type MessageType string

// Supported message types
const (
	// Server to client
	MessageTypeDonation          MessageType = "donation"
	MessageTypeDonationNoMessage MessageType = "donation_nomessage"
	MessageTypeThresholdUpdate   MessageType = "threshold_update"

	// Client to server
	MessageTypeSetThreshold  MessageType = "set_threshold"
	MessageTypeAudioFinished MessageType = "audioFinished"
)

// BaseMessage defines the common structure for all WebSocket messages
type BaseMessage struct {
	Type      MessageType `json:"type"`
	Timestamp string      `json:"timestamp,omitempty"`
}

// DonationMessage carries a full donation event to every client
type DonationMessage struct {
	BaseMessage
	entities.DonationEvent
}

// NoMessageDonation announces a donation that carried no message; it holds
// donor, amount and asset only and never an audio reference
type NoMessageDonation struct {
	BaseMessage
	PaymentID string  `json:"payment_id"`
	DonorName string  `json:"donor_name"`
	Amount    float64 `json:"amount"`
	Asset     string  `json:"asset"`
}

// ThresholdUpdateMessage pushes the current gate threshold to clients
type ThresholdUpdateMessage struct {
	BaseMessage
	Threshold int `json:"threshold"`
}

// SetThresholdMessage is sent by a client to change the gate threshold.
// Value is string-encoded; invalid values are ignored server-side.
type SetThresholdMessage struct {
	BaseMessage
	Value string `json:"value"`
}

// NewDonationMessage creates a donation broadcast message
func NewDonationMessage(event entities.DonationEvent) *DonationMessage {
	return &DonationMessage{
		BaseMessage:   newBase(MessageTypeDonation),
		DonationEvent: event,
	}
}

// NewNoMessageDonation creates a no-message donation broadcast
func NewNoMessageDonation(event entities.DonationEvent) *NoMessageDonation {
	return &NoMessageDonation{
		BaseMessage: newBase(MessageTypeDonationNoMessage),
		PaymentID:   event.PaymentID,
		DonorName:   event.Donor(),
		Amount:      event.Amount,
		Asset:       event.Asset,
	}
}

// NewThresholdUpdateMessage creates a threshold broadcast
func NewThresholdUpdateMessage(threshold int) *ThresholdUpdateMessage {
	return &ThresholdUpdateMessage{
		BaseMessage: newBase(MessageTypeThresholdUpdate),
		Threshold:   threshold,
	}
}

func newBase(messageType MessageType) BaseMessage {
	return BaseMessage{
		Type:      messageType,
		Timestamp: time.Now().Format(time.RFC3339),
	}
}
