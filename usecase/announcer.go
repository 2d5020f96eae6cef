package usecase

import (
	"context"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/darijacast/server/domain/entities"
)

// AudioPath is the endpoint clients dereference to obtain synthesized audio
// for an announced message.
const AudioPath = "/audio"

// DefaultGatedAsset is the asset category the threshold gate applies to.
// Matching is case-insensitive by prefix, so "diamond" also gates "Diamonds".
const DefaultGatedAsset = "diamond"

// Broadcaster fans announcements out to every connected client.
type Broadcaster interface {
	BroadcastDonation(event entities.DonationEvent)
	BroadcastNoMessage(event entities.DonationEvent)
}

// Announcer drives a validated donation through threshold gating, message
// conversion and broadcast. It runs after the webhook has been acknowledged,
// so nothing here can affect the sender's response.
type Announcer struct {
	normalizer  *Normalizer
	broadcaster Broadcaster
	threshold   *ThresholdStore
	gatedAsset  string
	logger      *zap.Logger
}

// NewAnnouncer creates an announcer. An empty gatedAsset selects the default
// gated category.
func NewAnnouncer(
	normalizer *Normalizer,
	broadcaster Broadcaster,
	threshold *ThresholdStore,
	gatedAsset string,
	logger *zap.Logger,
) *Announcer {
	if gatedAsset == "" {
		gatedAsset = DefaultGatedAsset
	}
	return &Announcer{
		normalizer:  normalizer,
		broadcaster: broadcaster,
		threshold:   threshold,
		gatedAsset:  strings.ToLower(gatedAsset),
		logger:      logger,
	}
}

// Process handles one validated donation:
// suppressed by the threshold gate, announced without a message, or
// normalized and broadcast with an audio reference.
func (a *Announcer) Process(ctx context.Context, event entities.DonationEvent) {
	event.DonorName = event.Donor()

	if a.suppressed(event) {
		a.logger.Info("Donation below threshold, suppressed",
			zap.String("paymentID", event.PaymentID),
			zap.Float64("amount", event.Amount),
			zap.Int("threshold", a.threshold.Get()))
		return
	}

	if !event.HasMessage() {
		event.Message = ""
		a.broadcaster.BroadcastNoMessage(event)
		a.logger.Info("Donation announced without message",
			zap.String("paymentID", event.PaymentID),
			zap.String("donor", event.DonorName))
		return
	}

	event.NormalizedText = a.normalizer.Normalize(ctx, event.Message)
	if event.NormalizedText == "" {
		// Message was stripped down to nothing (e.g. emoji-only): the event
		// stays visible in client activity logs but carries no audio.
		a.logger.Warn("Message reduced to nothing after cleaning, announcing without audio",
			zap.String("paymentID", event.PaymentID))
	} else {
		event.AudioURL = AudioPath + "?text=" + url.QueryEscape(event.NormalizedText)
	}

	a.broadcaster.BroadcastDonation(event)
	a.logger.Info("Donation announced",
		zap.String("paymentID", event.PaymentID),
		zap.String("donor", event.DonorName),
		zap.Bool("hasAudio", event.AudioURL != ""))
}

// suppressed reports whether the threshold gate swallows this donation.
// Only the gated asset category is ever suppressed; the comparison is strict,
// so an amount equal to the threshold is announced.
func (a *Announcer) suppressed(event entities.DonationEvent) bool {
	if !strings.HasPrefix(strings.ToLower(event.Asset), a.gatedAsset) {
		return false
	}
	return event.Amount < float64(a.threshold.Get())
}
