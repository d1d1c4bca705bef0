package services

import (
	"context"
	"encoding/hex"

	pubnub "github.com/pubnub/go/v7"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/blake2b"

	"ticketbari/internal/logging"
	"ticketbari/models"
)

const (
	EventBookingCreated   = "booking_created"
	EventBookingDecided   = "booking_status_changed"
	EventBookingCancelled = "booking_cancelled"
	EventPaymentSucceeded = "payment_success"
)

// Event is the realtime message pushed to the parties of a booking.
type Event struct {
	Type      string               `json:"type"`
	BookingID string               `json:"bookingId"`
	TicketID  string               `json:"ticketId,omitempty"`
	Status    models.BookingStatus `json:"status,omitempty"`
}

type Notifier interface {
	// Notify is best effort. Delivery failures are logged, never returned.
	Notify(ctx context.Context, event Event, recipients ...string)
}

type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, Event, ...string) {}

type publisher interface {
	publish(channel string, message any) error
}

type pubnubPublisher struct {
	pn *pubnub.PubNub
}

func (p pubnubPublisher) publish(channel string, message any) error {
	_, _, err := p.pn.Publish().
		Channel(channel).
		Message(message).
		Execute()
	return err
}

type PubNubNotifier struct {
	pub publisher
}

// NewPubNubNotifier returns a NopNotifier when the publish key is missing.
func NewPubNubNotifier(publishKey, subscribeKey, secretKey, userID string) Notifier {
	if publishKey == "" {
		logrus.Info("pubnub publish key not set, realtime notifications disabled")
		return NopNotifier{}
	}

	cfg := pubnub.NewConfigWithUserId(pubnub.UserId(userID))
	cfg.PublishKey = publishKey
	cfg.SubscribeKey = subscribeKey
	cfg.SecretKey = secretKey

	return &PubNubNotifier{pub: pubnubPublisher{pn: pubnub.NewPubNub(cfg)}}
}

func (n *PubNubNotifier) Notify(ctx context.Context, event Event, recipients ...string) {
	seen := make(map[string]bool, len(recipients))
	for _, email := range recipients {
		channel := UserChannel(email)
		if email == "" || seen[channel] {
			continue
		}
		seen[channel] = true

		if err := n.pub.publish(channel, event); err != nil {
			logging.FromContext(ctx).WithError(err).WithFields(logrus.Fields{
				"event":   event.Type,
				"booking": event.BookingID,
			}).Warn("failed to publish notification")
		}
	}
}

// UserChannel is the realtime channel of an account. Emails contain
// characters PubNub does not allow in channel names, so they are hashed.
func UserChannel(email string) string {
	sum := blake2b.Sum256([]byte(models.NormalizeEmail(email)))
	return "user-" + hex.EncodeToString(sum[:16])
}
