package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"ticketbari/models"
)

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) publish(channel string, message any) error {
	return m.Called(channel, message).Error(0)
}

func TestUserChannel(t *testing.T) {
	channel := UserChannel("Alice@Example.com")

	assert.Equal(t, UserChannel("alice@example.com"), channel)
	assert.NotEqual(t, UserChannel(bobEmail), channel)
	assert.Regexp(t, "^user-[0-9a-f]{32}$", channel)
}

func TestPubNubNotifier_PublishesOncePerRecipient(t *testing.T) {
	pub := new(mockPublisher)
	n := &PubNubNotifier{pub: pub}
	event := Event{Type: EventBookingDecided, BookingID: "b1", Status: models.BookingApproved}

	pub.On("publish", UserChannel(aliceEmail), event).Return(nil).Once()
	pub.On("publish", UserChannel(vendorEmail), event).Return(errors.New("403 forbidden")).Once()

	n.Notify(context.Background(), event, aliceEmail, "ALICE@example.com", vendorEmail, "")

	pub.AssertExpectations(t)
	pub.AssertNumberOfCalls(t, "publish", 2)
}

func TestNewPubNubNotifier_DisabledWithoutKeys(t *testing.T) {
	n := NewPubNubNotifier("", "", "", "server")

	assert.IsType(t, NopNotifier{}, n)
	n.Notify(context.Background(), Event{Type: EventBookingCreated}, aliceEmail)
}
