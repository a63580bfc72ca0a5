package notify

import (
	"context"
	"encoding/json"
	"time"

	"rentpay/internal/usecase/commands"

	"github.com/google/uuid"
)

const (
	TopicBookingConfirmed = "booking.confirmed"
	TopicHoldPlaced       = "booking.hold_placed"
	TopicPaymentRecorded  = "booking.payment_recorded"
)

// KafkaDispatcher publishes booking lifecycle events. Callers treat every
// publish as fire-and-forget; a broker outage never blocks money movement.
type KafkaDispatcher struct {
	producer *Producer
}

func NewKafkaDispatcher(producer *Producer) commands.Dispatcher {
	return &KafkaDispatcher{producer: producer}
}

func (d *KafkaDispatcher) BookingConfirmed(_ context.Context, bookingID uuid.UUID) error {
	return d.publish(TopicBookingConfirmed, bookingID, map[string]any{
		"booking_id": bookingID,
	})
}

func (d *KafkaDispatcher) HoldPlaced(_ context.Context, bookingID uuid.UUID, authorizationRef string, amountCents int64) error {
	return d.publish(TopicHoldPlaced, bookingID, map[string]any{
		"booking_id":        bookingID,
		"authorization_ref": authorizationRef,
		"amount_cents":      amountCents,
	})
}

func (d *KafkaDispatcher) PaymentRecorded(_ context.Context, bookingID uuid.UUID, amountCents int64, source string) error {
	return d.publish(TopicPaymentRecorded, bookingID, map[string]any{
		"booking_id":   bookingID,
		"amount_cents": amountCents,
		"source":       source,
	})
}

func (d *KafkaDispatcher) publish(topic string, bookingID uuid.UUID, event map[string]any) error {
	event["occurred_at"] = time.Now().UTC().Format(time.RFC3339)
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return d.producer.Publish(topic, bookingID.String(), payload)
}

// NoopDispatcher drops all events. Used when the broker is disabled.
type NoopDispatcher struct{}

func NewNoopDispatcher() commands.Dispatcher {
	return &NoopDispatcher{}
}

func (d *NoopDispatcher) BookingConfirmed(context.Context, uuid.UUID) error { return nil }

func (d *NoopDispatcher) HoldPlaced(context.Context, uuid.UUID, string, int64) error { return nil }

func (d *NoopDispatcher) PaymentRecorded(context.Context, uuid.UUID, int64, string) error {
	return nil
}
