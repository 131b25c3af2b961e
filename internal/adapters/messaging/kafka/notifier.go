// Package kafka implements the Notifier port on a Kafka topic. The API
// server publishes notification events; the notifier worker consumes them
// and talks to the SMS/WhatsApp gateway. Publishing is asynchronous so a
// slow or dead broker never blocks a state transition.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/twmb/franz-go/pkg/kgo"

	"performer-marketplace/internal/core/domain"
)

// Notification event kinds, consumed by cmd/notifier-service.
const (
	EventBookingCreated      = "booking_created"
	EventBookingDecided      = "booking_decided"
	EventDepositVerified     = "deposit_verified"
	EventApplicationReviewed = "application_reviewed"
)

// Notification is the wire format on the notifications topic.
type Notification struct {
	Kind        string    `json:"kind"`
	RecipientID uuid.UUID `json:"recipient_id"`
	TargetID    uuid.UUID `json:"target_id"`
	Status      string    `json:"status"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// Notifier is the Kafka implementation of the Notifier port.
type Notifier struct {
	client *kgo.Client
	topic  string
	logger *slog.Logger
	wg     sync.WaitGroup
}

// NewNotifier creates a Kafka-backed notifier and verifies the connection.
func NewNotifier(bootstrapServers []string, topic string, logger *slog.Logger) (*Notifier, error) {
	opts := []kgo.Opt{
		kgo.SeedBrokers(bootstrapServers...),
		kgo.DefaultProduceTopic(topic),
		kgo.AllowAutoTopicCreation(),
		kgo.RequiredAcks(kgo.AllISRAcks()),
		kgo.RecordDeliveryTimeout(10 * time.Second),
	}

	client, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka client: %w", err)
	}

	if err := client.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to connect to kafka: %w", err)
	}

	return &Notifier{
		client: client,
		topic:  topic,
		logger: logger,
	}, nil
}

func (n *Notifier) publish(ctx context.Context, note Notification) error {
	payload, err := json.Marshal(note)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	record := &kgo.Record{
		Key:   []byte(note.RecipientID.String()),
		Value: payload,
	}

	n.wg.Add(1)
	// Produce is asynchronous; delivery failures are logged, never
	// surfaced to the operation that triggered the notification.
	n.client.Produce(ctx, record, func(r *kgo.Record, err error) {
		defer n.wg.Done()
		if err != nil {
			n.logger.Error("failed to deliver notification", "topic", r.Topic, "kind", note.Kind, "error", err)
		} else {
			n.logger.Debug("notification delivered to kafka", "topic", r.Topic, "kind", note.Kind, "partition", r.Partition, "offset", r.Offset)
		}
	})

	return nil
}

func (n *Notifier) BookingCreated(ctx context.Context, b *domain.Booking) error {
	return n.publish(ctx, Notification{
		Kind:        EventBookingCreated,
		RecipientID: b.PerformerID,
		TargetID:    b.ID,
		Status:      string(b.Status),
		OccurredAt:  time.Now().UTC(),
	})
}

func (n *Notifier) BookingDecided(ctx context.Context, b *domain.Booking) error {
	return n.publish(ctx, Notification{
		Kind:        EventBookingDecided,
		RecipientID: b.ClientID,
		TargetID:    b.ID,
		Status:      string(b.Status),
		OccurredAt:  time.Now().UTC(),
	})
}

func (n *Notifier) DepositVerified(ctx context.Context, b *domain.Booking) error {
	return n.publish(ctx, Notification{
		Kind:        EventDepositVerified,
		RecipientID: b.ClientID,
		TargetID:    b.ID,
		Status:      string(b.PaymentStatus),
		OccurredAt:  time.Now().UTC(),
	})
}

func (n *Notifier) ApplicationReviewed(ctx context.Context, a *domain.VettingApplication) error {
	return n.publish(ctx, Notification{
		Kind:        EventApplicationReviewed,
		RecipientID: a.ApplicantID,
		TargetID:    a.ID,
		Status:      string(a.Status),
		OccurredAt:  time.Now().UTC(),
	})
}

// Close waits for in-flight produce callbacks and stops the client.
func (n *Notifier) Close() {
	n.logger.Info("waiting for pending kafka notifications...")
	n.wg.Wait()
	n.client.Close()
	n.logger.Info("kafka client stopped")
}
