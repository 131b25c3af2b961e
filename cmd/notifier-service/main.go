// The notifier worker consumes notification events from Kafka, resolves
// the recipient's phone number and forwards a message to the external
// SMS/WhatsApp gateway. Delivery is best-effort: a gateway failure is
// logged and the offset is committed anyway.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/twmb/franz-go/pkg/kgo"

	"performer-marketplace/internal/adapters/messaging/kafka"
	"performer-marketplace/internal/config"
	"performer-marketplace/internal/observability"
)

// messageTexts maps event kinds to the message sent to the recipient.
var messageTexts = map[string]string{
	kafka.EventBookingCreated:      "You have a new booking request awaiting your decision.",
	kafka.EventBookingDecided:      "Your booking request has been %s.",
	kafka.EventDepositVerified:     "Your deposit has been verified. The booking is confirmed.",
	kafka.EventApplicationReviewed: "Your performer application has been %s.",
}

func main() {
	// --- Configuration Setup ---
	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := observability.SetupLogger(cfg.App.Env)
	logger.Info("notifier-service starting", "env", cfg.App.Env)

	// --- Component Initialization ---
	ctx := context.Background()

	pool, err := pgxpool.New(ctx, cfg.Postgres.DSN)
	if err != nil {
		logger.Error("failed to connect to PostgreSQL", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	kafkaBrokers := strings.Split(cfg.Kafka.BootstrapServers, ",")
	dlqTopic := cfg.Kafka.NotificationsTopic + ".dlq"

	// DLQ producer for messages that cannot be parsed.
	dlqProducer, err := kgo.NewClient(
		kgo.SeedBrokers(kafkaBrokers...),
		kgo.AllowAutoTopicCreation(),
	)
	if err != nil {
		logger.Error("failed to create Kafka producer for DLQ", "error", err)
		os.Exit(1)
	}
	defer dlqProducer.Close()

	consumerClient, err := kgo.NewClient(
		kgo.SeedBrokers(kafkaBrokers...),
		kgo.ConsumerGroup("notifier-group"),
		kgo.ConsumeTopics(cfg.Kafka.NotificationsTopic),
		kgo.DisableAutoCommit(),
	)
	if err != nil {
		logger.Error("failed to create Kafka consumer", "error", err)
		os.Exit(1)
	}
	defer consumerClient.Close()

	gateway := &smsGateway{url: cfg.Gateway.SMSURL, client: &http.Client{Timeout: 10 * time.Second}}

	// Set up graceful shutdown.
	runCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("notifier-service ready", "topic", cfg.Kafka.NotificationsTopic)

	run := true
	for run {
		select {
		case <-runCtx.Done():
			run = false
		default:
			fetches := consumerClient.PollFetches(runCtx)
			if fetches.IsClientClosed() || runCtx.Err() != nil {
				break
			}

			fetches.EachError(func(t string, p int32, err error) {
				logger.Error("error reading from kafka", "topic", t, "partition", p, "error", err)
			})
			fetches.EachRecord(func(record *kgo.Record) {
				var note kafka.Notification
				if err := json.Unmarshal(record.Value, &note); err != nil {
					logger.Error("failed to parse notification, sending to DLQ", "error", err)
					sendToDLQ(dlqProducer, dlqTopic, record, "unmarshal_error", err.Error())
					return
				}

				phone, err := lookupPhone(ctx, pool, note.RecipientID.String())
				if err != nil {
					logger.Error("failed to resolve recipient phone", "recipient_id", note.RecipientID, "error", err)
					return
				}

				text := messageTexts[note.Kind]
				if text == "" {
					logger.Warn("unknown notification kind, skipping", "kind", note.Kind)
					return
				}
				if strings.Contains(text, "%s") {
					text = fmt.Sprintf(text, note.Status)
				}

				if err := gateway.Send(ctx, phone, text); err != nil {
					logger.Error("gateway delivery failed", "recipient_id", note.RecipientID, "kind", note.Kind, "error", err)
					return
				}

				logger.Info("notification delivered", "recipient_id", note.RecipientID, "kind", note.Kind)
			})

			if err := consumerClient.CommitUncommittedOffsets(runCtx); err != nil {
				logger.Error("error committing offsets", "error", err)
			}
		}
	}

	logger.Info("notifier-service stopping...")
}

func lookupPhone(ctx context.Context, pool *pgxpool.Pool, userID string) (string, error) {
	var phone string
	err := pool.QueryRow(ctx, "SELECT phone FROM users WHERE id = $1", userID).Scan(&phone)
	if err != nil {
		return "", fmt.Errorf("query phone for user %s: %w", userID, err)
	}
	return phone, nil
}

type smsGateway struct {
	url    string
	client *http.Client
}

// Send posts one message to the SMS/WhatsApp gateway.
func (g *smsGateway) Send(ctx context.Context, phone, text string) error {
	body, err := json.Marshal(map[string]string{"to": phone, "text": text})
	if err != nil {
		return fmt.Errorf("marshal gateway payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("gateway returned status %s", resp.Status)
	}
	return nil
}

// sendToDLQ forwards the original malformed message to the Dead-Letter Queue.
func sendToDLQ(p *kgo.Client, dlqTopic string, originalRecord *kgo.Record, errorType, errorString string) {
	dlqRecord := &kgo.Record{
		Topic: dlqTopic,
		Value: originalRecord.Value,
		Key:   originalRecord.Key,
		Headers: []kgo.RecordHeader{
			{Key: "error_type", Value: []byte(errorType)},
			{Key: "error_string", Value: []byte(errorString)},
			{Key: "original_topic", Value: []byte(originalRecord.Topic)},
		},
	}
	p.Produce(context.Background(), dlqRecord, func(r *kgo.Record, err error) {
		if err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: failed to deliver message to DLQ: %v\n", err)
		}
	})
}
