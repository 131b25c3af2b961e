// opsctl is the operator's toolbox: expiring stale vetting applications,
// inspecting the audit log and peeking at the notifications topic.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/twmb/franz-go/pkg/kgo"

	"performer-marketplace/internal/adapters/messaging/mock"
	"performer-marketplace/internal/adapters/storage/postgres"
	"performer-marketplace/internal/app"
	"performer-marketplace/internal/config"
	"performer-marketplace/internal/observability"
)

func main() {
	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := observability.SetupLogger(cfg.App.Env)

	var rootCmd = &cobra.Command{Use: "opsctl"}

	// --- vetting expire ---
	var vettingCmd = &cobra.Command{Use: "vetting", Short: "Manage the vetting pipeline"}

	var expireCmd = &cobra.Command{
		Use:   "expire",
		Short: "Expire vetting applications left unreviewed for too long",
		Run: func(cmd *cobra.Command, _ []string) {
			days, _ := cmd.Flags().GetInt("days")
			if days <= 0 {
				days = cfg.Vetting.ExpiryDays
			}

			ctx := context.Background()
			store, err := postgres.NewStore(ctx, cfg.Postgres.DSN)
			if err != nil {
				logger.Error("failed to connect to PostgreSQL", "error", err)
				os.Exit(1)
			}
			defer store.Close()

			vetting := app.NewVettingService(store, mock.NewNotifier(logger), logger)
			count, err := vetting.ExpireStale(ctx, time.Duration(days)*24*time.Hour)
			if err != nil {
				logger.Error("failed to expire applications", "error", err)
				os.Exit(1)
			}

			logger.Info("expiry sweep complete", "expired", count, "older_than_days", days)
		},
	}
	expireCmd.Flags().Int("days", 0, "Expire applications older than this many days (default: config value)")
	vettingCmd.AddCommand(expireCmd)

	// --- audit view ---
	var auditCmd = &cobra.Command{
		Use:   "audit",
		Short: "View the most recent audit log entries",
		Run: func(cmd *cobra.Command, _ []string) {
			limit, _ := cmd.Flags().GetInt("limit")

			ctx := context.Background()
			store, err := postgres.NewStore(ctx, cfg.Postgres.DSN)
			if err != nil {
				logger.Error("failed to connect to PostgreSQL", "error", err)
				os.Exit(1)
			}
			defer store.Close()

			entries, err := store.RecentAuditEntries(ctx, limit)
			if err != nil {
				logger.Error("failed to read audit log", "error", err)
				os.Exit(1)
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "TIME\tACTOR\tACTION\tTARGET\tMETADATA")
			fmt.Fprintln(w, "----\t-----\t------\t------\t--------")
			for _, e := range entries {
				meta, _ := json.Marshal(e.Metadata)
				fmt.Fprintf(w, "%s\t%s\t%s\t%s/%s\t%s\n",
					e.CreatedAt.Format(time.RFC3339), e.ActorID, e.Action, e.TargetTable, e.TargetID, meta)
			}
			if err := w.Flush(); err != nil {
				logger.Error("failed to flush output", "error", err)
			}
		},
	}
	auditCmd.Flags().Int("limit", 20, "Number of entries to show")

	// --- notifications view ---
	var notificationsCmd = &cobra.Command{
		Use:   "notifications",
		Short: "Peek at recent messages on the notifications topic",
		Run: func(cmd *cobra.Command, _ []string) {
			limit, _ := cmd.Flags().GetInt("limit")
			topic, _ := cmd.Flags().GetString("topic")
			if topic == "" {
				topic = cfg.Kafka.NotificationsTopic
			}

			brokers := strings.Split(cfg.Kafka.BootstrapServers, ",")
			client, err := kgo.NewClient(
				kgo.SeedBrokers(brokers...),
				kgo.ConsumerGroup("opsctl-viewer"),
				kgo.ConsumeTopics(topic),
				kgo.FetchMaxWait(5*time.Second),
				kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
			)
			if err != nil {
				logger.Error("failed to create consumer", "error", err)
				os.Exit(1)
			}
			defer client.Close()

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "OFFSET\tKEY\tVALUE")
			fmt.Fprintln(w, "------\t---\t-----")

			msgCount := 0
			ctx := context.Background()

			for msgCount < limit {
				fetches := client.PollFetches(ctx)
				if fetches.IsClientClosed() {
					break
				}
				if len(fetches.Records()) == 0 {
					logger.Info("no more messages on topic")
					break
				}

				fetches.EachRecord(func(record *kgo.Record) {
					if msgCount >= limit {
						return
					}
					fmt.Fprintf(w, "%d\t%s\t%s\n", record.Offset, string(record.Key), string(record.Value))
					msgCount++
				})
			}
			if err := w.Flush(); err != nil {
				logger.Error("failed to flush output", "error", err)
			}
		},
	}
	notificationsCmd.Flags().Int("limit", 10, "Number of messages to show")
	notificationsCmd.Flags().String("topic", "", "Topic to read (default: config value)")

	rootCmd.AddCommand(vettingCmd, auditCmd, notificationsCmd)
	if err := rootCmd.Execute(); err != nil {
		logger.Error("command failed", "error", err)
		os.Exit(1)
	}
}
