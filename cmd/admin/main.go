// Command admin is the TrackMe operations CLI.
//
// Usage:
//
//	trackme-admin migrate
//	trackme-admin seed-defaults --user 7f3c...
//	trackme-admin notify --prayer fajr
//	trackme-admin notify --daily
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/imishab/track-me/internal/config"
	"github.com/imishab/track-me/internal/db"
	"github.com/imishab/track-me/internal/habits"
	"github.com/imishab/track-me/internal/ledger"
	"github.com/imishab/track-me/internal/prayer"
	"github.com/imishab/track-me/internal/push"
	"github.com/imishab/track-me/internal/scheduler"
	"github.com/imishab/track-me/internal/seed"
	"github.com/imishab/track-me/internal/summary"
)

var logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	root := &cobra.Command{
		Use:   "trackme-admin",
		Short: "TrackMe operations CLI",
	}

	root.AddCommand(migrateCmd())
	root.AddCommand(seedDefaultsCmd())
	root.AddCommand(notifyCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// --------------------------------------------------------------------------
// migrate command
// --------------------------------------------------------------------------

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
			defer cancel()

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			start := time.Now()
			if err := db.Migrate(ctx, cfg.DatabaseURL); err != nil {
				return err
			}
			logger.Info("Schema applied", "duration", time.Since(start).Round(time.Millisecond))
			return nil
		},
	}
}

// --------------------------------------------------------------------------
// seed-defaults command
// --------------------------------------------------------------------------

func seedDefaultsCmd() *cobra.Command {
	var userID string
	cmd := &cobra.Command{
		Use:   "seed-defaults",
		Short: "Create the preset categories and habits for a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			if userID == "" {
				return fmt.Errorf("--user is required")
			}
			return run(func(ctx context.Context, cfg *config.Config, pool *db.Pool) error {
				if err := seed.Defaults(ctx, habits.NewStore(pool.Pool), userID); err != nil {
					return err
				}
				logger.Info("Presets seeded", "user_id", userID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "User ID to seed presets for")
	return cmd
}

// --------------------------------------------------------------------------
// notify command
// --------------------------------------------------------------------------

// notifyCmd dispatches a test notification through the same scheduler path
// the cron endpoint uses. Prayer tests bypass the sent ledger; the daily
// summary keeps its per-user dedup.
func notifyCmd() *cobra.Command {
	var prayerKey string
	var daily bool
	cmd := &cobra.Command{
		Use:   "notify",
		Short: "Send a test notification",
		RunE: func(cmd *cobra.Command, args []string) error {
			if daily == (prayerKey != "") {
				return fmt.Errorf("exactly one of --prayer or --daily is required")
			}
			if prayerKey != "" && !prayer.Valid(prayerKey) {
				return fmt.Errorf("unknown prayer %q (valid: %v)", prayerKey, prayer.Keys())
			}
			return run(func(ctx context.Context, cfg *config.Config, pool *db.Pool) error {
				loc, err := cfg.Location()
				if err != nil {
					return err
				}

				habitStore := habits.NewStore(pool.Pool)
				subStore := push.NewSubscriptionStore(pool.Pool)
				sentLedger := ledger.NewPG(pool.Pool)
				pusher := push.NewClient(cfg.PushAlertAPIKey)

				sched := &scheduler.Scheduler{
					Ledger: sentLedger,
					Sender: pusher,
					Summary: &summary.Runner{
						Subs:   subStore,
						Habits: habitStore,
						Ledger: sentLedger,
						Sender: pusher,
						AppURL: cfg.AppBaseURL,
						Logger: logger,
					},
					Location: loc,
					AppURL:   cfg.AppBaseURL,
					Logger:   logger,
				}

				testParam := prayerKey
				if daily {
					testParam = scheduler.TestDaily
				}
				out, err := sched.Run(ctx, testParam)
				if err != nil {
					return err
				}
				switch out.Kind {
				case scheduler.KindSummary:
					logger.Info("Summary dispatched", "sent", out.SummarySent, "errors", len(out.SummaryErrors))
					for _, e := range out.SummaryErrors {
						logger.Error("summary error", "error", e)
					}
				case scheduler.KindPrayerSent:
					logger.Info("Prayer notification sent", "prayer", out.Prayer, "notification_id", out.NotificationID)
				case scheduler.KindPrayerSendFailed:
					return fmt.Errorf("send failed: %s", out.Detail)
				default:
					logger.Info("Scheduler outcome", "kind", out.Kind)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&prayerKey, "prayer", "", "Prayer key to broadcast (fajr, dhuhr, asr, maghrib, isha)")
	cmd.Flags().BoolVar(&daily, "daily", false, "Run the daily summary batch")
	return cmd
}

// --------------------------------------------------------------------------
// Shared setup
// --------------------------------------------------------------------------

// run handles config loading, DB connection, and context cancellation.
func run(fn func(ctx context.Context, cfg *config.Config, pool *db.Pool) error) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	pool, err := db.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	return fn(ctx, cfg, pool)
}
