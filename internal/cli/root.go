package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ThiagoP12/benefit-hub-pro/internal/config"
	"github.com/ThiagoP12/benefit-hub-pro/pkg/alerts"
	"github.com/ThiagoP12/benefit-hub-pro/pkg/monitor"
	"github.com/ThiagoP12/benefit-hub-pro/pkg/storage"
)

// Version is set at build time via ldflags.
var Version = "dev"

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "benefitmon",
	Short: "Benefit Hub monitoring - credit limit and document expiration alerts",
	Long: `benefitmon runs the scheduled checks of the Benefit Hub dashboard:
credit limit usage per collaborator and collaborator document expiration.
Each check classifies subjects against severity thresholds, suppresses
duplicate alerts and fans notifications out to the affected person and
every administrator.`,
	SilenceUsage: true,
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.benefitmon/config.yaml)")
}

// loadConfig loads the configuration.
func loadConfig() (*config.Config, error) {
	return config.Load(cfgFile)
}

// newLogger creates a structured logger from config.
func newLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.Logging.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	var handler slog.Handler
	if cfg.Logging.Format == "text" {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	} else {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	}

	return slog.New(handler)
}

// initStore creates a storage backend from config.
func initStore(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	switch cfg.Storage.Driver {
	case "", "sqlite":
		return storage.NewSQLite(cfg.Storage.Path)
	case "postgres":
		if cfg.Storage.DSN == "" {
			return nil, fmt.Errorf("storage.dsn is required for the postgres driver")
		}
		return storage.NewPostgres(ctx, cfg.Storage.DSN)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

// initNotifiers creates operations alert notifiers from config.
func initNotifiers(cfg *config.Config) []alerts.Notifier {
	var notifiers []alerts.Notifier

	if cfg.Alerts.Slack.Enabled && cfg.Alerts.Slack.WebhookURL != "" {
		notifiers = append(notifiers, alerts.NewSlackNotifier(
			cfg.Alerts.Slack.WebhookURL,
			cfg.Alerts.Slack.Channel,
		))
	}

	if cfg.Alerts.Webhook.Enabled && cfg.Alerts.Webhook.URL != "" {
		notifiers = append(notifiers, alerts.NewWebhookNotifier(
			cfg.Alerts.Webhook.URL,
			cfg.Alerts.Webhook.Secret,
		))
	}

	return notifiers
}

// initRunner wires a monitor runner from config.
func initRunner(cfg *config.Config, store storage.Store, logger *slog.Logger) *monitor.Runner {
	timeout, _ := time.ParseDuration(cfg.Monitors.SubjectTimeout)
	gate := monitor.NewDedupGate(store)
	resolver := monitor.NewRecipientResolver(store)
	fanout := monitor.NewFanout(store, logger)
	return monitor.NewRunner(gate, resolver, fanout, logger, cfg.Monitors.Workers, timeout)
}

// initMonitors builds the two concrete monitors from config.
func initMonitors(cfg *config.Config, store storage.Store) (*monitor.CreditMonitor, *monitor.DocumentMonitor, error) {
	labels := monitor.DefaultLabels()
	if cfg.Monitors.LabelsPath != "" {
		loaded, err := monitor.LoadLabels(cfg.Monitors.LabelsPath)
		if err != nil {
			return nil, nil, fmt.Errorf("load document labels: %w", err)
		}
		labels = loaded
	}

	credit := monitor.NewCreditMonitor(store)
	documents := monitor.NewDocumentMonitor(store, labels, monitor.DocumentWindow{
		LookaheadDays: cfg.Monitors.Documents.LookaheadDays,
		LookbackDays:  cfg.Monitors.Documents.LookbackDays,
		CriticalDays:  cfg.Monitors.Documents.CriticalDays,
	})
	return credit, documents, nil
}
