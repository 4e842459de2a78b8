package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/ThiagoP12/benefit-hub-pro/pkg/alerts"
	"github.com/ThiagoP12/benefit-hub-pro/pkg/monitor"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run monitor checks",
}

var checkCreditCmd = &cobra.Command{
	Use:   "credit",
	Short: "Check credit limit usage for every collaborator",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runChecks(cmd.Context(), true, false)
	},
}

var checkDocumentsCmd = &cobra.Command{
	Use:   "documents",
	Short: "Check collaborator documents for expiration",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runChecks(cmd.Context(), false, true)
	},
}

var checkAllCmd = &cobra.Command{
	Use:   "all",
	Short: "Run every monitor",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runChecks(cmd.Context(), true, true)
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.AddCommand(checkCreditCmd)
	checkCmd.AddCommand(checkDocumentsCmd)
	checkCmd.AddCommand(checkAllCmd)
}

func runChecks(ctx context.Context, credit, documents bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	store, err := initStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}
	defer store.Close()

	creditMon, docMon, err := initMonitors(cfg, store)
	if err != nil {
		return err
	}
	runner := initRunner(cfg, store, logger)
	notifiers := initNotifiers(cfg)

	var failed bool
	if credit {
		if !runOne(ctx, runner, creditMon, notifiers, logger) {
			failed = true
		}
	}
	if documents {
		if !runOne(ctx, runner, docMon, notifiers, logger) {
			failed = true
		}
	}

	if failed {
		return fmt.Errorf("one or more monitor runs failed")
	}
	return nil
}

func runOne(ctx context.Context, runner *monitor.Runner, m monitor.Monitor, notifiers []alerts.Notifier, logger *slog.Logger) bool {
	summary := runner.Run(ctx, m)
	printSummary(summary)

	if !summary.Success || summary.NotificationsFailed > 0 {
		alert := alerts.Alert{
			Monitor:              summary.Monitor,
			Success:              summary.Success,
			SubjectsChecked:      summary.SubjectsChecked,
			NotificationsCreated: summary.NotificationsCreated,
			NotificationsFailed:  summary.NotificationsFailed,
			Error:                summary.Error,
		}
		for _, n := range notifiers {
			if err := n.Send(ctx, alert); err != nil {
				logger.Error("send ops alert", "notifier", n.Name(), "error", err)
			}
		}
	}
	return summary.Success
}

func printSummary(s monitor.Summary) {
	fmt.Printf("Monitor %s:\n", s.Monitor)
	fmt.Printf("  Success:               %v\n", s.Success)
	fmt.Printf("  Subjects checked:      %d\n", s.SubjectsChecked)
	fmt.Printf("  Notifications created: %d\n", s.NotificationsCreated)
	fmt.Printf("  Notifications failed:  %d\n", s.NotificationsFailed)
	if s.Error != "" {
		fmt.Printf("  Error:                 %s\n", s.Error)
	}
}
