package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ThiagoP12/benefit-hub-pro/pkg/model"
)

var notificationsCmd = &cobra.Command{
	Use:   "notifications",
	Short: "Inspect the notification log",
}

var notificationsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent notifications",
	RunE:  runNotificationsList,
}

func init() {
	rootCmd.AddCommand(notificationsCmd)
	notificationsCmd.AddCommand(notificationsListCmd)

	notificationsListCmd.Flags().StringP("user", "u", "", "Filter by recipient user id")
	notificationsListCmd.Flags().StringP("type", "t", "", "Filter by notification type")
	notificationsListCmd.Flags().IntP("limit", "n", 50, "Maximum rows to show")
}

func runNotificationsList(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := initStore(cmd.Context(), cfg)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}
	defer store.Close()

	user, _ := cmd.Flags().GetString("user")
	typeTag, _ := cmd.Flags().GetString("type")
	limit, _ := cmd.Flags().GetInt("limit")

	notifications, err := store.ListNotifications(cmd.Context(), model.NotificationFilter{
		UserID: user,
		Type:   typeTag,
		Limit:  limit,
	})
	if err != nil {
		return fmt.Errorf("list notifications: %w", err)
	}

	if len(notifications) == 0 {
		fmt.Println("No notifications found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "CREATED\tRECIPIENT\tTYPE\tTITLE\tMESSAGE\n")
	for _, n := range notifications {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			n.CreatedAt.Format("2006-01-02 15:04"), n.UserID, n.Type, n.Title, n.Message)
	}
	w.Flush()

	return nil
}
