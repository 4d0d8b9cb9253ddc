package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/arlaunch/arlaunch/pkg/store"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent recorded resolutions (default 50)",
	RunE: func(cmd *cobra.Command, _ []string) error {
		dbPath, _ := cmd.Flags().GetString("dbpath")
		limit, _ := cmd.Flags().GetInt("limit")
		page, _ := cmd.Flags().GetString("page")
		profile, _ := cmd.Flags().GetString("profile")
		mode, _ := cmd.Flags().GetString("mode")
		if dbPath == "" {
			dbPath = viper.GetString("history.dbpath")
		}
		if _, err := os.Stat(dbPath); err != nil {
			return fmt.Errorf("database not found: %s", dbPath)
		}
		db, err := store.Open(dbPath)
		if err != nil {
			return err
		}
		defer db.Close()
		resolutions, err := db.ListRecent(context.Background(), store.ListOptions{
			Limit:   limit,
			Page:    page,
			Profile: profile,
			Mode:    mode,
		})
		if err != nil {
			return err
		}
		for _, r := range resolutions {
			ts := r.OccurredAt.Format("2006-01-02 15:04:05")
			element := r.ElementID
			if element == "" {
				element = "-"
			}
			fmt.Printf("%s  %-24s  %-12s  %s  %s\n", ts, r.Profile, r.Mode, r.Page, element)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().String("dbpath", "", "Path to SQLite DB file (default: arlaunch.sqlite in CWD)")
	historyCmd.Flags().Int("limit", 50, "Number of recent resolutions to show")
	historyCmd.Flags().String("page", "", "Only resolutions whose page URL contains this string")
	historyCmd.Flags().String("profile", "", "Only resolutions for this device profile")
	historyCmd.Flags().String("mode", "", "Only resolutions with this AR mode")
}
