package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/arlaunch/arlaunch/internal/utils"
	"github.com/arlaunch/arlaunch/pkg/scan"
	"github.com/arlaunch/arlaunch/pkg/store"
)

var scanCmd = &cobra.Command{
	Use:   "scan <url> [url ...]",
	Short: "Scan live pages for model viewer elements and their AR readiness",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		names, _ := cmd.Flags().GetStringSlice("profile")
		concurrency, _ := cmd.Flags().GetInt("concurrency")
		record, _ := cmd.Flags().GetBool("record")
		dbPath, _ := cmd.Flags().GetString("dbpath")
		userAgent, _ := cmd.Flags().GetString("ua")
		if userAgent == "" {
			userAgent = viper.GetString("defaults.user_agent")
		}
		if concurrency < 1 {
			concurrency = viper.GetInt("scan.concurrency")
		}

		for _, pageURL := range args {
			if !utils.IsHTTPURL(pageURL) {
				return fmt.Errorf("not an absolute http(s) URL: %s", pageURL)
			}
		}

		profiles, err := resolveTargets(names, "")
		if err != nil {
			return err
		}

		scanner := &scan.Scanner{Profiles: profiles, UserAgent: userAgent}
		results := scanner.ScanPages(context.Background(), args, concurrency)

		var records []store.Resolution
		for _, res := range results {
			printResult(res)
			if record {
				records = append(records, res.Records()...)
			}
		}

		if record {
			if dbPath == "" {
				dbPath = viper.GetString("history.dbpath")
			}
			db, err := store.Open(dbPath)
			if err != nil {
				return err
			}
			defer db.Close()
			if err := db.InsertResolutions(context.Background(), records); err != nil {
				return err
			}
			utils.Log.Info("Recorded ", len(records), " resolutions to ", dbPath)
		}

		return nil
	},
}

// printResult writes one page's findings to stdout.
func printResult(res *scan.Result) {
	if res.Err != "" {
		fmt.Printf("%s  FAILED  %s\n", res.URL, res.Err)
		return
	}
	fmt.Printf("%s  [%d]  %q  %d viewer element(s)\n", res.URL, res.Status, utils.Truncate(res.Title, 60), len(res.Elements))
	for _, el := range res.Elements {
		id := el.ID
		if id == "" {
			id = fmt.Sprintf("#%d", el.Index)
		}
		for _, issue := range el.Issues {
			fmt.Printf("  %s  !  %s\n", id, issue)
		}
		for _, ev := range el.Evaluations {
			launch := ev.LaunchURL
			if launch == "" {
				launch = "-"
			}
			fmt.Printf("  %s  %-24s  %-12s  %s\n", id, ev.Profile, ev.Mode, launch)
		}
	}
}

func init() {
	rootCmd.AddCommand(scanCmd)
	scanCmd.Flags().StringSlice("profile", nil, "Device profile to evaluate (repeatable, default: whole catalog)")
	scanCmd.Flags().IntP("concurrency", "c", 0, "Concurrent page fetches (default from config)")
	scanCmd.Flags().Bool("record", false, "Record resolutions to the history database")
	scanCmd.Flags().String("dbpath", "", "Path to SQLite DB file (default: arlaunch.sqlite in CWD)")
	scanCmd.Flags().String("ua", "", "User agent for the page fetch itself")
}
