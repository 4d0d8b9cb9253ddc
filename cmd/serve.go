package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/arlaunch/arlaunch/internal/server"
	"github.com/arlaunch/arlaunch/pkg/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the resolution web server and JSON API",
	RunE: func(cmd *cobra.Command, args []string) error {
		listenAddr, _ := cmd.Flags().GetString("listen")
		dbPath, _ := cmd.Flags().GetString("dbpath")
		username, _ := cmd.Flags().GetString("username")
		password, _ := cmd.Flags().GetString("password")
		if listenAddr == "" {
			listenAddr = viper.GetString("serve.listen")
		}
		if dbPath == "" {
			dbPath = viper.GetString("history.dbpath")
		}
		if username == "" {
			username = viper.GetString("serve.username")
		}
		if password == "" {
			password = viper.GetString("serve.password")
		}

		db, err := store.Open(dbPath)
		if err != nil {
			return err
		}
		defer db.Close()

		return server.New(db, username, password).Start(listenAddr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("listen", "", "HTTP listen address (default :8080)")
	serveCmd.Flags().String("dbpath", "", "Path to SQLite DB file (default: arlaunch.sqlite in CWD)")
	serveCmd.Flags().String("username", "", "Basic auth username (empty disables auth)")
	serveCmd.Flags().String("password", "", "Basic auth password")
}
