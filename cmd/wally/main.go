package main

import (
	"os"

	"github.com/sagarc03/wally/config"
	"github.com/spf13/cobra"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Version: version,
	Use:     "wally",
	Short:   "Minimal HTTP/1.1 origin server with a comment wall",
	Long: `Wally serves a directory tree over a small subset of HTTP/1.1
(GET and HEAD with entity tags and conditional requests) and hosts a
comment wall backed by sqlite, postgres or mongo.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var files []string
		if f, _ := cmd.Flags().GetString("config"); f != "" {
			files = append(files, f)
		}

		cfg, err := config.Load(files, cmd.Flags())
		if err != nil {
			return err
		}

		setupLogging(cfg.Log.Level, os.Getenv("WALLY_ENV"))
		cmd.SetContext(config.WithContext(cmd.Context(), cfg))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config.yaml)")
	rootCmd.PersistentFlags().String("db-type", "", "database type: sqlite, postgres, mongo (default: sqlite, env: WALLY_DATABASE_TYPE)")
	rootCmd.PersistentFlags().String("db-dsn", "", "database connection string (default: wally.db, env: WALLY_DATABASE_DSN)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error (env: WALLY_LOG_LEVEL)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
