package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/mikey/group-guard/internal/di"
)

func main() {
	// Load .env file if present
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Failed to load .env file: %v\n", err)
	}

	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	flags := &di.CLIFlags{}

	cmd := &cobra.Command{
		Use:           "guardctl",
		Short:         "Administer and test the group-guard moderation bot",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&flags.ConfigFile, "config", "", "path to config file (default: search standard locations)")
	pf.BoolVarP(&flags.Verbose, "verbose", "v", false, "enable verbose logging")
	pf.BoolVar(&flags.JSONLog, "json-log", false, "output logs in JSON format")
	pf.StringVar(&flags.Store, "store", "", "override store.type (memory, sqlite, mysql, postgres, redis)")
	pf.StringVar(&flags.SQLitePath, "sqlite-path", "", "override store.sqlite_path")

	cmd.AddCommand(checkCmd(flags))
	cmd.AddCommand(badwordsCmd(flags))
	return cmd
}
