// Package cmd provides the CLI commands for BookGate.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/book-gate/bookgate/internal/config"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "bookgate",
	Short: "BookGate - book catalogue REST API",
	Long: `BookGate serves scraped book catalogue data over a JSON REST API
with JWT authentication, collection statistics, and admin-triggered
dataset reloads.

Quick start:
  1. Scrape a dataset into data/books.csv (or point data.file elsewhere)
  2. Run: bookgate start --dev

Configuration:
  Config is loaded from bookgate.yaml in the current directory,
  $HOME/.bookgate/, or /etc/bookgate/.

  Environment variables can override config values with the BOOKGATE_ prefix.
  Example: BOOKGATE_SERVER_HTTP_ADDR=:9090

Commands:
  start          Start the API server
  hash-password  Generate an Argon2id hash for an account password
  version        Print version information`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./bookgate.yaml)")
}

func initConfig() {
	config.InitViper(cfgFile)
}
