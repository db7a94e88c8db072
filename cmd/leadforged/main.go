package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/leadforge/leadforge/internal/cli"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "leadforged",
		Short: "Leadforge - AI lead generation and qualification",
		Long: `Leadforge scrapes company websites, scores them against your ideal
customer profile with an LLM, and keeps the results in a durable lead store.

Configuration is read from LEADFORGE_-prefixed environment variables and
an optional .env file.`,
		Version: version,
	}

	rootCmd.AddCommand(cli.ServeCmd())
	rootCmd.AddCommand(cli.AnalyzeCmd())
	rootCmd.AddCommand(cli.KBCmd())
	rootCmd.AddCommand(cli.LeadsCmd())
	rootCmd.AddCommand(cli.DemoCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
