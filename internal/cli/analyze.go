package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/leadforge/leadforge/internal/config"
)

// AnalyzeCmd returns the analyze command
func AnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze <url> [url...]",
		Short: "Analyze one or more company websites",
		Long:  "Scrape each URL, score it against the configured profile and persist the resulting leads",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runAnalyze,
	}

	cmd.Flags().StringP("output", "o", "text", "Output format (text or json)")

	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	outputFormat, _ := cmd.Flags().GetString("output")

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	store, err := openLeadStore(cfg)
	if err != nil {
		return fmt.Errorf("failed to open lead store: %w", err)
	}
	a, err := newAnalyzer(cfg, store)
	if err != nil {
		return err
	}

	if len(args) == 1 {
		lead, err := a.AnalyzeAndSave(ctx, args[0])
		if err != nil {
			return fmt.Errorf("analysis failed: %w", err)
		}

		if outputFormat == "json" {
			return json.NewEncoder(os.Stdout).Encode(lead)
		}
		fmt.Printf("Lead #%d: %s (%s)\n", lead.ID, lead.CompanyName, lead.Industry)
		fmt.Printf("  Score:  %d (%s)\n", lead.Score, lead.QualificationLabel())
		fmt.Printf("  Action: %s\n", lead.RecommendedAction)
		fmt.Printf("  Rationale: %s\n", lead.ScoreRationale)
		return nil
	}

	outcomes, err := a.AnalyzeBulk(ctx, args)
	if err != nil {
		return fmt.Errorf("bulk analysis failed: %w", err)
	}

	if outputFormat == "json" {
		return json.NewEncoder(os.Stdout).Encode(outcomes)
	}
	for _, o := range outcomes {
		if o.Error != "" {
			fmt.Printf("FAIL %s: %s\n", o.URL, o.Error)
			continue
		}
		fmt.Printf("OK   %s: #%d %s score=%d\n", o.URL, o.Lead.ID, o.Lead.CompanyName, o.Lead.Score)
	}
	return nil
}
