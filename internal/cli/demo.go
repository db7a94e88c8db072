package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leadforge/leadforge/internal/analyzer"
	"github.com/leadforge/leadforge/internal/config"
)

// DemoCmd returns the demo command
func DemoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Seed the lead store with deterministic sample leads",
		Long:  "Run the mock analysis pipeline over a fixed set of sample URLs and persist the results",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			store, err := openLeadStore(cfg)
			if err != nil {
				return fmt.Errorf("failed to open lead store: %w", err)
			}

			provider := analyzer.NewDemoDataProvider(store, profileFromConfig(cfg))
			leads, err := provider.Seed(cmd.Context())
			if err != nil {
				return err
			}

			for _, l := range leads {
				fmt.Printf("#%-4d %-30s %-20s score=%d\n", l.ID, l.CompanyName, l.Industry, l.Score)
			}
			fmt.Printf("seeded %d demo lead(s)\n", len(leads))
			return nil
		},
	}
}
