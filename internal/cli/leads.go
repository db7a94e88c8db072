package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/leadforge/leadforge/internal/config"
	"github.com/leadforge/leadforge/internal/domain"
	"github.com/leadforge/leadforge/internal/leadstore"
)

// LeadsCmd returns the leads command group
func LeadsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "leads",
		Short: "Manage stored leads",
		Long:  "List, inspect, delete and back up analyzed leads",
	}

	cmd.AddCommand(leadsListCmd())
	cmd.AddCommand(leadsGetCmd())
	cmd.AddCommand(leadsDeleteCmd())
	cmd.AddCommand(leadsStatsCmd())
	cmd.AddCommand(leadsBackupCmd())

	return cmd
}

func leadsListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored leads",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openConfiguredStore()
			if err != nil {
				return err
			}

			industry, _ := cmd.Flags().GetString("industry")
			minScore, _ := cmd.Flags().GetInt("min-score")

			var leads []domain.Lead
			switch {
			case minScore > 0:
				leads = store.QualifiedLeads(minScore)
			case industry != "":
				leads = store.LeadsByIndustry(industry)
			default:
				leads = store.LoadAll()
			}

			outputFormat, _ := cmd.Flags().GetString("output")
			if outputFormat == "json" {
				return json.NewEncoder(os.Stdout).Encode(leads)
			}
			for _, l := range leads {
				fmt.Printf("#%-4d %-30s %-20s score=%-3d %s\n",
					l.ID, l.CompanyName, l.Industry, l.Score, l.RecommendedAction)
			}
			fmt.Printf("%d lead(s)\n", len(leads))
			return nil
		},
	}

	cmd.Flags().String("industry", "", "Filter by industry (case-insensitive)")
	cmd.Flags().Int("min-score", 0, "Only leads at or above this score")
	cmd.Flags().StringP("output", "o", "text", "Output format (text or json)")

	return cmd
}

func leadsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one lead",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openConfiguredStore()
			if err != nil {
				return err
			}
			id, err := parseLeadID(args[0])
			if err != nil {
				return err
			}

			lead, err := store.Get(id)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(lead)
		},
	}
}

func leadsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a lead",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openConfiguredStore()
			if err != nil {
				return err
			}
			id, err := parseLeadID(args[0])
			if err != nil {
				return err
			}

			if err := store.Delete(id); err != nil {
				return err
			}
			fmt.Printf("deleted lead #%d\n", id)
			return nil
		},
	}
}

func leadsStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show aggregate lead statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openConfiguredStore()
			if err != nil {
				return err
			}

			stats := store.Statistics()
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(stats)
		},
	}
}

func leadsBackupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backup [path]",
		Short: "Write a backup copy of the lead store",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openConfiguredStore()
			if err != nil {
				return err
			}

			target := ""
			if len(args) == 1 {
				target = args[0]
			}
			written, err := store.Backup(target)
			if err != nil {
				return err
			}
			fmt.Printf("backup written to %s\n", written)
			return nil
		},
	}
}

func openConfiguredStore() (*leadstore.Store, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	store, err := openLeadStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open lead store: %w", err)
	}
	return store, nil
}

func parseLeadID(raw string) (int, error) {
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid lead id %q", raw)
	}
	return id, nil
}
