package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/leadforge/leadforge/internal/config"
	"github.com/leadforge/leadforge/internal/kb"
)

// KBCmd returns the knowledge base command group
func KBCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "kb",
		Short: "Manage the knowledge base",
		Long:  "Ingest, search and remove knowledge base documents used for analysis context",
	}

	cmd.AddCommand(kbAddCmd())
	cmd.AddCommand(kbListCmd())
	cmd.AddCommand(kbRemoveCmd())
	cmd.AddCommand(kbSearchCmd())
	cmd.AddCommand(kbStatsCmd())

	return cmd
}

func openConfiguredKB() (*kb.Service, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return newKnowledgeBase(cfg)
}

func kbAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <file> [file...]",
		Short: "Ingest documents",
		Long:  "Extract, chunk and embed pdf/txt/docx files into the knowledge base",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := openConfiguredKB()
			if err != nil {
				return err
			}

			for _, path := range args {
				data, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("failed to read %s: %w", path, err)
				}

				doc, err := svc.Ingest(cmd.Context(), filepath.Base(path), data)
				if err != nil {
					return fmt.Errorf("failed to ingest %s: %w", path, err)
				}
				fmt.Printf("ingested %s: id=%s chunks=%d chars=%d\n",
					doc.Filename, doc.ID, doc.NumChunks, doc.CharCount)
			}
			return nil
		},
	}
}

func kbListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List ingested documents",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := openConfiguredKB()
			if err != nil {
				return err
			}

			docs := svc.List()
			outputFormat, _ := cmd.Flags().GetString("output")
			if outputFormat == "json" {
				return json.NewEncoder(os.Stdout).Encode(docs)
			}
			for _, d := range docs {
				fmt.Printf("%s  %-30s %-5s chunks=%-3d %s\n",
					d.ID, d.Filename, d.Type, d.NumChunks, d.UploadedAt.Format("2006-01-02 15:04"))
			}
			fmt.Printf("%d document(s)\n", len(docs))
			return nil
		},
	}

	cmd.Flags().StringP("output", "o", "text", "Output format (text or json)")

	return cmd
}

func kbRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a document and its vectors",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := openConfiguredKB()
			if err != nil {
				return err
			}

			if err := svc.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Printf("removed document %s\n", args[0])
			return nil
		},
	}
}

func kbSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Semantic search over the knowledge base",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := openConfiguredKB()
			if err != nil {
				return err
			}

			topK, _ := cmd.Flags().GetInt("top-k")
			chunks, err := svc.Search(cmd.Context(), args[0], topK)
			if err != nil {
				return err
			}

			outputFormat, _ := cmd.Flags().GetString("output")
			if outputFormat == "json" {
				return json.NewEncoder(os.Stdout).Encode(chunks)
			}
			for i, c := range chunks {
				fmt.Printf("%d. [%s #%d] score=%.3f\n%s\n\n",
					i+1, c.Metadata.Source, c.Metadata.ChunkIndex, c.Score, c.Text)
			}
			if len(chunks) == 0 {
				fmt.Println("no results")
			}
			return nil
		},
	}

	cmd.Flags().Int("top-k", 5, "Number of chunks to return")
	cmd.Flags().StringP("output", "o", "text", "Output format (text or json)")

	return cmd
}

func kbStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show knowledge base statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := openConfiguredKB()
			if err != nil {
				return err
			}

			stats, err := svc.Stats(cmd.Context())
			if err != nil {
				return err
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(stats)
		},
	}
}
