package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mrz1836/go-prreview/internal/config"
	"github.com/mrz1836/go-prreview/internal/db"
	"github.com/mrz1836/go-prreview/internal/output"
	"github.com/mrz1836/go-prreview/internal/report"
)

// createHistoryCmd lists previously generated review files.
func createHistoryCmd(flags *Flags) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List previously generated review files",
		Long: `history lists the review files recorded by earlier runs, newest
first. Entries whose file has since been deleted are still shown; the
history tracks what was generated, not what remains on disk.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(flags.ConfigFile)
			if err != nil {
				return err
			}

			store, err := db.Open(cfg.HistoryDB)
			if err != nil {
				return fmt.Errorf("failed to open history database: %w", err)
			}
			defer func() { _ = store.Close() }()

			reviews, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("failed to read history: %w", err)
			}

			if len(reviews) == 0 {
				output.Info("No review files recorded yet")
				return nil
			}

			for _, r := range reviews {
				output.Plainf("%s  %s #%d  %s",
					r.CreatedAt.Local().Format("2006-01-02 15:04"),
					r.Repo, r.PRNumber, r.Title)
				output.Plainf("    %s (%s)", r.Path, report.HumanSize(r.Path))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of entries to show (0 for all)")

	return cmd
}
