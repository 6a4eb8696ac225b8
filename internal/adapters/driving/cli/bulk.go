package cli

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/pageform/internal/core/domain"
)

var (
	bulkWait    bool
	bulkTimeout time.Duration
)

var bulkCmd = &cobra.Command{
	Use:   "bulk",
	Short: "Generate forms for whole projects",
}

var bulkGenerateCmd = &cobra.Command{
	Use:   "generate [project-id]",
	Short: "Generate forms for every page of a project",
	Long: `Schedule form generation for every page of a project.

Pages are generated concurrently and paced to respect provider limits.
Pages that already have a form are served from the cache. Failures are
reported per page and never stop the rest of the batch.`,
	Args: cobra.ExactArgs(1),
	RunE: runBulkGenerate,
}

func init() {
	bulkGenerateCmd.Flags().BoolVar(&bulkWait, "wait", true, "wait for the batch and print per-page results")
	bulkGenerateCmd.Flags().DurationVar(&bulkTimeout, "timeout", 0, "give up waiting after this long (0 waits forever)")

	bulkCmd.AddCommand(bulkGenerateCmd)
	rootCmd.AddCommand(bulkCmd)
}

func runBulkGenerate(cmd *cobra.Command, args []string) error {
	if bulkDispatcher == nil {
		return errors.New("bulk dispatcher not configured")
	}
	id, err := parseProjectID(args[0])
	if err != nil {
		return err
	}

	report, err := bulkDispatcher.Dispatch(cmd.Context(), id)
	if err != nil {
		return fmt.Errorf("failed to schedule project: %w", err)
	}
	if !bulkWait {
		return render(cmd, report, func() {
			cmd.Printf("Batch %s: scheduled %d pages of project %d\n", report.BatchID, report.Scheduled, report.ProjectID)
		})
	}

	if outputFormat == outputText {
		cmd.Printf("Batch %s: generating %d pages of project %d...\n", report.BatchID, report.Scheduled, report.ProjectID)
	}

	ctx := cmd.Context()
	if bulkTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, bulkTimeout)
		defer cancel()
	}

	status, waitErr := bulkDispatcher.Wait(ctx, report.BatchID)
	if status == nil {
		return fmt.Errorf("failed to wait for batch: %w", waitErr)
	}

	if err := render(cmd, status, func() { printBulkStatus(cmd, status) }); err != nil {
		return err
	}
	if waitErr != nil {
		return fmt.Errorf("stopped waiting for batch %s: %w", report.BatchID, waitErr)
	}
	return nil
}

func printBulkStatus(cmd *cobra.Command, s *domain.BulkStatus) {
	results := slices.Clone(s.Results)
	slices.SortFunc(results, func(a, b domain.PageTaskResult) int { return cmp.Compare(a.PageNumber, b.PageNumber) })
	for _, r := range results {
		if r.Succeeded() {
			cmd.Printf("  page %3d  %s\n", r.PageNumber, r.Source)
		} else {
			cmd.Printf("  page %3d  FAILED: %s\n", r.PageNumber, r.Error)
		}
	}
	cmd.Printf("Completed %d/%d: %d succeeded, %d failed\n", s.Completed, s.Scheduled, s.Succeeded, s.Failed)
}
