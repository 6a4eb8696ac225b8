package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/pageform/internal/adapters/driving/watch"
)

var (
	watchSettle   time.Duration
	watchExisting bool
)

var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Create projects from PDFs dropped into a directory",
	Long: `Watch a directory and create a project for every PDF written to it.

A file is ingested once writes to it have stopped for --settle. Use
--existing to also ingest PDFs already in the directory.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().DurationVar(&watchSettle, "settle", watch.DefaultSettle, "quiet period before a file is ingested")
	watchCmd.Flags().BoolVar(&watchExisting, "existing", false, "ingest PDFs already in the directory")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if projectService == nil {
		return errors.New("project service not configured")
	}
	if watchSettle <= 0 {
		return errors.New("--settle must be positive")
	}

	out := cmd.OutOrStdout()
	w, err := watch.New(projectService, args[0], watch.Options{
		Settle:   watchSettle,
		Existing: watchExisting,
		OnResult: func(r watch.Result) {
			if r.Err != nil {
				fmt.Fprintf(out, "%s: %v\n", r.Path, r.Err)
				return
			}
			fmt.Fprintf(out, "%s: project %d (%d pages)\n", r.Path, r.Project.ID, r.Project.TotalPages)
		},
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Watching %s (ctrl+c to stop)\n", args[0])
	return w.Run(cmd.Context())
}
