package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var pagePDFFile string

var pageCmd = &cobra.Command{
	Use:   "page",
	Short: "Inspect individual pages",
}

var pageTextCmd = &cobra.Command{
	Use:   "text [project-id] [page]",
	Short: "Print the extracted text of a page",
	Args:  cobra.ExactArgs(2),
	RunE:  runPageText,
}

var pagePDFCmd = &cobra.Command{
	Use:   "pdf [project-id] [page]",
	Short: "Write a single page as a standalone PDF",
	Args:  cobra.ExactArgs(2),
	RunE:  runPagePDF,
}

func init() {
	pagePDFCmd.Flags().StringVarP(&pagePDFFile, "file", "f", "", "output path (default project-<id>-page-<n>.pdf)")

	pageCmd.AddCommand(pageTextCmd)
	pageCmd.AddCommand(pagePDFCmd)
	rootCmd.AddCommand(pageCmd)
}

func runPageText(cmd *cobra.Command, args []string) error {
	if projectService == nil {
		return errors.New("project service not configured")
	}
	id, n, err := parsePageArgs(args)
	if err != nil {
		return err
	}

	page, err := projectService.Page(cmd.Context(), id, n)
	if err != nil {
		return fmt.Errorf("failed to get page: %w", err)
	}
	return render(cmd, page, func() { cmd.Println(page.Text) })
}

func runPagePDF(cmd *cobra.Command, args []string) error {
	if projectService == nil {
		return errors.New("project service not configured")
	}
	id, n, err := parsePageArgs(args)
	if err != nil {
		return err
	}

	data, err := projectService.PagePDF(cmd.Context(), id, n)
	if err != nil {
		return fmt.Errorf("failed to extract page: %w", err)
	}

	path := pagePDFFile
	if path == "" {
		path = fmt.Sprintf("project-%d-page-%d.pdf", id, n)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	cmd.Printf("Wrote %s (%d bytes)\n", path, len(data))
	return nil
}

func singleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
