package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/pageform/internal/core/domain"
)

var (
	formFile string
	formView bool
)

var formCmd = &cobra.Command{
	Use:   "form",
	Short: "Generate and read page forms",
}

var formGenerateCmd = &cobra.Command{
	Use:   "generate [project-id] [page]",
	Short: "Generate the HTML form of a page",
	Long: `Generate an editable HTML form for a page.

If a form was generated before it is returned from the cache without
calling the model again. Use 'pageform form clear' to force regeneration.`,
	Args: cobra.ExactArgs(2),
	RunE: runFormGenerate,
}

var formHTMLCmd = &cobra.Command{
	Use:   "html [project-id] [page]",
	Short: "Print the cached HTML form of a page",
	Args:  cobra.ExactArgs(2),
	RunE:  runFormHTML,
}

var formClearCmd = &cobra.Command{
	Use:   "clear [project-id] [page]",
	Short: "Remove the cached form of a page",
	Args:  cobra.ExactArgs(2),
	RunE:  runFormClear,
}

func init() {
	formGenerateCmd.Flags().StringVarP(&formFile, "file", "f", "", "write the HTML to a file instead of stdout")
	formHTMLCmd.Flags().StringVarP(&formFile, "file", "f", "", "write the HTML to a file instead of stdout")
	formHTMLCmd.Flags().BoolVar(&formView, "view", false, "wrap the form in a complete HTML document")

	formCmd.AddCommand(formGenerateCmd)
	formCmd.AddCommand(formHTMLCmd)
	formCmd.AddCommand(formClearCmd)
	rootCmd.AddCommand(formCmd)
}

func runFormGenerate(cmd *cobra.Command, args []string) error {
	if formService == nil {
		return errors.New("form service not configured")
	}
	id, n, err := parsePageArgs(args)
	if err != nil {
		return err
	}

	result, err := formService.GetOrGenerate(cmd.Context(), id, n)
	if err != nil {
		if errors.Is(err, domain.ErrLLMUnavailable) {
			return fmt.Errorf("form generation unavailable: %w\nRun 'pageform settings set-key' to configure a provider", err)
		}
		return fmt.Errorf("failed to generate form: %w", err)
	}

	if formFile != "" {
		if err := writeHTML(cmd, formFile, result.HTML); err != nil {
			return err
		}
	}

	return render(cmd, result, func() {
		if formFile == "" {
			cmd.Println(result.HTML)
			return
		}
		cmd.Printf("Source: %s\n", result.Source)
		if result.Stats != nil {
			if result.Stats.Title != "" {
				cmd.Printf("Title:  %s\n", result.Stats.Title)
			}
			cmd.Printf("Fields: %d (%d marked for review)\n", result.Stats.Fields, result.Stats.LowConfidence)
		}
	})
}

func runFormHTML(cmd *cobra.Command, args []string) error {
	if formService == nil {
		return errors.New("form service not configured")
	}
	id, n, err := parsePageArgs(args)
	if err != nil {
		return err
	}

	var content string
	if formView {
		content, err = formService.View(cmd.Context(), id, n)
	} else {
		content, err = formService.HTML(cmd.Context(), id, n)
	}
	if errors.Is(err, domain.ErrFormNotGenerated) {
		return fmt.Errorf("page %d has no form yet; run 'pageform form generate %d %d'", n, id, n)
	}
	if err != nil {
		return fmt.Errorf("failed to get form: %w", err)
	}

	if formFile != "" {
		return writeHTML(cmd, formFile, content)
	}
	return render(cmd, map[string]string{"html_content": content}, func() { cmd.Println(content) })
}

func runFormClear(cmd *cobra.Command, args []string) error {
	if formService == nil {
		return errors.New("form service not configured")
	}
	id, n, err := parsePageArgs(args)
	if err != nil {
		return err
	}

	if err := formService.Clear(cmd.Context(), id, n); err != nil {
		return fmt.Errorf("failed to clear form: %w", err)
	}
	cmd.Printf("Cleared form for project %d page %d\n", id, n)
	return nil
}

func writeHTML(cmd *cobra.Command, path, content string) error {
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	cmd.PrintErrf("Wrote %s\n", path)
	return nil
}
