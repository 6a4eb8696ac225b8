package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/pageform/internal/core/domain"
)

var projectForce bool

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage PDF projects",
	Long:  `Upload PDFs as projects and inspect or delete them.`,
}

var projectCreateCmd = &cobra.Command{
	Use:   "create [file.pdf]",
	Short: "Create a project from a PDF",
	Long: `Create a project from a PDF file.

A chat session is opened for the project first; if the chat service is
unreachable nothing is stored. Each page's text is extracted and saved.`,
	Args: cobra.ExactArgs(1),
	RunE: runProjectCreate,
}

var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects, newest first",
	Args:  cobra.NoArgs,
	RunE:  runProjectList,
}

var projectGetCmd = &cobra.Command{
	Use:   "get [project-id]",
	Short: "Show a project",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectGet,
}

var projectDeleteCmd = &cobra.Command{
	Use:   "delete [project-id]",
	Short: "Delete a project and all of its pages",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectDelete,
}

var projectPagesCmd = &cobra.Command{
	Use:   "pages [project-id]",
	Short: "List the pages of a project",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectPages,
}

func init() {
	projectDeleteCmd.Flags().BoolVarP(&projectForce, "force", "f", false, "skip confirmation")

	projectCmd.AddCommand(projectCreateCmd)
	projectCmd.AddCommand(projectListCmd)
	projectCmd.AddCommand(projectGetCmd)
	projectCmd.AddCommand(projectDeleteCmd)
	projectCmd.AddCommand(projectPagesCmd)
	rootCmd.AddCommand(projectCmd)
}

func runProjectCreate(cmd *cobra.Command, args []string) error {
	if projectService == nil {
		return errors.New("project service not configured")
	}

	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	result, err := projectService.Create(cmd.Context(), filepath.Base(path), data)
	if err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}

	return render(cmd, result.Project, func() {
		printProject(cmd, result.Project)
		switch {
		case result.Upload.Delivered:
			cmd.Println("  Chat:    PDF delivered to session")
		case result.Upload.Err != nil:
			cmd.Printf("  Chat:    upload failed: %v\n", result.Upload.Err)
		}
	})
}

func runProjectList(cmd *cobra.Command, _ []string) error {
	if projectService == nil {
		return errors.New("project service not configured")
	}

	projects, err := projectService.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list projects: %w", err)
	}
	if projects == nil {
		projects = []domain.Project{}
	}

	return render(cmd, projects, func() {
		if len(projects) == 0 {
			cmd.Println("No projects yet. Create one with 'pageform project create <file.pdf>'.")
			return
		}
		cmd.Println("Projects:")
		for i := range projects {
			p := &projects[i]
			cmd.Printf("  [%d] %s (%d pages, %s)\n", p.ID, p.Name, p.TotalPages, p.CreatedAt.Format("2006-01-02 15:04"))
		}
	})
}

func runProjectGet(cmd *cobra.Command, args []string) error {
	if projectService == nil {
		return errors.New("project service not configured")
	}
	id, err := parseProjectID(args[0])
	if err != nil {
		return err
	}

	project, err := projectService.Get(cmd.Context(), id)
	if err != nil {
		return fmt.Errorf("failed to get project: %w", err)
	}
	return render(cmd, project, func() { printProject(cmd, project) })
}

func runProjectDelete(cmd *cobra.Command, args []string) error {
	if projectService == nil {
		return errors.New("project service not configured")
	}
	id, err := parseProjectID(args[0])
	if err != nil {
		return err
	}

	if !projectForce {
		project, err := projectService.Get(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("failed to get project: %w", err)
		}
		cmd.Printf("Delete project %d (%s) and its %d pages? [y/N]: ", project.ID, project.Name, project.TotalPages)
		var answer string
		if _, err := fmt.Fscanln(cmd.InOrStdin(), &answer); err != nil || (answer != "y" && answer != "Y") {
			cmd.Println("Aborted.")
			return nil
		}
	}

	if err := projectService.Delete(cmd.Context(), id); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	cmd.Printf("Deleted project %d\n", id)
	return nil
}

func runProjectPages(cmd *cobra.Command, args []string) error {
	if projectService == nil {
		return errors.New("project service not configured")
	}
	id, err := parseProjectID(args[0])
	if err != nil {
		return err
	}

	pages, err := projectService.Pages(cmd.Context(), id)
	if err != nil {
		return fmt.Errorf("failed to list pages: %w", err)
	}

	return render(cmd, pages, func() {
		for i := range pages {
			p := &pages[i]
			form := "no form"
			if p.HasForm() {
				form = "form cached"
			}
			lang := p.Language
			if lang == "" {
				lang = "--"
			}
			cmd.Printf("  %3d  %s  %-11s  %s\n", p.PageNumber, lang, form, truncate(singleLine(p.Text), 60))
		}
	})
}

func printProject(cmd *cobra.Command, p *domain.Project) {
	cmd.Printf("Project %d\n", p.ID)
	cmd.Printf("  Name:    %s\n", p.Name)
	cmd.Printf("  Pages:   %d\n", p.TotalPages)
	if p.ChatSessionID != nil {
		cmd.Printf("  Session: %s\n", *p.ChatSessionID)
	}
	cmd.Printf("  Created: %s\n", p.CreatedAt.Format("2006-01-02 15:04:05"))
}
