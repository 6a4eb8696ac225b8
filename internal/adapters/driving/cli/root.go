// Package cli implements the pageform command line on top of cobra.
//
// Commands reach the core through package-level driving ports that the
// composition root installs with SetServices or lazily through a Bootstrap
// once flags are parsed.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/pageform/internal/config"
	"github.com/custodia-labs/pageform/internal/core/ports/driving"
	"github.com/custodia-labs/pageform/internal/logger"
)

// Output formats accepted by --output.
const (
	outputText = "text"
	outputJSON = "json"
	outputYAML = "yaml"
)

// skipBootstrap marks commands that run without core services.
const skipBootstrap = "skip-bootstrap"

var (
	version = "dev"

	verbose      bool
	outputFormat string

	projectService  driving.ProjectService
	formService     driving.FormService
	bulkDispatcher  driving.BulkDispatcher
	settingsService driving.SettingsService

	serverOptions ServerOptions
	bootstrap     Bootstrap
	cleanup       func()
)

// Services are the driving ports used by commands.
type Services struct {
	Projects driving.ProjectService
	Forms    driving.FormService
	Bulk     driving.BulkDispatcher
	Settings driving.SettingsService
}

// ServerOptions configure the serve command.
type ServerOptions struct {
	Addr           string
	MaxUploadBytes int64
}

// Bootstrap builds services from parsed flags, installs them with
// SetServices and returns a function releasing them.
type Bootstrap func(flags *pflag.FlagSet) (func(), error)

var rootCmd = &cobra.Command{
	Use:   "pageform",
	Short: "Turn PDF pages into editable HTML forms",
	Long: `pageform stores uploaded PDFs as projects, extracts each page's text,
and asks a generative model to rebuild every page as an editable HTML form.

Forms are generated once per page and cached. Run 'pageform serve' for the
REST API, or use the project, page, form and bulk commands directly.`,
	SilenceUsage:      true,
	PersistentPreRunE: preRun,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", outputText, "output format: text, json or yaml")
	config.AddFlags(rootCmd.PersistentFlags())
}

func preRun(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	switch outputFormat {
	case outputText, outputJSON, outputYAML:
	default:
		return fmt.Errorf("unknown output format %q (want text, json or yaml)", outputFormat)
	}

	if bootstrap == nil || cleanup != nil || cmd.Annotations[skipBootstrap] == "true" {
		return nil
	}
	release, err := bootstrap(cmd.Flags())
	if err != nil {
		return err
	}
	cleanup = release
	return nil
}

// SetVersion sets the version reported by 'pageform version'.
func SetVersion(v string) {
	version = v
}

// SetServices installs the driving ports.
func SetServices(s Services) {
	projectService = s.Projects
	formService = s.Forms
	bulkDispatcher = s.Bulk
	settingsService = s.Settings
}

// SetServerOptions configures the serve command.
func SetServerOptions(opts ServerOptions) {
	serverOptions = opts
}

// SetBootstrap registers the service builder run before each command.
func SetBootstrap(b Bootstrap) {
	bootstrap = b
}

// Execute runs the root command and releases services afterwards.
func Execute(ctx context.Context) error {
	defer func() {
		if cleanup != nil {
			cleanup()
			cleanup = nil
		}
	}()
	return rootCmd.ExecuteContext(ctx)
}
