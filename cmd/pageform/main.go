// Command pageform turns the pages of uploaded PDFs into editable HTML forms.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/custodia-labs/pageform/internal/adapters/driving/cli"
	"github.com/custodia-labs/pageform/internal/logger"
)

// version is set by build flags.
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cli.SetVersion(version)
	cli.SetBootstrap(func(flags *pflag.FlagSet) (func(), error) {
		return wire(ctx, flags)
	})

	err := cli.Execute(ctx)
	logger.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}
