// Command crmmap lays out company hierarchies. See internal/cli for the
// commands.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/matzehuels/crmmap/internal/cli"
	crmerrors "github.com/matzehuels/crmmap/pkg/errors"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx)
	stop()

	code := exitCode(err)
	if code != 0 && code != 130 {
		fmt.Fprintln(os.Stderr, "crmmap:", err)
	}
	os.Exit(code)
}

func run(ctx context.Context) error {
	c := cli.New(os.Stderr, cli.LogInfo)
	root := c.RootCommand()

	verbose := root.PersistentFlags().BoolP("verbose", "v", false, "log pipeline and cache events")
	root.PersistentPreRun = func(*cobra.Command, []string) {
		if *verbose {
			c.SetLogLevel(cli.LogDebug)
		}
	}
	return root.ExecuteContext(ctx)
}

// exitCode is 130 after an interrupt, 2 for rejected input and 1 for any
// other failure.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, context.Canceled):
		return 130
	case crmerrors.GetCode(err) != "" && crmerrors.HTTPStatus(err) < 500:
		return 2
	default:
		return 1
	}
}
