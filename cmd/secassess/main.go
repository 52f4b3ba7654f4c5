// Command secassess exports DevSecOps maturity assessments as reports and
// serves the export API.
package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/matzehuels/secassess/internal/cli"
	"github.com/matzehuels/secassess/pkg/errors"
)

// Exit codes.
const (
	exitError       = 1
	exitUsage       = 2
	exitInterrupted = 130 // shell convention for SIGINT
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		os.Exit(report(err))
	}
}

func run(ctx context.Context) error {
	var verbose bool

	c := cli.New(os.Stderr, cli.LogInfo)
	root := c.RootCommand()
	root.SilenceErrors = true
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	originalPreRun := root.PersistentPreRunE
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if verbose || os.Getenv("SECASSESS_DEBUG") != "" {
			c.SetLogLevel(cli.LogDebug)
		}
		if originalPreRun != nil {
			return originalPreRun(cmd, args)
		}
		return nil
	}

	return root.ExecuteContext(ctx)
}

// report prints err and returns the exit code for it. Coded input errors
// exit with a usage status.
func report(err error) int {
	if stderrors.Is(err, context.Canceled) {
		return exitInterrupted
	}
	code := errors.GetCode(err)
	if code == "" {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return exitError
	}
	fmt.Fprintf(os.Stderr, "Error: %s [%s]\n", errors.UserMessage(err), code)
	if errors.HTTPStatus(code) < 500 {
		return exitUsage
	}
	return exitError
}
