package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Global flags
	verbose bool
	lang    string

	logger = zap.NewNop()
)

// errInvalid makes the process exit with status 1 after the issues were
// printed.
var errInvalid = errors.New("data has validation issues")

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "formkit",
		Short: "Inspect, edit and validate form data trees by field path",
		Long: `formkit works on JSON or YAML data files using the field path syntax
(a.b[3].c, with ["quoted.keys"] for keys holding dots or brackets).

Rule files declare validators; see "formkit validate --help".`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			config := zap.NewProductionConfig()
			config.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
			if verbose {
				config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			}
			l, err := config.Build()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			logger = l
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logger.Sync()
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging to stderr")
	root.PersistentFlags().StringVar(&lang, "lang", "en", "issue message language (en, ja)")

	root.AddCommand(newParseCmd(), newGetCmd(), newSetCmd(), newValidateCmd(), newWatchCmd())
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := newRootCmd().ExecuteContext(ctx)
	switch {
	case err == nil:
	case errors.Is(err, errInvalid):
		os.Exit(1)
	default:
		fmt.Fprintln(os.Stderr, "formkit:", err)
		os.Exit(2)
	}
}
