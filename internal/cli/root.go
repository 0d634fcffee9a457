// Package cli implements the signalkit command line
package cli

import (
	"context"
	"io"

	"signalkit/internal/core/engine"
	"signalkit/internal/platform/config"
	"signalkit/internal/platform/logger"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// app carries what every command needs; built once per root command
type app struct {
	cfg config.Signals
	log zerolog.Logger
	eng *engine.Engine
}

func (a *app) engine() *engine.Engine {
	if a.eng == nil {
		opts := []engine.Option{engine.WithExcerptLimit(a.cfg.ExcerptLimit)}
		if a.cfg.LogFaults {
			opts = append(opts, engine.WithLogger(a.log))
		}
		a.eng = engine.New(engine.Default().Pack(), opts...)
	}
	return a.eng
}

// New builds the root command. Settings come from CORE_SIGNALS_*, logs go to stderr
func New() *cobra.Command {
	a := &app{
		cfg: config.LoadSignals(config.New().Prefix("CORE_SIGNALS_")),
		log: *logger.Named("engine"),
	}

	root := &cobra.Command{
		Use:   "signalkit",
		Short: "Classify agent evidence into actionable signals",
		Long: `signalkit scans evidence collected during an agent's operation (the user's
message, today's log, memory, the session transcript and recent events) and
prints the signals it recognizes, one per line as "name" or "name: excerpt".`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newScanCmd(a), newVocabCmd(a), newVersionCmd())
	return root
}

// Execute runs the CLI with args and returns the error for the caller to map to an exit code
func Execute(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	root := New()
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return root.ExecuteContext(ctx)
}
