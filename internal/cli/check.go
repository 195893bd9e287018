package cli

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/funvibe/funxy/internal/arithmetic"
	"github.com/funvibe/funxy/internal/config"
	"github.com/funvibe/funxy/internal/options"
	"github.com/funvibe/funxy/internal/pipeline"
	"github.com/funvibe/funxy/internal/source"
	"github.com/funvibe/funxy/internal/topenv"
	"github.com/funvibe/funxy/internal/utils"
)

func newCheckCommand() *cobra.Command {
	var persistPath string

	cmd := &cobra.Command{
		Use:   "check <file> [file2...]",
		Short: "Run the full pipeline over one or more source files and report diagnostics",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := options.Default()
			cfg.ApplyTo(&opts)
			if persistPath == "" && cfg != nil {
				persistPath = cfg.Persist
			}

			inputs := make([]source.Input, 0, len(args))
			for _, path := range args {
				if !config.HasSourceExt(path) {
					fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s does not have a recognized source extension (%v)\n", path, config.SourceFileExtensions)
				}
				data, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				inputs = append(inputs, source.Input{Name: path, Text: string(data)})
			}

			runID := uuid.New()
			if opts.Debug {
				names := make([]string, len(args))
				for i, path := range args {
					names[i] = utils.ExtractModuleName(path)
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "funxy check %s: %d source(s): %v\n", runID, len(inputs), names)
			}

			ctx := pipeline.NewContext(inputs, opts)
			arith := arithmetic.New(ctx.Registry)
			ctx = pipeline.Standard(arith).Run(ctx)

			for _, d := range ctx.Sink.All() {
				line := d.Error()
				if d.Severity.String() == "error" {
					line = colorize("31", line)
				} else {
					line = colorize("33", line)
				}
				fmt.Fprintln(cmd.ErrOrStderr(), line)
			}

			if ctx.Sink.Failed() {
				return fmt.Errorf("%s: compilation failed with errors", runID)
			}

			if persistPath != "" {
				store, err := topenv.Open(persistPath)
				if err != nil {
					return err
				}
				defer store.Close()
				if err := store.Record(ctx.Program); err != nil {
					return fmt.Errorf("persisting top-level environment: %w", err)
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%d form(s) decorated across %d source(s), no diagnostics\n", len(ctx.Program), len(inputs))
			return nil
		},
	}

	cmd.Flags().StringVar(&persistPath, "persist", "", "SQLite file to persist top-level bindings across runs")
	return cmd
}
