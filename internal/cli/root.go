// Package cli provides the funxy command-line interface: a thin
// cobra-based shell around the compilation pipeline in
// internal/pipeline.
package cli

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/funvibe/funxy/internal/cliconfig"
	"github.com/funvibe/funxy/internal/config"
)

var (
	cfgFile string
	cfg     *cliconfig.Config
	noColor bool
)

// NewRootCmd builds the root command and wires every subcommand.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "funxy",
		Short:   "funxy checks source files against the language's lexical, syntactic, and scope rules",
		Version: config.Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" {
				return nil
			}
			path := cfgFile
			if path == "" {
				found, err := cliconfig.Find(".")
				if err != nil {
					return err
				}
				path = found
			}
			if path != "" {
				loaded, err := cliconfig.Load(path)
				if err != nil {
					return err
				}
				cfg = loaded
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: search for funxy.yaml)")
	root.PersistentFlags().BoolVar(&noColor, "no-color", !isatty.IsTerminal(os.Stderr.Fd()), "disable colored diagnostic output")

	root.AddCommand(newCheckCommand())
	root.AddCommand(newTokensCommand())
	root.AddCommand(newParseCommand())

	return root
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

func colorize(code string, s string) string {
	if noColor {
		return s
	}
	return fmt.Sprintf("\x1b[%sm%s\x1b[0m", code, s)
}
