package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/funvibe/funxy/internal/datum"
	"github.com/funvibe/funxy/internal/diagnostics"
	"github.com/funvibe/funxy/internal/lexer"
	"github.com/funvibe/funxy/internal/reader"
	"github.com/funvibe/funxy/internal/source"
)

func newParseCommand() *cobra.Command {
	return &cobra.Command{
		Use:    "parse <file>",
		Short:  "Dump the datums read from a single source file, before form recognition",
		Hidden: true,
		Args:   cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			sink := diagnostics.NewSink()
			r := source.New(source.Input{Name: args[0], Text: string(data)})
			lx := lexer.New(r, sink)
			rd := reader.New(lx, sink, false)
			for {
				d, ok := rd.ReadDatum()
				if !ok {
					break
				}
				fmt.Fprintln(cmd.OutOrStdout(), datum.String(d))
			}
			for _, d := range sink.All() {
				fmt.Fprintln(cmd.ErrOrStderr(), d.Error())
			}
			return nil
		},
	}
}
