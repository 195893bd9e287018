package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/funvibe/funxy/internal/diagnostics"
	"github.com/funvibe/funxy/internal/lexer"
	"github.com/funvibe/funxy/internal/source"
	"github.com/funvibe/funxy/internal/token"
)

func newTokensCommand() *cobra.Command {
	return &cobra.Command{
		Use:    "tokens <file>",
		Short:  "Dump the scanner's token stream for a single source file",
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
			for {
				tok := lx.NextToken()
				fmt.Fprintf(cmd.OutOrStdout(), "%d:%d %-12s %q\n", tok.Start.Line, tok.Start.Column, tok.Kind, tok.Text)
				if tok.Kind == token.EOF {
					break
				}
			}
			for _, d := range sink.All() {
				fmt.Fprintln(cmd.ErrOrStderr(), d.Error())
			}
			return nil
		},
	}
}
