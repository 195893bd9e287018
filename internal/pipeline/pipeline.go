// Package pipeline orchestrates the eight components (source reader
// through semantic checker) into a single compilation, mirroring the
// sequence fixed by the system overview: A -> B -> C -> D -> G -> H.
package pipeline

import (
	"github.com/funvibe/funxy/internal/ast"
	"github.com/funvibe/funxy/internal/datum"
	"github.com/funvibe/funxy/internal/diagnostics"
	"github.com/funvibe/funxy/internal/options"
	"github.com/funvibe/funxy/internal/source"
	"github.com/funvibe/funxy/internal/types"
)

// Context threads the compilation's shared state through every
// processor. A Context is owned by exactly one compilation (section 5:
// "the core is single-threaded per compilation").
type Context struct {
	Inputs         []source.Input
	PreserveSyntax bool
	Options        options.Options
	Registry       *types.Registry
	Sink           *diagnostics.Sink

	Datums  []datum.Datum
	Program []ast.Node
}

// NewContext builds a fresh, ready-to-run compilation context.
func NewContext(inputs []source.Input, opts options.Options) *Context {
	return &Context{
		Inputs:   inputs,
		Options:  opts,
		Registry: types.New(),
		Sink:     diagnostics.NewSink(),
	}
}

// Processor is one pipeline stage.
type Processor interface {
	Process(ctx *Context) *Context
}

// Pipeline runs an ordered sequence of Processors.
type Pipeline struct {
	processors []Processor
}

// New builds a Pipeline from its stages, in execution order.
func New(processors ...Processor) *Pipeline {
	return &Pipeline{processors: processors}
}

// Run executes every stage in order, stopping as soon as the sink holds
// an error-severity diagnostic: section 7 specifies that a failed
// compilation's output is not safe for later phases to consume.
func (p *Pipeline) Run(ctx *Context) *Context {
	for _, proc := range p.processors {
		ctx = proc.Process(ctx)
		if ctx.Sink.HasErrors() {
			break
		}
	}
	return ctx
}

// Standard builds the default compile pipeline: read+scan+parse data,
// recognize forms, decorate scopes, then run the semantic checker.
func Standard(arithmetic ArithmeticCollaborator) *Pipeline {
	return New(
		&ReadProcessor{},
		&FormProcessor{},
		&ScopeProcessor{},
		&CheckProcessor{Arithmetic: arithmetic},
	)
}
