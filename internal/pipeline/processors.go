package pipeline

import (
	"github.com/funvibe/funxy/internal/checker"
	"github.com/funvibe/funxy/internal/formparser"
	"github.com/funvibe/funxy/internal/lexer"
	"github.com/funvibe/funxy/internal/reader"
	"github.com/funvibe/funxy/internal/scope"
	"github.com/funvibe/funxy/internal/source"
)

// ReadProcessor runs components A through C: it scans every input source
// and reads the resulting token stream into a flat list of top-level
// datums.
type ReadProcessor struct{}

func (rp *ReadProcessor) Process(ctx *Context) *Context {
	src := source.New(ctx.Inputs...)
	lx := lexer.New(src, ctx.Sink)
	rd := reader.New(lx, ctx.Sink, ctx.PreserveSyntax)

	for {
		d, ok := rd.ReadDatum()
		if !ok {
			break
		}
		ctx.Datums = append(ctx.Datums, d)
	}
	return ctx
}

// FormProcessor runs component D: it recognizes the special forms in
// every top-level datum and also performs the .options pre-pass, since
// .options toggles must be known before the scope decorator runs.
type FormProcessor struct{}

func (fp *FormProcessor) Process(ctx *Context) *Context {
	readOptionsForms(ctx)
	fparser := formparser.New(ctx.Sink, ctx.Registry)
	ctx.Program = fparser.ParseTopLevel(ctx.Datums)
	return ctx
}

// readOptionsForms scans the top-level datums for `(.options ((name
// value) ...) ...)` forms and applies every recognized toggle to
// ctx.Options, left to right, before any other processing happens. The
// form parser sees the same datums afterwards and still produces the
// form's body as ordinary top-level expressions.
func readOptionsForms(ctx *Context) {
	for _, d := range ctx.Datums {
		applyOptionsForm(ctx, d)
	}
}

// ScopeProcessor runs component G: the two-pass scope decorator.
type ScopeProcessor struct{}

func (sp *ScopeProcessor) Process(ctx *Context) *Context {
	dec := scope.New(ctx.Sink, ctx.Options)
	ctx.Program = dec.Decorate(ctx.Program)
	return ctx
}

// ArithmeticCollaborator is re-exported from the checker package's
// Arithmetic interface so callers configuring a Pipeline don't need to
// import internal/checker directly just to pass nil or a real one in.
type ArithmeticCollaborator = checker.Arithmetic

// CheckProcessor runs component H: the semantic checker.
type CheckProcessor struct {
	Arithmetic ArithmeticCollaborator
}

func (cp *CheckProcessor) Process(ctx *Context) *Context {
	chk := checker.New(ctx.Sink, ctx.Options, ctx.Registry, cp.Arithmetic)
	chk.Check(ctx.Program)
	return ctx
}
