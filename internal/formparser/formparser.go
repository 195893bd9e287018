// Package formparser implements the form parser (component D): it walks
// a datum tree, recognizes the core special forms, and builds the typed
// AST consumed by the scope decorator and semantic checker.
package formparser

import (
	"strings"

	"github.com/funvibe/funxy/internal/ast"
	"github.com/funvibe/funxy/internal/datum"
	"github.com/funvibe/funxy/internal/diagnostics"
	"github.com/funvibe/funxy/internal/token"
	"github.com/funvibe/funxy/internal/types"
)

// Parser recognizes the special forms named in section 4.D and builds a
// decorated-but-unresolved AST (scope/slot fields are filled in later by
// the scope decorator).
type Parser struct {
	sink     *diagnostics.Sink
	registry *types.Registry

	// funcDepth counts the function bodies the parser is currently
	// inside, so a non-top-level `define` can be flagged NL554.
	funcDepth int
}

// New creates a form parser reporting into sink and resolving type
// annotations against registry.
func New(sink *diagnostics.Sink, registry *types.Registry) *Parser {
	return &Parser{sink: sink, registry: registry}
}

// ParseTopLevel parses every datum in ds as a top-level form.
func (p *Parser) ParseTopLevel(ds []datum.Datum) []ast.Node {
	nodes := make([]ast.Node, 0, len(ds))
	for _, d := range ds {
		nodes = append(nodes, p.ParseForm(d))
	}
	return nodes
}

func (p *Parser) errorNode(d datum.Datum, code diagnostics.Code, format string, args ...interface{}) ast.Node {
	start, end := datum.Span(d)
	p.sink.Add(diagnostics.NewAt(code, start, end, format, args...))
	return &ast.Literal{Value: nil}
}

// ParseForm dispatches a single datum to its special-form handler, or
// treats it as a literal, variable reference, or procedure call.
func (p *Parser) ParseForm(d datum.Datum) ast.Node {
	raw := datum.Unwrap(d)

	switch v := raw.(type) {
	case *datum.Symbol:
		return &ast.Variable{Name: v.Name}

	case *datum.Pair:
		items, proper := datum.ListToSlice(raw)
		if !proper {
			return p.errorNode(d, diagnostics.ErrSyntax, "improper list cannot be parsed as a form")
		}
		if len(items) == 0 {
			return p.errorNode(d, diagnostics.ErrUnexpected, "empty application")
		}
		if head, ok := datum.Unwrap(items[0]).(*datum.Symbol); ok {
			if handler, known := specialForms[head.Name]; known {
				return handler(p, d, items)
			}
		}
		return p.parseCall(d, items)

	default:
		return p.parseLiteral(raw)
	}
}

func (p *Parser) parseLiteral(d datum.Datum) ast.Node {
	switch v := d.(type) {
	case datum.Bool:
		return &ast.Literal{Value: bool(v)}
	case datum.Char:
		return &ast.Literal{Value: rune(v)}
	case datum.String:
		return &ast.Literal{Value: string(v)}
	case datum.Number:
		return &ast.Literal{Value: v.Number}
	case *datum.Vector:
		elems := make([]ast.Node, len(v.Items))
		for i, item := range v.Items {
			elems[i] = p.parseQuoted(item)
		}
		return &ast.Vector{Elements: elems}
	default:
		// nullType and anything else collapse to the empty-list literal.
		return &ast.Literal{Value: nil}
	}
}

func (p *Parser) parseCall(d datum.Datum, items []datum.Datum) ast.Node {
	callee := p.ParseForm(items[0])
	args := make([]ast.Node, 0, len(items)-1)
	for _, a := range items[1:] {
		args = append(args, p.ParseForm(a))
	}
	return &ast.Call{Callee: callee, Args: args}
}

type formHandler func(p *Parser, d datum.Datum, items []datum.Datum) ast.Node

var specialForms = map[string]formHandler{
	"quote":         (*Parser).parseQuote,
	"if":            (*Parser).parseIf,
	"begin":         (*Parser).parseBegin,
	"set!":          (*Parser).parseSet,
	"define":        (*Parser).parseDefine,
	"define-values": (*Parser).parseDefineValues,
	"let-values":    (*Parser).parseLetValues,
	"letrec-values": (*Parser).parseLetrecValues,
	"#%lambda":      (*Parser).parseLambda,
	"%apply":        (*Parser).parseApply,
	".options":      (*Parser).parseOptionsForm,
}

// parseQuote turns `(quote datum)` into a Literal built from the raw
// (syntax-object-stripped) datum, recursively, so quoted data round-trips
// through the reader's printer (section 8).
func (p *Parser) parseQuote(d datum.Datum, items []datum.Datum) ast.Node {
	if len(items) != 2 {
		return p.errorNode(d, diagnostics.ErrExpected, "quote expects exactly one datum")
	}
	return p.parseQuoted(items[1])
}

func (p *Parser) parseQuoted(d datum.Datum) ast.Node {
	raw := datum.Unwrap(d)
	switch v := raw.(type) {
	case *datum.Pair:
		items, proper := datum.ListToSlice(raw)
		elems := make([]ast.Node, len(items))
		for i, it := range items {
			elems[i] = p.parseQuoted(it)
		}
		var tail ast.Node
		if !proper {
			// Walk to the dotted tail explicitly.
			cur := raw
			for {
				pair, ok := datum.Unwrap(cur).(*datum.Pair)
				if !ok {
					tail = p.parseQuoted(cur)
					break
				}
				cur = pair.Cdr
			}
		}
		return &ast.List{Elements: elems, Tail: tail}
	case *datum.Vector:
		elems := make([]ast.Node, len(v.Items))
		for i, it := range v.Items {
			elems[i] = p.parseQuoted(it)
		}
		return &ast.Vector{Elements: elems}
	case *datum.Symbol:
		return &ast.Literal{Value: v}
	default:
		return p.parseLiteral(raw)
	}
}

func (p *Parser) parseIf(d datum.Datum, items []datum.Datum) ast.Node {
	if len(items) != 3 && len(items) != 4 {
		return p.errorNode(d, diagnostics.ErrExpected, "if expects (if test then) or (if test then else)")
	}
	n := &ast.If{
		Test: p.ParseForm(items[1]),
		Then: p.ParseForm(items[2]),
	}
	if len(items) == 4 {
		n.Else = p.ParseForm(items[3])
	} else {
		n.Else = &ast.Void{}
	}
	return n
}

func (p *Parser) parseBegin(d datum.Datum, items []datum.Datum) ast.Node {
	body := items[1:]
	switch len(body) {
	case 0:
		return &ast.Void{}
	case 1:
		return p.ParseForm(body[0])
	default:
		exprs := make([]ast.Node, len(body))
		for i, b := range body {
			exprs[i] = p.ParseForm(b)
		}
		return &ast.Block{Exprs: exprs}
	}
}

func (p *Parser) parseSet(d datum.Datum, items []datum.Datum) ast.Node {
	if len(items) != 3 {
		return p.errorNode(d, diagnostics.ErrExpected, "set! expects (set! name expr)")
	}
	sym, ok := datum.Unwrap(items[1]).(*datum.Symbol)
	if !ok {
		return p.errorNode(d, diagnostics.ErrExpectedSyntax, "set! target must be a symbol")
	}
	return &ast.Assign{
		Target: &ast.Variable{Name: sym.Name},
		Value:  p.ParseForm(items[2]),
	}
}

// parseDefine handles the single-name `define` sugar for define-values
// (used pervasively in the concrete test scenarios though it is not
// itself one of the nine forms the grammar table enumerates).
func (p *Parser) parseDefine(d datum.Datum, items []datum.Datum) ast.Node {
	if len(items) != 3 {
		return p.errorNode(d, diagnostics.ErrExpected, "define expects (define name expr)")
	}
	sym, ok := datum.Unwrap(items[1]).(*datum.Symbol)
	if !ok {
		return p.errorNode(d, diagnostics.ErrExpectedSyntax, "define target must be a symbol")
	}
	if p.funcDepth > 0 {
		p.sink.Add(diagnostics.New(diagnostics.ErrUnexpectedDefine, formToken(d), "unexpected define inside a function body"))
	}
	return &ast.Define{Name: sym.Name, Value: p.ParseForm(items[2])}
}

func (p *Parser) parseDefineValues(d datum.Datum, items []datum.Datum) ast.Node {
	if len(items) != 3 {
		return p.errorNode(d, diagnostics.ErrExpected, "define-values expects (define-values (n ...) expr)")
	}
	names, ok := p.symbolNames(items[1])
	if !ok {
		return p.errorNode(d, diagnostics.ErrExpectedSyntax, "define-values names must be a list of symbols")
	}
	if p.funcDepth > 0 {
		p.sink.Add(diagnostics.New(diagnostics.ErrUnexpectedDefine, formToken(d), "unexpected define inside a function body"))
	}
	return &ast.DefineValues{Names: names, Value: p.ParseForm(items[2])}
}

func (p *Parser) symbolNames(d datum.Datum) ([]string, bool) {
	items, proper := datum.ListToSlice(datum.Unwrap(d))
	if !proper {
		return nil, false
	}
	names := make([]string, len(items))
	for i, it := range items {
		sym, ok := datum.Unwrap(it).(*datum.Symbol)
		if !ok {
			return nil, false
		}
		names[i] = sym.Name
	}
	return names, true
}

func (p *Parser) parseLetValues(d datum.Datum, items []datum.Datum) ast.Node {
	return p.parseValuesForm(d, items, false)
}

func (p *Parser) parseLetrecValues(d datum.Datum, items []datum.Datum) ast.Node {
	return p.parseValuesForm(d, items, true)
}

// parseValuesForm implements both let-values and letrec-values: the only
// difference between the two is which scope the scope decorator resolves
// the initializer expressions under (section 4.G), not the AST shape, so
// both produce the same bindings slice here.
func (p *Parser) parseValuesForm(d datum.Datum, items []datum.Datum, recursive bool) ast.Node {
	if len(items) < 3 {
		return p.errorNode(d, diagnostics.ErrExpected, "let-values expects (kw ((ids init) ...) body ...)")
	}
	clauses, proper := datum.ListToSlice(datum.Unwrap(items[1]))
	if !proper {
		return p.errorNode(d, diagnostics.ErrExpectedSyntax, "let-values binding list must be a proper list")
	}
	bindings := make([]ast.ValuesBinding, 0, len(clauses))
	for _, c := range clauses {
		cItems, ok := datum.ListToSlice(datum.Unwrap(c))
		if !ok || len(cItems) != 2 {
			p.sink.Add(diagnostics.NewAt(diagnostics.ErrExpectedSyntax, spanOf(c), spanOf(c), "let-values clause must be (ids init)"))
			continue
		}
		names, ok := p.symbolNames(cItems[0])
		if !ok {
			p.sink.Add(diagnostics.NewAt(diagnostics.ErrExpectedSyntax, spanOf(cItems[0]), spanOf(cItems[0]), "let-values ids must be a list of symbols"))
			continue
		}
		bindings = append(bindings, ast.ValuesBinding{
			Names: names,
			Init:  p.ParseForm(cItems[1]),
		})
	}
	body := p.parseBodySeq(items[2:])
	if recursive {
		return &ast.LetrecValues{Bindings: bindings, Body: body}
	}
	return &ast.LetValues{Bindings: bindings, Body: body}
}

func (p *Parser) parseBodySeq(body []datum.Datum) ast.Node {
	switch len(body) {
	case 0:
		return &ast.Void{}
	case 1:
		return p.ParseForm(body[0])
	default:
		exprs := make([]ast.Node, len(body))
		for i, b := range body {
			exprs[i] = p.ParseForm(b)
		}
		return &ast.Block{Exprs: exprs}
	}
}

// parseLambda handles `(#%lambda (.type T)? formals body ...)`.
func (p *Parser) parseLambda(d datum.Datum, items []datum.Datum) ast.Node {
	if len(items) < 3 {
		return p.errorNode(d, diagnostics.ErrExpected, "#%lambda expects (#%lambda formals body ...)")
	}
	rest := items[1:]
	// An optional leading `(.type T)` return-type annotation; resolved
	// against the registry but not otherwise retained on the node (the
	// decorated AST tracks value types on expressions, not declarations).
	if h, ok := datum.ListToSlice(datum.Unwrap(rest[0])); ok && len(h) == 2 {
		if sym, ok := datum.Unwrap(h[0]).(*datum.Symbol); ok && sym.Name == ".type" {
			p.resolveTypeName(h[1])
			rest = rest[1:]
		}
	}
	if len(rest) < 2 {
		return p.errorNode(d, diagnostics.ErrExpected, "#%lambda missing formals or body")
	}
	formals := rest[0]
	body := rest[1:]

	params, restName, hasRest, ok := p.parseFormals(formals)
	if !ok {
		return p.errorNode(d, diagnostics.ErrExpectedSyntax, "malformed lambda formals")
	}

	p.funcDepth++
	bodyNode := p.parseBodySeq(body)
	p.funcDepth--

	return &ast.Function{Params: params, Rest: restName, HasRest: hasRest, Body: bodyNode}
}

// parseFormals implements the three formal-parameter shapes from 4.D: a
// bare rest symbol, a proper list, or a dotted list whose tail names the
// rest parameter. Each formal-id is `name`, `(name default)`, or
// `((.type T) name default?)`; duplicate names are parameter-redefined.
func (p *Parser) parseFormals(formals datum.Datum) (params []ast.Param, rest string, hasRest bool, ok bool) {
	raw := datum.Unwrap(formals)
	if sym, isSym := raw.(*datum.Symbol); isSym {
		return nil, sym.Name, true, true
	}

	seen := make(map[string]bool)
	var result []ast.Param
	cur := raw
	for {
		if datum.IsNull(cur) {
			return result, "", false, true
		}
		pair, isPair := datum.Unwrap(cur).(*datum.Pair)
		if !isPair {
			sym, isSym := datum.Unwrap(cur).(*datum.Symbol)
			if !isSym {
				return nil, "", false, false
			}
			return result, sym.Name, true, true
		}
		param, paramOK := p.parseFormalID(pair.Car)
		if !paramOK {
			return nil, "", false, false
		}
		if seen[param.Name] {
			p.sink.Add(diagnostics.New(diagnostics.ErrParameterRedefined, token.Token{}, "parameter %q redefined", param.Name))
		} else {
			seen[param.Name] = true
		}
		result = append(result, param)
		cur = datum.Unwrap(pair.Cdr)
	}
}

// parseFormalID parses one formal-id: a bare name, `(name default)`, or
// `((.type T) name default?)`. The default expression, when present, is
// parsed with ParseForm and retained on the returned Param so the scope
// decorator can resolve free references inside it (4.G).
func (p *Parser) parseFormalID(d datum.Datum) (ast.Param, bool) {
	raw := datum.Unwrap(d)
	if sym, ok := raw.(*datum.Symbol); ok {
		return ast.Param{Name: sym.Name}, true
	}
	items, ok := datum.ListToSlice(raw)
	if !ok || len(items) == 0 {
		return ast.Param{}, false
	}
	first := datum.Unwrap(items[0])
	if pr, isPair := first.(*datum.Pair); isPair {
		if sym, isSym := datum.Unwrap(pr.Car).(*datum.Symbol); isSym && sym.Name == ".type" {
			p.resolveTypeName(pr.Cdr)
			if len(items) < 2 {
				return ast.Param{}, false
			}
			sym2, ok := datum.Unwrap(items[1]).(*datum.Symbol)
			if !ok {
				return ast.Param{}, false
			}
			param := ast.Param{Name: sym2.Name}
			if len(items) >= 3 {
				param.Default = p.ParseForm(items[2])
			}
			return param, true
		}
	}
	sym, ok := first.(*datum.Symbol)
	if !ok {
		return ast.Param{}, false
	}
	param := ast.Param{Name: sym.Name}
	if len(items) >= 2 {
		param.Default = p.ParseForm(items[1])
	}
	return param, true
}

func (p *Parser) resolveTypeName(d datum.Datum) {
	raw := datum.Unwrap(d)
	if pair, ok := raw.(*datum.Pair); ok {
		raw = datum.Unwrap(pair.Car)
	}
	sym, ok := raw.(*datum.Symbol)
	if !ok {
		return
	}
	if _, found := p.registry.Lookup(sym.Name); !found {
		p.sink.Add(diagnostics.NewAt(diagnostics.ErrExpectedValidTypeName, token.Position{}, token.Position{}, "%q is not a valid type name", sym.Name))
	}
}

func (p *Parser) parseApply(d datum.Datum, items []datum.Datum) ast.Node {
	if len(items) < 2 {
		return p.errorNode(d, diagnostics.ErrExpected, "%%apply expects (%%apply f arg ...)")
	}
	return p.parseCall(d, items[1:])
}

// parseOptionsForm handles `(.options ((name value) ...) body ...)`. The
// toggles themselves are read by a dedicated options pre-pass (see
// ReadOptions); here the form simply parses down to its body sequence,
// matching the grammar note that recursion does not stop at options
// nodes for scope purposes.
func (p *Parser) parseOptionsForm(d datum.Datum, items []datum.Datum) ast.Node {
	if len(items) < 2 {
		return p.errorNode(d, diagnostics.ErrExpected, ".options expects a binding list")
	}
	return p.parseBodySeq(items[2:])
}

func spanOf(d datum.Datum) token.Position {
	start, _ := datum.Span(d)
	return start
}

func formToken(d datum.Datum) token.Token {
	start, end := datum.Span(d)
	return token.Token{Start: start, End: end, Text: strings.TrimSpace(datum.String(d))}
}
