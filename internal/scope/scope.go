// Package scope implements the scope decorator (component G): a
// two-pass walk that classifies every binding, resolves every variable
// reference to a slot, promotes captured locals to closure slots, and
// computes closure reference depth (section 4.G).
package scope

import (
	"fmt"
	"sort"

	"github.com/funvibe/funxy/internal/ast"
	"github.com/funvibe/funxy/internal/diagnostics"
	"github.com/funvibe/funxy/internal/options"
	"github.com/funvibe/funxy/internal/token"
)

// binding is the decorator's bookkeeping record for one declared name. It
// is not exposed on the AST; only its effect (Kind/Slot/Depth on each
// ast.Variable) survives decoration.
type binding struct {
	name      string
	kind      ast.BindingKind
	slot      int
	readOnly  bool
	written   bool
	initial   bool // Initialized flag
	owner     *funcFrame // nil for top-level bindings
	refs      []*ast.Variable
}

// funcFrame is one entry of the function-nesting stack maintained during
// pass 2.
type funcFrame struct {
	fn       *ast.Function
	depth    int
	nextSlot int
}

// bindEntry is one stack slot of the pass-2 lexical environment.
type bindEntry struct {
	name string
	b    *binding
}

// Decorator runs the two-pass scope analysis described in 4.G.
type Decorator struct {
	sink *diagnostics.Sink
	opts options.Options

	topLevel    map[string]*binding
	nextTopSlot int

	bindings  []bindEntry
	functions []*funcFrame

	// errorSet deduplicates diagnostics by position+code.
	errorSet map[string]bool
}

// arithmeticBuiltins are pre-declared, always-initialized top-level
// bindings: the arithmetic collaborator named in section 4.H is assumed
// to always be available, so referencing `+` never itself reads as an
// unassigned variable.
var arithmeticBuiltins = []string{"+", "-", "*", "/", "modulo"}

// New creates a Decorator reporting into sink under the given options.
func New(sink *diagnostics.Sink, opts options.Options) *Decorator {
	d := &Decorator{
		sink:     sink,
		opts:     opts,
		topLevel: make(map[string]*binding),
		errorSet: make(map[string]bool),
	}
	for _, name := range arithmeticBuiltins {
		d.topLevel[name] = &binding{
			name: name, kind: ast.TopLevel, slot: d.nextTopSlot, readOnly: true, initial: true,
		}
		d.nextTopSlot++
	}
	return d
}

func (d *Decorator) addErr(code diagnostics.Code, at token.Position, format string, args ...interface{}) {
	key := fmt.Sprintf("%d:%d:%s", at.Line, at.Column, code)
	if d.errorSet[key] {
		return
	}
	d.errorSet[key] = true
	d.sink.Add(diagnostics.NewAt(code, at, at, format, args...))
}

// spanner is satisfied by every ast.Node via the embedded span type.
type spanner interface {
	GetSpan() (token.Position, token.Position)
}

func startOf(n spanner) token.Position {
	start, _ := n.GetSpan()
	return start
}

// Decorate runs pass 1 then pass 2 over a top-level program (a flat
// sequence of forms as produced by formparser.ParseTopLevel), and
// returns the program unchanged (decoration mutates nodes in place).
func (d *Decorator) Decorate(program []ast.Node) []ast.Node {
	d.collectTopLevel(program)
	for _, n := range program {
		d.walk(n)
	}
	return program
}

// collectTopLevel implements pass 1: record a TopLevel/StaticTopLevel
// binding for every top-level Define/DefineValues. Recursion does not
// descend into expressions, only into Block sequences, since the form
// parser splices `begin`/`.options` bodies into Block nodes that are
// still logically at top level (section 4.G).
func (d *Decorator) collectTopLevel(nodes []ast.Node) {
	for _, n := range nodes {
		switch v := n.(type) {
		case *ast.Block:
			d.collectTopLevel(v.Exprs)
		case *ast.Define:
			d.declareTopLevel(v.Name, startOf(v))
		case *ast.DefineValues:
			for _, name := range v.Names {
				d.declareTopLevel(name, startOf(v))
			}
		}
	}
}

func (d *Decorator) declareTopLevel(name string, at token.Position) {
	if _, exists := d.topLevel[name]; exists {
		if !d.opts.AllowRedefinition {
			d.addErr(diagnostics.ErrVariableRedefined, at, "variable %q redefined", name)
		}
		return
	}
	d.topLevel[name] = &binding{
		name:     name,
		kind:     ast.TopLevel,
		slot:     d.nextTopSlot,
		readOnly: !d.opts.AllowRedefinition,
	}
	d.nextTopSlot++
}

// currentFrame returns the innermost active function frame, or nil at
// top level.
func (d *Decorator) currentFrame() *funcFrame {
	if len(d.functions) == 0 {
		return nil
	}
	return d.functions[len(d.functions)-1]
}

// lookup searches the lexical stack top-to-bottom, falling back to the
// top-level table, and finally synthesizing a fresh top-level binding
// for a wholly unknown free reference (section 4.G: "insert a global
// binding at index 0").
func (d *Decorator) lookup(name string) *binding {
	for i := len(d.bindings) - 1; i >= 0; i-- {
		if d.bindings[i].name == name {
			return d.bindings[i].b
		}
	}
	if b, ok := d.topLevel[name]; ok {
		return b
	}
	b := &binding{name: name, kind: ast.TopLevel, slot: d.nextTopSlot}
	d.nextTopSlot++
	d.topLevel[name] = b
	return b
}

// push adds a new lexical binding and returns it.
func (d *Decorator) push(name string, kind ast.BindingKind, initialized bool) *binding {
	var slot int
	if f := d.currentFrame(); f != nil {
		slot = f.nextSlot
		f.nextSlot++
	} else {
		slot = d.nextTopSlot
		d.nextTopSlot++
	}
	b := &binding{name: name, kind: kind, slot: slot, owner: d.currentFrame(), initial: initialized}
	d.bindings = append(d.bindings, bindEntry{name: name, b: b})
	return b
}

// pop removes the n most recently pushed bindings.
func (d *Decorator) pop(n int) {
	d.bindings = d.bindings[:len(d.bindings)-n]
}

// ownerIndex returns the index of b.owner within d.functions, or -1 if b
// is a top-level binding (owner nil).
func (d *Decorator) ownerIndex(b *binding) int {
	if b.owner == nil {
		return -1
	}
	for i, f := range d.functions {
		if f == b.owner {
			return i
		}
	}
	return -1
}

// resolveReference applies a variable resolution to n: copies the
// binding's current slot/kind, promotes to a closure slot if the
// reference crosses a function boundary, and computes reference depth.
func (d *Decorator) resolveReference(n *ast.Variable, b *binding) {
	ownerIdx := d.ownerIndex(b)
	curIdx := len(d.functions) - 1

	if ownerIdx >= 0 && ownerIdx < curIdx && b.kind != ast.Closure && b.kind != ast.TopLevel && b.kind != ast.StaticTopLevel {
		d.promote(b, ownerIdx)
	}

	n.Kind = b.kind
	n.Slot = b.slot
	if b.kind == ast.Closure && ownerIdx >= 0 {
		depth := curIdx - ownerIdx
		n.Depth = depth
		for i := curIdx; i > ownerIdx; i-- {
			contribution := i - ownerIdx
			if contribution > d.functions[i].fn.MaxClosureRefDepth {
				d.functions[i].fn.MaxClosureRefDepth = contribution
			}
		}
	} else {
		n.Depth = 0
	}
	b.refs = append(b.refs, n)
}

// promote upgrades a local/parameter binding to a Closure slot the first
// time an inner function captures it, and registers it (with name
// uniquification) in the declaring function's closure list.
func (d *Decorator) promote(b *binding, ownerIdx int) {
	b.kind = ast.Closure
	fn := d.functions[ownerIdx].fn

	for _, c := range fn.Closures {
		if c.SourceSlot == b.slot {
			return // already registered
		}
	}
	taken := func(n string) bool {
		for _, c := range fn.Closures {
			if c.Name == n {
				return true
			}
		}
		return false
	}
	name := b.name
	for i := 2; taken(name); i++ {
		name = fmt.Sprintf("%s%d", b.name, i)
	}
	fn.Closures = append(fn.Closures, ast.ClosureSlot{
		Name:        name,
		SourceSlot:  b.slot,
		Initialized: b.initial,
	})
}

// walk dispatches a single node through pass 2. It is a direct recursive
// descent rather than a Visitor implementation (unlike the semantic
// checker) because scope decoration needs irregular control flow around
// each form — initializers resolved under a different scope than the
// body, bindings pushed/popped around recursive calls — that does not
// fit the uniform one-call-per-node Visitor contract as cleanly.
func (d *Decorator) walk(n ast.Node) {
	switch v := n.(type) {
	case nil:
		return
	case *ast.Literal, *ast.Void:
		return
	case *ast.Variable:
		b := d.lookup(v.Name)
		d.resolveReference(v, b)
		if !b.initial && !b.written {
			d.addErr(diagnostics.ErrUnassignedVariableUsed, startOf(v), "%q used before assignment", v.Name)
		}
	case *ast.Block:
		for _, e := range v.Exprs {
			d.walk(e)
		}
	case *ast.If:
		d.walk(v.Test)
		d.walk(v.Then)
		d.walk(v.Else)
	case *ast.Call:
		d.walk(v.Callee)
		for _, a := range v.Args {
			d.walk(a)
		}
	case *ast.Assign:
		d.walk(v.Value)
		b := d.lookup(v.Target.Name)
		d.resolveReference(v.Target, b)
		if b.readOnly {
			d.addErr(diagnostics.ErrReadOnlyAssignment, startOf(v), "assignment to read-only binding %q", v.Target.Name)
		}
		b.written = true
	case *ast.Define:
		d.walk(v.Value)
		if len(d.functions) > 0 {
			d.addErr(diagnostics.ErrUnexpectedDefine, startOf(v), "unexpected define inside a function body")
		}
		b := d.topLevel[v.Name]
		if b == nil {
			b = d.lookup(v.Name)
		}
		b.initial = true
		b.written = true
		if len(d.functions) == 0 && !d.opts.AllowRedefinition {
			b.kind = ast.StaticTopLevel
		}
		v.Kind = b.kind
		v.Slot = b.slot
	case *ast.DefineValues:
		d.walk(v.Value)
		if len(d.functions) > 0 {
			d.addErr(diagnostics.ErrUnexpectedDefine, startOf(v), "unexpected define inside a function body")
		}
		v.Slots = make([]int, len(v.Names))
		for i, name := range v.Names {
			b := d.topLevel[name]
			if b == nil {
				b = d.lookup(name)
			}
			b.initial = true
			b.written = true
			if len(d.functions) == 0 && !d.opts.AllowRedefinition {
				b.kind = ast.StaticTopLevel
			}
			v.Slots[i] = b.slot
		}
		if len(v.Names) > 0 {
			if b := d.topLevel[v.Names[0]]; b != nil {
				v.Kind = b.kind
			}
		}
	case *ast.LetValues:
		d.walkValues(v.Bindings, v.Body, false)
	case *ast.LetrecValues:
		d.walkValues(v.Bindings, v.Body, true)
	case *ast.Function:
		d.walkFunction(v)
	case *ast.List:
		for _, e := range v.Elements {
			d.walk(e)
		}
		d.walk(v.Tail)
	case *ast.Vector:
		for _, e := range v.Elements {
			d.walk(e)
		}
	}
}

func (d *Decorator) walkValues(bindings []ast.ValuesBinding, body ast.Node, recursive bool) {
	if recursive {
		pushed := 0
		for i := range bindings {
			for _, name := range bindings[i].Names {
				d.push(name, ast.Local, false)
				pushed++
			}
		}
		for i := range bindings {
			d.walk(bindings[i].Init)
			d.markInitialized(bindings[i].Names, pushed)
		}
		d.walk(body)
		d.pop(pushed)
		return
	}

	for i := range bindings {
		d.walk(bindings[i].Init)
	}
	pushed := 0
	for i := range bindings {
		slots := make([]int, len(bindings[i].Names))
		for j, name := range bindings[i].Names {
			b := d.push(name, ast.Local, true)
			slots[j] = b.slot
			pushed++
		}
		bindings[i].Slots = slots
		bindings[i].Kind = ast.Local
	}
	d.walk(body)
	d.pop(pushed)
}

// markInitialized flips the Initialized flag on the most recently pushed
// bindings named in names (used by letrec-values once each initializer
// has actually run, conceptually; in this single-pass decorator the
// flag is set immediately since initializer order is static).
func (d *Decorator) markInitialized(names []string, total int) {
	for i := len(d.bindings) - 1; i >= len(d.bindings)-total && i >= 0; i-- {
		for _, name := range names {
			if d.bindings[i].name == name {
				d.bindings[i].b.initial = true
			}
		}
	}
}

func (d *Decorator) walkFunction(fn *ast.Function) {
	// Default expressions are resolved under the outer scope, before any
	// of this function's own parameters are pushed, so a default can
	// never see its own parameter or a later sibling (4.G).
	for _, p := range fn.Params {
		if p.Default != nil {
			d.walk(p.Default)
		}
	}

	frame := &funcFrame{fn: fn, depth: len(d.functions)}
	d.functions = append(d.functions, frame)
	fn.Depth = frame.depth

	pushed := 0
	for _, p := range fn.Params {
		d.push(p.Name, ast.Parameter, true)
		pushed++
	}
	if fn.HasRest {
		d.push(fn.Rest, ast.Parameter, true)
		pushed++
	}

	d.walk(fn.Body)

	fn.NumSlots = frame.nextSlot
	d.pop(pushed)
	d.functions = d.functions[:len(d.functions)-1]

	sort.Slice(fn.Closures, func(i, j int) bool { return fn.Closures[i].SourceSlot < fn.Closures[j].SourceSlot })
}
