// Package arithmetic implements the checker's arithmetic collaborator
// (section 4.H / 6): arity checking for the fixed builtin set the
// semantic checker may inline. Evaluating the resulting calls is
// execution, which is out of this core's scope (see spec non-goals);
// this package only decides whether a call shape is legal and what
// value type it would produce.
package arithmetic

import "github.com/funvibe/funxy/internal/types"

// Collaborator implements checker.Arithmetic against the closed
// arithmetic builtin set (`+ - * / modulo`).
type Collaborator struct {
	registry *types.Registry
}

// New builds a Collaborator resolving its value types against registry.
func New(registry *types.Registry) *Collaborator {
	return &Collaborator{registry: registry}
}

// Check validates argCount against name's arity and returns the
// resulting value type (always `complex`, the widest numeric built-in,
// since the checker does not itself track operand types — that lives
// with the numeric tower a full arithmetic evaluator would consult).
func (c *Collaborator) Check(name string, argCount int) (valueType *types.Descriptor, ok bool, reason string) {
	switch name {
	case "+", "*":
		if argCount < 1 {
			return nil, false, name + " expects at least one argument"
		}
	case "-":
		if argCount < 1 {
			return nil, false, "- expects at least one argument"
		}
	case "/":
		if argCount < 1 {
			return nil, false, "/ expects at least one argument"
		}
	case "modulo":
		if argCount != 2 {
			return nil, false, "modulo expects exactly two arguments"
		}
	default:
		return nil, false, "unknown arithmetic builtin " + name
	}
	d, _ := c.registry.Lookup("complex")
	return d, true, ""
}
