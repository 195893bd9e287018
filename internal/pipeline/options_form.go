package pipeline

import (
	"github.com/funvibe/funxy/internal/datum"
)

// applyOptionsForm inspects one top-level datum and, if it is an
// `(.options ((name value) ...) ...)` form, applies every recognized
// toggle to ctx.Options. Malformed clauses, non-boolean values and
// unknown option names are skipped without a diagnostic; the form
// parser does not inspect the clause list either.
func applyOptionsForm(ctx *Context, d datum.Datum) {
	raw := datum.Unwrap(d)
	items, proper := datum.ListToSlice(raw)
	if !proper || len(items) < 2 {
		return
	}
	head, ok := datum.Unwrap(items[0]).(*datum.Symbol)
	if !ok || head.Name != ".options" {
		return
	}
	clauses, ok := datum.ListToSlice(datum.Unwrap(items[1]))
	if !ok {
		return
	}
	for _, c := range clauses {
		pair, ok := datum.ListToSlice(datum.Unwrap(c))
		if !ok || len(pair) != 2 {
			continue
		}
		nameSym, ok := datum.Unwrap(pair[0]).(*datum.Symbol)
		if !ok {
			continue
		}
		boolVal, ok := datum.Unwrap(pair[1]).(datum.Bool)
		if !ok {
			continue
		}
		ctx.Options.Set(nameSym.Name, bool(boolVal))
	}
}
