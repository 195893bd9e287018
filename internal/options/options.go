// Package options carries the boolean toggles read from `.options` forms
// and consumed by the form parser, scope decorator, and semantic checker
// (section 6).
package options

// Options holds the toggles recognized in a `.options` form. The zero
// value is not the default configuration; use Default().
type Options struct {
	Checked             bool
	Debug               bool
	Optimize            bool
	AllowRedefinition   bool
	OptimisticInlining  bool
	PromoteOnOverflow   bool
}

// Default returns the baseline configuration used when a source has no
// `.options` form: checked arithmetic, redefinition disallowed, inlining
// and overflow promotion enabled.
func Default() Options {
	return Options{
		Checked:            true,
		Debug:              false,
		Optimize:           false,
		AllowRedefinition:  false,
		OptimisticInlining: true,
		PromoteOnOverflow:  true,
	}
}

// Set applies a single named boolean toggle; ok is false for unknown names.
func (o *Options) Set(name string, value bool) (ok bool) {
	switch name {
	case "checked":
		o.Checked = value
	case "debug":
		o.Debug = value
	case "optimize":
		o.Optimize = value
	case "allowRedefinition":
		o.AllowRedefinition = value
	case "optimisticInlining":
		o.OptimisticInlining = value
	case "promoteOnOverflow":
		o.PromoteOnOverflow = value
	default:
		return false
	}
	return true
}
