// Package types implements the type registry (component F): a closed,
// read-only mapping from built-in type names to type descriptors, used
// by the form parser to resolve `.type` annotations.
package types

// Descriptor is an opaque handle for one registered type. Two descriptors
// for the same name compare equal.
type Descriptor struct {
	name        string
	isValueType bool
}

// Name returns the built-in name the descriptor was registered under.
func (d *Descriptor) Name() string { return d.name }

// IsValueType reports whether the type is a value type (numeric/char/bool)
// as opposed to a reference type (string/list/function/object).
func (d *Descriptor) IsValueType() bool { return d.isValueType }

// ArrayType is the descriptor synthesized by MakeArrayType for a given
// element descriptor; arrays are always reference types.
type ArrayType struct {
	Element *Descriptor
}

func (a *ArrayType) Name() string { return a.Element.Name() + "[]" }

// Registry is the closed, read-only (section 5) set of built-in types.
// The zero value is not usable; construct one with New.
type Registry struct {
	byName map[string]*Descriptor
}

// builtinValueTypes and builtinRefTypes together form the closed
// built-in set named in the specification.
var builtinValueTypes = map[string]bool{
	"bool": true, "byte": true, "sbyte": true, "short": true, "ushort": true,
	"int": true, "uint": true, "long": true, "ulong": true,
	"float": true, "double": true, "char": true,
	"integer": true, "complex": true,
}

var builtinRefTypes = map[string]bool{
	"string": true, "list": true, "function": true, "object": true,
}

// New builds the registry, populated once at process start. Extension
// beyond this closed set is out of scope; a hosting component that needs
// user-defined types builds its own layer on top.
func New() *Registry {
	r := &Registry{byName: make(map[string]*Descriptor)}
	for name := range builtinValueTypes {
		r.byName[name] = &Descriptor{name: name, isValueType: true}
	}
	for name := range builtinRefTypes {
		r.byName[name] = &Descriptor{name: name, isValueType: false}
	}
	return r
}

// Lookup resolves a type name to its descriptor. ok is false for any name
// outside the closed built-in set.
func (r *Registry) Lookup(name string) (d *Descriptor, ok bool) {
	d, ok = r.byName[name]
	return d, ok
}

// MakeArrayType builds an array-of-element descriptor. Arrays are not
// part of the closed built-in name set; they exist only as a derived
// descriptor.
func (r *Registry) MakeArrayType(elem *Descriptor) *ArrayType {
	return &ArrayType{Element: elem}
}

// CommonBaseType returns the narrowest descriptor all of descs share, or
// nil if descs is empty. Mixed value/reference types have no common base
// in this closed hierarchy other than "object", which is returned when at
// least one reference type is present alongside others.
func (r *Registry) CommonBaseType(descs []*Descriptor) *Descriptor {
	if len(descs) == 0 {
		return nil
	}
	first := descs[0]
	same := true
	for _, d := range descs[1:] {
		if d != first {
			same = false
			break
		}
	}
	if same {
		return first
	}
	for _, d := range descs {
		if !d.isValueType {
			obj, _ := r.Lookup("object")
			return obj
		}
	}
	obj, _ := r.Lookup("object")
	return obj
}

// String implements fmt.Stringer for diagnostics.
func (d *Descriptor) String() string {
	if d == nil {
		return "<nil type>"
	}
	return d.name
}
