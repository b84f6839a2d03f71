// Package types defines the static type descriptors used by the pgs resolver
// and compiler. The type system is intentionally small: primitive kinds, the
// unit type, user-declared container types, and native function signatures.
package types

import "strings"

// Kind enumerates the categories of pgs types.
type Kind int

const (
	// Unit is the type of functions without a declared return type and of
	// statements used in expression position.
	Unit Kind = iota
	// Int is a 64-bit signed integer.
	Int
	// Float is a 64-bit floating point number.
	Float
	// String is an immutable text value.
	String
	// Bool is a boolean value.
	Bool
	// Container is a user-declared record type, identified by name.
	Container
	// Function is a script or native function signature.
	Function
)

// Type describes the static type of a declaration or expression. Container
// types carry the fully-qualified container name; all other kinds are
// singleton-like values.
type Type struct {
	Kind Kind

	// Name is the fully-qualified container name for Container kinds.
	Name string
}

// Type constants for the primitive kinds.
var (
	UnitType   = Type{Kind: Unit}
	IntType    = Type{Kind: Int}
	FloatType  = Type{Kind: Float}
	StringType = Type{Kind: String}
	BoolType   = Type{Kind: Bool}
)

// NamedType returns the type descriptor for a container with the given
// fully-qualified name.
func NamedType(name string) Type {
	return Type{Kind: Container, Name: name}
}

// Lookup maps a primitive type name appearing in source code to its type
// descriptor. The second return value is false for non-primitive names.
func Lookup(name string) (Type, bool) {
	switch name {
	case "int":
		return IntType, true
	case "float":
		return FloatType, true
	case "string":
		return StringType, true
	case "bool":
		return BoolType, true
	}
	return Type{}, false
}

// Equals returns true if the two types are identical.
func (t Type) Equals(other Type) bool {
	return t.Kind == other.Kind && t.Name == other.Name
}

// IsNumeric returns true for the int and float types.
func (t Type) IsNumeric() bool {
	return t.Kind == Int || t.Kind == Float
}

// String returns the source-level name of the type.
func (t Type) String() string {
	switch t.Kind {
	case Unit:
		return "unit"
	case Int:
		return "int"
	case Float:
		return "float"
	case String:
		return "string"
	case Bool:
		return "bool"
	case Container:
		return t.Name
	case Function:
		return "fn"
	default:
		return "invalid"
	}
}

// Signature describes the fixed arity and value kinds of a callable: the
// ordered parameter types and the result type. Both script functions and
// embedder-registered native functions are described by a Signature.
type Signature struct {
	Params []Type
	Result Type
}

// String returns a source-like rendering of the signature, e.g.
// "fn(int, float) ~ int".
func (s Signature) String() string {
	params := make([]string, len(s.Params))
	for i, p := range s.Params {
		params[i] = p.String()
	}
	out := "fn(" + strings.Join(params, ", ") + ")"
	if s.Result.Kind != Unit {
		out += " ~ " + s.Result.String()
	}
	return out
}

// Equals returns true if the two signatures have identical parameter and
// result types.
func (s Signature) Equals(other Signature) bool {
	if len(s.Params) != len(other.Params) {
		return false
	}
	for i, p := range s.Params {
		if !p.Equals(other.Params[i]) {
			return false
		}
	}
	return s.Result.Equals(other.Result)
}
