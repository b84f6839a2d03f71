// Package object defines the runtime values manipulated by the virtual
// machine. Primitive values are immutable. Struct values have reference
// semantics: every copy of a *Struct shares the same field storage.
package object

// Type of a runtime value.
type Type string

const (
	BOOL     Type = "bool"
	FLOAT    Type = "float"
	INT      Type = "int"
	ITERATOR Type = "iterator"
	STRING   Type = "string"
	STRUCT   Type = "struct"
	UNIT     Type = "unit"
)

// Value is the interface implemented by all runtime values.
type Value interface {

	// Type of the value.
	Type() Type

	// Inspect returns a string representation of the value.
	Inspect() string

	// Interface converts the value to its closest Go equivalent.
	Interface() interface{}

	// Equals reports whether the value equals the other value.
	Equals(other Value) bool
}
