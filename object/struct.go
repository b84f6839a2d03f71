package object

import (
	"fmt"
	"strings"
)

// Struct is an instance of a container type. Fields are stored by index
// in declaration order. A *Struct is shared, not copied, when passed to
// a call or stored in another struct's field, so mutations through one
// reference are visible through all others. The Go garbage collector
// reclaims the allocation when the last reference goes out of scope.
type Struct struct {
	typeName string
	names    []string
	fields   []Value
}

func (s *Struct) Type() Type { return STRUCT }

func (s *Struct) TypeName() string { return s.typeName }

func (s *Struct) Inspect() string {
	var out strings.Builder
	out.WriteString(s.typeName)
	out.WriteString(" { ")
	for i, name := range s.names {
		out.WriteString(name)
		out.WriteString(": ")
		out.WriteString(s.fields[i].Inspect())
		out.WriteString("; ")
	}
	out.WriteString("}")
	return out.String()
}

func (s *Struct) Interface() interface{} {
	m := make(map[string]interface{}, len(s.names))
	for i, name := range s.names {
		m[name] = s.fields[i].Interface()
	}
	return m
}

// Equals is identity comparison. Two struct references are equal only if
// they point at the same allocation.
func (s *Struct) Equals(other Value) bool {
	return s == other
}

// Get returns the field at the given index.
func (s *Struct) Get(index int) (Value, error) {
	if index < 0 || index >= len(s.fields) {
		return nil, fmt.Errorf("undefined field index %d on %s", index, s.typeName)
	}
	return s.fields[index], nil
}

// Set stores a value into the field at the given index.
func (s *Struct) Set(index int, value Value) error {
	if index < 0 || index >= len(s.fields) {
		return fmt.Errorf("undefined field index %d on %s", index, s.typeName)
	}
	s.fields[index] = value
	return nil
}

// FieldNames returns the field names in declaration order.
func (s *Struct) FieldNames() []string { return s.names }

// NewStruct returns a struct instance with the given field values, which
// must be in declaration order.
func NewStruct(typeName string, names []string, fields []Value) *Struct {
	return &Struct{typeName: typeName, names: names, fields: fields}
}
