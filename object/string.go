package object

import "strconv"

// String is an immutable string value.
type String struct {
	value string
}

func (s *String) Type() Type { return STRING }

func (s *String) Inspect() string { return strconv.Quote(s.value) }

func (s *String) Interface() interface{} { return s.value }

func (s *String) Value() string { return s.value }

func (s *String) Equals(other Value) bool {
	o, ok := other.(*String)
	return ok && s.value == o.value
}

// NewString returns a String value.
func NewString(value string) *String {
	return &String{value: value}
}
