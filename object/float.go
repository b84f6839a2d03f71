package object

import "strconv"

// Float is a 64-bit floating point value.
type Float struct {
	value float64
}

func (f *Float) Type() Type { return FLOAT }

func (f *Float) Inspect() string {
	return strconv.FormatFloat(f.value, 'g', -1, 64)
}

func (f *Float) Interface() interface{} { return f.value }

func (f *Float) Value() float64 { return f.value }

func (f *Float) Equals(other Value) bool {
	o, ok := other.(*Float)
	return ok && f.value == o.value
}

// NewFloat returns a Float value.
func NewFloat(value float64) *Float {
	return &Float{value: value}
}
