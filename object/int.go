package object

import "strconv"

// Int is a 64-bit signed integer value.
type Int struct {
	value int64
}

func (i *Int) Type() Type { return INT }

func (i *Int) Inspect() string { return strconv.FormatInt(i.value, 10) }

func (i *Int) Interface() interface{} { return i.value }

func (i *Int) Value() int64 { return i.value }

func (i *Int) Equals(other Value) bool {
	o, ok := other.(*Int)
	return ok && i.value == o.value
}

// NewInt returns an Int value. Small integers share preallocated objects.
func NewInt(value int64) *Int {
	if value >= 0 && value < int64(len(smallInts)) {
		return smallInts[value]
	}
	return &Int{value: value}
}

var smallInts = func() [256]*Int {
	var ints [256]*Int
	for i := range ints {
		ints[i] = &Int{value: int64(i)}
	}
	return ints
}()
