package object

import "fmt"

// Iterator produces a sequence of values for a for loop.
type Iterator interface {
	Value

	// Next returns the next value in the sequence, or false when the
	// sequence is exhausted.
	Next() (Value, bool)
}

// IntIterator counts from 0 up to, but not including, a limit.
type IntIterator struct {
	limit   int64
	current int64
}

func (it *IntIterator) Type() Type { return ITERATOR }

func (it *IntIterator) Inspect() string {
	return fmt.Sprintf("iterator(0..%d)", it.limit)
}

func (it *IntIterator) Interface() interface{} { return nil }

func (it *IntIterator) Equals(other Value) bool {
	return it == other
}

func (it *IntIterator) Next() (Value, bool) {
	if it.current >= it.limit {
		return nil, false
	}
	value := NewInt(it.current)
	it.current++
	return value, true
}

// NewIterator returns an iterator over the given value. Iterating an
// int n yields 0 through n-1.
func NewIterator(value Value) (Iterator, error) {
	switch value := value.(type) {
	case *Int:
		return &IntIterator{limit: value.Value()}, nil
	default:
		return nil, fmt.Errorf("type error: %s is not iterable", value.Type())
	}
}
