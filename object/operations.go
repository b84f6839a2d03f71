package object

import (
	"fmt"

	"github.com/delbato/pragmatic-script/op"
)

// BinaryOp evaluates an arithmetic operation on two values of the same
// numeric type. String concatenation is supported for +. Integer
// division by zero is an error. Float division follows IEEE 754.
func BinaryOp(opType op.BinaryOpType, a, b Value) (Value, error) {
	switch a := a.(type) {
	case *Int:
		if b, ok := b.(*Int); ok {
			return intBinaryOp(opType, a.value, b.value)
		}
	case *Float:
		if b, ok := b.(*Float); ok {
			return floatBinaryOp(opType, a.value, b.value)
		}
	case *String:
		if b, ok := b.(*String); ok && opType == op.Add {
			return NewString(a.value + b.value), nil
		}
	}
	return nil, fmt.Errorf("type error: unsupported operation %s %s %s",
		a.Type(), opType, b.Type())
}

func intBinaryOp(opType op.BinaryOpType, a, b int64) (Value, error) {
	switch opType {
	case op.Add:
		return NewInt(a + b), nil
	case op.Subtract:
		return NewInt(a - b), nil
	case op.Multiply:
		return NewInt(a * b), nil
	case op.Divide:
		if b == 0 {
			return nil, fmt.Errorf("division by zero")
		}
		return NewInt(a / b), nil
	}
	return nil, fmt.Errorf("unknown binary operation %d", opType)
}

func floatBinaryOp(opType op.BinaryOpType, a, b float64) (Value, error) {
	switch opType {
	case op.Add:
		return NewFloat(a + b), nil
	case op.Subtract:
		return NewFloat(a - b), nil
	case op.Multiply:
		return NewFloat(a * b), nil
	case op.Divide:
		return NewFloat(a / b), nil
	}
	return nil, fmt.Errorf("unknown binary operation %d", opType)
}

// Compare evaluates a comparison of two values. Equality is defined for
// any pair of values of the same type. Ordering is defined for ints,
// floats and strings.
func Compare(opType op.CompareOpType, a, b Value) (Value, error) {
	switch opType {
	case op.Equal:
		return NewBool(a.Equals(b)), nil
	case op.NotEqual:
		return NewBool(!a.Equals(b)), nil
	}
	switch a := a.(type) {
	case *Int:
		if b, ok := b.(*Int); ok {
			return orderedCompare(opType, compareInt64(a.value, b.value))
		}
	case *Float:
		if b, ok := b.(*Float); ok {
			return orderedCompare(opType, compareFloat64(a.value, b.value))
		}
	case *String:
		if b, ok := b.(*String); ok {
			return orderedCompare(opType, compareString(a.value, b.value))
		}
	}
	return nil, fmt.Errorf("type error: cannot compare %s and %s",
		a.Type(), b.Type())
}

func orderedCompare(opType op.CompareOpType, cmp int) (Value, error) {
	switch opType {
	case op.LessThan:
		return NewBool(cmp < 0), nil
	case op.LessThanOrEqual:
		return NewBool(cmp <= 0), nil
	case op.GreaterThan:
		return NewBool(cmp > 0), nil
	case op.GreaterThanOrEqual:
		return NewBool(cmp >= 0), nil
	}
	return nil, fmt.Errorf("unknown comparison operation %d", opType)
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func compareFloat64(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func compareString(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// Negate returns the arithmetic negation of a numeric value.
func Negate(v Value) (Value, error) {
	switch v := v.(type) {
	case *Int:
		return NewInt(-v.value), nil
	case *Float:
		return NewFloat(-v.value), nil
	}
	return nil, fmt.Errorf("type error: cannot negate %s", v.Type())
}

// Not returns the logical negation of a boolean value.
func Not(v Value) (Value, error) {
	b, ok := v.(*Bool)
	if !ok {
		return nil, fmt.Errorf("type error: cannot apply ! to %s", v.Type())
	}
	return NewBool(!b.value), nil
}

// IsTruthy reports whether a condition value is the boolean true.
func IsTruthy(v Value) (bool, error) {
	b, ok := v.(*Bool)
	if !ok {
		return false, fmt.Errorf("type error: condition is %s, not bool", v.Type())
	}
	return b.value, nil
}
