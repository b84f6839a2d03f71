// Package op defines the bytecode operations emitted by the compiler and
// executed by the virtual machine.
package op

// Code is an integer used to identify an operation in compiled code.
type Code uint16

const (
	Nop Code = iota
	BinaryOp
	Call
	CallNative
	CompareOp
	False
	ForIter
	GetIter
	Halt
	JumpBackward
	JumpForward
	LoadConst
	LoadFast
	LoadField
	NewStruct
	Nil
	PopJumpForwardIfFalse
	PopTop
	ReturnValue
	StoreFast
	StoreField
	True
	UnaryNegative
	UnaryNot
)

// BinaryOpType describes a binary operation on the two topmost stack values.
type BinaryOpType uint16

const (
	Add BinaryOpType = iota
	Subtract
	Multiply
	Divide
)

func (t BinaryOpType) String() string {
	switch t {
	case Add:
		return "+"
	case Subtract:
		return "-"
	case Multiply:
		return "*"
	case Divide:
		return "/"
	default:
		return "?"
	}
}

// CompareOpType describes a comparison of the two topmost stack values.
type CompareOpType uint16

const (
	LessThan CompareOpType = iota
	LessThanOrEqual
	GreaterThan
	GreaterThanOrEqual
	Equal
	NotEqual
)

func (t CompareOpType) String() string {
	switch t {
	case LessThan:
		return "<"
	case LessThanOrEqual:
		return "<="
	case GreaterThan:
		return ">"
	case GreaterThanOrEqual:
		return ">="
	case Equal:
		return "=="
	case NotEqual:
		return "!="
	default:
		return "?"
	}
}

// Info contains information about a bytecode operation.
type Info struct {
	Code         Code
	Name         string
	OperandCount int
}

var infos = make([]Info, 256)

func init() {
	type opInfo struct {
		op       Code
		name     string
		operands int
	}
	ops := []opInfo{
		{Nop, "NOP", 0},
		{BinaryOp, "BINARY_OP", 1},
		{Call, "CALL", 2},
		{CallNative, "CALL_NATIVE", 2},
		{CompareOp, "COMPARE_OP", 1},
		{False, "FALSE", 0},
		{ForIter, "FOR_ITER", 1},
		{GetIter, "GET_ITER", 0},
		{Halt, "HALT", 0},
		{JumpBackward, "JUMP_BACKWARD", 1},
		{JumpForward, "JUMP_FORWARD", 1},
		{LoadConst, "LOAD_CONST", 1},
		{LoadFast, "LOAD_FAST", 1},
		{LoadField, "LOAD_FIELD", 1},
		{NewStruct, "NEW_STRUCT", 2},
		{Nil, "NIL", 0},
		{PopJumpForwardIfFalse, "POP_JUMP_FORWARD_IF_FALSE", 1},
		{PopTop, "POP_TOP", 0},
		{ReturnValue, "RETURN_VALUE", 0},
		{StoreFast, "STORE_FAST", 1},
		{StoreField, "STORE_FIELD", 1},
		{True, "TRUE", 0},
		{UnaryNegative, "UNARY_NEGATIVE", 0},
		{UnaryNot, "UNARY_NOT", 0},
	}
	for _, o := range ops {
		infos[o.op] = Info{
			Code:         o.op,
			Name:         o.name,
			OperandCount: o.operands,
		}
	}
}

// GetInfo returns information about the given op code.
func GetInfo(op Code) Info {
	return infos[op]
}
