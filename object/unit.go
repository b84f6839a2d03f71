package object

// UnitValue is the type of the single unit value, returned by functions
// without a declared return type.
type UnitValue struct{}

func (u *UnitValue) Type() Type { return UNIT }

func (u *UnitValue) Inspect() string { return "()" }

func (u *UnitValue) Interface() interface{} { return nil }

func (u *UnitValue) Equals(other Value) bool {
	_, ok := other.(*UnitValue)
	return ok
}

// Unit is the sole unit value.
var Unit = &UnitValue{}
