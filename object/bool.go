package object

// Bool is a boolean value. Only the two singletons True and False exist.
type Bool struct {
	value bool
}

func (b *Bool) Type() Type { return BOOL }

func (b *Bool) Inspect() string {
	if b.value {
		return "true"
	}
	return "false"
}

func (b *Bool) Interface() interface{} { return b.value }

func (b *Bool) Value() bool { return b.value }

func (b *Bool) Equals(other Value) bool {
	return b == other
}

var (
	True  = &Bool{value: true}
	False = &Bool{value: false}
)

// NewBool returns the singleton for the given boolean.
func NewBool(value bool) *Bool {
	if value {
		return True
	}
	return False
}
