package op

import (
	"testing"

	"github.com/deepnoodle-ai/wonton/assert"
)

func TestGetInfo(t *testing.T) {
	info := GetInfo(LoadConst)
	assert.Equal(t, LoadConst, info.Code)
	assert.Equal(t, "LOAD_CONST", info.Name)
	assert.Equal(t, 1, info.OperandCount)

	info = GetInfo(CallNative)
	assert.Equal(t, "CALL_NATIVE", info.Name)
	assert.Equal(t, 2, info.OperandCount)

	info = GetInfo(Halt)
	assert.Equal(t, "HALT", info.Name)
	assert.Equal(t, 0, info.OperandCount)
}

func TestOperatorStrings(t *testing.T) {
	assert.Equal(t, "+", Add.String())
	assert.Equal(t, "/", Divide.String())
	assert.Equal(t, "<=", LessThanOrEqual.String())
	assert.Equal(t, "!=", NotEqual.String())
}
