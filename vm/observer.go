package vm

import "github.com/delbato/pragmatic-script/bytecode"

// Observer receives a callback before every instruction, call and
// return. Returning false from OnStep or OnCall makes the machine stop
// with a runtime error, which is how an embedder implements instruction
// budgets or cooperative cancellation without touching the core loop.
type Observer interface {

	// OnStep is invoked before each instruction, with the active chunk
	// and the instruction's offset within it.
	OnStep(chunk *bytecode.Chunk, ip int) bool

	// OnCall is invoked before a script function is activated.
	OnCall(chunk *bytecode.Chunk) bool

	// OnReturn is invoked after a script function returns.
	OnReturn(chunk *bytecode.Chunk)
}

// StepLimiter is an Observer that stops execution after a fixed number
// of instructions.
type StepLimiter struct {
	remaining int64
}

// NewStepLimiter returns an Observer allowing at most limit
// instructions.
func NewStepLimiter(limit int64) *StepLimiter {
	return &StepLimiter{remaining: limit}
}

func (l *StepLimiter) OnStep(chunk *bytecode.Chunk, ip int) bool {
	l.remaining--
	return l.remaining >= 0
}

func (l *StepLimiter) OnCall(chunk *bytecode.Chunk) bool { return true }

func (l *StepLimiter) OnReturn(chunk *bytecode.Chunk) {}
