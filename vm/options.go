package vm

import "github.com/delbato/pragmatic-script/native"

// Option is a configuration function for a VM.
type Option func(*VM)

// WithNatives supplies the registry of host functions the program was
// compiled against. Required if the program imports any natives.
func WithNatives(registry *native.Registry) Option {
	return func(vm *VM) {
		vm.registry = registry
	}
}

// WithObserver installs an execution observer.
func WithObserver(observer Observer) Option {
	return func(vm *VM) {
		vm.observer = observer
	}
}
