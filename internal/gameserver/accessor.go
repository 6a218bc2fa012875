package gameserver

import "sync/atomic"

// The validator is constructed and injected at wiring time; this accessor
// only serves call sites that cannot take a dependency, such as packet
// handlers resolved by opcode table.
var defaultValidator atomic.Pointer[MovementValidator]

// SetDefaultValidator installs the process-wide validator instance.
func SetDefaultValidator(v *MovementValidator) {
	defaultValidator.Store(v)
}

// DefaultValidator returns the installed validator, or nil before wiring.
func DefaultValidator() *MovementValidator {
	return defaultValidator.Load()
}
