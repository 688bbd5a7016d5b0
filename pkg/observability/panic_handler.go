package observability

import (
	"runtime/debug"
)

// RecoverPanic recovers from a panic and logs it with the panic value,
// the stack trace, and the caller-supplied context. Meant for background
// goroutines where a panic would otherwise take the process down:
//
//	defer observability.RecoverPanic(logger, "db stats collector")
//
// The panic is not re-raised.
func RecoverPanic(logger *Logger, context string) {
	if r := recover(); r != nil {
		logger.WithField("panic", r).
			WithField("stack", string(debug.Stack())).
			WithField("context", context).
			Error("PANIC recovered")
	}
}
