package xstate

import "fmt"

// UsageError is panicked for programmer mistakes: send before start with
// deferEvents=false, and sendTo/forward addressing a missing child. (The
// clock package's Simulated clock panics with its own plain error when
// moved backward.)
type UsageError struct {
	Op  string
	Msg string
}

func (e *UsageError) Error() string {
	return fmt.Sprintf("xstate: %s: %s", e.Op, e.Msg)
}

func panicUsage(op, format string, args ...any) {
	panic(&UsageError{Op: op, Msg: fmt.Sprintf(format, args...)})
}

// reportUnhandledExceptionOnInvocation logs the original and current error
// from a failed invocation, deduplicating when they carry the same message.
func (s *Service) reportUnhandledExceptionOnInvocation(original, current error) {
	if original != nil && current != nil && original.Error() == current.Error() {
		s.logger.Log("xstate.unhandled_exception", current.Error())
		return
	}
	msg := fmt.Sprintf("current=%v", current)
	if original != nil {
		msg += fmt.Sprintf(" original=%v", original)
	}
	s.logger.Log("xstate.unhandled_exception", msg)
}
