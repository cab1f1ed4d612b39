package exchange

import "fmt"

// ArithmeticError marks a fatal condition raised by the crossing core:
// narrowing a 128-bit intermediate lost precision at a call site the
// algebraic argument in CrossWithoutThreshold's doc guarantees is safe, or a post-crossing
// invariant was violated. Either case means the branch table was fed an
// input outside the domain it was proven correct for, or contains a bug.
//
// Callers embedding this package choose how to surface ArithmeticError:
// letting the panic propagate to terminate the process, or recovering and
// reporting a distinguished fault. It is never returned as an ordinary
// error value, mirroring the "this should never happen" asserts of the
// reference implementation.
type ArithmeticError struct {
	Op  string
	Msg string
}

func (e *ArithmeticError) Error() string {
	return fmt.Sprintf("exchange: %s: %s", e.Op, e.Msg)
}

func throwArithmetic(op, format string, args ...interface{}) {
	panic(&ArithmeticError{Op: op, Msg: fmt.Sprintf(format, args...)})
}
