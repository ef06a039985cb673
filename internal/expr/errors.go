package expr

import (
	"errors"
	"fmt"
)

// Domain errors for evaluation.
var (
	// ErrUndefinedSymbol indicates a symbol with no binding and no built-in constant.
	ErrUndefinedSymbol = errors.New("expr: undefined symbol")

	// ErrDivisionByZero indicates a reciprocal of an exact zero.
	ErrDivisionByZero = errors.New("expr: division by zero")

	// ErrNonReal indicates a result outside the reals (sqrt(-1), log(-2), ...).
	ErrNonReal = errors.New("expr: non-real result")

	// ErrUnknownFunction indicates a call to a function the kernel does not know.
	ErrUnknownFunction = errors.New("expr: unknown function")
)

// SyntaxError reports a parse failure with the byte offset it occurred at.
type SyntaxError struct {
	Pos int
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("expr: syntax error at position %d: %s", e.Pos+1, e.Msg)
}
