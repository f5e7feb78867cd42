package expr

import "errors"

// EvalError is returned when evaluating an expression fails. Expr is the
// representation of the subexpression that failed.
type EvalError struct {
	Expr string
	Err  error
}

func (e *EvalError) Error() string { return "cannot evaluate " + e.Expr + ": " + e.Err.Error() }

func (e *EvalError) Unwrap() error { return e.Err }

// AssignError is returned when assigning to an expression fails.
type AssignError struct {
	Expr string
	Err  error
}

func (e *AssignError) Error() string { return "cannot assign to " + e.Expr + ": " + e.Err.Error() }

func (e *AssignError) Unwrap() error { return e.Err }

// Errors wrapped by EvalError and AssignError.
var (
	ErrUndefinedName = errors.New("name is not defined")
	ErrNoContext     = errors.New("no context bound")
	ErrNotAssignable = errors.New("expression is not assignable")
)

// Wraps err in an *EvalError naming n, unless it already is one.
func evalError(n Node, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := err.(*EvalError); ok {
		return err
	}
	return &EvalError{n.String(), err}
}

func assignError(n Node, err error) error {
	if _, ok := err.(*AssignError); ok {
		return err
	}
	return &AssignError{n.String(), err}
}
