package param

import "errors"

// Errors reported during parameter setup and constraint resolution.
var (
	// ErrInvalidBound indicates a lower bound above an upper bound, or an
	// initial value outside the declared bounds.
	ErrInvalidBound = errors.New("param: invalid bound")

	// ErrDuplicateName indicates two parameters registered under one name.
	ErrDuplicateName = errors.New("param: duplicate parameter name")

	// ErrUnknownParameter indicates an expression referencing a parameter
	// name absent from the set.
	ErrUnknownParameter = errors.New("param: unknown parameter reference")

	// ErrCyclicConstraint indicates a dependency cycle between derived
	// parameter expressions.
	ErrCyclicConstraint = errors.New("param: cyclic constraint")

	// ErrRoleConflict indicates a parameter declared both fixed and derived.
	ErrRoleConflict = errors.New("param: parameter cannot be both fixed and derived")

	// ErrBadExpression indicates a constraint expression that does not parse.
	ErrBadExpression = errors.New("param: bad expression")

	// ErrVectorLength indicates a free-parameter vector of the wrong length.
	ErrVectorLength = errors.New("param: free vector length mismatch")
)
