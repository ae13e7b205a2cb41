package filter

import "fmt"

// Kind classifies filter compilation failures.
type Kind int

const (
	// ParseFailure marks filter text that can be interpreted neither as an
	// expression nor as a substring search (e.g. an unterminated string
	// literal).
	ParseFailure Kind = iota

	// UnknownColumn marks an expression referencing a column the dataset
	// does not have.
	UnknownColumn

	// TypeMismatch marks an expression applying an operator or aggregate to
	// a column type that does not support it.
	TypeMismatch
)

func (k Kind) String() string {
	switch k {
	case ParseFailure:
		return "parse failure"
	case UnknownColumn:
		return "unknown column"
	case TypeMismatch:
		return "type mismatch"
	}
	return "filter error"
}

// Error is a recoverable filter compilation error. It is shown next to the
// filter prompt; the previously active mask stays in effect.
type Error struct {
	Kind   Kind
	Expr   string
	Detail string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}
