package model

import "errors"

var (
	// ErrOutOfRange is returned when a row or column index is outside the
	// dataset bounds. Navigation clamping keeps this unreachable in normal
	// operation; seeing it indicates a clamp-logic bug.
	ErrOutOfRange = errors.New("index out of range")

	// ErrUnknownColumn is returned when a column name does not exist in the
	// dataset schema.
	ErrUnknownColumn = errors.New("unknown column")

	// ErrNoData is returned when a file has no readable leaf columns.
	ErrNoData = errors.New("file contains no readable columns")
)
