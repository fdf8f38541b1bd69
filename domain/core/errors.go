package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Input errors
	ErrMissingColumn     = errors.New("required column missing")
	ErrEmptyTable        = errors.New("table has no data rows")
	ErrUnsupportedFormat = errors.New("unsupported file format")
)

// NewMissingColumnError reports a required column absent from a named table.
func NewMissingColumnError(table, column string) error {
	return fmt.Errorf("%w: %q in %s table", ErrMissingColumn, column, table)
}

// NewUnsupportedFormatError reports a file extension the readers cannot handle.
func NewUnsupportedFormatError(ext string) error {
	return fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
}

// IsMissingColumnError checks whether err stems from an absent required column
func IsMissingColumnError(err error) bool {
	return errors.Is(err, ErrMissingColumn)
}

// IsInputError reports errors caused by the shape of the uploaded files.
func IsInputError(err error) bool {
	return errors.Is(err, ErrMissingColumn) ||
		errors.Is(err, ErrEmptyTable) ||
		errors.Is(err, ErrUnsupportedFormat)
}
