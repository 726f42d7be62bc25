package netlist

import (
	"errors"
	"fmt"
)

// ErrFormat is the category for malformed netlist text and for elements
// that cannot be written as a netlist record.
var ErrFormat = errors.New("netlist: format error")

// Format errors.
var (
	// ErrFieldCount is returned when a record does not have exactly five fields.
	ErrFieldCount = fmt.Errorf("%w: wrong field count", ErrFormat)

	// ErrCoordinate is returned for a coordinate pair that is not two integers.
	ErrCoordinate = fmt.Errorf("%w: invalid coordinate", ErrFormat)

	// ErrValue is returned for a value field that is not a number.
	ErrValue = fmt.Errorf("%w: invalid value", ErrFormat)

	// ErrUnknownCode is returned for a type code outside the code table.
	ErrUnknownCode = fmt.Errorf("%w: unknown type code", ErrFormat)
)
