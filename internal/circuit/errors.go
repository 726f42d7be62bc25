package circuit

import (
	"errors"
	"fmt"
)

// Error categories for the circuit package.
//
// Specific errors wrap their category, so callers can match either:
//
//	if errors.Is(err, circuit.ErrValidation) {
//	    // any shape, property, label or identity failure
//	}
//	if errors.Is(err, circuit.ErrDuplicateID) {
//	    // only the duplicate id case
//	}
var (
	// ErrValidation is the category for element shape, property, label and identity failures.
	ErrValidation = errors.New("circuit: validation failed")

	// ErrLookup is the category for unknown element types and missing elements.
	ErrLookup = errors.New("circuit: lookup failed")

	// ErrReentrantEmit is returned when a change handler triggers another
	// notification while a dispatch is still running.
	ErrReentrantEmit = errors.New("circuit: re-entrant change notification")
)

// Validation errors.
var (
	// ErrInvalidNodes is returned when an element has the wrong terminal count
	// or a node position is not a finite number.
	ErrInvalidNodes = fmt.Errorf("%w: invalid nodes", ErrValidation)

	// ErrInvalidProperty is returned for undeclared property names or non-finite values.
	ErrInvalidProperty = fmt.Errorf("%w: invalid property", ErrValidation)

	// ErrInvalidLabel is returned when label text is empty, too long or contains
	// record separators.
	ErrInvalidLabel = fmt.Errorf("%w: invalid label", ErrValidation)

	// ErrDuplicateID is returned when adding an element whose id is already present.
	ErrDuplicateID = fmt.Errorf("%w: duplicate element id", ErrValidation)

	// ErrInvalidElement is returned for nil elements or snapshot entries without an id.
	ErrInvalidElement = fmt.Errorf("%w: invalid element", ErrValidation)
)

// Lookup errors.
var (
	// ErrUnknownType is returned when no factory is registered for an element type.
	ErrUnknownType = fmt.Errorf("%w: unknown element type", ErrLookup)

	// ErrElementNotFound is returned by operations that require an existing element.
	// DeleteElement never returns it.
	ErrElementNotFound = fmt.Errorf("%w: element not found", ErrLookup)
)
