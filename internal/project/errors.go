package project

import "errors"

var (
	// ErrProjectNotFound is returned when no project has the given name.
	ErrProjectNotFound = errors.New("project not found")

	// ErrProjectExists is returned when a rename targets a name already in use.
	ErrProjectExists = errors.New("project already exists")

	// ErrInvalidName is returned for names that fail ValidateName.
	ErrInvalidName = errors.New("invalid project name")
)
