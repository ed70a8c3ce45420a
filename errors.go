package bpfelf

import "errors"

// Decode errors. Every sub-decode failure aborts the enclosing decode and is
// surfaced to the caller unchanged, there is no partial-success mode.
var (
	// ErrNonStandardElfHeader is returned when any ELF identification, type,
	// machine or version field falls outside the single supported profile.
	ErrNonStandardElfHeader = errors.New("non-standard ELF header")
	// ErrInvalidSegmentType is returned for a program header whose type tag
	// is not one of the defined segment types.
	ErrInvalidSegmentType = errors.New("invalid segment type")
	// ErrInvalidSectionType is returned for a section header whose type tag
	// is not one of the defined section types.
	ErrInvalidSectionType = errors.New("invalid section type")
	// ErrInvalidString is returned when a section name cannot be bounded
	// within the section-header string table.
	ErrInvalidString = errors.New("invalid string")
)
