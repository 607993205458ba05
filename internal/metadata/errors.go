package metadata

import "errors"

// Common metadata error types. Metadata errors describe inconsistent or
// incomplete field declarations; they are programmer errors, never retried.
var (
	// ErrInvalidMapping is returned when a field declaration carries none of
	// the column, custom-column, or relationship markers, or carries markers
	// that are mutually exclusive.
	ErrInvalidMapping = errors.New("invalid column mapping")

	// ErrNotAStruct is returned when metadata is requested for a non-struct type.
	ErrNotAStruct = errors.New("entity type must be a struct")

	// ErrNoIdentifier is returned when an entity type declares no identity column.
	ErrNoIdentifier = errors.New("entity type declares no identifier column")

	// ErrUnknownColumn is returned when a column name does not exist on the type.
	ErrUnknownColumn = errors.New("unknown column")

	// ErrUnknownCustomField is returned when a custom field id does not exist
	// on the type.
	ErrUnknownCustomField = errors.New("unknown custom field id")

	// ErrUnsupportedConversion is returned when a custom-column value cannot
	// be converted through its declared storage type.
	ErrUnsupportedConversion = errors.New("unsupported custom column conversion")
)

// IsInvalidMapping returns true if the error is ErrInvalidMapping.
func IsInvalidMapping(err error) bool {
	return errors.Is(err, ErrInvalidMapping)
}
