package reflectmeta

import (
	"errors"
	"fmt"
)

// Error types
var (
	// ErrInvalidTarget indicates a target that has no stable identity
	ErrInvalidTarget = errors.New("invalid metadata target")

	// ErrInvalidKey indicates a property or metadata key that is neither a string nor a symbol
	ErrInvalidKey = errors.New("invalid metadata key")

	// ErrInvalidTag indicates a `meta` struct tag that cannot be parsed
	ErrInvalidTag = errors.New("invalid meta struct tag")

	// ErrHookRejected indicates a BeforeDefine hook refused the definition
	ErrHookRejected = errors.New("metadata definition rejected by hook")
)

// MetadataError represents an error related to a metadata operation
type MetadataError struct {
	Op       string
	Property Key
	Key      Key
	Err      error
}

func (e *MetadataError) Error() string {
	return fmt.Sprintf("metadata operation %s failed for key %v on property %v: %v", e.Op, e.Key, e.Property, e.Err)
}

func (e *MetadataError) Unwrap() error {
	return e.Err
}
