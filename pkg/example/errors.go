package example

import (
	"errors"
	"fmt"
)

var (
	ErrDecode         = errors.New("malformed example")
	ErrEmptyFeature   = errors.New("feature has no value list")
	ErrProjectionMiss = errors.New("projection miss")
)

// Feature groups, as reported by ProjectionError.
const (
	GroupFeatures     = "features"
	GroupContext      = "context"
	GroupFeatureLists = "feature_lists"
)

// DecodeError reports malformed message bytes. It matches ErrDecode.
type DecodeError struct {
	Message string // message being decoded when the failure occurred
	Err     error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: decode %s: %v", ErrDecode, e.Message, e.Err)
}

func (e *DecodeError) Is(target error) bool {
	return target == ErrDecode
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// ProjectionError reports a requested key, or a whole group, that is absent
// from a record. Key is empty when the group itself is missing.
type ProjectionError struct {
	Group string
	Key   string
}

func (e *ProjectionError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s: group %q not present in record", ErrProjectionMiss, e.Group)
	}
	return fmt.Sprintf("%s: key %q not present in %s", ErrProjectionMiss, e.Key, e.Group)
}

func (e *ProjectionError) Unwrap() error {
	return ErrProjectionMiss
}

func decodeError(message string, err error) error {
	return &DecodeError{Message: message, Err: err}
}

func emptyFeature(key string) error {
	return fmt.Errorf("%w: key %q", ErrEmptyFeature, key)
}

func emptyListFeature(key string, index int) error {
	return fmt.Errorf("%w: key %q index %d", ErrEmptyFeature, key, index)
}
