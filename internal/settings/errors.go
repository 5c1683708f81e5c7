package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Domain errors for the settings package.
//
// Decode failures are wrapped in a *SchemaError; use errors.Is to check the
// underlying cause:
//
//	if errors.Is(err, settings.ErrMissingField) {
//	    // handle missing field
//	}
var (
	// ErrMissingField is returned when a required field is absent.
	ErrMissingField = errors.New("settings: missing field")

	// ErrWrongShape is returned when a field holds an incompatible JSON type.
	ErrWrongShape = errors.New("settings: wrong shape")

	// ErrMissingProfile is returned when a name in profile_keys has no body.
	ErrMissingProfile = errors.New("settings: missing profile")

	// ErrProfileCollision is returned when a profile name shadows a typed top-level field.
	ErrProfileCollision = errors.New("settings: profile name collides with settings field")

	// ErrInvalidDeviceID is returned when a transfer source or target can never match a slot.
	ErrInvalidDeviceID = errors.New("settings: invalid device identifier")
)

// SchemaError describes a structural decoding failure at a JSON path.
//
// Path uses dotted field names and bracketed indices, for example
// "ever_connected_devices.devices[3].slotPrefix". An empty Path refers to
// the document root.
type SchemaError struct {
	Path string
	Err  error
}

func (e *SchemaError) Error() string {
	if e.Path == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Err.Error())
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}

// wrapSchemaError prefixes path onto err, converting non-schema decode
// failures into ErrWrongShape.
func wrapSchemaError(path string, err error) error {
	var schemaErr *SchemaError
	if errors.As(err, &schemaErr) {
		return &SchemaError{Path: joinPath(path, schemaErr.Path), Err: schemaErr.Err}
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return &SchemaError{
			Path: path,
			Err:  fmt.Errorf("%w: expected %s, got %s", ErrWrongShape, typeErr.Type, typeErr.Value),
		}
	}

	return &SchemaError{Path: path, Err: fmt.Errorf("%w: %v", ErrWrongShape, err)}
}

func joinPath(parent, child string) string {
	switch {
	case child == "":
		return parent
	case parent == "":
		return child
	case strings.HasPrefix(child, "["):
		return parent + child
	default:
		return parent + "." + child
	}
}
