package settings

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
)

// typedTopLevelFields are the top-level keys a profile name may not use.
var typedTopLevelFields = map[string]struct{}{
	fieldProfileKeys:          {},
	fieldEverConnectedDevices: {},
	fieldMigrationReport:      {},
}

// Decode parses a raw settings payload.
//
// Parsing is all or nothing: on error no partially decoded document is
// returned. Structural problems are reported as *SchemaError.
func Decode(data []byte) (*Settings, error) {
	var s Settings
	if err := json.Unmarshal(data, &s); err != nil {
		var schemaErr *SchemaError
		if errors.As(err, &schemaErr) {
			return nil, err
		}
		return nil, fmt.Errorf("parsing settings: %w", err)
	}
	return &s, nil
}

// Encode serialises s in compact form.
func Encode(s *Settings) ([]byte, error) {
	data, err := marshalJSON(s)
	if err != nil {
		return nil, fmt.Errorf("encoding settings: %w", err)
	}
	return data, nil
}

// EncodeIndent serialises s with two-space indentation.
func EncodeIndent(s *Settings) ([]byte, error) {
	data, err := Encode(s)
	if err != nil {
		return nil, err
	}
	return Indent(data)
}

// Indent re-indents a JSON payload with two spaces, keeping key order.
func Indent(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// promoteProfiles moves the body of every profile named in keys out of rest
// and decodes it. Keys not listed are left in rest even if they look like
// profiles.
func promoteProfiles(rest *Remainder, keys []string) (map[string]Profile, error) {
	profiles := make(map[string]Profile, len(keys))
	for _, name := range keys {
		raw, ok := rest.Get(name)
		if !ok {
			return nil, &SchemaError{Path: name, Err: ErrMissingProfile}
		}

		var profile Profile
		if err := json.Unmarshal(raw, &profile); err != nil {
			return nil, wrapSchemaError(name, err)
		}
		rest.Delete(name)
		profiles[name] = profile
	}
	return profiles, nil
}

// demoteProfiles returns a copy of rest with every profile encoded back under
// its name. Profiles are written in keys order; profiles missing from keys
// follow in name order.
func demoteProfiles(rest Remainder, profiles map[string]Profile, keys []string) (Remainder, error) {
	out := rest.Clone()

	names := make([]string, 0, len(profiles))
	listed := make(map[string]struct{}, len(keys))
	for _, name := range keys {
		listed[name] = struct{}{}
		if _, ok := profiles[name]; ok {
			names = append(names, name)
			continue
		}
		if _, ok := rest.Get(name); !ok {
			return Remainder{}, &SchemaError{Path: name, Err: ErrMissingProfile}
		}
	}

	var unlisted []string
	for name := range profiles {
		if _, ok := listed[name]; !ok {
			unlisted = append(unlisted, name)
		}
	}
	sort.Strings(unlisted)
	names = append(names, unlisted...)

	for _, name := range names {
		if _, clash := typedTopLevelFields[name]; clash {
			return Remainder{}, &SchemaError{Path: name, Err: ErrProfileCollision}
		}
		if err := out.Set(name, profiles[name]); err != nil {
			return Remainder{}, err
		}
	}
	return out, nil
}
