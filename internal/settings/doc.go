// Package settings models the Logi Options+ settings document.
//
// The settings blob is a single JSON object owned by another application.
// This package types only the handful of fields logisettings works with and
// carries every other key through untouched, so that a load/modify/save
// cycle never drops or rewrites data it does not understand.
//
// # Partial Documents
//
// Every modelled object level pairs its typed fields with a Remainder: an
// insertion-ordered bag of raw JSON values for all keys that are not typed.
// Decoding removes typed keys from the bag; encoding writes typed fields first
// (in declaration order) followed by the remainder keys in their original order.
//
//	{"slotId": "dev1_c82", "cardId": "card_1", "extra": [1, 2]}
//	→ Assignment{SlotID: "dev1_c82", Rest: {cardId, extra}}
//
// # Profiles
//
// Profiles are not nested under a single key in the raw document. Instead the
// top-level "profile_keys" array names other top-level keys that hold profile
// bodies. Decode promotes those entries out of the remainder into
// Settings.Profiles; Encode demotes them back before serialising.
//
// # Key Operations
//
//   - Decode / Encode / EncodeIndent: bytes ↔ *Settings
//   - (*Settings).Devices: slot prefix → human readable device name
//   - (*Settings).TransferAssignments: move button bindings between devices
//
// Errors produced while decoding are *SchemaError values carrying the JSON
// path of the offending field:
//
//	var schemaErr *settings.SchemaError
//	if errors.As(err, &schemaErr) && errors.Is(err, settings.ErrMissingProfile) {
//	    fmt.Println("profile body missing:", schemaErr.Path)
//	}
package settings
