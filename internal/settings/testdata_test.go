package settings

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// sampleDocument is a trimmed Logi Options+ settings blob.
const sampleDocument = `{
  "analytics": {"enabled": false, "lastSent": 1712345678901},
  "profile_keys": ["profile_default", "profile_chrome"],
  "ever_connected_devices": {
    "version": 3,
    "devices": [
      {"connectionType": "BOLT", "deviceModel": "6b023_ext2", "deviceType": "MOUSE", "slotPrefix": "mx-master-3-2b034", "serial": "A1B2"},
      {"deviceModel": "b35b", "deviceType": "KEYBOARD", "slotPrefix": "mx-keys-b35b"},
      {"connectionType": null, "deviceModel": "virtual", "deviceType": "VIRTUAL", "slotPrefix": "virtual-0"}
    ]
  },
  "profile_default": {
    "name": "Default",
    "assignments": [
      {"slotId": "mx-master-3-2b034_c82", "card": {"id": "card_back", "macro": {"type": "KEYSTROKE", "keys": ["<", ">"]}}},
      {"slotId": "mx-keys-b35b_c199", "card": {"id": "card_emoji"}}
    ]
  },
  "migration_report": {
    "devices": [{"deviceName": "MX Master 3", "modelId": "6b023", "migrated": true}],
    "completedAt": "2024-03-01T10:00:00Z"
  },
  "profile_chrome": {"application": "com.google.Chrome", "assignments": []},
  "profile_orphan": {"assignments": [{"slotId": "x_y"}]},
  "ui": {"theme": "dark", "scale": 1.25, "recent": null}
}`

// assertJSONEqual fails the test when got and want are not structurally
// equal JSON documents.
func assertJSONEqual(t *testing.T, got, want []byte) {
	t.Helper()

	gotValue, err := decodeAny(got)
	if err != nil {
		t.Fatalf("decoding got: %v\n%s", err, got)
	}
	wantValue, err := decodeAny(want)
	if err != nil {
		t.Fatalf("decoding want: %v", err)
	}
	if diff := cmp.Diff(wantValue, gotValue); diff != "" {
		t.Errorf("documents differ (-want +got):\n%s", diff)
	}
}

// objectKeys returns the top-level keys of a JSON object in document order.
func objectKeys(t *testing.T, data []byte) []string {
	t.Helper()

	rest, err := decodeObject(data)
	if err != nil {
		t.Fatalf("decodeObject() error = %v", err)
	}
	return rest.Keys()
}

func mustDecode(t *testing.T, doc string) *Settings {
	t.Helper()

	s, err := Decode([]byte(doc))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	return s
}

func mustRemainder(t *testing.T, doc string) Remainder {
	t.Helper()

	if !json.Valid([]byte(doc)) {
		t.Fatalf("invalid JSON fixture: %s", doc)
	}
	rest, err := decodeObject([]byte(doc))
	if err != nil {
		t.Fatalf("decodeObject() error = %v", err)
	}
	return rest
}
