package settings

// JSON field names of the modelled settings structures.
const (
	fieldProfileKeys          = "profile_keys"
	fieldEverConnectedDevices = "ever_connected_devices"
	fieldMigrationReport      = "migration_report"
	fieldDevices              = "devices"
	fieldConnectionType       = "connectionType"
	fieldDeviceModel          = "deviceModel"
	fieldDeviceType           = "deviceType"
	fieldSlotPrefix           = "slotPrefix"
	fieldDeviceName           = "deviceName"
	fieldModelID              = "modelId"
	fieldAssignments          = "assignments"
	fieldSlotID               = "slotId"
)

// Settings is the top-level settings document.
//
// ProfileKeys is authoritative: it lists the profile names in save order and
// every name must have a body in Profiles. Rest holds all other top-level
// keys; profile bodies are not in Rest while the document is decoded.
type Settings struct {
	ProfileKeys          []string
	Profiles             map[string]Profile
	EverConnectedDevices DeviceHistory
	MigrationReport      MigrationReport
	Rest                 Remainder
}

// UnmarshalJSON decodes the typed fields and promotes the profile bodies
// named by profile_keys out of the remainder.
func (s *Settings) UnmarshalJSON(data []byte) error {
	rest, err := decodeObject(data)
	if err != nil {
		return err
	}

	var decoded Settings
	if err := takeList(&rest, fieldProfileKeys, kindString, &decoded.ProfileKeys); err != nil {
		return err
	}
	if err := rest.take(fieldEverConnectedDevices, kindObject, &decoded.EverConnectedDevices); err != nil {
		return err
	}
	if err := rest.take(fieldMigrationReport, kindObject, &decoded.MigrationReport); err != nil {
		return err
	}

	profiles, err := promoteProfiles(&rest, decoded.ProfileKeys)
	if err != nil {
		return err
	}
	decoded.Profiles = profiles
	decoded.Rest = rest

	*s = decoded
	return nil
}

// MarshalJSON demotes the profiles back into top-level keys and encodes the
// whole document.
func (s Settings) MarshalJSON() ([]byte, error) {
	rest, err := demoteProfiles(s.Rest, s.Profiles, s.ProfileKeys)
	if err != nil {
		return nil, err
	}

	profileKeys := s.ProfileKeys
	if profileKeys == nil {
		profileKeys = []string{}
	}

	return rest.encode(
		field{fieldProfileKeys, profileKeys},
		field{fieldEverConnectedDevices, s.EverConnectedDevices},
		field{fieldMigrationReport, s.MigrationReport},
	)
}

// DeviceHistory is the ever_connected_devices section.
type DeviceHistory struct {
	Devices []ConnectedDevice
	Rest    Remainder
}

func (h *DeviceHistory) UnmarshalJSON(data []byte) error {
	rest, err := decodeObject(data)
	if err != nil {
		return err
	}
	var decoded DeviceHistory
	if err := takeList(&rest, fieldDevices, kindObject, &decoded.Devices); err != nil {
		return err
	}
	decoded.Rest = rest
	*h = decoded
	return nil
}

func (h DeviceHistory) MarshalJSON() ([]byte, error) {
	return h.Rest.encode(field{fieldDevices, nonNil(h.Devices)})
}

// ConnectedDevice is one device the application has seen.
//
// SlotPrefix identifies the physical slot the device occupies and is the
// device half of every assignment slot ID bound to it.
type ConnectedDevice struct {
	// ConnectionType is nil when the document has no string value for it.
	ConnectionType *string
	DeviceModel    string
	DeviceType     string
	SlotPrefix     string
	Rest           Remainder
}

func (d *ConnectedDevice) UnmarshalJSON(data []byte) error {
	rest, err := decodeObject(data)
	if err != nil {
		return err
	}

	var decoded ConnectedDevice
	if decoded.ConnectionType, err = rest.takeOptionalString(fieldConnectionType); err != nil {
		return err
	}
	if err := rest.take(fieldDeviceModel, kindString, &decoded.DeviceModel); err != nil {
		return err
	}
	if err := rest.take(fieldDeviceType, kindString, &decoded.DeviceType); err != nil {
		return err
	}
	if err := rest.take(fieldSlotPrefix, kindString, &decoded.SlotPrefix); err != nil {
		return err
	}
	decoded.Rest = rest
	*d = decoded
	return nil
}

func (d ConnectedDevice) MarshalJSON() ([]byte, error) {
	fields := make([]field, 0, 4)
	if d.ConnectionType != nil {
		fields = append(fields, field{fieldConnectionType, *d.ConnectionType})
	}
	fields = append(fields,
		field{fieldDeviceModel, d.DeviceModel},
		field{fieldDeviceType, d.DeviceType},
		field{fieldSlotPrefix, d.SlotPrefix},
	)
	return d.Rest.encode(fields...)
}

// MigrationReport is the migration_report section. Its device list is the
// only place the document records human readable model names.
type MigrationReport struct {
	Devices []MigrationDevice
	Rest    Remainder
}

func (m *MigrationReport) UnmarshalJSON(data []byte) error {
	rest, err := decodeObject(data)
	if err != nil {
		return err
	}
	var decoded MigrationReport
	if err := takeList(&rest, fieldDevices, kindObject, &decoded.Devices); err != nil {
		return err
	}
	decoded.Rest = rest
	*m = decoded
	return nil
}

func (m MigrationReport) MarshalJSON() ([]byte, error) {
	return m.Rest.encode(field{fieldDevices, nonNil(m.Devices)})
}

// MigrationDevice maps a model ID to the name shown to users.
type MigrationDevice struct {
	DeviceName string
	ModelID    string
	Rest       Remainder
}

func (m *MigrationDevice) UnmarshalJSON(data []byte) error {
	rest, err := decodeObject(data)
	if err != nil {
		return err
	}
	var decoded MigrationDevice
	if err := rest.take(fieldDeviceName, kindString, &decoded.DeviceName); err != nil {
		return err
	}
	if err := rest.take(fieldModelID, kindString, &decoded.ModelID); err != nil {
		return err
	}
	decoded.Rest = rest
	*m = decoded
	return nil
}

func (m MigrationDevice) MarshalJSON() ([]byte, error) {
	return m.Rest.encode(
		field{fieldDeviceName, m.DeviceName},
		field{fieldModelID, m.ModelID},
	)
}

// Profile is a named set of button assignments.
type Profile struct {
	Assignments []Assignment
	Rest        Remainder
}

func (p *Profile) UnmarshalJSON(data []byte) error {
	rest, err := decodeObject(data)
	if err != nil {
		return err
	}
	var decoded Profile
	if err := takeList(&rest, fieldAssignments, kindObject, &decoded.Assignments); err != nil {
		return err
	}
	decoded.Rest = rest
	*p = decoded
	return nil
}

func (p Profile) MarshalJSON() ([]byte, error) {
	return p.Rest.encode(field{fieldAssignments, nonNil(p.Assignments)})
}

// Assignment binds an action to a button slot. SlotID has the form
// "<device>_<button>".
type Assignment struct {
	SlotID string
	Rest   Remainder
}

func (a *Assignment) UnmarshalJSON(data []byte) error {
	rest, err := decodeObject(data)
	if err != nil {
		return err
	}
	var decoded Assignment
	if err := rest.take(fieldSlotID, kindString, &decoded.SlotID); err != nil {
		return err
	}
	decoded.Rest = rest
	*a = decoded
	return nil
}

func (a Assignment) MarshalJSON() ([]byte, error) {
	return a.Rest.encode(field{fieldSlotID, a.SlotID})
}

// nonNil keeps empty lists encoding as [] rather than null.
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
