package settings

import (
	"sort"
	"strings"
)

// mouseDeviceType is the only device type listed. Other entries in the
// device history are keyboards or virtual placeholders.
const mouseDeviceType = "MOUSE"

// ResolvedDevice is a physical slot with its display name.
type ResolvedDevice struct {
	SlotPrefix string
	Name       string
}

// String formats the device as "<slot prefix>: <name>".
func (d ResolvedDevice) String() string {
	return d.SlotPrefix + ": " + d.Name
}

// Devices resolves the mice in the device history of s.
func (s *Settings) Devices() []ResolvedDevice {
	return ResolveDevices(s.EverConnectedDevices, s.MigrationReport)
}

// ResolveDevices returns one entry per mouse slot, ordered by slot prefix.
//
// The history may list a slot several times; the last entry wins. Names come
// from the migration report: an exact model ID match first, then the part of
// the device model before the first underscore ("6b023_ext2" → "6b023"),
// falling back to the device model itself.
func ResolveDevices(history DeviceHistory, report MigrationReport) []ResolvedDevice {
	modelNames := make(map[string]string, len(report.Devices))
	for _, device := range report.Devices {
		modelNames[device.ModelID] = device.DeviceName
	}

	bySlot := make(map[string]ConnectedDevice)
	for _, device := range history.Devices {
		if device.DeviceType != mouseDeviceType {
			continue
		}
		bySlot[device.SlotPrefix] = device
	}

	slots := make([]string, 0, len(bySlot))
	for slot := range bySlot {
		slots = append(slots, slot)
	}
	sort.Strings(slots)

	resolved := make([]ResolvedDevice, 0, len(slots))
	for _, slot := range slots {
		resolved = append(resolved, ResolvedDevice{
			SlotPrefix: slot,
			Name:       resolveModelName(bySlot[slot].DeviceModel, modelNames),
		})
	}
	return resolved
}

func resolveModelName(model string, modelNames map[string]string) string {
	if name, ok := modelNames[model]; ok {
		return name
	}
	if prefix, _, found := strings.Cut(model, "_"); found {
		if name, ok := modelNames[prefix]; ok {
			return name
		}
	}
	return model
}
