package settings

import (
	"fmt"
	"sort"
	"strings"
)

// slotSeparator splits a slot ID into device and button parts.
const slotSeparator = "_"

// SplitSlotID splits a slot ID at its first underscore. ok is false when the
// ID has no device part.
func SplitSlotID(slotID string) (device, button string, ok bool) {
	return strings.Cut(slotID, slotSeparator)
}

// ValidateDeviceID reports whether id can ever match the device part of a
// slot ID.
func ValidateDeviceID(id string) error {
	if id == "" {
		return fmt.Errorf("%w: empty", ErrInvalidDeviceID)
	}
	if strings.Contains(id, slotSeparator) {
		return fmt.Errorf("%w: %q contains %q", ErrInvalidDeviceID, id, slotSeparator)
	}
	return nil
}

// ProfileTransfer counts what a transfer changed in one profile.
type ProfileTransfer struct {
	Profile string
	// Moved is the number of assignments rebound from the source device.
	Moved int
	// Dropped is the number of existing target assignments removed.
	Dropped int
}

// TransferReport lists the profiles a transfer changed, in save order.
type TransferReport struct {
	Profiles []ProfileTransfer
}

// Moved returns the total number of rebound assignments.
func (r TransferReport) Moved() int {
	total := 0
	for _, p := range r.Profiles {
		total += p.Moved
	}
	return total
}

// Dropped returns the total number of removed target assignments.
func (r TransferReport) Dropped() int {
	total := 0
	for _, p := range r.Profiles {
		total += p.Dropped
	}
	return total
}

// TransferAssignments rebinds every assignment of device from to device to
// in all profiles of s. See Profile.TransferAssignments for the per-profile
// rules.
func (s *Settings) TransferAssignments(from, to string) (TransferReport, error) {
	if err := ValidateDeviceID(from); err != nil {
		return TransferReport{}, fmt.Errorf("source: %w", err)
	}
	if err := ValidateDeviceID(to); err != nil {
		return TransferReport{}, fmt.Errorf("target: %w", err)
	}

	var report TransferReport
	for _, name := range s.profileOrder() {
		updated, stats := s.Profiles[name].TransferAssignments(from, to)
		if stats.Moved == 0 {
			continue
		}
		stats.Profile = name
		s.Profiles[name] = updated
		report.Profiles = append(report.Profiles, stats)
	}
	return report, nil
}

// TransferAssignments returns a copy of p with the assignments of device
// from rebound to device to.
//
// When p has at least one "<from>_<button>" assignment, every "<to>_*"
// assignment is removed and each source assignment is replaced by a copy
// bound to "<to>_<button>". Surviving assignments keep their relative order
// and the rebound copies follow in source order. A profile without source
// assignments is returned unchanged, so repeating a transfer is a no-op.
// Slot IDs without an underscore never match.
func (p Profile) TransferAssignments(from, to string) (Profile, ProfileTransfer) {
	var stats ProfileTransfer
	var rebound []Assignment
	for _, a := range p.Assignments {
		device, button, ok := SplitSlotID(a.SlotID)
		if !ok || device != from {
			continue
		}
		rebound = append(rebound, Assignment{
			SlotID: to + slotSeparator + button,
			Rest:   a.Rest.Clone(),
		})
	}
	if len(rebound) == 0 {
		return p, stats
	}
	stats.Moved = len(rebound)

	kept := make([]Assignment, 0, len(p.Assignments))
	for _, a := range p.Assignments {
		device, _, ok := SplitSlotID(a.SlotID)
		switch {
		case ok && device == from:
		case ok && device == to:
			stats.Dropped++
		default:
			kept = append(kept, a)
		}
	}

	out := Profile{
		Assignments: append(kept, rebound...),
		Rest:        p.Rest,
	}
	return out, stats
}

// profileOrder lists profile names in save order: profile_keys first, then
// any unlisted profiles by name.
func (s *Settings) profileOrder() []string {
	seen := make(map[string]struct{}, len(s.ProfileKeys))
	order := make([]string, 0, len(s.Profiles))
	for _, name := range s.ProfileKeys {
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		if _, ok := s.Profiles[name]; ok {
			order = append(order, name)
		}
	}

	var unlisted []string
	for name := range s.Profiles {
		if _, ok := seen[name]; !ok {
			unlisted = append(unlisted, name)
		}
	}
	sort.Strings(unlisted)
	return append(order, unlisted...)
}
