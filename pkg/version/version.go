// Package version provides firmware version parsing and comparison.
package version

import (
	"fmt"
	"strconv"
	"strings"
)

// Current is the firmware version implemented by this module. It is
// advertised in the kit's mDNS TXT records.
const Current = "1.0.0"

// Firmware represents a parsed "major.minor.patch" firmware version.
type Firmware struct {
	Major uint16
	Minor uint16
	Patch uint16
}

// Parse parses a "major.minor.patch" version string.
func Parse(s string) (Firmware, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 3 {
		return Firmware{}, fmt.Errorf("invalid version %q: expected major.minor.patch", s)
	}

	var nums [3]uint16
	for i, part := range parts {
		n, err := strconv.ParseUint(part, 10, 16)
		if err != nil || part == "" {
			return Firmware{}, fmt.Errorf("invalid version %q: bad component %q", s, part)
		}
		nums[i] = uint16(n)
	}

	return Firmware{Major: nums[0], Minor: nums[1], Patch: nums[2]}, nil
}

// String returns the version as "major.minor.patch".
func (v Firmware) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Compatible returns true if the other version has the same major version.
func (v Firmware) Compatible(other Firmware) bool {
	return v.Major == other.Major
}

// Compare returns -1, 0, or 1 if v is older than, equal to, or newer
// than other.
func (v Firmware) Compare(other Firmware) int {
	if v.Major != other.Major {
		return cmpUint16(v.Major, other.Major)
	}
	if v.Minor != other.Minor {
		return cmpUint16(v.Minor, other.Minor)
	}
	return cmpUint16(v.Patch, other.Patch)
}

func cmpUint16(a, b uint16) int {
	if a < b {
		return -1
	}
	if a > b {
		return 1
	}
	return 0
}
