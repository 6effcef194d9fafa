// Package version provides the minimum-version gate used to pick install
// instructions. Versions are normalized (major, minor, patch) triples compared
// lexicographically.
package version

import (
	"fmt"
	"strconv"
	"strings"
)

// Version is an ordered triple of non-negative integers.
type Version struct {
	Major int
	Minor int
	Patch int
}

// New builds a version triple. Negative components are clamped to zero.
func New(major, minor, patch int) Version {
	return Version{Major: max(major, 0), Minor: max(minor, 0), Patch: max(patch, 0)}
}

// Parse normalizes a version string such as "16.4.1", "16_4" or "17" into a
// triple. Missing or unparseable components become 0; anything past the patch
// component is ignored. Parse never fails.
func Parse(s string) Version {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "v"), "V")

	parts := strings.FieldsFunc(s, func(r rune) bool { return r == '.' || r == '_' })

	var nums [3]int
	for i := 0; i < len(parts) && i < len(nums); i++ {
		nums[i] = leadingInt(parts[i])
	}
	return New(nums[0], nums[1], nums[2])
}

// leadingInt parses the leading digits of s, so "4b2" yields 4.
func leadingInt(s string) int {
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return n
}

// Compare returns -1, 0 or 1 comparing a to b lexicographically.
func Compare(a, b Version) int {
	switch {
	case a.Major != b.Major:
		return cmpInt(a.Major, b.Major)
	case a.Minor != b.Minor:
		return cmpInt(a.Minor, b.Minor)
	default:
		return cmpInt(a.Patch, b.Patch)
	}
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Satisfies reports whether v >= minimum.
func Satisfies(v, minimum Version) bool {
	return Compare(v, minimum) >= 0
}

// Satisfies reports whether v >= minimum.
func (v Version) Satisfies(minimum Version) bool {
	return Satisfies(v, minimum)
}

// IsZero reports whether v is (0,0,0), the value used for an unknown version.
func (v Version) IsZero() bool {
	return v == Version{}
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// UnmarshalText allows versions in YAML and env config as plain strings.
func (v *Version) UnmarshalText(text []byte) error {
	*v = Parse(string(text))
	return nil
}

func (v Version) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}
