// Package hashutil implements the 32-bit ELF hash used to identify
// joints by name across skeleton and animation files.
package hashutil

import "strings"

// Elf hashes a joint name, case-insensitively. Two independently
// authored files agree on a joint identity purely by this value, so the
// algorithm must match the game's encoder bit for bit.
func Elf(name string) uint32 {
	var h, t uint32
	for _, c := range strings.ToLower(name) {
		h = (h << 4) + uint32(c)
		t = h & 0xF0000000
		if t != 0 {
			h ^= t >> 24
		}
		h &^= t
	}
	return h
}
