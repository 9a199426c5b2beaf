package window

import (
	"fmt"
	"strings"
)

// Flags are the portable window creation flags.
type Flags uint32

const (
	FlagNormal    Flags = 0
	FlagNoBorder  Flags = 1 << 0
	FlagDialog    Flags = 1 << 1
	FlagSplash    Flags = 1 << 2
	FlagResizable Flags = 1 << 3
	FlagUnmapped  Flags = 1 << 4

	flagsAll = FlagNoBorder | FlagDialog | FlagSplash | FlagResizable | FlagUnmapped
)

var flagNames = []struct {
	flag Flags
	name string
}{
	{FlagNoBorder, "no_border"},
	{FlagDialog, "dialog"},
	{FlagSplash, "splash"},
	{FlagResizable, "resizable"},
	{FlagUnmapped, "unmapped"},
}

// Has reports whether every bit of o is set.
func (f Flags) Has(o Flags) bool {
	return f&o == o
}

// Floating reports whether the flags ask the window manager for floating placement.
// NO_BORDER alone never does.
func (f Flags) Floating() bool {
	return f&(FlagDialog|FlagSplash) != 0
}

// Borderless reports whether decorations should be suppressed.
func (f Flags) Borderless() bool {
	return f&(FlagNoBorder|FlagSplash) != 0
}

func (f Flags) String() string {
	if f == FlagNormal {
		return "normal"
	}
	var parts []string
	for _, fn := range flagNames {
		if f.Has(fn.flag) {
			parts = append(parts, fn.name)
		}
	}
	if rest := f &^ flagsAll; rest != 0 {
		parts = append(parts, fmt.Sprintf("0x%x", uint32(rest)))
	}
	return strings.Join(parts, "|")
}

// ParseFlags accepts names as produced by String, either as separate
// elements or joined with '|' or ','.
func ParseFlags(names ...string) (Flags, error) {
	var f Flags
	for _, n := range names {
		for _, part := range strings.FieldsFunc(n, func(r rune) bool { return r == '|' || r == ',' }) {
			part = strings.ToLower(strings.TrimSpace(part))
			if part == "" || part == "normal" {
				continue
			}
			found := false
			for _, fn := range flagNames {
				if fn.name == part {
					f |= fn.flag
					found = true
					break
				}
			}
			if !found {
				return 0, fmt.Errorf("unknown window flag %q", part)
			}
		}
	}
	return f, nil
}
