// Package keytask defines the integer encoding of key chords that the sound
// engine uses to bind soundbites to keyboard shortcuts.
package keytask

import "fmt"

// Code is an encoded key chord: (system modifier code << 2) | primary key code.
type Code uint32

// SysKey is a system modifier virtual-key code.
type SysKey uint32

const (
	// SysNone means no modifier is encoded.
	SysNone SysKey = 0x00

	SysShift   SysKey = 0x10
	SysControl SysKey = 0x11
	SysAlt     SysKey = 0x12

	SysLeftShift    SysKey = 0xA0
	SysRightShift   SysKey = 0xA1
	SysLeftControl  SysKey = 0xA2
	SysRightControl SysKey = 0xA3
	SysLeftAlt      SysKey = 0xA4
	SysRightAlt     SysKey = 0xA5
)

// Modifier is the display identity of a modifier key.
type Modifier string

const (
	ModAlt     Modifier = "Alt"
	ModControl Modifier = "Control"
	ModShift   Modifier = "Shift"
)

// ParseModifier reports whether key names one of the recognised modifiers.
func ParseModifier(key string) (Modifier, bool) {
	switch Modifier(key) {
	case ModAlt, ModControl, ModShift:
		return Modifier(key), true
	default:
		return "", false
	}
}

// Location is the physical placement of a modifier key.
type Location int

const (
	LocationUnknown Location = iota
	LocationLeft
	LocationRight
)

func (l Location) String() string {
	switch l {
	case LocationLeft:
		return "left"
	case LocationRight:
		return "right"
	default:
		return "unknown"
	}
}

// LocationFromCode derives the physical placement from a symbolic key code
// such as "ShiftLeft" or "AltRight". Codes without a side are LocationUnknown.
func LocationFromCode(code string) Location {
	switch code {
	case "ShiftLeft", "ControlLeft", "AltLeft":
		return LocationLeft
	case "ShiftRight", "ControlRight", "AltRight":
		return LocationRight
	default:
		return LocationUnknown
	}
}

var sysKeys = map[Modifier][2]SysKey{
	ModShift:   {SysLeftShift, SysRightShift},
	ModControl: {SysLeftControl, SysRightControl},
	ModAlt:     {SysLeftAlt, SysRightAlt},
}

// SysKeyFor resolves the system code of a modifier pressed at loc.
// Without a left/right distinction the result is SysNone.
func SysKeyFor(mod Modifier, loc Location) SysKey {
	sides, ok := sysKeys[mod]
	if !ok {
		return SysNone
	}

	switch loc {
	case LocationLeft:
		return sides[0]
	case LocationRight:
		return sides[1]
	default:
		return SysNone
	}
}

// MaxKey is the largest legacy key code. Larger values would overlap the
// system modifier bits of an encoded Code.
const MaxKey = 0xFF

// ValidKey reports whether key is a legacy key code that Encode can carry.
func ValidKey(key int) bool {
	return key > 0 && key <= MaxKey
}

// Encode combines a system modifier code and a primary key code. key must
// satisfy ValidKey.
func Encode(sys SysKey, key int) Code {
	var code Code
	if sys != SysNone {
		code = Code(sys) << 2
	}

	return code | Code(key)
}

// String renders the code as decimal plus hex, e.g. "705 (0x2C1)".
func (c Code) String() string {
	return fmt.Sprintf("%d (0x%X)", uint32(c), uint32(c))
}
