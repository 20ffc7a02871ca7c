package keytask

import "unicode"

// Legacy virtual-key codes for the keys the recorder treats specially.
const (
	VKBackspace = 0x08
	VKTab       = 0x09
	VKEnter     = 0x0D
	VKShift     = 0x10
	VKControl   = 0x11
	VKAlt       = 0x12
	VKEscape    = 0x1B
	VKSpace     = 0x20
)

// Key describes a primary key in the legacy virtual-key space.
type Key struct {
	// Code is the symbolic physical identity, e.g. "KeyA" or "ArrowUp".
	Code string
	// Name is the display identity, e.g. "a" or "ArrowUp".
	Name string
	// VK is the legacy numeric key value.
	VK int
}

var namedKeys = map[string]Key{
	"Space":      {Code: "Space", Name: " ", VK: VKSpace},
	"Tab":        {Code: "Tab", Name: "Tab", VK: VKTab},
	"Backspace":  {Code: "Backspace", Name: "Backspace", VK: VKBackspace},
	"PageUp":     {Code: "PageUp", Name: "PageUp", VK: 0x21},
	"PageDown":   {Code: "PageDown", Name: "PageDown", VK: 0x22},
	"End":        {Code: "End", Name: "End", VK: 0x23},
	"Home":       {Code: "Home", Name: "Home", VK: 0x24},
	"ArrowLeft":  {Code: "ArrowLeft", Name: "ArrowLeft", VK: 0x25},
	"ArrowUp":    {Code: "ArrowUp", Name: "ArrowUp", VK: 0x26},
	"ArrowRight": {Code: "ArrowRight", Name: "ArrowRight", VK: 0x27},
	"ArrowDown":  {Code: "ArrowDown", Name: "ArrowDown", VK: 0x28},
	"Insert":     {Code: "Insert", Name: "Insert", VK: 0x2D},
	"Delete":     {Code: "Delete", Name: "Delete", VK: 0x2E},
}

// punctuation maps unshifted/shifted OEM characters to their key.
var punctuation = map[rune]Key{
	';': {Code: "Semicolon", VK: 0xBA}, ':': {Code: "Semicolon", VK: 0xBA},
	'=': {Code: "Equal", VK: 0xBB}, '+': {Code: "Equal", VK: 0xBB},
	',': {Code: "Comma", VK: 0xBC}, '<': {Code: "Comma", VK: 0xBC},
	'-': {Code: "Minus", VK: 0xBD}, '_': {Code: "Minus", VK: 0xBD},
	'.': {Code: "Period", VK: 0xBE}, '>': {Code: "Period", VK: 0xBE},
	'/': {Code: "Slash", VK: 0xBF}, '?': {Code: "Slash", VK: 0xBF},
	'`': {Code: "Backquote", VK: 0xC0}, '~': {Code: "Backquote", VK: 0xC0},
	'[': {Code: "BracketLeft", VK: 0xDB}, '{': {Code: "BracketLeft", VK: 0xDB},
	'\\': {Code: "Backslash", VK: 0xDC}, '|': {Code: "Backslash", VK: 0xDC},
	']': {Code: "BracketRight", VK: 0xDD}, '}': {Code: "BracketRight", VK: 0xDD},
	'\'': {Code: "Quote", VK: 0xDE}, '"': {Code: "Quote", VK: 0xDE},
}

// NamedKey looks up a non-printable key by name ("Home", "ArrowUp", "F5", ...).
func NamedKey(name string) (Key, bool) {
	if k, ok := namedKeys[name]; ok {
		return k, true
	}

	return functionKey(name)
}

// functionKey resolves F1..F24 to 0x70..0x87.
func functionKey(name string) (Key, bool) {
	if len(name) < 2 || len(name) > 3 || name[0] != 'F' {
		return Key{}, false
	}

	n := 0
	for _, r := range name[1:] {
		if r < '0' || r > '9' {
			return Key{}, false
		}
		n = n*10 + int(r-'0')
	}

	if n < 1 || n > 24 {
		return Key{}, false
	}

	return Key{Code: name, Name: name, VK: 0x70 + n - 1}, true
}

// RuneKey maps a printable character to its key. shifted reports whether
// the character is only reachable with Shift held (uppercase letters and
// the upper row of OEM keys).
func RuneKey(r rune) (k Key, shifted bool, ok bool) {
	switch {
	case r >= 'a' && r <= 'z':
		up := unicode.ToUpper(r)
		return Key{Code: "Key" + string(up), Name: string(r), VK: int(up)}, false, true
	case r >= 'A' && r <= 'Z':
		return Key{Code: "Key" + string(r), Name: string(r), VK: int(r)}, true, true
	case r >= '0' && r <= '9':
		return Key{Code: "Digit" + string(r), Name: string(r), VK: int(r)}, false, true
	case r == ' ':
		return namedKeys["Space"], false, true
	}

	if k, found := punctuation[r]; found {
		k.Name = string(r)
		return k, isShiftedPunctuation(r), true
	}

	return Key{}, false, false
}

func isShiftedPunctuation(r rune) bool {
	switch r {
	case ':', '+', '<', '_', '>', '?', '~', '{', '|', '}', '"':
		return true
	default:
		return false
	}
}
