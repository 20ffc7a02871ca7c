package tui

import (
	"fmt"

	"github.com/alkime/soundboard/internal/keyrec"
	"github.com/alkime/soundboard/internal/keytask"
	tea "github.com/charmbracelet/bubbletea"
)

// namedTypes maps terminal key types onto keytask named keys.
var namedTypes = map[tea.KeyType]string{
	tea.KeyTab:       "Tab",
	tea.KeyBackspace: "Backspace",
	tea.KeyUp:        "ArrowUp",
	tea.KeyDown:      "ArrowDown",
	tea.KeyLeft:      "ArrowLeft",
	tea.KeyRight:     "ArrowRight",
	tea.KeyHome:      "Home",
	tea.KeyEnd:       "End",
	tea.KeyPgUp:      "PageUp",
	tea.KeyPgDown:    "PageDown",
	tea.KeyInsert:    "Insert",
	tea.KeyDelete:    "Delete",
}

func init() {
	fkeys := []tea.KeyType{
		tea.KeyF1, tea.KeyF2, tea.KeyF3, tea.KeyF4, tea.KeyF5,
		tea.KeyF6, tea.KeyF7, tea.KeyF8, tea.KeyF9, tea.KeyF10,
		tea.KeyF11, tea.KeyF12, tea.KeyF13, tea.KeyF14, tea.KeyF15,
		tea.KeyF16, tea.KeyF17, tea.KeyF18, tea.KeyF19, tea.KeyF20,
	}
	for i, t := range fkeys {
		namedTypes[t] = fmt.Sprintf("F%d", i+1)
	}
}

// chordTypes are terminal key types that already carry a modifier.
var chordTypes = map[tea.KeyType]struct {
	mod   keytask.Modifier
	named string
}{
	tea.KeyShiftTab:   {keytask.ModShift, "Tab"},
	tea.KeyShiftUp:    {keytask.ModShift, "ArrowUp"},
	tea.KeyShiftDown:  {keytask.ModShift, "ArrowDown"},
	tea.KeyShiftLeft:  {keytask.ModShift, "ArrowLeft"},
	tea.KeyShiftRight: {keytask.ModShift, "ArrowRight"},
	tea.KeyCtrlUp:     {keytask.ModControl, "ArrowUp"},
	tea.KeyCtrlDown:   {keytask.ModControl, "ArrowDown"},
	tea.KeyCtrlLeft:   {keytask.ModControl, "ArrowLeft"},
	tea.KeyCtrlRight:  {keytask.ModControl, "ArrowRight"},
}

var modifierVK = map[keytask.Modifier]int{
	keytask.ModAlt:     keytask.VKAlt,
	keytask.ModControl: keytask.VKControl,
	keytask.ModShift:   keytask.VKShift,
}

// translateKey turns one terminal key press into the key events a browser
// would report for it: modifier presses first, then the primary key.
// Terminals do not say which side a modifier was on, so modifier events carry
// no location. It returns nil for keys with no legacy key code.
func translateKey(msg tea.KeyMsg) []keyrec.KeyEvent {
	var events []keyrec.KeyEvent
	if msg.Alt {
		events = append(events, modifierEvent(keytask.ModAlt))
	}

	switch msg.Type { //nolint:exhaustive // remaining types fall through to the lookups below
	case tea.KeyEnter:
		return append(events, keyrec.KeyEvent{Code: "Enter", Key: "Enter", KeyCode: keytask.VKEnter})
	case tea.KeyEscape:
		return append(events, keyrec.KeyEvent{Code: "Escape", Key: "Escape", KeyCode: keytask.VKEscape})
	case tea.KeySpace:
		return appendRune(events, ' ')
	case tea.KeyRunes:
		if len(msg.Runes) != 1 || msg.Paste {
			return nil
		}

		return appendRune(events, msg.Runes[0])
	}

	if name, ok := namedTypes[msg.Type]; ok {
		return appendNamed(events, name)
	}

	if chord, ok := chordTypes[msg.Type]; ok {
		return appendNamed(append(events, modifierEvent(chord.mod)), chord.named)
	}

	if msg.Type >= tea.KeyCtrlA && msg.Type <= tea.KeyCtrlZ {
		events = append(events, modifierEvent(keytask.ModControl))
		return appendRune(events, rune('a'+int(msg.Type-tea.KeyCtrlA)))
	}

	return nil
}

func modifierEvent(mod keytask.Modifier) keyrec.KeyEvent {
	return keyrec.KeyEvent{Code: string(mod), Key: string(mod), KeyCode: modifierVK[mod]}
}

func appendRune(events []keyrec.KeyEvent, r rune) []keyrec.KeyEvent {
	k, shifted, ok := keytask.RuneKey(r)
	if !ok {
		return nil
	}
	if shifted {
		events = append(events, modifierEvent(keytask.ModShift))
	}

	return append(events, keyrec.KeyEvent{Code: k.Code, Key: k.Name, KeyCode: k.VK})
}

func appendNamed(events []keyrec.KeyEvent, name string) []keyrec.KeyEvent {
	k, ok := keytask.NamedKey(name)
	if !ok {
		return nil
	}

	return append(events, keyrec.KeyEvent{Code: k.Code, Key: k.Name, KeyCode: k.VK})
}
