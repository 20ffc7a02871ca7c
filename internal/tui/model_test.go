package tui

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/alkime/soundboard/internal/engine"
	"github.com/alkime/soundboard/internal/keytask"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/exp/teatest"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

// outputChecker provides helpers for testing teatest output.
type outputChecker struct {
	intervl, timeout time.Duration
}

func defaultChecker() outputChecker {
	return outputChecker{
		intervl: 50 * time.Millisecond,
		timeout: 3 * time.Second,
	}
}

func (o outputChecker) checkString(t *testing.T, tm *teatest.TestModel, substr string) {
	t.Helper()
	teatest.WaitFor(t, tm.Output(), func(buf []byte) bool {
		return bytes.Contains(buf, []byte(substr))
	},
		teatest.WithCheckInterval(o.intervl),
		teatest.WithDuration(o.timeout))
}

type setCall struct {
	name string
	code keytask.Code
}

// mockEngine implements Engine for testing.
type mockEngine struct {
	mu      sync.Mutex
	items   []engine.Info
	setErr  error
	calls   []setCall
	played  []string
	removed []string
}

func newMockEngine(names ...string) *mockEngine {
	m := &mockEngine{}
	for _, n := range names {
		m.items = append(m.items, engine.Info{Name: n, Volume: 100, Speed: 100, MIME: "audio/wav"})
	}

	return m
}

func (m *mockEngine) SetKeytaskCode(_ context.Context, name string, code keytask.Code) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, setCall{name: name, code: code})
	if m.setErr != nil {
		return m.setErr
	}
	m.update(name, func(i *engine.Info) { i.Keycode = code })

	return nil
}

func (m *mockEngine) List(context.Context) ([]engine.Info, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]engine.Info(nil), m.items...), nil
}

func (m *mockEngine) Play(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.played = append(m.played, name)

	return nil
}

func (m *mockEngine) Trigger(_ context.Context, code keytask.Code) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, item := range m.items {
		if item.Keycode == code {
			m.played = append(m.played, item.Name)
			return item.Name, nil
		}
	}

	return "", engine.ErrNoSoundbiteForKey
}

func (m *mockEngine) Played() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]string(nil), m.played...)
}

func (m *mockEngine) SetVolume(_ context.Context, name string, volume float32) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.update(name, func(i *engine.Info) { i.Volume = volume })

	return nil
}

func (m *mockEngine) RemoveKeytaskCode(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.removed = append(m.removed, name)
	m.update(name, func(i *engine.Info) { i.Keycode = 0 })

	return nil
}

func (m *mockEngine) update(name string, fn func(*engine.Info)) {
	for i := range m.items {
		if m.items[i].Name == name {
			fn(&m.items[i])
		}
	}
}

func (m *mockEngine) Calls() []setCall {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]setCall(nil), m.calls...)
}

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func newTestModel(t *testing.T, eng *mockEngine) *teatest.TestModel {
	t.Helper()

	m := New(context.Background(), eng, Config{Logger: discardLogger})

	return teatest.NewTestModel(t, m, teatest.WithInitialTermSize(100, 30))
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestSoundboard_ListsSoundbites(t *testing.T) {
	eng := newMockEngine("airhorn", "applause")
	eng.items[1].Keycode = 705

	tm := newTestModel(t, eng)
	checker := defaultChecker()

	checker.checkString(t, tm, "airhorn")
	checker.checkString(t, tm, "key 705 (0x2C1)")

	tm.Send(runes("q"))
	tm.WaitFinished(t, teatest.WithFinalTimeout(time.Second))
}

func TestSoundboard_Empty(t *testing.T) {
	tm := newTestModel(t, newMockEngine())
	checker := defaultChecker()

	checker.checkString(t, tm, "No soundbites loaded")

	tm.Send(runes("r"))
	checker.checkString(t, tm, "Nothing selected to bind")

	tm.Send(tea.KeyMsg{Type: tea.KeyCtrlC})
	tm.WaitFinished(t, teatest.WithFinalTimeout(time.Second))
}

func TestSoundboard_RecordCommit(t *testing.T) {
	eng := newMockEngine("airhorn", "applause")
	tm := newTestModel(t, eng)
	checker := defaultChecker()

	checker.checkString(t, tm, "applause")

	tm.Send(tea.KeyMsg{Type: tea.KeyDown})
	tm.Send(runes("r"))
	checker.checkString(t, tm, "Press a key combination for applause")

	// "q" is a chord key while recording, not quit
	tm.Send(tea.KeyMsg{Type: tea.KeyCtrlQ})
	checker.checkString(t, tm, "Control + q")

	tm.Send(tea.KeyMsg{Type: tea.KeyEnter})
	checker.checkString(t, tm, "Bound Control + q to applause")

	// Terminals report no modifier side, so only the key is encoded.
	require.Eventually(t, func() bool { return len(eng.Calls()) == 1 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, setCall{name: "applause", code: 81}, eng.Calls()[0])

	tm.Send(tea.KeyMsg{Type: tea.KeyCtrlC})
	tm.WaitFinished(t, teatest.WithFinalTimeout(time.Second))
}

func TestSoundboard_RecordCancel(t *testing.T) {
	eng := newMockEngine("airhorn")
	tm := newTestModel(t, eng)
	checker := defaultChecker()

	checker.checkString(t, tm, "airhorn")

	tm.Send(runes("r"))
	tm.Send(runes("b"))
	checker.checkString(t, tm, "Recording for airhorn: b")

	tm.Send(tea.KeyMsg{Type: tea.KeyEsc})
	checker.checkString(t, tm, "Recording cancelled")

	tm.Send(runes("r"))
	tm.Send(tea.KeyMsg{Type: tea.KeyEnter})
	checker.checkString(t, tm, "No key captured, airhorn unchanged")

	tm.Send(runes("q"))
	tm.WaitFinished(t, teatest.WithFinalTimeout(time.Second))
	assert.Empty(t, eng.Calls())
}

func TestSoundboard_CommitFailure(t *testing.T) {
	eng := newMockEngine("airhorn")
	eng.setErr = errors.New("key code already used")
	tm := newTestModel(t, eng)
	checker := defaultChecker()

	checker.checkString(t, tm, "airhorn")

	tm.Send(runes("r"))
	tm.Send(runes("z"))
	tm.Send(tea.KeyMsg{Type: tea.KeyEnter})
	checker.checkString(t, tm, "Could not bind z")

	tm.Send(runes("q"))
	tm.WaitFinished(t, teatest.WithFinalTimeout(time.Second))
}

func TestSoundboard_Actions(t *testing.T) {
	eng := newMockEngine("airhorn")
	eng.items[0].Keycode = 65
	tm := newTestModel(t, eng)
	checker := defaultChecker()

	checker.checkString(t, tm, "airhorn")

	tm.Send(runes("p"))
	checker.checkString(t, tm, "Played airhorn")

	tm.Send(runes("+"))
	checker.checkString(t, tm, "airhorn volume 110%")

	tm.Send(runes("x"))
	checker.checkString(t, tm, "Removed key from airhorn")
	checker.checkString(t, tm, "unbound")

	tm.Send(runes("q"))
	tm.WaitFinished(t, teatest.WithFinalTimeout(time.Second))

	eng.mu.Lock()
	defer eng.mu.Unlock()
	assert.InDelta(t, 110, eng.items[0].Volume, 0.001)
	assert.Equal(t, []string{"airhorn"}, eng.played)
	assert.Equal(t, []string{"airhorn"}, eng.removed)
}

func TestSoundboard_TriggerChord(t *testing.T) {
	eng := newMockEngine("airhorn", "applause")
	tm := newTestModel(t, eng)
	checker := defaultChecker()

	checker.checkString(t, tm, "applause")

	tm.Send(tea.KeyMsg{Type: tea.KeyDown})
	tm.Send(runes("r"))
	tm.Send(tea.KeyMsg{Type: tea.KeyCtrlQ})
	tm.Send(tea.KeyMsg{Type: tea.KeyEnter})
	checker.checkString(t, tm, "modifier not encoded, same as q")

	tm.Send(tea.KeyMsg{Type: tea.KeyCtrlQ})
	checker.checkString(t, tm, "Played applause (Control + q)")

	tm.Send(tea.KeyMsg{Type: tea.KeyCtrlW})
	checker.checkString(t, tm, "Nothing bound to Control + w")

	tm.Send(runes("q"))
	tm.WaitFinished(t, teatest.WithFinalTimeout(time.Second))

	assert.Equal(t, []string{"applause"}, eng.Played())
	assert.Equal(t, []setCall{{name: "applause", code: 81}}, eng.Calls())
}
