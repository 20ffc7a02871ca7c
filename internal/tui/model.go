// Package tui is the terminal soundboard: a list of soundbites that can be
// played, turned up or down, and bound to a key chord with the key recorder.
package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/alkime/soundboard/internal/engine"
	"github.com/alkime/soundboard/internal/keyrec"
	"github.com/alkime/soundboard/internal/keytask"
	"github.com/alkime/soundboard/internal/tui/style"
	"github.com/alkime/soundboard/pkg/uictl"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	volumeStep float32 = 10
	minVolume  float32 = 10
	maxVolume  float32 = 200
)

// Engine is the part of the sound engine the soundboard drives.
type Engine interface {
	keyrec.Engine
	List(ctx context.Context) ([]engine.Info, error)
	Play(ctx context.Context, name string) error
	Trigger(ctx context.Context, code keytask.Code) (string, error)
	SetVolume(ctx context.Context, name string, volume float32) error
	RemoveKeytaskCode(ctx context.Context, name string) error
}

// Config configures the soundboard model.
type Config struct {
	// Cancel is called on quit.
	Cancel context.CancelFunc
	Logger *slog.Logger
}

type soundbitesMsg struct {
	items []engine.Info
	err   error
}

type bindingMsg struct {
	binding keyrec.Binding
	err     error
}

type triggerMsg struct {
	chord keyrec.Binding
	name  string
	err   error
}

type actionMsg struct {
	status string
	err    error
}

type statusKind int

const (
	statusInfo statusKind = iota
	statusSuccess
	statusWarning
	statusError
)

type status struct {
	text string
	kind statusKind
}

// boundLabel remembers how a chord was typed. The engine only keeps codes.
type boundLabel struct {
	code  keytask.Code
	label string
}

type model struct {
	ctx    context.Context
	config Config
	engine Engine
	keys   KeyMap

	recorder *keyrec.Recorder
	feed     *keyrec.Feed
	knob     uictl.Knob

	items  []engine.Info
	cursor int
	labels map[string]boundLabel
	status status
	volume progress.Model
}

// New creates the soundboard model.
func New(ctx context.Context, eng Engine, config Config) tea.Model {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	m := &model{
		ctx:      ctx,
		config:   config,
		engine:   eng,
		keys:     DefaultKeyMap(),
		recorder: keyrec.New(eng, config.Logger),
		feed:     keyrec.NewFeed(),
		labels:   make(map[string]boundLabel),
		volume: progress.New(
			progress.WithSolidFill("63"),
			progress.WithWidth(12),
			progress.WithoutPercentage(),
		),
	}
	m.knob = &recorderKnob{
		recorder: m.recorder,
		feed:     m.feed,
		target:   m.selected,
		logger:   config.Logger,
	}

	return m
}

// Init loads the soundbite list.
func (m *model) Init() tea.Cmd {
	return m.refresh()
}

// Update handles all messages.
func (m *model) Update(teaMsg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := teaMsg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.ForceQuit) {
			return m, m.quit()
		}
		if m.knob.Read() {
			return m, m.recordKey(msg)
		}

		return m, m.handleKey(msg)

	case soundbitesMsg:
		if msg.err != nil {
			m.setStatus(statusError, "Could not load soundbites: "+msg.err.Error())
			return m, nil
		}
		m.items = msg.items
		m.cursor = min(m.cursor, max(len(m.items)-1, 0))

	case bindingMsg:
		if msg.err != nil {
			m.setStatus(statusError, fmt.Sprintf("Could not bind %s: %v", msg.binding.Label, msg.err))
			return m, m.refresh()
		}
		m.labels[msg.binding.Target] = boundLabel{code: msg.binding.Code, label: msg.binding.Label}
		if msg.binding.ModifierDropped() {
			m.setStatus(statusWarning, fmt.Sprintf("Bound %s to %s (modifier not encoded, same as %s)",
				msg.binding.Label, msg.binding.Target, msg.binding.PrimaryKeyName))
		} else {
			m.setStatus(statusSuccess, fmt.Sprintf("Bound %s to %s", msg.binding.Label, msg.binding.Target))
		}

		return m, m.refresh()

	case triggerMsg:
		switch {
		case errors.Is(msg.err, engine.ErrNoSoundbiteForKey):
			m.setStatus(statusWarning, fmt.Sprintf("Nothing bound to %s", msg.chord.Label))
		case msg.err != nil:
			m.setStatus(statusError, fmt.Sprintf("Could not play %s: %v", msg.chord.Label, msg.err))
		default:
			m.setStatus(statusSuccess, fmt.Sprintf("Played %s (%s)", msg.name, msg.chord.Label))
		}

	case actionMsg:
		if msg.err != nil {
			m.setStatus(statusError, msg.err.Error())
		} else {
			m.setStatus(statusSuccess, msg.status)
		}

		return m, m.refresh()
	}

	return m, nil
}

func (m *model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()

	case key.Matches(msg, m.keys.Up):
		m.cursor = max(m.cursor-1, 0)

	case key.Matches(msg, m.keys.Down):
		m.cursor = min(m.cursor+1, max(len(m.items)-1, 0))

	case key.Matches(msg, m.keys.Record):
		m.knob.On()
		if !m.knob.Read() {
			m.setStatus(statusWarning, "Nothing selected to bind")
			return nil
		}
		m.setStatus(statusInfo, fmt.Sprintf("Press a key combination for %s", m.recorder.Target()))

	case key.Matches(msg, m.keys.Unbind):
		return m.withSelected(func(name string) tea.Cmd {
			return m.action(fmt.Sprintf("Removed key from %s", name), func(ctx context.Context) error {
				return m.engine.RemoveKeytaskCode(ctx, name)
			})
		})

	case key.Matches(msg, m.keys.Play):
		return m.withSelected(func(name string) tea.Cmd {
			return m.action(fmt.Sprintf("Played %s", name), func(ctx context.Context) error {
				return m.engine.Play(ctx, name)
			})
		})

	case key.Matches(msg, m.keys.VolumeUp):
		return m.nudgeVolume(volumeStep)

	case key.Matches(msg, m.keys.VolumeDown):
		return m.nudgeVolume(-volumeStep)

	default:
		return m.trigger(msg)
	}

	return nil
}

// trigger plays the soundbite bound to the chord msg encodes to, if any.
func (m *model) trigger(msg tea.KeyMsg) tea.Cmd {
	chord, ok := keyrec.Chord(translateKey(msg)...)
	if !ok {
		return nil
	}

	return func() tea.Msg {
		name, err := m.engine.Trigger(m.ctx, chord.Code)
		return triggerMsg{chord: chord, name: name, err: err}
	}
}

// recordKey feeds a terminal key to the recorder while it is armed.
func (m *model) recordKey(msg tea.KeyMsg) tea.Cmd {
	events := translateKey(msg)
	if len(events) == 0 {
		m.setStatus(statusWarning, fmt.Sprintf("%s cannot be bound", msg.String()))
		return nil
	}

	target := m.recorder.Target()
	for _, ev := range events {
		out, ok := m.feed.Dispatch(ev)
		if !ok {
			break
		}

		switch out.Step { //nolint:exhaustive // in-progress steps fall through to the pending status
		case keyrec.StepCancelled:
			m.setStatus(statusWarning, "Recording cancelled")
			return nil
		case keyrec.StepInvalidCommit:
			m.setStatus(statusWarning, fmt.Sprintf("No key captured, %s unchanged", target))
			return nil
		case keyrec.StepCommitted:
			m.setStatus(statusInfo, fmt.Sprintf("Saving %s for %s", out.Commit.Label, target))
			return commitCmd(m.ctx, out.Commit)
		}
	}

	m.setStatus(statusInfo, fmt.Sprintf("Recording for %s: %s", target, m.recorder.Pending()))

	return nil
}

func commitCmd(ctx context.Context, c *keyrec.Commit) tea.Cmd {
	return func() tea.Msg {
		err := c.Run(ctx)
		return bindingMsg{binding: c.Binding, err: err}
	}
}

func (m *model) nudgeVolume(delta float32) tea.Cmd {
	if len(m.items) == 0 {
		return nil
	}

	item := m.items[m.cursor]
	next := min(max(item.Volume+delta, minVolume), maxVolume)
	if next == item.Volume {
		return nil
	}

	return m.action(fmt.Sprintf("%s volume %.0f%%", item.Name, next), func(ctx context.Context) error {
		return m.engine.SetVolume(ctx, item.Name, next)
	})
}

func (m *model) refresh() tea.Cmd {
	return func() tea.Msg {
		items, err := m.engine.List(m.ctx)
		return soundbitesMsg{items: items, err: err}
	}
}

func (m *model) action(done string, fn func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		if err := fn(m.ctx); err != nil {
			return actionMsg{err: err}
		}

		return actionMsg{status: done}
	}
}

func (m *model) withSelected(fn func(name string) tea.Cmd) tea.Cmd {
	name := m.selected()
	if name == "" {
		m.setStatus(statusWarning, "Nothing selected")
		return nil
	}

	return fn(name)
}

func (m *model) selected() string {
	if m.cursor >= len(m.items) {
		return ""
	}

	return m.items[m.cursor].Name
}

func (m *model) quit() tea.Cmd {
	m.knob.Off()
	if m.config.Cancel != nil {
		m.config.Cancel()
	}

	return tea.Quit
}

func (m *model) setStatus(kind statusKind, text string) {
	m.status = status{text: text, kind: kind}
}

// View renders the soundboard.
func (m *model) View() string {
	var sb strings.Builder

	sb.WriteString(style.Title.Render("Soundboard"))
	sb.WriteString("\n\n")

	if len(m.items) == 0 {
		sb.WriteString(style.Muted.Render("No soundbites loaded. Pass audio files to import them."))
		sb.WriteString("\n")
	}

	nameWidth := 0
	for _, item := range m.items {
		nameWidth = max(nameWidth, lipgloss.Width(item.Name))
	}

	for i, item := range m.items {
		m.renderRow(&sb, i, item, nameWidth)
	}

	sb.WriteString("\n")
	if m.status.text != "" {
		sb.WriteString(statusStyle(m.status.kind).Render(m.status.text))
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(m.renderHelp())

	return sb.String()
}

func (m *model) renderRow(sb *strings.Builder, i int, item engine.Info, nameWidth int) {
	cursor := "  "
	name := style.Label.Render(item.Name)
	if i == m.cursor {
		cursor = style.Bullet.Render("> ")
		name = style.Key.Render(item.Name)
	}

	sb.WriteString(cursor)
	sb.WriteString(name)
	sb.WriteString(strings.Repeat(" ", nameWidth-lipgloss.Width(item.Name)+2))

	dial := uictl.StaticDial[float32]{Value: item.Volume, Max: maxVolume}
	sb.WriteString(m.volume.ViewAs(uictl.Fraction[float32](dial)))
	sb.WriteString(style.Subtitle.Render(fmt.Sprintf(" %3.0f%%  ", item.Volume)))

	sb.WriteString(m.bindingLabel(item))
	sb.WriteString("\n")
}

func (m *model) bindingLabel(item engine.Info) string {
	if m.recorder.IsRecording() && m.recorder.Target() == item.Name {
		pending := m.recorder.Pending()
		if pending == "" {
			pending = "…"
		}

		return style.Warning.Render("● " + pending)
	}

	if item.Keycode == 0 {
		return style.Muted.Render("unbound")
	}

	if bound, ok := m.labels[item.Name]; ok && bound.code == item.Keycode {
		return style.Success.Render(bound.label)
	}

	return style.Success.Render("key " + item.Keycode.String())
}

func (m *model) renderHelp() string {
	if m.recorder.IsRecording() {
		return style.Help.Render("[") + style.Key.Render("enter") + style.Help.Render("] save ") +
			style.Help.Render("[") + style.Key.Render("esc") + style.Help.Render("] cancel")
	}

	bindings := m.keys.ShortHelp()
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		parts = append(parts, renderKeyHelp(b))
	}

	return strings.Join(parts, " ")
}

func renderKeyHelp(keyBinding key.Binding) string {
	return style.Help.Render("[") + style.Key.Render(keyBinding.Help().Key) +
		style.Help.Render("] ") +
		style.Help.Render(keyBinding.Help().Desc)
}

func statusStyle(kind statusKind) lipgloss.Style {
	switch kind {
	case statusSuccess:
		return style.Success
	case statusWarning:
		return style.Warning
	case statusError:
		return style.Error
	default:
		return style.Subtitle
	}
}
