// Package keyrec records a keyboard chord for a selected soundbite and hands
// the encoded chord to the sound engine.
//
// A Recorder is either idle or recording. While recording it holds an input
// subscription and tracks the last modifier and the last primary key seen.
// Escape cancels, Enter commits. A commit with a primary key yields a Commit
// whose Run sends set_keytask_code to the engine.
package keyrec

import (
	"context"
	"errors"
	"log/slog"

	"github.com/alkime/soundboard/internal/keytask"
)

var (
	// ErrAlreadyRecording is returned by Start when a session is active.
	ErrAlreadyRecording = errors.New("key recording already in progress")
	// ErrNoTarget is returned by Start without a selected soundbite.
	ErrNoTarget = errors.New("no soundbite selected")
	// ErrNoInput is returned by Start without an input to listen on.
	ErrNoInput = errors.New("no key input available")
)

// Engine receives committed key bindings.
type Engine interface {
	SetKeytaskCode(ctx context.Context, name string, code keytask.Code) error
}

// Step names the transition a key event caused.
type Step int

const (
	StepIgnored Step = iota
	StepModifier
	StepPrimary
	StepCancelled
	StepCommitted
	StepInvalidCommit
)

func (s Step) String() string {
	switch s {
	case StepModifier:
		return "modifier"
	case StepPrimary:
		return "primary"
	case StepCancelled:
		return "cancelled"
	case StepCommitted:
		return "committed"
	case StepInvalidCommit:
		return "invalid_commit"
	default:
		return "ignored"
	}
}

// Done reports whether the step ended the session.
func (s Step) Done() bool {
	return s == StepCancelled || s == StepCommitted || s == StepInvalidCommit
}

// Outcome is the result of feeding one key event to the recorder.
// Commit is set only for StepCommitted.
type Outcome struct {
	Step   Step
	Commit *Commit
}

type capturedModifier struct {
	name     keytask.Modifier
	location keytask.Location
}

type capturedKey struct {
	code int
	name string
}

type session struct {
	target   string
	sub      Subscription
	modifier *capturedModifier
	primary  *capturedKey
}

// Recorder owns the single recording session. It is driven from one event
// loop and is not safe for concurrent use.
type Recorder struct {
	engine  Engine
	logger  *slog.Logger
	session *session
}

// New creates an idle recorder that commits bindings to engine.
func New(engine Engine, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}

	return &Recorder{
		engine: engine,
		logger: logger,
	}
}

// Start begins recording a chord for target, subscribing to in.
func (r *Recorder) Start(target string, in Input) error {
	if r.session != nil {
		return ErrAlreadyRecording
	}
	if target == "" {
		return ErrNoTarget
	}
	if in == nil {
		return ErrNoInput
	}

	s := &session{target: target}
	r.session = s
	s.sub = in.Subscribe(r.handle)

	r.logger.Debug("key recording started", "name", target)

	return nil
}

// Stop cancels an active session. It is a no-op when idle.
func (r *Recorder) Stop() {
	if r.session == nil {
		return
	}

	r.logger.Debug("key recording stopped", "name", r.session.target)
	r.end()
}

// IsRecording reports whether a session is active.
func (r *Recorder) IsRecording() bool {
	return r.session != nil
}

// Target returns the soundbite being recorded for, or "" when idle.
func (r *Recorder) Target() string {
	if r.session == nil {
		return ""
	}

	return r.session.target
}

// Pending returns the chord captured so far as a display label.
func (r *Recorder) Pending() string {
	if r.session == nil {
		return ""
	}

	var mod keytask.Modifier
	if r.session.modifier != nil {
		mod = r.session.modifier.name
	}

	var primary string
	if r.session.primary != nil {
		primary = r.session.primary.name
	}

	return Label(mod, primary)
}

func (r *Recorder) handle(ev KeyEvent) Outcome {
	s := r.session
	if s == nil {
		return Outcome{Step: StepIgnored}
	}

	switch ev.Key {
	case keyEscape:
		r.logger.Debug("key recording cancelled", "name", s.target)
		r.end()

		return Outcome{Step: StepCancelled}

	case keyEnter:
		r.end()

		if s.primary == nil {
			r.logger.Debug("key recording committed without a primary key", "name", s.target)
			return Outcome{Step: StepInvalidCommit}
		}

		return Outcome{Step: StepCommitted, Commit: r.commitFor(s)}
	}

	step := s.capture(ev)
	if step == StepIgnored {
		r.logger.Debug("key ignored", "name", s.target, "key", ev.Key, "key_code", ev.KeyCode)
	}

	return Outcome{Step: step}
}

// capture records ev as the modifier or the primary key. Keys without a
// legacy key code in range are ignored.
func (s *session) capture(ev KeyEvent) Step {
	if mod, ok := keytask.ParseModifier(ev.Key); ok {
		s.modifier = &capturedModifier{
			name:     mod,
			location: keytask.LocationFromCode(ev.Code),
		}

		return StepModifier
	}

	if !keytask.ValidKey(ev.KeyCode) {
		return StepIgnored
	}

	s.primary = &capturedKey{code: ev.KeyCode, name: ev.Key}

	return StepPrimary
}

// binding encodes the captured chord. s.primary must be set.
func (s *session) binding() Binding {
	b := Binding{
		Target:         s.target,
		PrimaryKeyCode: s.primary.code,
		PrimaryKeyName: s.primary.name,
	}

	if s.modifier != nil {
		b.Modifier = s.modifier.name
		b.SysKey = keytask.SysKeyFor(s.modifier.name, s.modifier.location)
	}

	b.Code = keytask.Encode(b.SysKey, b.PrimaryKeyCode)
	b.Label = Label(b.Modifier, b.PrimaryKeyName)

	return b
}

// Chord encodes events the way a recording session would, without
// recording: the last modifier and the last primary key win. Escape and
// Enter never form a chord. ok is false when no primary key was seen.
func Chord(events ...KeyEvent) (b Binding, ok bool) {
	s := &session{}
	for _, ev := range events {
		if ev.Key == keyEscape || ev.Key == keyEnter {
			continue
		}
		s.capture(ev)
	}

	if s.primary == nil {
		return Binding{}, false
	}

	return s.binding(), true
}

// end releases the subscription and discards the session.
func (r *Recorder) end() {
	s := r.session
	r.session = nil

	if s.sub != nil {
		s.sub.Release()
	}
}

func (r *Recorder) commitFor(s *session) *Commit {
	return &Commit{
		Binding: s.binding(),
		engine:  r.engine,
		logger:  r.logger,
	}
}
