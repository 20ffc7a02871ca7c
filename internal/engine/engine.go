// Package engine is the sound engine: a registry of soundbites and the key
// chords bound to them. It is driven through named invoke commands.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/agnivade/levenshtein"
	"github.com/alkime/soundboard/internal/keytask"
	"github.com/alkime/soundboard/pkg/channels"
	"github.com/alkime/soundboard/pkg/collections"
	"github.com/gabriel-vasile/mimetype"
)

const (
	minLevel float32 = 0
	maxLevel float32 = 200

	// maxSuggestionDistance bounds "did you mean" suggestions.
	maxSuggestionDistance = 3

	eventBuffer = 64
)

// Soundbite is an imported sound and its playback settings.
type Soundbite struct {
	Name   string
	Buffer []byte
	MIME   string
	Volume float32
	Speed  float32
}

// Info is the client-facing view of a soundbite.
// Keycode is 0 when no chord is bound.
type Info struct {
	Name    string       `json:"name"`
	Volume  float32      `json:"volume"`
	Speed   float32      `json:"speed"`
	Keycode keytask.Code `json:"keycode"`
	MIME    string       `json:"mime"`
}

// EventKind names an engine state change.
type EventKind string

const (
	EventAdded          EventKind = "added"
	EventRemoved        EventKind = "removed"
	EventRenamed        EventKind = "renamed"
	EventVolume         EventKind = "volume"
	EventSpeed          EventKind = "speed"
	EventKeyTaskSet     EventKind = "keytask_set"
	EventKeyTaskRemoved EventKind = "keytask_removed"
	EventPlayed         EventKind = "played"
)

// Event is published after every successful mutation or playback.
type Event struct {
	Kind    EventKind    `json:"kind"`
	Name    string       `json:"name"`
	NewName string       `json:"newName,omitempty"`
	Keycode keytask.Code `json:"keycode,omitempty"`
	Value   float32      `json:"value,omitempty"`
	At      time.Time    `json:"at"`
}

// Options configures an Engine.
type Options struct {
	DefaultVolume float32
	DefaultSpeed  float32
	Player        Player
	Logger        *slog.Logger
}

// Engine holds soundbites and their bindings. It is safe for concurrent use.
type Engine struct {
	mu         sync.Mutex
	order      []string
	soundbites map[string]*Soundbite
	keytasks   map[keytask.Code]string
	bindings   map[string]keytask.Code

	defaultVolume float32
	defaultSpeed  float32

	player  Player
	logger  *slog.Logger
	events  *channels.Broadcaster[Event]
	publish chan<- Event
	now     func() time.Time
}

// New creates an engine whose event stream lives until ctx is cancelled.
func New(ctx context.Context, opts Options) (*Engine, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Player == nil {
		opts.Player = LogPlayer{Logger: opts.Logger}
	}
	if opts.DefaultVolume == 0 {
		opts.DefaultVolume = 100
	}
	if opts.DefaultSpeed == 0 {
		opts.DefaultSpeed = 100
	}
	if !validLevel(opts.DefaultVolume) {
		return nil, fmt.Errorf("default volume %v: %w", opts.DefaultVolume, ErrInvalidVolume)
	}
	if !validLevel(opts.DefaultSpeed) {
		return nil, fmt.Errorf("default speed %v: %w", opts.DefaultSpeed, ErrInvalidSpeed)
	}

	events := channels.NewBroadcaster[Event]()
	publish, err := events.Run(ctx, eventBuffer)
	if err != nil {
		return nil, fmt.Errorf("failed to start engine events: %w", err)
	}

	return &Engine{
		soundbites:    make(map[string]*Soundbite),
		keytasks:      make(map[keytask.Code]string),
		bindings:      make(map[string]keytask.Code),
		defaultVolume: opts.DefaultVolume,
		defaultSpeed:  opts.DefaultSpeed,
		player:        opts.Player,
		logger:        opts.Logger,
		events:        events,
		publish:       publish,
		now:           time.Now,
	}, nil
}

// Events exposes the engine's event stream for subscription.
func (e *Engine) Events() *channels.Broadcaster[Event] {
	return e.events
}

// Add imports buffer under name. The buffer must sniff as audio.
func (e *Engine) Add(name string, buffer []byte) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrInvalidName
	}

	mime := mimetype.Detect(buffer)
	if !isAudio(mime) {
		e.logger.Error("rejected soundbite", "name", name, "mime", mime.String())
		return "", notAudio(mime.String())
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.soundbites[name]; ok {
		e.logger.Error("soundbite already exists", "name", name)
		return "", nameUsed(name)
	}

	e.soundbites[name] = &Soundbite{
		Name:   name,
		Buffer: buffer,
		MIME:   mime.String(),
		Volume: e.defaultVolume,
		Speed:  e.defaultSpeed,
	}
	e.order = append(e.order, name)

	e.logger.Info("soundbite added", "name", name, "mime", mime.String(), "bytes", len(buffer))
	e.emit(Event{Kind: EventAdded, Name: name})

	return name, nil
}

// Remove deletes a soundbite and any chord bound to it.
func (e *Engine) Remove(name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.soundbites[name]; !ok {
		return e.notFound(name)
	}

	e.unbind(name)
	delete(e.soundbites, name)
	e.order = slices.DeleteFunc(e.order, func(n string) bool { return n == name })

	e.emit(Event{Kind: EventRemoved, Name: name})

	return nil
}

// Rename moves a soundbite, and its binding, to newName.
func (e *Engine) Rename(name, newName string) error {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return ErrInvalidName
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.soundbites[newName]; ok {
		return alreadyExists(newName)
	}

	sb, ok := e.soundbites[name]
	if !ok {
		return e.notFound(name)
	}

	sb.Name = newName
	delete(e.soundbites, name)
	e.soundbites[newName] = sb
	e.order[slices.Index(e.order, name)] = newName

	if code, bound := e.bindings[name]; bound {
		delete(e.bindings, name)
		e.bindings[newName] = code
		e.keytasks[code] = newName
	}

	e.emit(Event{Kind: EventRenamed, Name: name, NewName: newName})

	return nil
}

// SetVolume sets the playback volume, in percent, 0 < volume <= 200.
func (e *Engine) SetVolume(name string, volume float32) error {
	if !validLevel(volume) {
		return ErrInvalidVolume
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	sb, ok := e.soundbites[name]
	if !ok {
		return e.notFound(name)
	}

	sb.Volume = volume
	e.emit(Event{Kind: EventVolume, Name: name, Value: volume})

	return nil
}

// SetSpeed sets the playback speed, in percent, 0 < speed <= 200.
func (e *Engine) SetSpeed(name string, speed float32) error {
	if !validLevel(speed) {
		return ErrInvalidSpeed
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	sb, ok := e.soundbites[name]
	if !ok {
		return e.notFound(name)
	}

	sb.Speed = speed
	e.emit(Event{Kind: EventSpeed, Name: name, Value: speed})

	return nil
}

// SetKeytaskCode binds code to name, replacing the soundbite's previous chord.
func (e *Engine) SetKeytaskCode(name string, code keytask.Code) error {
	if code == 0 {
		e.logger.Error("invalid key combination", "name", name)
		return ErrInvalidKeyTask
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.soundbites[name]; !ok {
		return e.notFound(name)
	}

	if owner, used := e.keytasks[code]; used {
		if owner == name {
			return nil
		}
		e.logger.Error("key code already used", "keytask_code", uint32(code), "name", owner)

		return keyTaskUsed(uint32(code), owner)
	}

	e.unbind(name)
	e.keytasks[code] = name
	e.bindings[name] = code

	e.logger.Info("key task bound", "name", name, "keytask_code", uint32(code))
	e.emit(Event{Kind: EventKeyTaskSet, Name: name, Keycode: code})

	return nil
}

// RemoveKeytaskCode drops the chord bound to name. Unknown names and unbound
// soundbites are not errors.
func (e *Engine) RemoveKeytaskCode(name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if code, ok := e.bindings[name]; ok {
		e.unbind(name)
		e.emit(Event{Kind: EventKeyTaskRemoved, Name: name, Keycode: code})
	}

	return nil
}

// Soundbite returns the client view of name.
func (e *Engine) Soundbite(name string) (Info, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	sb, ok := e.soundbites[name]
	if !ok {
		return Info{}, e.notFound(name)
	}

	return Info{
		Name:    sb.Name,
		Volume:  sb.Volume,
		Speed:   sb.Speed,
		Keycode: e.bindings[name],
		MIME:    sb.MIME,
	}, nil
}

// Soundbites lists soundbite names in insertion order.
func (e *Engine) Soundbites() []string {
	e.mu.Lock()
	defer e.mu.Unlock()

	return append([]string{}, e.order...)
}

// Play plays name through the engine's player.
func (e *Engine) Play(ctx context.Context, name string) error {
	e.mu.Lock()
	sb, ok := e.soundbites[name]
	if !ok {
		err := e.notFound(name)
		e.mu.Unlock()

		return err
	}
	snapshot := *sb
	e.mu.Unlock()

	if err := e.player.Play(ctx, snapshot); err != nil {
		return fmt.Errorf("failed to play %s: %w", name, err)
	}

	e.mu.Lock()
	e.emit(Event{Kind: EventPlayed, Name: name})
	e.mu.Unlock()

	return nil
}

// Trigger plays the soundbite bound to code and returns its name.
func (e *Engine) Trigger(ctx context.Context, code keytask.Code) (string, error) {
	e.mu.Lock()
	name, ok := e.keytasks[code]
	e.mu.Unlock()

	if !ok {
		e.logger.Debug("no soundbite linked to key code", "keytask_code", uint32(code))
		return "", noSoundbiteForKey(uint32(code))
	}

	if err := e.Play(ctx, name); err != nil {
		return "", err
	}

	return name, nil
}

// unbind drops name's chord. Callers hold e.mu.
func (e *Engine) unbind(name string) {
	if code, ok := e.bindings[name]; ok {
		delete(e.keytasks, code)
		delete(e.bindings, name)
	}
}

// emit publishes ev without blocking. Callers hold e.mu so events keep
// mutation order.
func (e *Engine) emit(ev Event) {
	ev.At = e.now()
	if err := channels.SendNonBlock(e.publish, ev); err != nil {
		e.logger.Debug("engine event dropped", "kind", ev.Kind, "name", ev.Name, "error", err)
	}
}

// notFound builds a not-found error with the closest known name, if any.
// Callers hold e.mu.
func (e *Engine) notFound(name string) *Error {
	type candidate struct {
		name string
		dist int
	}

	candidates := collections.Apply(e.order, func(n string) candidate {
		return candidate{name: n, dist: levenshtein.ComputeDistance(name, n)}
	})
	near := collections.Filter(candidates, func(c candidate) bool {
		return c.dist <= maxSuggestionDistance
	})

	best, ok := collections.MinBy(near, func(c candidate) int { return c.dist })
	if !ok {
		return notFound(name, "")
	}

	return notFound(name, best.name)
}

func validLevel(v float32) bool {
	return v > minLevel && v <= maxLevel
}

func isAudio(m *mimetype.MIME) bool {
	for ; m != nil; m = m.Parent() {
		if strings.HasPrefix(m.String(), "audio/") {
			return true
		}
	}

	return false
}
