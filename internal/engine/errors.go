package engine

import "fmt"

// ErrorKind classifies engine failures. It is stable and serialised to clients.
type ErrorKind string

const (
	KindNotFound          ErrorKind = "soundbite_not_found"
	KindAlreadyExists     ErrorKind = "soundbite_already_exists"
	KindNameUsed          ErrorKind = "name_used"
	KindInvalidName       ErrorKind = "invalid_name"
	KindNotAudio          ErrorKind = "not_audio"
	KindKeyTaskUsed       ErrorKind = "keytask_used"
	KindInvalidKeyTask    ErrorKind = "invalid_keytask"
	KindNoSoundbiteForKey ErrorKind = "no_soundbite_for_keytask"
	KindInvalidVolume     ErrorKind = "invalid_volume"
	KindInvalidSpeed      ErrorKind = "invalid_speed"
)

// Error is a typed engine failure. Two Errors match under errors.Is when
// their kinds match, so the Err* values below work as sentinels.
type Error struct {
	Kind       ErrorKind `json:"kind"`
	Message    string    `json:"message"`
	Suggestion string    `json:"suggestion,omitempty"`
}

func (e *Error) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("%s (did you mean %q?)", e.Message, e.Suggestion)
	}

	return e.Message
}

// Is matches on Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

var (
	ErrNotFound          = &Error{Kind: KindNotFound, Message: "soundbite not found"}
	ErrAlreadyExists     = &Error{Kind: KindAlreadyExists, Message: "soundbite already exists"}
	ErrNameUsed          = &Error{Kind: KindNameUsed, Message: "name already used"}
	ErrInvalidName       = &Error{Kind: KindInvalidName, Message: "invalid soundbite name"}
	ErrNotAudio          = &Error{Kind: KindNotAudio, Message: "buffer is not audio"}
	ErrKeyTaskUsed       = &Error{Kind: KindKeyTaskUsed, Message: "key code already used"}
	ErrInvalidKeyTask    = &Error{Kind: KindInvalidKeyTask, Message: "key combination is invalid or empty"}
	ErrNoSoundbiteForKey = &Error{Kind: KindNoSoundbiteForKey, Message: "no soundbite linked to key code"}
	ErrInvalidVolume     = &Error{Kind: KindInvalidVolume, Message: "invalid volume value"}
	ErrInvalidSpeed      = &Error{Kind: KindInvalidSpeed, Message: "invalid speed value"}
)

func notFound(name, suggestion string) *Error {
	return &Error{
		Kind:       KindNotFound,
		Message:    fmt.Sprintf("soundbite named %s not found", name),
		Suggestion: suggestion,
	}
}

func alreadyExists(name string) *Error {
	return &Error{Kind: KindAlreadyExists, Message: fmt.Sprintf("soundbite named %s already exists", name)}
}

func nameUsed(name string) *Error {
	return &Error{Kind: KindNameUsed, Message: fmt.Sprintf("name %s already used", name)}
}

func keyTaskUsed(code uint32, by string) *Error {
	return &Error{Kind: KindKeyTaskUsed, Message: fmt.Sprintf("key code %d already used by %s", code, by)}
}

func noSoundbiteForKey(code uint32) *Error {
	return &Error{Kind: KindNoSoundbiteForKey, Message: fmt.Sprintf("no soundbite linked to key code %d", code)}
}

func notAudio(mime string) *Error {
	return &Error{Kind: KindNotAudio, Message: fmt.Sprintf("buffer is not audio (detected %s)", mime)}
}
