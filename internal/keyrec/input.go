package keyrec

// KeyEvent is a single key press reported by the host input layer.
// The JSON shape matches a browser KeyboardEvent.
type KeyEvent struct {
	// Code is the physical key identity, e.g. "ShiftLeft" or "KeyA".
	Code string `json:"code"`
	// Key is the display identity, e.g. "Shift" or "a".
	Key string `json:"key"`
	// KeyCode is the legacy numeric key value, 1..255.
	KeyCode int `json:"keyCode" binding:"min=1,max=255"`
}

const (
	keyEscape = "Escape"
	keyEnter  = "Enter"
)

// Handler consumes key events while a subscription is held.
type Handler func(KeyEvent) Outcome

// Subscription is a held claim on an Input's key events.
type Subscription interface {
	Release()
}

// Input is a source of key events the recorder can subscribe to.
type Input interface {
	Subscribe(h Handler) Subscription
}

// Feed is an Input driven by the caller's own event loop: events passed to
// Dispatch reach the current subscriber, if there is one.
// A Feed has at most one subscriber and is not safe for concurrent use.
type Feed struct {
	handler Handler
	gen     uint64
}

// NewFeed returns an empty feed.
func NewFeed() *Feed {
	return &Feed{}
}

// Subscribe installs h as the receiver of dispatched events, replacing any
// previous subscriber.
func (f *Feed) Subscribe(h Handler) Subscription {
	f.gen++
	f.handler = h

	return &feedSubscription{feed: f, gen: f.gen}
}

// Dispatch delivers ev to the subscriber. ok is false when nobody listens.
func (f *Feed) Dispatch(ev KeyEvent) (out Outcome, ok bool) {
	if f.handler == nil {
		return Outcome{}, false
	}

	return f.handler(ev), true
}

// Listening reports whether a subscriber is installed.
func (f *Feed) Listening() bool {
	return f.handler != nil
}

type feedSubscription struct {
	feed *Feed
	gen  uint64
}

// Release detaches the subscriber. Releasing twice, or after a newer
// subscription replaced this one, is a no-op.
func (s *feedSubscription) Release() {
	if s.feed == nil {
		return
	}

	if s.feed.gen == s.gen {
		s.feed.handler = nil
	}
	s.feed = nil
}
